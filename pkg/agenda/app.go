package agenda

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"agenda/pkg/store"
	"agenda/pkg/store/memory"
	surrealstore "agenda/pkg/store/surrealdb"
)

// Config holds application configuration. Values come from the environment
// by default (ConfigFromEnv) and may be overridden by a YAML file.
type Config struct {
	// Server configuration
	Addr string `yaml:"addr"`

	// SurrealDB connection
	SurrealDBURL  string `yaml:"surrealdb_url"`
	SurrealDBNS   string `yaml:"surrealdb_ns"`
	SurrealDBDB   string `yaml:"surrealdb_db"`
	SurrealDBUser string `yaml:"surrealdb_user"`
	SurrealDBPass string `yaml:"surrealdb_pass"`

	// Admin credential. AdminPasswordHash is a bcrypt hash.
	AdminEmail        string `yaml:"admin_email"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	JWTSecret         string `yaml:"jwt_secret"`

	// UseMemoryStore swaps the remote store for the in-memory one.
	// Development and tests only: state is lost on exit.
	UseMemoryStore bool `yaml:"use_memory_store"`
}

// ConfigFromEnv builds a Config from environment variables with local
// development defaults.
func ConfigFromEnv() *Config {
	return &Config{
		Addr:              getEnv("AGENDA_ADDR", ":8080"),
		SurrealDBURL:      getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNS:       getEnv("SURREALDB_NS", "agenda"),
		SurrealDBDB:       getEnv("SURREALDB_DB", "agenda"),
		SurrealDBUser:     getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:     getEnv("SURREALDB_PASS", "root"),
		AdminEmail:        getEnv("AGENDA_ADMIN_EMAIL", "admin@santotomas.edu"),
		AdminPasswordHash: getEnv("AGENDA_ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("AGENDA_JWT_SECRET", ""),
	}
}

// LoadConfigFile overlays cfg with values from a YAML file. Zero values in
// the file leave the existing value in place for strings; booleans in the
// file always apply.
func LoadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// App holds the application state: the store, the synchronized directory
// view, the authenticator and the logger.
type App struct {
	store  store.Store
	sync   *SyncStore
	auth   *Authenticator
	config *Config
	log    zerolog.Logger
}

// New builds an App over the store selected by the config and runs the
// schema migration. The returned App owns the store; Close releases it.
func New(ctx context.Context, config *Config, log zerolog.Logger) (*App, error) {
	var appStore store.Store
	if config.UseMemoryStore {
		appStore = memory.New()
		log.Info().Msg("using in-memory store")
	} else {
		st, err := surrealstore.New(
			config.SurrealDBURL,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
			log,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		appStore = st
		log.Info().Str("url", config.SurrealDBURL).Msg("connected to SurrealDB")
	}

	if err := appStore.Migrate(ctx); err != nil {
		_ = appStore.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &App{
		store:  appStore,
		sync:   NewSyncStore(appStore, log),
		auth:   NewAuthenticator(config.JWTSecret, config.AdminEmail, config.AdminPasswordHash),
		config: config,
		log:    log,
	}, nil
}

// NewWithStore builds an App over an already-constructed store. Used by
// tests to inject the in-memory store directly.
func NewWithStore(config *Config, st store.Store, log zerolog.Logger) *App {
	return &App{
		store:  st,
		sync:   NewSyncStore(st, log),
		auth:   NewAuthenticator(config.JWTSecret, config.AdminEmail, config.AdminPasswordHash),
		config: config,
		log:    log,
	}
}

// Close stops synchronization and releases the store.
func (a *App) Close() error {
	a.sync.Stop()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the underlying store (useful for testing)
func (a *App) Store() store.Store {
	return a.store
}

// Sync returns the synchronized directory view.
func (a *App) Sync() *SyncStore {
	return a.sync
}

// getEnv retrieves an environment variable with a fallback default.
// An empty value counts as unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
