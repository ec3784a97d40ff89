package agenda

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Router builds the HTTP surface.
//
// Public:
//
//	GET  /api/health              - Service health status
//	GET  /api/departments         - Ordered department list
//	GET  /api/contacts            - Ordered contacts; ?departmentId= &q= filter,
//	                                ?mode=lookup for the reception prefix search
//	GET  /api/directory           - Synchronized directory snapshot
//	POST /api/directory/refresh   - Manual re-fetch of both collections
//	POST /api/auth/signin         - Admin sign-in (remember selects session length)
//	POST /api/auth/signout        - Revoke the presented token
//	GET  /api/auth/me             - Current authenticated admin
//	GET  /metrics                 - Prometheus metrics
//
// Admin (bearer token):
//
//	POST   /api/departments        PUT/DELETE /api/departments/{id}
//	POST   /api/contacts           PUT/DELETE /api/contacts/{id}
func (a *App) Router() *mux.Router {
	registerMetrics()

	router := mux.NewRouter()
	router.Use(instrument)
	router.Use(a.logRequests)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/auth/signin", a.handleSignIn).Methods("POST")
	api.HandleFunc("/auth/signout", a.handleSignOut).Methods("POST")
	api.HandleFunc("/auth/me", a.handleGetCurrentUser).Methods("GET")

	api.HandleFunc("/departments", a.handleListDepartments).Methods("GET")
	api.HandleFunc("/departments", a.requireAdmin(a.handleCreateDepartment)).Methods("POST")
	api.HandleFunc("/departments/{id}", a.requireAdmin(a.handleUpdateDepartment)).Methods("PUT")
	api.HandleFunc("/departments/{id}", a.requireAdmin(a.handleDeleteDepartment)).Methods("DELETE")

	api.HandleFunc("/contacts", a.handleListContacts).Methods("GET")
	api.HandleFunc("/contacts", a.requireAdmin(a.handleCreateContact)).Methods("POST")
	api.HandleFunc("/contacts/{id}", a.requireAdmin(a.handleUpdateContact)).Methods("PUT")
	api.HandleFunc("/contacts/{id}", a.requireAdmin(a.handleDeleteContact)).Methods("DELETE")

	api.HandleFunc("/directory", a.handleDirectory).Methods("GET")
	api.HandleFunc("/directory/refresh", a.handleRefresh).Methods("POST")

	return router
}

// Run starts directory synchronization and serves the API until the
// context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.sync.Start(ctx)

	server := &http.Server{
		Addr:    a.config.Addr,
		Handler: a.Router(),
	}

	a.log.Info().Str("addr", a.config.Addr).Msg("starting server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		a.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
