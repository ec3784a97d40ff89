// Package surrealdb implements the [agenda/pkg/store.Store] interface over
// SurrealDB using native SurrealQL and the driver's live queries.
//
// The connection uses the surrealcbor codec so typed IDs marshal to
// SurrealDB RecordIDs and back. Live queries deliver per-record change
// notifications; the subscription contract wants full ordered snapshots, so
// each notification triggers a re-list of the table, which also restores
// the canonical ordering.
//
// All queries with user-provided values are parameterized ($param syntax).
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"agenda/pkg/models"
	"agenda/pkg/store"
)

// snapshotBuffer bounds how many snapshots may queue up for a slow
// consumer before the producer blocks.
const snapshotBuffer = 16

const killTimeout = 5 * time.Second

// SurrealStore implements store.Store backed by a SurrealDB connection.
type SurrealStore struct {
	db       *surrealdb.DB
	ns       string
	database string
	log      zerolog.Logger
}

// New connects to SurrealDB over WebSocket with the surrealcbor codec.
// Credentials are optional; when empty the connection stays anonymous.
func New(wsURL, namespace, database, username, password string, log zerolog.Logger) (*SurrealStore, error) {
	ctx := context.Background()

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	// The surrealcbor codec is what makes typed IDs and RecordIDs
	// round-trip correctly; the default marshaler does not.
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &SurrealStore{
		db:       db,
		ns:       namespace,
		database: database,
		log:      log,
	}, nil
}

// Migrate defines the two tables. SurrealDB would create them lazily on
// first insert anyway; defining them upfront lets live queries attach to
// empty tables.
func (s *SurrealStore) Migrate(ctx context.Context) error {
	stmts := `
		DEFINE TABLE IF NOT EXISTS departments SCHEMALESS;
		DEFINE TABLE IF NOT EXISTS contacts SCHEMALESS;
	`
	if _, err := surrealdb.Query[any](ctx, s.db, stmts, nil); err != nil {
		return fmt.Errorf("failed to define tables: %w", err)
	}
	return nil
}

func (s *SurrealStore) Close() error {
	return s.db.Close(context.Background())
}

// handleNotFound converts the driver's record-missing errors to nil so
// callers can treat absent records uniformly.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}

// Department operations

func (s *SurrealStore) CreateDepartment(ctx context.Context, department *models.Department) error {
	if department.ID.IsZero() {
		department.ID = models.NewDepartmentID()
	}
	if department.CreatedAt == 0 {
		department.CreatedAt = models.NowMillis()
	}

	// The ID field marshals to a RecordID thanks to DepartmentID's MarshalCBOR
	if _, err := surrealdb.Create[models.Department](ctx, s.db, "departments", department); err != nil {
		return &store.WriteError{Collection: "departments", Op: "create", Err: err}
	}
	return nil
}

func (s *SurrealStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	result, err := surrealdb.Query[[]models.Department](ctx, s.db, "SELECT * FROM departments", nil)
	if err != nil {
		return nil, &store.ReadError{Collection: "departments", Err: err}
	}

	var departments []models.Department
	if result != nil && len(*result) > 0 {
		departments = (*result)[0].Result
	}
	models.SortDepartments(departments)
	return departments, nil
}

func (s *SurrealStore) UpdateDepartment(ctx context.Context, id models.DepartmentID, patch models.DepartmentPatch) (*models.Department, error) {
	rid := id.RecordID()
	updated, err := surrealdb.Merge[models.Department](ctx, s.db, rid, patch.Fields())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, &store.WriteError{Collection: "departments", Op: "update", Err: err}
	}
	return updated, nil
}

func (s *SurrealStore) DeleteDepartment(ctx context.Context, id models.DepartmentID) error {
	rid := id.RecordID()
	if _, err := surrealdb.Delete[models.Department](ctx, s.db, rid); handleNotFound(err) != nil {
		return &store.WriteError{Collection: "departments", Op: "delete", Err: err}
	}
	return nil
}

func (s *SurrealStore) SubscribeDepartments(ctx context.Context) (*store.Subscription[models.Department], error) {
	return subscribe(ctx, s, "departments", s.ListDepartments)
}

// Contact operations

func (s *SurrealStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID.IsZero() {
		contact.ID = models.NewContactID()
	}
	now := models.NowMillis()
	if contact.CreatedAt == 0 {
		contact.CreatedAt = now
	}
	if contact.UpdatedAt == 0 {
		contact.UpdatedAt = now
	}

	if _, err := surrealdb.Create[models.Contact](ctx, s.db, "contacts", contact); err != nil {
		return &store.WriteError{Collection: "contacts", Op: "create", Err: err}
	}
	return nil
}

func (s *SurrealStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	result, err := surrealdb.Query[[]models.Contact](ctx, s.db, "SELECT * FROM contacts", nil)
	if err != nil {
		return nil, &store.ReadError{Collection: "contacts", Err: err}
	}

	var contacts []models.Contact
	if result != nil && len(*result) > 0 {
		contacts = (*result)[0].Result
	}
	models.SortContacts(contacts)
	return contacts, nil
}

func (s *SurrealStore) ListContactsByDepartment(ctx context.Context, departmentID models.DepartmentID) ([]models.Contact, error) {
	query := "SELECT * FROM contacts WHERE departmentId = $department"
	params := map[string]any{
		"department": departmentID,
	}
	result, err := surrealdb.Query[[]models.Contact](ctx, s.db, query, params)
	if err != nil {
		return nil, &store.ReadError{Collection: "contacts", Err: err}
	}

	var contacts []models.Contact
	if result != nil && len(*result) > 0 {
		contacts = (*result)[0].Result
	}
	models.SortContacts(contacts)
	return contacts, nil
}

func (s *SurrealStore) UpdateContact(ctx context.Context, id models.ContactID, patch models.ContactPatch) (*models.Contact, error) {
	fields := patch.Fields()
	// Every update bumps updatedAt, even when no field changed
	fields["updatedAt"] = models.NowMillis()

	rid := id.RecordID()
	updated, err := surrealdb.Merge[models.Contact](ctx, s.db, rid, fields)
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, &store.WriteError{Collection: "contacts", Op: "update", Err: err}
	}
	return updated, nil
}

func (s *SurrealStore) DeleteContact(ctx context.Context, id models.ContactID) error {
	rid := id.RecordID()
	if _, err := surrealdb.Delete[models.Contact](ctx, s.db, rid); handleNotFound(err) != nil {
		return &store.WriteError{Collection: "contacts", Op: "delete", Err: err}
	}
	return nil
}

func (s *SurrealStore) SubscribeContacts(ctx context.Context) (*store.Subscription[models.Contact], error) {
	return subscribe(ctx, s, "contacts", s.ListContacts)
}

// subscribe starts a live query on table and re-materializes a full ordered
// snapshot per notification. The first snapshot is pushed immediately so a
// subscriber sees current state without waiting for a change. The ctx
// bounds the lifetime of the re-list calls; Unsubscribe kills the live
// query, which closes the notification channel and ends the goroutine.
func subscribe[T any](ctx context.Context, s *SurrealStore, table string, list func(context.Context) ([]T, error)) (*store.Subscription[T], error) {
	live, err := surrealdb.Live(ctx, s.db, surrealdb_models.Table(table), false)
	if err != nil {
		return nil, &store.SubscriptionError{Collection: table, Err: err}
	}
	liveID := live.String()

	notifications, err := s.db.LiveNotifications(liveID)
	if err != nil {
		if killErr := surrealdb.Kill(ctx, s.db, liveID); killErr != nil {
			s.log.Warn().Err(killErr).Str("table", table).Msg("failed to kill live query")
		}
		return nil, &store.SubscriptionError{Collection: table, Err: err}
	}

	updates := make(chan []T, snapshotBuffer)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(updates)
		defer close(errs)

		push := func() {
			snapshot, listErr := list(ctx)
			if listErr != nil {
				select {
				case errs <- &store.SubscriptionError{Collection: table, Err: listErr}:
				default:
				}
				return
			}
			select {
			case updates <- snapshot:
			case <-done:
			}
		}

		push()
		for {
			select {
			case _, ok := <-notifications:
				if !ok {
					return
				}
				push()
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		killCtx, cancel := context.WithTimeout(context.Background(), killTimeout)
		defer cancel()
		if err := surrealdb.Kill(killCtx, s.db, liveID); err != nil {
			s.log.Warn().Err(err).Str("table", table).Msg("failed to kill live query")
		}
	}

	return store.NewSubscription(updates, errs, stop), nil
}
