package agenda

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"agenda/pkg/models"
	"agenda/pkg/store"
)

// User-facing messages, kept verbatim from the product. The error slot is
// first-error-wins: a later failure never overwrites an earlier message.
const (
	msgDepartmentsUnavailable = "No se pudieron cargar los departamentos. Verifique su conexión."
	msgContactsUnavailable    = "No se pudieron cargar los contactos. Verifique su conexión."
	msgRefreshFailed          = "Error al cargar los datos"
)

// DirectorySnapshot is a consistent read of the synchronized directory
// state at one instant.
type DirectorySnapshot struct {
	Departments        []models.Department `json:"departments"`
	Contacts           []models.Contact    `json:"contacts"`
	SelectedDepartment *models.Department  `json:"selectedDepartment,omitempty"`
	Loading            bool                `json:"loading"`
	Error              string              `json:"error,omitempty"`
}

// SyncStore keeps an in-process copy of both collections, fed by two
// independent store subscriptions. Loading stays true until each
// collection has reported either its first snapshot or a failure; a failed
// collection still counts as ready so one broken subscription cannot wedge
// the loading flag forever.
type SyncStore struct {
	store store.Store
	log   zerolog.Logger

	mu            sync.Mutex
	departments   []models.Department
	contacts      []models.Contact
	selected      *models.Department
	loading       bool
	errMsg        string
	deptsReady    bool
	contactsReady bool

	started    bool
	deptSub    *store.Subscription[models.Department]
	contactSub *store.Subscription[models.Contact]
	wg         sync.WaitGroup
}

// NewSyncStore returns a SyncStore over the given store. Call Start to
// begin synchronizing.
func NewSyncStore(st store.Store, log zerolog.Logger) *SyncStore {
	return &SyncStore{store: st, log: log}
}

// Start opens both subscriptions and begins consuming snapshots. A
// subscription that fails to open is handled like a failed collection:
// its fixed message lands in the error slot and the collection counts as
// ready. Start is a no-op when already started.
func (s *SyncStore) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.loading = true
	s.errMsg = ""
	s.deptsReady = false
	s.contactsReady = false
	s.mu.Unlock()

	deptSub, err := s.store.SubscribeDepartments(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("department subscription failed")
		s.collectionFailed(&s.deptsReady, msgDepartmentsUnavailable)
	} else {
		s.mu.Lock()
		s.deptSub = deptSub
		s.mu.Unlock()
		s.wg.Add(1)
		go consume(s, deptSub.Updates, deptSub.Errors, s.setDepartments, &s.deptsReady, msgDepartmentsUnavailable)
	}

	contactSub, err := s.store.SubscribeContacts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("contact subscription failed")
		s.collectionFailed(&s.contactsReady, msgContactsUnavailable)
	} else {
		s.mu.Lock()
		s.contactSub = contactSub
		s.mu.Unlock()
		s.wg.Add(1)
		go consume(s, contactSub.Updates, contactSub.Errors, s.setContacts, &s.contactsReady, msgContactsUnavailable)
	}
}

// Stop unsubscribes both collections and waits for the consumers to
// drain. Safe to call more than once.
func (s *SyncStore) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	deptSub, contactSub := s.deptSub, s.contactSub
	s.deptSub, s.contactSub = nil, nil
	s.mu.Unlock()

	if deptSub != nil {
		deptSub.Unsubscribe()
	}
	if contactSub != nil {
		contactSub.Unsubscribe()
	}
	s.wg.Wait()
}

// Refresh re-fetches both collections in parallel and replaces the state
// all-or-nothing: a failure on either fetch leaves both lists untouched
// and sets the generic message. Loading is cleared on every exit path.
func (s *SyncStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	var (
		departments []models.Department
		contacts    []models.Contact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		departments, err = s.store.ListDepartments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		contacts, err = s.store.ListContacts(gctx)
		return err
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Error().Err(err).Msg("refresh failed")
		s.errMsg = msgRefreshFailed
		return err
	}
	s.departments = departments
	s.contacts = contacts
	return nil
}

// SetSelectedDepartment records the department the reader is browsing.
// nil clears the selection.
func (s *SyncStore) SetSelectedDepartment(d *models.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = d
}

// Snapshot returns a copy of the current state. The slices are copied so
// callers can hold them across later updates.
func (s *SyncStore) Snapshot() DirectorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := DirectorySnapshot{
		Departments: make([]models.Department, len(s.departments)),
		Contacts:    make([]models.Contact, len(s.contacts)),
		Loading:     s.loading,
		Error:       s.errMsg,
	}
	copy(snap.Departments, s.departments)
	copy(snap.Contacts, s.contacts)
	if s.selected != nil {
		selected := *s.selected
		snap.SelectedDepartment = &selected
	}
	return snap
}

func consume[T any](s *SyncStore, updates <-chan []T, errs <-chan error, set func([]T), ready *bool, message string) {
	defer s.wg.Done()
	for updates != nil || errs != nil {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			set(snapshot)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Error().Err(err).Msg("subscription error")
			s.collectionFailed(ready, message)
		}
	}
}

func (s *SyncStore) setDepartments(snapshot []models.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = snapshot
	s.deptsReady = true
	s.checkLoadingLocked()
}

func (s *SyncStore) setContacts(snapshot []models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = snapshot
	s.contactsReady = true
	s.checkLoadingLocked()
}

func (s *SyncStore) collectionFailed(ready *bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errMsg == "" {
		s.errMsg = message
	}
	*ready = true
	s.checkLoadingLocked()
}

func (s *SyncStore) checkLoadingLocked() {
	if s.deptsReady && s.contactsReady {
		s.loading = false
	}
}
