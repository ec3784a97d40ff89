// Package memory implements the [agenda/pkg/store.Store] interface with
// mutex-guarded maps. It mirrors the remote store's semantics exactly
// (canonical ordering, merge updates, unconditional deletes, full-snapshot
// subscriptions) and backs tests and the -mem development mode.
package memory

import (
	"context"
	"sync"

	"agenda/pkg/models"
	"agenda/pkg/store"
)

const snapshotBuffer = 16

// Store is an in-memory store.Store implementation.
type Store struct {
	mu          sync.RWMutex
	departments map[models.DepartmentID]models.Department
	contacts    map[models.ContactID]models.Contact

	deptSubs    map[int]chan []models.Department
	contactSubs map[int]chan []models.Contact
	nextSub     int
	closed      bool
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		departments: make(map[models.DepartmentID]models.Department),
		contacts:    make(map[models.ContactID]models.Contact),
		deptSubs:    make(map[int]chan []models.Department),
		contactSubs: make(map[int]chan []models.Contact),
	}
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.deptSubs {
		close(ch)
		delete(s.deptSubs, id)
	}
	for id, ch := range s.contactSubs {
		close(ch)
		delete(s.contactSubs, id)
	}
	return nil
}

// Department operations

func (s *Store) CreateDepartment(ctx context.Context, department *models.Department) error {
	if department.ID.IsZero() {
		department.ID = models.NewDepartmentID()
	}
	if department.CreatedAt == 0 {
		department.CreatedAt = models.NowMillis()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[department.ID] = *department
	s.broadcastDepartmentsLocked()
	return nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departmentSnapshotLocked(), nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id models.DepartmentID, patch models.DepartmentPatch) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	department, ok := s.departments[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&department)
	s.departments[id] = department
	s.broadcastDepartmentsLocked()
	return &department, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id models.DepartmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[id]; !ok {
		return nil
	}
	delete(s.departments, id)
	s.broadcastDepartmentsLocked()
	return nil
}

func (s *Store) SubscribeDepartments(ctx context.Context) (*store.Subscription[models.Department], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []models.Department, snapshotBuffer)
	s.deptSubs[id] = ch
	ch <- s.departmentSnapshotLocked()

	errs := make(chan error)
	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.deptSubs[id]; ok {
			close(sub)
			delete(s.deptSubs, id)
		}
		close(errs)
	}
	return store.NewSubscription[models.Department](ch, errs, stop), nil
}

// Contact operations

func (s *Store) CreateContact(ctx context.Context, contact *models.Contact) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = *contact
	s.broadcastContactsLocked()
	return nil
}

func (s *Store) ListContacts(ctx context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contactSnapshotLocked(), nil
}

func (s *Store) ListContactsByDepartment(ctx context.Context, departmentID models.DepartmentID) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var contacts []models.Contact
	for _, c := range s.contacts {
		if c.DepartmentID == departmentID {
			contacts = append(contacts, c)
		}
	}
	models.SortContacts(contacts)
	return contacts, nil
}

func (s *Store) UpdateContact(ctx context.Context, id models.ContactID, patch models.ContactPatch) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&contact)
	s.contacts[id] = contact
	s.broadcastContactsLocked()
	return &contact, nil
}

func (s *Store) DeleteContact(ctx context.Context, id models.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return nil
	}
	delete(s.contacts, id)
	s.broadcastContactsLocked()
	return nil
}

func (s *Store) SubscribeContacts(ctx context.Context) (*store.Subscription[models.Contact], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []models.Contact, snapshotBuffer)
	s.contactSubs[id] = ch
	ch <- s.contactSnapshotLocked()

	errs := make(chan error)
	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.contactSubs[id]; ok {
			close(sub)
			delete(s.contactSubs, id)
		}
		close(errs)
	}
	return store.NewSubscription[models.Contact](ch, errs, stop), nil
}

// Internals. All assume the mutex is held.

func (s *Store) departmentSnapshotLocked() []models.Department {
	snapshot := make([]models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		snapshot = append(snapshot, d)
	}
	models.SortDepartments(snapshot)
	return snapshot
}

func (s *Store) contactSnapshotLocked() []models.Contact {
	snapshot := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		snapshot = append(snapshot, c)
	}
	models.SortContacts(snapshot)
	return snapshot
}

func (s *Store) broadcastDepartmentsLocked() {
	snapshot := s.departmentSnapshotLocked()
	for _, ch := range s.deptSubs {
		sendLatest(ch, snapshot)
	}
}

func (s *Store) broadcastContactsLocked() {
	snapshot := s.contactSnapshotLocked()
	for _, ch := range s.contactSubs {
		sendLatest(ch, snapshot)
	}
}

// sendLatest delivers a snapshot without blocking the writer. When the
// subscriber lags behind, the oldest queued snapshot is dropped; only the
// latest state matters since every element is a full snapshot.
func sendLatest[T any](ch chan []T, snapshot []T) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
