// Package store defines the persistence interface of the contact directory.
//
// A [Store] gives access to the two collections (departments, contacts)
// through four operation families: create, ordered list, merge-style update
// and unconditional delete, plus whole-snapshot change subscriptions.
//
// Every list and every snapshot emitted by a subscription is ordered
// ascending by canonical key (department name, contact full name),
// byte-wise. Subscriptions never emit diffs: each element on the updates
// channel is the complete collection at some point in time.
package store

import (
	"context"

	"agenda/pkg/models"
)

// Store is the persistence interface for the directory.
//
// Update merges only the fields set on the patch and returns the updated
// record, or (nil, nil) when no record has the id; contact updates always
// bump updatedAt, even for an empty patch.
// Delete is unconditional and treats an absent id as a no-op. The
// department delete guard is an application rule, enforced above this
// interface.
type Store interface {
	CreateDepartment(ctx context.Context, department *models.Department) error
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, id models.DepartmentID, patch models.DepartmentPatch) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id models.DepartmentID) error
	SubscribeDepartments(ctx context.Context) (*Subscription[models.Department], error)

	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context) ([]models.Contact, error)
	ListContactsByDepartment(ctx context.Context, departmentID models.DepartmentID) ([]models.Contact, error)
	UpdateContact(ctx context.Context, id models.ContactID, patch models.ContactPatch) (*models.Contact, error)
	DeleteContact(ctx context.Context, id models.ContactID) error
	SubscribeContacts(ctx context.Context) (*Subscription[models.Contact], error)

	// Migrate prepares the backend schema. A no-op for schemaless backends.
	Migrate(ctx context.Context) error

	Close() error
}
