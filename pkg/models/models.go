package models

import (
	"sort"
	"time"
)

// Department groups contacts under a single named unit.
// Timestamps are epoch milliseconds, matching what the store persists.
type Department struct {
	ID        DepartmentID `json:"id"`
	Name      string       `json:"name"`
	CreatedAt int64        `json:"createdAt"`
}

// Contact is a single directory entry. Position, Phone and Schedule are
// optional and omitted from the wire format when empty.
type Contact struct {
	ID           ContactID    `json:"id"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Extension    string       `json:"extension"`
	Location     string       `json:"location"`
	DepartmentID DepartmentID `json:"departmentId"`
	Position     string       `json:"position,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Schedule     string       `json:"schedule,omitempty"`
	CreatedAt    int64        `json:"createdAt"`
	UpdatedAt    int64        `json:"updatedAt"`
}

// DepartmentForm is the create payload for a department.
type DepartmentForm struct {
	Name string `json:"name"`
}

// ContactForm is the create payload for a contact.
type ContactForm struct {
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Extension    string       `json:"extension"`
	Location     string       `json:"location"`
	DepartmentID DepartmentID `json:"departmentId"`
	Position     string       `json:"position,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Schedule     string       `json:"schedule,omitempty"`
}

// DepartmentPatch is a partial update. Nil fields are left untouched.
type DepartmentPatch struct {
	Name *string `json:"name,omitempty"`
}

// Fields returns the set fields as a merge map.
func (p DepartmentPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	return fields
}

// ContactPatch is a partial update. Nil fields are left untouched;
// createdAt and updatedAt are never client-settable.
type ContactPatch struct {
	FullName     *string       `json:"fullName,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Extension    *string       `json:"extension,omitempty"`
	Location     *string       `json:"location,omitempty"`
	DepartmentID *DepartmentID `json:"departmentId,omitempty"`
	Position     *string       `json:"position,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	Schedule     *string       `json:"schedule,omitempty"`
}

// Fields returns the set fields as a merge map.
func (p ContactPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.FullName != nil {
		fields["fullName"] = *p.FullName
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Extension != nil {
		fields["extension"] = *p.Extension
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.DepartmentID != nil {
		fields["departmentId"] = *p.DepartmentID
	}
	if p.Position != nil {
		fields["position"] = *p.Position
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.Schedule != nil {
		fields["schedule"] = *p.Schedule
	}
	return fields
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewDepartment builds a department from a create form, assigning a fresh
// ID and stamping the creation time.
func NewDepartment(form DepartmentForm) *Department {
	return &Department{
		ID:        NewDepartmentID(),
		Name:      form.Name,
		CreatedAt: NowMillis(),
	}
}

// NewContact builds a contact from a create form, assigning a fresh ID and
// stamping both timestamps with the same instant.
func NewContact(form ContactForm) *Contact {
	now := NowMillis()
	return &Contact{
		ID:           NewContactID(),
		FullName:     form.FullName,
		Email:        form.Email,
		Extension:    form.Extension,
		Location:     form.Location,
		DepartmentID: form.DepartmentID,
		Position:     form.Position,
		Phone:        form.Phone,
		Schedule:     form.Schedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply merges the set fields into the contact and bumps UpdatedAt.
// The bump happens even when no field is set, matching the store contract.
func (p ContactPatch) Apply(c *Contact) {
	if p.FullName != nil {
		c.FullName = *p.FullName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Extension != nil {
		c.Extension = *p.Extension
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.DepartmentID != nil {
		c.DepartmentID = *p.DepartmentID
	}
	if p.Position != nil {
		c.Position = *p.Position
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Schedule != nil {
		c.Schedule = *p.Schedule
	}
	c.UpdatedAt = NowMillis()
}

// Apply merges the set fields into the department.
func (p DepartmentPatch) Apply(d *Department) {
	if p.Name != nil {
		d.Name = *p.Name
	}
}

// SortDepartments orders departments ascending by name. Go's byte-wise
// string comparison gives the canonical case-sensitive ordering, so
// uppercase names sort before lowercase ones.
func SortDepartments(ds []Department) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
}

// SortContacts orders contacts ascending by full name, byte-wise.
func SortContacts(cs []Contact) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].FullName < cs[j].FullName })
}

// CanDeleteDepartment reports whether the department has no contacts left
// referencing it. Store deletes are unconditional; callers enforce this
// guard before deleting.
func CanDeleteDepartment(id DepartmentID, contacts []Contact) bool {
	for _, c := range contacts {
		if c.DepartmentID == id {
			return false
		}
	}
	return true
}
