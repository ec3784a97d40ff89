package models

import (
	"fmt"
	"strings"
)

// ValidationError reports the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func required(fields *[]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		*fields = append(*fields, name)
	}
}

// ValidateDepartmentForm checks the create payload for a department.
// Returns a *ValidationError listing the offending fields, or nil.
func ValidateDepartmentForm(form DepartmentForm) error {
	var fields []string
	required(&fields, "name", form.Name)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateContactForm checks the create payload for a contact. Email format
// is deliberately not checked beyond presence; the directory accepts
// whatever the institution uses.
func ValidateContactForm(form ContactForm) error {
	var fields []string
	required(&fields, "fullName", form.FullName)
	required(&fields, "email", form.Email)
	required(&fields, "extension", form.Extension)
	required(&fields, "location", form.Location)
	if form.DepartmentID.IsZero() {
		fields = append(fields, "departmentId")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateDepartmentPatch rejects updates that would blank required fields.
func ValidateDepartmentPatch(patch DepartmentPatch) error {
	var fields []string
	if patch.Name != nil {
		required(&fields, "name", *patch.Name)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateContactPatch rejects updates that would blank required fields.
// Optional fields may be set to the empty string to clear them.
func ValidateContactPatch(patch ContactPatch) error {
	var fields []string
	if patch.FullName != nil {
		required(&fields, "fullName", *patch.FullName)
	}
	if patch.Email != nil {
		required(&fields, "email", *patch.Email)
	}
	if patch.Extension != nil {
		required(&fields, "extension", *patch.Extension)
	}
	if patch.Location != nil {
		required(&fields, "location", *patch.Location)
	}
	if patch.DepartmentID != nil && patch.DepartmentID.IsZero() {
		fields = append(fields, "departmentId")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
