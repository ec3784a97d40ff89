package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateDepartmentForm(t *testing.T) {
	assert.NoError(t, ValidateDepartmentForm(DepartmentForm{Name: "Rectoría"}))

	err := ValidateDepartmentForm(DepartmentForm{Name: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name"}, verr.Fields)
}

func TestValidateContactForm(t *testing.T) {
	valid := ContactForm{
		FullName:     "Ana Soto",
		Email:        "asoto@x.cl",
		Extension:    "2200",
		Location:     "Edif B",
		DepartmentID: NewDepartmentID(),
	}
	assert.NoError(t, ValidateContactForm(valid))

	// optional fields never participate
	valid.Position = ""
	valid.Phone = ""
	valid.Schedule = ""
	assert.NoError(t, ValidateContactForm(valid))

	err := ValidateContactForm(ContactForm{Email: "asoto@x.cl"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"fullName", "extension", "location", "departmentId"}, verr.Fields)
}

func TestValidateContactPatch(t *testing.T) {
	assert.NoError(t, ValidateContactPatch(ContactPatch{}))
	assert.NoError(t, ValidateContactPatch(ContactPatch{FullName: strPtr("Ana Soto")}))

	// clearing an optional field is allowed
	assert.NoError(t, ValidateContactPatch(ContactPatch{Phone: strPtr("")}))

	// blanking a required field is not
	err := ValidateContactPatch(ContactPatch{FullName: strPtr(" "), Extension: strPtr("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"fullName", "extension"}, verr.Fields)

	var zero DepartmentID
	err = ValidateContactPatch(ContactPatch{DepartmentID: &zero})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"departmentId"}, verr.Fields)
}

func TestContactPatchFieldsAndApply(t *testing.T) {
	dept := NewDepartmentID()
	patch := ContactPatch{
		FullName:     strPtr("Ana Soto"),
		DepartmentID: &dept,
		Phone:        strPtr(""),
	}

	fields := patch.Fields()
	assert.Equal(t, map[string]any{
		"fullName":     "Ana Soto",
		"departmentId": dept,
		"phone":        "",
	}, fields)

	created := NowMillis() - 60_000
	contact := Contact{
		FullName:  "Ana S.",
		Email:     "asoto@x.cl",
		Phone:     "123",
		CreatedAt: created,
		UpdatedAt: created,
	}
	patch.Apply(&contact)
	assert.Equal(t, "Ana Soto", contact.FullName)
	assert.Equal(t, "asoto@x.cl", contact.Email)
	assert.Empty(t, contact.Phone)
	assert.Equal(t, created, contact.CreatedAt)
	assert.Greater(t, contact.UpdatedAt, created)

	// an empty patch still bumps the timestamp
	bumped := contact.UpdatedAt
	contact.UpdatedAt = created
	ContactPatch{}.Apply(&contact)
	assert.GreaterOrEqual(t, contact.UpdatedAt, bumped)
}

func TestSortIsCaseSensitive(t *testing.T) {
	ds := []Department{{Name: "biblioteca"}, {Name: "Zona Sur"}, {Name: "Admisión"}}
	SortDepartments(ds)
	assert.Equal(t, "Admisión", ds[0].Name)
	assert.Equal(t, "Zona Sur", ds[1].Name)
	assert.Equal(t, "biblioteca", ds[2].Name)

	cs := []Contact{{FullName: "ana"}, {FullName: "Zoe"}}
	SortContacts(cs)
	assert.Equal(t, "Zoe", cs[0].FullName)
	assert.Equal(t, "ana", cs[1].FullName)
}

func TestCanDeleteDepartment(t *testing.T) {
	d1 := NewDepartmentID()
	d2 := NewDepartmentID()
	contacts := []Contact{{DepartmentID: d1}}

	assert.False(t, CanDeleteDepartment(d1, contacts))
	assert.True(t, CanDeleteDepartment(d2, contacts))
	assert.True(t, CanDeleteDepartment(d1, nil))
}
