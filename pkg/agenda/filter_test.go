package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agenda/pkg/models"
)

func testContacts() (models.DepartmentID, models.DepartmentID, []models.Contact) {
	d1 := models.NewDepartmentID()
	d2 := models.NewDepartmentID()
	contacts := []models.Contact{
		{
			ID:           models.NewContactID(),
			FullName:     "Ana Soto",
			Email:        "asoto@x.cl",
			Extension:    "2200",
			Location:     "Edif B",
			DepartmentID: d2,
		},
		{
			ID:           models.NewContactID(),
			FullName:     "Juan Pérez",
			Email:        "jperez@x.cl",
			Extension:    "1234",
			Location:     "Edif A",
			DepartmentID: d1,
		},
	}
	return d1, d2, contacts
}

func names(contacts []models.Contact) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.FullName)
	}
	return out
}

func TestFilterContactsDepartmentAndSubstring(t *testing.T) {
	d1, _, contacts := testContacts()

	// "perez" matches Juan through the email, despite the accent in the
	// full name, and the department filter excludes Ana regardless.
	result := FilterContacts(contacts, &d1, "perez")
	assert.Equal(t, []string{"Juan Pérez"}, names(result))
}

func TestFilterContactsSubstringNotPrefix(t *testing.T) {
	_, _, contacts := testContacts()

	// substring anywhere, not just at word starts
	result := FilterContacts(contacts, nil, "oto")
	assert.Equal(t, []string{"Ana Soto"}, names(result))

	result = FilterContacts(contacts, nil, "érez")
	assert.Equal(t, []string{"Juan Pérez"}, names(result))
}

func TestFilterContactsEmptyQueryIsIdentity(t *testing.T) {
	_, _, contacts := testContacts()

	result := FilterContacts(contacts, nil, "")
	assert.Equal(t, names(contacts), names(result))
}

func TestFilterContactsDepartmentOnly(t *testing.T) {
	_, d2, contacts := testContacts()

	result := FilterContacts(contacts, &d2, "")
	assert.Equal(t, []string{"Ana Soto"}, names(result))
}

func TestFilterContactsPositionOnlyWhenPresent(t *testing.T) {
	_, _, contacts := testContacts()
	contacts[0].Position = "Secretaria"

	result := FilterContacts(contacts, nil, "secretaria")
	assert.Equal(t, []string{"Ana Soto"}, names(result))
}

func TestFilterContactsNoMatch(t *testing.T) {
	_, _, contacts := testContacts()

	result := FilterContacts(contacts, nil, "zzz")
	assert.Empty(t, result)
}

func TestSearchContactsWordPrefix(t *testing.T) {
	_, _, contacts := testContacts()

	// "an" is a prefix of the word "ana" but of no word in "juan pérez"
	result := SearchContacts(contacts, "an")
	assert.Equal(t, []string{"Ana Soto"}, names(result))
}

func TestSearchContactsExtensionWholeStringPrefix(t *testing.T) {
	_, _, contacts := testContacts()

	result := SearchContacts(contacts, "1234")
	assert.Equal(t, []string{"Juan Pérez"}, names(result))

	result = SearchContacts(contacts, "12")
	assert.Equal(t, []string{"Juan Pérez"}, names(result))
}

func TestSearchContactsEmailLocalPart(t *testing.T) {
	_, _, contacts := testContacts()

	result := SearchContacts(contacts, "jper")
	assert.Equal(t, []string{"Juan Pérez"}, names(result))

	// the domain never matches
	result = SearchContacts(contacts, "x.cl")
	assert.Empty(t, result)
}

func TestSearchContactsLocationWord(t *testing.T) {
	_, _, contacts := testContacts()

	result := SearchContacts(contacts, "edif")
	assert.Equal(t, []string{"Ana Soto", "Juan Pérez"}, names(result))

	result = SearchContacts(contacts, "b")
	assert.Equal(t, []string{"Ana Soto"}, names(result))
}

func TestSearchContactsWhitespaceQueryIsIdentity(t *testing.T) {
	_, _, contacts := testContacts()

	result := SearchContacts(contacts, "   ")
	assert.Equal(t, names(contacts), names(result))
}

func TestFiltersPreserveOrderAndInput(t *testing.T) {
	_, _, contacts := testContacts()
	before := names(contacts)

	result := SearchContacts(contacts, "e")
	// both match ("edif ..."), original order preserved
	assert.Equal(t, before, names(result))
	assert.Equal(t, before, names(contacts))
}
