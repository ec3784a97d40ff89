package agenda

import (
	"strings"

	"agenda/pkg/models"
)

// The two filter modes serve different audiences. FilterContacts is the
// browsing filter of the admin and staff views: department narrowing plus
// substring search. SearchContacts is the reception lookup: prefix search
// tuned for answering calls ("transfer me to Mar..." or an extension).
// Both are pure; the input slice is never mutated or reordered.

// FilterContacts keeps contacts that belong to departmentID (when non-nil)
// and, when query is non-empty, contain it case-insensitively in the full
// name, email, location or position. Both conditions must hold.
func FilterContacts(contacts []models.Contact, departmentID *models.DepartmentID, query string) []models.Contact {
	q := strings.ToLower(query)

	result := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if departmentID != nil && c.DepartmentID != *departmentID {
			continue
		}
		if q != "" && !containsQuery(c, q) {
			continue
		}
		result = append(result, c)
	}
	return result
}

func containsQuery(c models.Contact, q string) bool {
	if strings.Contains(strings.ToLower(c.FullName), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Location), q) {
		return true
	}
	return c.Position != "" && strings.Contains(strings.ToLower(c.Position), q)
}

// SearchContacts is the reception lookup. The query is trimmed and
// case-folded; an empty query returns every contact. A contact matches
// when the query is a prefix of any word of the full name, location or
// position, a prefix of the email local part (before the @), or a prefix
// of the whole extension.
func SearchContacts(contacts []models.Contact, query string) []models.Contact {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if q == "" || matchesLookup(c, q) {
			result = append(result, c)
		}
	}
	return result
}

func matchesLookup(c models.Contact, q string) bool {
	if wordHasPrefix(c.FullName, q) || wordHasPrefix(c.Location, q) {
		return true
	}
	if c.Position != "" && wordHasPrefix(c.Position, q) {
		return true
	}
	local, _, _ := strings.Cut(c.Email, "@")
	if wordHasPrefix(local, q) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Extension), q)
}

// wordHasPrefix reports whether any whitespace-separated word of s starts
// with the already-lowercased prefix q.
func wordHasPrefix(s, q string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if strings.HasPrefix(w, q) {
			return true
		}
	}
	return false
}
