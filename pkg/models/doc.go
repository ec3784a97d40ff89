// Package models defines the domain entities of the contact directory.
//
// The directory holds two collections:
//
//   - [Department]: named grouping unit for contacts
//   - [Contact]: a staff entry with contact details, belonging to exactly
//     one department via [Contact.DepartmentID]
//
// Typed IDs ([DepartmentID], [ContactID]) wrap UUIDs and marshal to
// SurrealDB RecordIDs over CBOR while presenting as plain UUID strings in
// JSON. Timestamps are epoch milliseconds end to end, which is the format
// the store persists.
//
// The package also carries the pure domain rules that every layer shares:
// form and patch validation, the department delete guard
// ([CanDeleteDepartment]), and the canonical byte-wise orderings
// ([SortDepartments], [SortContacts]).
package models
