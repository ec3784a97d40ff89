package models

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DepartmentID is a typed ID for departments
type DepartmentID struct {
	uuid uuid.UUID
}

func NewDepartmentID() DepartmentID {
	return DepartmentID{uuid: uuid.New()}
}

func NewDepartmentIDFromUUID(id uuid.UUID) DepartmentID {
	return DepartmentID{uuid: id}
}

func ParseDepartmentID(s string) (DepartmentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return DepartmentID{}, fmt.Errorf("invalid department ID: %w", err)
	}
	return DepartmentID{uuid: id}, nil
}

func (d DepartmentID) UUID() uuid.UUID { return d.uuid }
func (d DepartmentID) String() string  { return d.uuid.String() }
func (d DepartmentID) IsZero() bool    { return d.uuid == uuid.Nil }

func (d DepartmentID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "departments",
		ID:    d.uuid.String(),
	}
}

func (d DepartmentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.uuid.String())
}

func (d *DepartmentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	d.uuid = id
	return nil
}

func (d DepartmentID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"departments", d.uuid.String()},
	})
}

func (d *DepartmentID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "departments", &d.uuid)
}

// ContactID is a typed ID for contacts
type ContactID struct {
	uuid uuid.UUID
}

func NewContactID() ContactID {
	return ContactID{uuid: uuid.New()}
}

func NewContactIDFromUUID(id uuid.UUID) ContactID {
	return ContactID{uuid: id}
}

func ParseContactID(s string) (ContactID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ContactID{}, fmt.Errorf("invalid contact ID: %w", err)
	}
	return ContactID{uuid: id}, nil
}

func (c ContactID) UUID() uuid.UUID { return c.uuid }
func (c ContactID) String() string  { return c.uuid.String() }
func (c ContactID) IsZero() bool    { return c.uuid == uuid.Nil }

func (c ContactID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "contacts",
		ID:    c.uuid.String(),
	}
}

func (c ContactID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *ContactID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	c.uuid = id
	return nil
}

func (c ContactID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"contacts", c.uuid.String()},
	})
}

func (c *ContactID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "contacts", &c.uuid)
}

// unmarshalCBORID is a helper for unmarshaling SurrealDB RecordID from CBOR.
// SurrealDB uses CBOR tag 8 to identify RecordID types in its binary protocol.
// The RecordID is encoded as [table_name, id_string] within the tag.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// Check if this is a CBOR tag (major type 6)
	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	// SurrealDB uses tag 8 for RecordID
	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
