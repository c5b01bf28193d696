package types

import (
	"context"
	"errors"
)

// Filter selects entities in Table.Fetch. Keys are column names, plus the
// reserved keys FilterLimit and FilterWithDeleted.
type Filter map[string]any

// Reserved filter keys.
const (
	FilterLimit       = "limit"
	FilterWithDeleted = "with_deleted"
)

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// New returns a pointer to a zero entity of this table's type.
	New() any

	// Get retrieves the entity with the given ID, including soft-deleted ones.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(ctx context.Context, id string) (any, error)

	// Set creates or updates an entity. When id is empty and the entity has no
	// ID a new one is assigned. Returns the actual ID used.
	Set(ctx context.Context, id string, data any) (string, error)

	// Delete removes the entity with the given ID, or marks it deleted when
	// the entity type is soft-deletable.
	// Returns ErrNotFound if no live entity exists with that ID.
	Delete(ctx context.Context, id string) error

	// Fetch returns all entities matching the filter. Soft-deleted entities
	// are skipped unless FilterWithDeleted is true.
	Fetch(ctx context.Context, filter Filter) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Registration errors.
var (
	ErrInvalidName       = errors.New("invalid name")
	ErrNotStruct         = errors.New("record prototype must be a pointer to a struct")
	ErrAlreadyRegistered = errors.New("type already registered")
	ErrTypeNotRegistered = errors.New("type not registered")
	ErrInvalidRole       = errors.New("invalid stamp role")
)
