// Package sqlite provides the public API for the stamping persistence
// backend. It exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"github.com/mesh-intelligence/userstamp/internal/sqlite"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// NewBackend creates a backend that runs stamper's hooks before every write.
// A nil stamper gets a fresh one. The backend is not attached; call Attach
// with a Config to initialize.
//
// Example:
//
//	stamper := userstamp.New()
//	backend := sqlite.NewBackend(stamper)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".userstamp",
//	})
//	defer backend.Detach()
func NewBackend(stamper types.Stamper) types.Cupboard {
	return sqlite.NewBackend(stamper)
}
