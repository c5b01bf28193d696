// Package types defines the public contracts of the userstamp system: actor
// identifiers, stampable type configuration, the lifecycle hooks a persistence
// host calls, the Cupboard and Table storage interfaces, the built-in entity
// types, and the standard error values.
package types
