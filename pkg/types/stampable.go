package types

import (
	"context"
	"time"
)

// Role names one of the three stamp attributes of a record.
type Role string

const (
	RoleCreator  Role = "creator"
	RoleModifier Role = "modifier"
	RoleDeleter  Role = "deleter"
)

// Roles lists the stamp roles in write order.
var Roles = []Role{RoleCreator, RoleModifier, RoleDeleter}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// DefaultActorType is the actor type used when a stampable type does not name one.
const DefaultActorType = "user"

// TypeOptions are the optional per-type overrides accepted at registration.
// Empty fields fall back to the defaults in effect when the type is registered.
type TypeOptions struct {
	ActorType         string `json:"actor_type,omitempty" yaml:"actor_type,omitempty"`
	CreatorAttribute  string `json:"creator_attribute,omitempty" yaml:"creator_attribute,omitempty"`
	ModifierAttribute string `json:"modifier_attribute,omitempty" yaml:"modifier_attribute,omitempty"`
	DeleterAttribute  string `json:"deleter_attribute,omitempty" yaml:"deleter_attribute,omitempty"`
}

// TypeConfig is the effective configuration of a stampable type. It is fixed
// once the type is registered.
type TypeConfig struct {
	Name              string // Normalized type name, e.g. "post".
	ActorType         string // Normalized actor type name, e.g. "person".
	Creator           string
	Modifier          string
	Deleter           string
	CompatibilityMode bool // Compatibility flag in effect at registration.
	SoftDelete        bool // The record type implements SoftDeletable.
}

// Attribute returns the attribute name configured for role.
func (c TypeConfig) Attribute(role Role) string {
	switch role {
	case RoleCreator:
		return c.Creator
	case RoleModifier:
		return c.Modifier
	case RoleDeleter:
		return c.Deleter
	}
	return ""
}

// SoftDeletable is the soft-delete trait a record type either has or lacks.
// Deleting a soft-deletable record marks it instead of removing it.
type SoftDeletable interface {
	MarkDeleted(at time.Time)
	IsDeleted() bool
}

// Finder looks up an actor entity of one actor type by identifier.
type Finder func(ctx context.Context, id ActorID) (any, error)

// Hooks are the lifecycle callbacks a persistence host invokes before it
// writes a record. None of them fail: stamping never blocks a write.
type Hooks interface {
	// BeforeInsert runs before a new record is inserted.
	BeforeInsert(ctx context.Context, record any)

	// BeforeUpdate runs before an existing record is updated.
	BeforeUpdate(ctx context.Context, record any)

	// MarkDeleted runs when a record is deleted. For soft-deletable records it
	// stamps the deleter, marks the record deleted and returns true; the host
	// then performs exactly one update write. It returns false when the host
	// should remove the record physically.
	MarkDeleted(ctx context.Context, record any) bool
}

// Stamper is the registration and hook surface a host needs.
type Stamper interface {
	Hooks

	// Register configures a record type for stamping. proto is a pointer to
	// a zero value of the record struct.
	Register(proto any, opts TypeOptions) (TypeConfig, error)

	// Config returns the effective configuration of a registered type.
	Config(typeName string) (TypeConfig, bool)

	// RegisterActorType makes an actor type resolvable and attaches the
	// finder used by association accessors.
	RegisterActorType(name string, find Finder) error
}
