package stamping

import "github.com/mesh-intelligence/userstamp/pkg/types"

// Default attribute names.
const (
	CreatorColumn  = "creator_id"
	ModifierColumn = "modifier_id"
	DeleterColumn  = "deleter_id"

	CompatCreatorColumn  = "created_by_id"
	CompatModifierColumn = "updated_by_id"
	CompatDeleterColumn  = "deleted_by_id"
)

// DefaultColumns returns the creator, modifier and deleter attribute names
// used when a type does not override them.
func DefaultColumns(compat bool) (creator, modifier, deleter string) {
	if compat {
		return CompatCreatorColumn, CompatModifierColumn, CompatDeleterColumn
	}
	return CreatorColumn, ModifierColumn, DeleterColumn
}

// Resolve merges opts over the defaults selected by compat and returns the
// effective configuration for typeName. It is a pure function: equal inputs
// give equal outputs. SoftDelete is left for the caller to fill in.
func Resolve(typeName string, opts types.TypeOptions, compat bool) types.TypeConfig {
	creator, modifier, deleter := DefaultColumns(compat)
	cfg := types.TypeConfig{
		ActorType:         types.DefaultActorType,
		Creator:           creator,
		Modifier:          modifier,
		Deleter:           deleter,
		CompatibilityMode: compat,
	}
	if name, ok := normalizeName(typeName); ok {
		cfg.Name = name
	}
	if at, ok := normalizeName(opts.ActorType); ok {
		cfg.ActorType = at
	}
	if opts.CreatorAttribute != "" {
		cfg.Creator = opts.CreatorAttribute
	}
	if opts.ModifierAttribute != "" {
		cfg.Modifier = opts.ModifierAttribute
	}
	if opts.DeleterAttribute != "" {
		cfg.Deleter = opts.DeleterAttribute
	}
	return cfg
}
