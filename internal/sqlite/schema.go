package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/userstamp/internal/schema"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Actor types backed by the standard tables.
const (
	userActor   = "user"
	personActor = "person"
)

// tableDef describes one standard table and how its records are stamped.
// Column names are pinned so that the compatibility flag never renames the
// standard tables.
type tableDef struct {
	name      string
	proto     func() any
	opts      types.TypeOptions
	stampType schema.ColumnType
}

var tableDefs = []tableDef{
	{
		name:  types.UsersTable,
		proto: func() any { return &types.User{} },
		opts:  types.TypeOptions{ActorType: userActor, CreatorAttribute: "creator_id", ModifierAttribute: "modifier_id"},
	},
	{
		name:  types.PeopleTable,
		proto: func() any { return &types.Person{} },
		opts:  types.TypeOptions{ActorType: userActor, CreatorAttribute: "creator_id", ModifierAttribute: "modifier_id"},
	},
	{
		name:  types.PostsTable,
		proto: func() any { return &types.Post{} },
		opts: types.TypeOptions{
			ActorType:         personActor,
			CreatorAttribute:  "creator_id",
			ModifierAttribute: "modifier_id",
			DeleterAttribute:  "deleter_id",
		},
	},
	{
		name:  types.CommentsTable,
		proto: func() any { return &types.Comment{} },
		opts: types.TypeOptions{
			ActorType:         personActor,
			CreatorAttribute:  "created_by_id",
			ModifierAttribute: "updated_by_id",
			DeleterAttribute:  "deleted_by_id",
		},
	},
	{
		name:      types.PingsTable,
		proto:     func() any { return &types.Ping{} },
		opts:      types.TypeOptions{ActorType: personActor, CreatorAttribute: "creator_name", ModifierAttribute: "modifier_name"},
		stampType: schema.Text,
	},
}

// actorTables maps actor types to the tables their finders read.
var actorTables = map[string]string{
	userActor:   types.UsersTable,
	personActor: types.PeopleTable,
}

// createTableSQL renders the CREATE TABLE statement for a standard table.
// Stamp columns come from the migration helper so that they match the
// attribute names the stamper writes.
func createTableSQL(d schema.Dialect, name string, m *mapping, cfg types.TypeConfig, stampType schema.ColumnType) string {
	stamps := schema.Retype(schema.ColumnsFor(cfg, cfg.SoftDelete), stampType)
	stampNames := make(map[string]bool, len(stamps))
	for _, c := range stamps {
		stampNames[c.Name] = true
	}

	var defs []string
	for _, c := range m.cols {
		switch {
		case c == m.id && m.autoID:
			defs = append(defs, c.name+" "+d.AutoIncrement)
		case c == m.id:
			defs = append(defs, c.name+" "+d.SQLType(schema.Text)+" PRIMARY KEY")
		case stampNames[c.name]:
		default:
			defs = append(defs, c.name+" "+d.SQLType(c.columnType()))
		}
	}
	defs = append(defs, schema.Definitions(d, stamps)...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", name, strings.Join(defs, ",\n\t"))
}
