package types

// Standard table names for Cupboard.GetTable.
const (
	UsersTable    = "users"
	PeopleTable   = "people"
	PostsTable    = "posts"
	CommentsTable = "comments"
	PingsTable    = "pings"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	UsersTable,
	PeopleTable,
	PostsTable,
	CommentsTable,
	PingsTable,
}
