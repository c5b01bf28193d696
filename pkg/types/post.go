package types

import "time"

// Post is a soft-deletable record stamped by people.
type Post struct {
	ID         string     `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	CreatorID  ActorID    `db:"creator_id" json:"creator_id"`
	ModifierID ActorID    `db:"modifier_id" json:"modifier_id"`
	DeleterID  ActorID    `db:"deleter_id" json:"deleter_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// MarkDeleted records the deletion time.
func (p *Post) MarkDeleted(at time.Time) { p.DeletedAt = &at }

// IsDeleted reports whether the post has been soft-deleted.
func (p *Post) IsDeleted() bool { return p.DeletedAt != nil }

// Comment is a soft-deletable record stamped by people using the
// created_by_id naming convention.
type Comment struct {
	ID          string     `db:"id" json:"id"`
	PostID      string     `db:"post_id" json:"post_id"`
	Comment     string     `db:"comment" json:"comment"`
	CreatedByID ActorID    `db:"created_by_id" json:"created_by_id"`
	UpdatedByID ActorID    `db:"updated_by_id" json:"updated_by_id"`
	DeletedByID ActorID    `db:"deleted_by_id" json:"deleted_by_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// MarkDeleted records the deletion time.
func (c *Comment) MarkDeleted(at time.Time) { c.DeletedAt = &at }

// IsDeleted reports whether the comment has been soft-deleted.
func (c *Comment) IsDeleted() bool { return c.DeletedAt != nil }

// Ping is stamped by people but stores the stamps in string columns.
// It is not soft-deletable.
type Ping struct {
	ID           string    `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	Ping         string    `db:"ping" json:"ping"`
	CreatorName  string    `db:"creator_name" json:"creator_name"`
	ModifierName string    `db:"modifier_name" json:"modifier_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
