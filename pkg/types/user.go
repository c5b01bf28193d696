package types

import "time"

// User is an actor that is itself stamped by other users.
type User struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CreatorID  ActorID   `db:"creator_id" json:"creator_id"`
	ModifierID ActorID   `db:"modifier_id" json:"modifier_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StampID returns the user's identifier once it has been persisted.
func (u *User) StampID() (ActorID, bool) {
	if u == nil || u.ID == 0 {
		return ActorID{}, false
	}
	return IntID(u.ID), true
}

// Person is an actor stamped by users. People in turn stamp posts,
// comments and pings.
type Person struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CreatorID  ActorID   `db:"creator_id" json:"creator_id"`
	ModifierID ActorID   `db:"modifier_id" json:"modifier_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StampID returns the person's identifier once it has been persisted.
func (p *Person) StampID() (ActorID, bool) {
	if p == nil || p.ID == 0 {
		return ActorID{}, false
	}
	return IntID(p.ID), true
}
