package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type idKind uint8

const (
	idNone idKind = iota
	idInt
	idString
)

// ActorID identifies the actor responsible for a lifecycle event. It holds
// either an integer or a string; the zero value means "no actor".
// ActorID is comparable, so two identifiers can be checked with ==.
type ActorID struct {
	kind idKind
	n    int64
	s    string
}

// IntID returns an integer actor identifier.
func IntID(n int64) ActorID {
	return ActorID{kind: idInt, n: n}
}

// StringID returns a string actor identifier. An empty string yields the zero ActorID.
func StringID(s string) ActorID {
	if s == "" {
		return ActorID{}
	}
	return ActorID{kind: idString, s: s}
}

// ParseActorID turns user input into an ActorID. Decimal integers become
// integer identifiers; anything else is kept as a string.
func ParseActorID(s string) ActorID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntID(n)
	}
	return StringID(s)
}

// IsZero reports whether no identifier is held.
func (a ActorID) IsZero() bool { return a.kind == idNone }

// IsInt reports whether the identifier was created as an integer.
func (a ActorID) IsInt() bool { return a.kind == idInt }

// Int64 returns the identifier as an integer. String identifiers are parsed;
// ok is false when the identifier is zero or not a decimal integer.
func (a ActorID) Int64() (n int64, ok bool) {
	switch a.kind {
	case idInt:
		return a.n, true
	case idString:
		n, err := strconv.ParseInt(a.s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// String returns the decimal or string form, or "" for the zero ActorID.
func (a ActorID) String() string {
	switch a.kind {
	case idInt:
		return strconv.FormatInt(a.n, 10)
	case idString:
		return a.s
	}
	return ""
}

// Value implements driver.Valuer. The zero ActorID is stored as NULL.
func (a ActorID) Value() (driver.Value, error) {
	switch a.kind {
	case idInt:
		return a.n, nil
	case idString:
		return a.s, nil
	}
	return nil, nil
}

// Scan implements sql.Scanner.
func (a *ActorID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ActorID{}
	case int64:
		*a = IntID(v)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return fmt.Errorf("scanning actor id %v: %w", v, ErrInvalidID)
		}
		*a = IntID(int64(v))
	case []byte:
		*a = StringID(string(v))
	case string:
		*a = StringID(v)
	default:
		return fmt.Errorf("scanning actor id of type %T: %w", src, ErrInvalidID)
	}
	return nil
}

// MarshalJSON encodes integer identifiers as numbers, string identifiers as
// strings and the zero ActorID as null.
func (a ActorID) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case idInt:
		return []byte(strconv.FormatInt(a.n, 10)), nil
	case idString:
		return json.Marshal(a.s)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a number, a string or null.
func (a *ActorID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = ActorID{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*a = StringID(str)
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("decoding actor id %s: %w", s, ErrInvalidID)
	}
	*a = IntID(n)
	return nil
}

// Actor is implemented by entities that can be bound as the current actor.
// StampID returns false while the entity has no identifier yet, for example
// before it is first persisted.
type Actor interface {
	StampID() (ActorID, bool)
}
