package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActorID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ActorID
		wantInt bool
	}{
		{name: "decimal becomes integer", input: "7", want: IntID(7), wantInt: true},
		{name: "surrounding space trimmed", input: " 42 ", want: IntID(42), wantInt: true},
		{name: "name stays string", input: "delynn", want: StringID("delynn")},
		{name: "empty is zero", input: "", want: ActorID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseActorID(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantInt, got.IsInt())
		})
	}
}

func TestActorIDInt64(t *testing.T) {
	n, ok := IntID(9).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(9), n)

	n, ok = StringID("12").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, ok = StringID("zeus").Int64()
	assert.False(t, ok)

	_, ok = ActorID{}.Int64()
	assert.False(t, ok)
}

func TestActorIDValueAndScan(t *testing.T) {
	v, err := IntID(3).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = ActorID{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var id ActorID
	require.NoError(t, id.Scan(int64(5)))
	assert.Equal(t, IntID(5), id)

	require.NoError(t, id.Scan([]byte("hera")))
	assert.Equal(t, StringID("hera"), id)

	require.NoError(t, id.Scan(nil))
	assert.True(t, id.IsZero())

	assert.ErrorIs(t, id.Scan(true), ErrInvalidID)

	require.NoError(t, id.Scan(float64(12)))
	assert.Equal(t, IntID(12), id)
	assert.ErrorIs(t, id.Scan(1.5), ErrInvalidID)
	assert.ErrorIs(t, id.Scan(1e19), ErrInvalidID)
	assert.ErrorIs(t, id.Scan(-1e19), ErrInvalidID)
}

func TestActorIDJSON(t *testing.T) {
	type holder struct {
		A ActorID `json:"a"`
		B ActorID `json:"b"`
		C ActorID `json:"c"`
	}
	in := holder{A: IntID(7), B: StringID("nicole")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":"nicole","c":null}`, string(data))

	var out holder
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEntityStampID(t *testing.T) {
	_, ok := (&User{}).StampID()
	assert.False(t, ok, "unsaved user has no stamp id")

	id, ok := (&Person{ID: 2}).StampID()
	assert.True(t, ok)
	assert.Equal(t, IntID(2), id)

	var nilUser *User
	_, ok = nilUser.StampID()
	assert.False(t, ok)
}
