package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseFlexTime(t *testing.T) {
	want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-03-04", "2025-03-04T00:00:00Z", "2025-03-04 00:00:00", " 2025-03-04T00:00:00 "} {
		got := ParseFlexTime(in)
		assert.True(t, got.Valid, "input %q", in)
		assert.True(t, want.Equal(got.Time), "input %q: got %v", in, got.Time)
	}
	assert.False(t, ParseFlexTime("04/03/2025").Valid)
	assert.False(t, ParseFlexTime("").Valid)
}

func TestFlexTimeInvalidSortsAsEpoch(t *testing.T) {
	assert.Equal(t, int64(0), FlexTime{}.UnixMilli())
	assert.Equal(t, int64(0), ParseFlexTime("not a date").UnixMilli())
}

func TestFlexTimeJSON(t *testing.T) {
	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-31"`), &ft))
	assert.True(t, ft.Valid)

	out, err := json.Marshal(ft)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-12-31T00:00:00Z"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`1700000000000`), &ft))
	assert.Equal(t, int64(1700000000000), ft.UnixMilli())

	require.NoError(t, json.Unmarshal([]byte(`null`), &ft))
	assert.False(t, ft.Valid)
	out, err = json.Marshal(ft)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	require.NoError(t, json.Unmarshal([]byte(`"garbage"`), &ft))
	assert.False(t, ft.Valid)
}

func TestFlexTimeBSON(t *testing.T) {
	type doc struct {
		At FlexTime `bson:"at"`
	}
	at := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	raw, err := bson.Marshal(doc{At: NewFlexTime(at)})
	require.NoError(t, err)
	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.At.Valid)
	assert.True(t, at.Equal(out.At.Time))

	raw, err = bson.Marshal(bson.M{"at": "2025-01-15"})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC).Equal(out.At.Time))

	raw, err = bson.Marshal(doc{})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.False(t, out.At.Valid)
}
