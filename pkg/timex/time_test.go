package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_JSONRoundTrip(t *testing.T) {
	at := Time(time.Date(2024, 3, 9, 8, 7, 6, 5_000_000, time.UTC))

	raw, err := json.Marshal(at)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09T08:07:06.005Z"`, string(raw))

	var back Time
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, at.Time().Equal(back.Time()))

	var zero Time
	raw, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.True(t, back.IsZero())
}

func TestTime_Scan(t *testing.T) {
	var got Time
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, got.Scan(now))
	assert.Equal(t, now.UnixMilli(), got.UnixMilli())

	require.NoError(t, got.Scan([]byte("2024-01-01 12:00:00")))
	assert.Equal(t, 2024, got.Time().Year())

	require.NoError(t, got.Scan(nil))
	assert.True(t, got.IsZero())

	assert.Error(t, got.Scan(42))
	assert.Error(t, got.Scan("yesterday"))

	v, err := Time{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNow_TruncatedToMillis(t *testing.T) {
	n := Now()
	assert.Zero(t, n.UnixNano()%int64(time.Millisecond))
}
