package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDismissedSet_AddRemove(t *testing.T) {
	d := NewDismissedSet()
	assert.True(t, d.Add("a"))
	assert.False(t, d.Add("a"))
	assert.True(t, d.Add("b"))
	assert.True(t, d.Has("a"))

	assert.True(t, d.Remove([]string{"a"}))
	assert.False(t, d.Has("a"))
	assert.True(t, d.Has("b"))
	assert.Equal(t, 1, d.Len())

	// Removing absent ids changes nothing.
	assert.False(t, d.Remove([]string{"a", "zzz"}))
}

func TestDismissedSet_RoundTrip(t *testing.T) {
	d := NewDismissedSet()
	d.Add("a")
	d.Add("b")

	encoded, err := d.Encode()
	require.NoError(t, err)

	decoded := DecodeDismissedSet(encoded)
	assert.True(t, decoded.Has("a"))
	assert.True(t, decoded.Has("b"))
	assert.Equal(t, 2, decoded.Len())
}

func TestDecodeDismissedSet_MalformedIsEmpty(t *testing.T) {
	assert.Equal(t, 0, DecodeDismissedSet("{oops").Len())
	assert.Equal(t, 0, DecodeDismissedSet("").Len())
}
