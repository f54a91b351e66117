package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int](0).(*ttlCache[string, int])
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheEvictsClosestToExpiry(t *testing.T) {
	c := NewTTLCache[string, int](2)
	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	c.Set("new", 3, time.Hour)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestPreviewEncodingRoundTrip(t *testing.T) {
	entry := PreviewEntry{Body: []byte("<html>aperçu</html>"), OverflowBefore: true, CompactApplied: true}

	decoded, err := decodePreview(encodePreview(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)

	_, err = decodePreview(nil)
	assert.ErrorIs(t, err, errCorruptEntry)
	_, err = decodePreview([]byte{0, 0xff, 0xff})
	assert.ErrorIs(t, err, errCorruptEntry)
}

func TestPreviewKey(t *testing.T) {
	a := PreviewKey("contract", "html", []byte(`{"n":1}`))
	assert.Equal(t, a, PreviewKey("Contract", "HTML", []byte(`{"n":1}`)))
	assert.NotEqual(t, a, PreviewKey("invoice", "html", []byte(`{"n":1}`)))
	assert.NotEqual(t, a, PreviewKey("contract", "pdf", []byte(`{"n":1}`)))
}

func TestMemoryPreviewCache(t *testing.T) {
	c := NewMemoryPreviewCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	c.Set(ctx, "k", PreviewEntry{Body: []byte("x"), OverflowAfter: true})
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.True(t, got.OverflowAfter)
}
