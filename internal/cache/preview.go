package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang/snappy"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	previewKeyPrefix   = "rentaldocs:preview:"
	defaultPreviewTTL  = 10 * time.Minute
	memoryPreviewLimit = 256
)

const (
	flagOverflowBefore byte = 1 << iota
	flagOverflowAfter
	flagCompactApplied
)

var errCorruptEntry = errors.New("corrupt_preview_entry")

// PreviewEntry is a rendered preview with its overflow flags.
type PreviewEntry struct {
	Body           []byte
	OverflowBefore bool
	OverflowAfter  bool
	CompactApplied bool
}

// PreviewCache memoizes previews by content key. Failures are treated as misses.
type PreviewCache interface {
	Get(ctx context.Context, key string) (PreviewEntry, bool)
	Set(ctx context.Context, key string, entry PreviewEntry)
}

// PreviewKey hashes the parts that fully determine a preview.
func PreviewKey(kind, format string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(cacheKey(kind, format)))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

type memoryPreviewCache struct {
	items Cache[string, PreviewEntry]
	ttl   time.Duration
}

func NewMemoryPreviewCache(ttl time.Duration) PreviewCache {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	return &memoryPreviewCache{items: NewTTLCache[string, PreviewEntry](memoryPreviewLimit), ttl: ttl}
}

func (c *memoryPreviewCache) Get(_ context.Context, key string) (PreviewEntry, bool) {
	return c.items.Get(key)
}

func (c *memoryPreviewCache) Set(_ context.Context, key string, entry PreviewEntry) {
	c.items.Set(key, entry, c.ttl)
}

type redisPreviewCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisPreviewCache stores snappy-compressed previews in Redis.
func NewRedisPreviewCache(client *redis.Client, ttl time.Duration, log *zap.Logger) PreviewCache {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &redisPreviewCache{client: client, ttl: ttl, log: log.Named("cache.preview")}
}

func (c *redisPreviewCache) Get(ctx context.Context, key string) (PreviewEntry, bool) {
	raw, err := c.client.Get(ctx, previewKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return PreviewEntry{}, false
	}
	if err != nil {
		c.log.Warn("preview cache get failed", zap.Error(err))
		return PreviewEntry{}, false
	}
	entry, err := decodePreview(raw)
	if err != nil {
		c.log.Warn("preview cache entry dropped", zap.Error(err))
		return PreviewEntry{}, false
	}
	return entry, true
}

func (c *redisPreviewCache) Set(ctx context.Context, key string, entry PreviewEntry) {
	if err := c.client.Set(ctx, previewKeyPrefix+key, encodePreview(entry), c.ttl).Err(); err != nil {
		c.log.Warn("preview cache set failed", zap.Error(err))
	}
}

// encodePreview writes one flag byte followed by the snappy block.
func encodePreview(e PreviewEntry) []byte {
	var flags byte
	if e.OverflowBefore {
		flags |= flagOverflowBefore
	}
	if e.OverflowAfter {
		flags |= flagOverflowAfter
	}
	if e.CompactApplied {
		flags |= flagCompactApplied
	}
	body := snappy.Encode(nil, e.Body)
	out := make([]byte, 0, len(body)+1)
	out = append(out, flags)
	return append(out, body...)
}

func decodePreview(raw []byte) (PreviewEntry, error) {
	if len(raw) < 1 {
		return PreviewEntry{}, errCorruptEntry
	}
	body, err := snappy.Decode(nil, raw[1:])
	if err != nil {
		return PreviewEntry{}, errCorruptEntry
	}
	flags := raw[0]
	return PreviewEntry{
		Body:           body,
		OverflowBefore: flags&flagOverflowBefore != 0,
		OverflowAfter:  flags&flagOverflowAfter != 0,
		CompactApplied: flags&flagCompactApplied != 0,
	}, nil
}
