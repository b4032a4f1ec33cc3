package mcp

import (
	"strings"

	"github.com/maypok86/otter"
	"github.com/minio/highwayhash"
)

// hashKey seeds the result fingerprint. It only has to be stable within a
// process, it is not a secret.
var hashKey = []byte("minimap-result-cache-key-0000000")

// cacheEntry keeps the fingerprinted payload so a 64-bit collision is
// detected instead of returning another request's result.
type cacheEntry struct {
	payload string
	value   any
}

// resultCache memoises tool results keyed by a highwayhash of the request.
// A nil *resultCache is valid and never hits.
type resultCache struct {
	cache otter.Cache[uint64, cacheEntry]
}

// newResultCache builds a cache holding up to size results. A size of zero
// disables caching and returns nil.
func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := otter.MustBuilder[uint64, cacheEntry](size).Build()
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: cache}, nil
}

// cachePayload joins the request fields with NUL separators. Tool name goes
// first so different tools never share entries.
func cachePayload(tool string, fields ...string) string {
	return tool + "\x00" + strings.Join(fields, "\x00")
}

func fingerprint(payload string) uint64 {
	return highwayhash.Sum64([]byte(payload), hashKey)
}

func (c *resultCache) get(payload string) (any, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.cache.Get(fingerprint(payload))
	if !ok || entry.payload != payload {
		return nil, false
	}
	return entry.value, true
}

func (c *resultCache) set(payload string, value any) {
	if c == nil {
		return
	}
	c.cache.Set(fingerprint(payload), cacheEntry{payload: payload, value: value})
}

func (c *resultCache) close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
