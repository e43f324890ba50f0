package resource

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache keeps GET responses for as long as their Cache-Control max-age
// allows. Responses without a positive max-age, or marked no-store or
// no-cache, are not stored.
type Cache struct {
	items *ttlcache.Cache[string, *Response]
}

// NewCache creates a cache holding at most maxEntries responses; zero
// means unbounded. Expired entries are dropped lazily on lookup.
func NewCache(maxEntries int) *Cache {
	opts := []ttlcache.Option[string, *Response]{
		ttlcache.WithDisableTouchOnHit[string, *Response](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *Response](uint64(maxEntries)))
	}
	return &Cache{items: ttlcache.New[string, *Response](opts...)}
}

func (c *Cache) Get(url string) (*Response, bool) {
	item := c.items.Get(url)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Store caches resp under url if its headers permit.
func (c *Cache) Store(url string, resp *Response) bool {
	ttl, ok := MaxAge(resp.Header)
	if !ok {
		return false
	}
	c.items.Set(url, resp, ttl)
	return true
}

func (c *Cache) Len() int { return c.items.Len() }

// Hits reports how many lookups were served from the cache.
func (c *Cache) Hits() uint64 { return c.items.Metrics().Hits }

// MaxAge extracts a positive max-age from Cache-Control.
func MaxAge(h http.Header) (time.Duration, bool) {
	var ttl time.Duration
	for _, directive := range strings.Split(h.Get("Cache-Control"), ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		switch {
		case directive == "no-store" || directive == "no-cache":
			return 0, false
		case strings.HasPrefix(directive, "max-age="):
			secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err != nil || secs <= 0 {
				return 0, false
			}
			ttl = time.Duration(secs) * time.Second
		}
	}
	return ttl, ttl > 0
}
