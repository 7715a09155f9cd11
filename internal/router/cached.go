package router

import (
	"context"
	"encoding/json"
	"math"

	"scenicnav/internal/cache"
	"scenicnav/internal/metrics"
	"scenicnav/internal/model"
)

// Cached memoizes route responses through an injected disk cache.
// Coordinates are rounded to 6 decimals in the key so float jitter does not
// fragment the cache.
type Cached struct {
	next     Requester
	cache    *cache.Disk
	endpoint string
}

// NewCached wraps a Requester. endpoint participates in the key so caches
// survive endpoint changes without serving stale geometry.
func NewCached(next Requester, c *cache.Disk, endpoint string) *Cached {
	return &Cached{next: next, cache: c, endpoint: endpoint}
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

func (c *Cached) key(coords []model.GeoPoint, opts RouteOptions) string {
	rounded := make([][2]float64, 0, len(coords))
	for _, p := range coords {
		rounded = append(rounded, [2]float64{round6(p.Lat), round6(p.Lng)})
	}
	return cache.KeyFromMap(map[string]any{
		"coords":       rounded,
		"endpoint":     c.endpoint,
		"alternatives": opts.Alternatives,
	})
}

// RequestRoute serves through the cache's get-or-create path: a cached
// payload is returned as-is, otherwise the wrapped Requester is called and
// its response stored.
func (c *Cached) RequestRoute(ctx context.Context, coords []model.GeoPoint, opts RouteOptions) (*RouteResponse, error) {
	key := c.key(coords, opts)
	fetched := false
	fetch := func() ([]byte, error) {
		fetched = true
		metrics.RouterCache.WithLabelValues("miss").Inc()
		resp, err := c.next.RequestRoute(ctx, coords, opts)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	}
	raw, err := c.cache.GetOrCreate(key, fetch)
	if err != nil {
		return nil, err
	}
	var resp RouteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Unreadable entry: refetch and overwrite it.
		if raw, err = fetch(); err != nil {
			return nil, err
		}
		_ = c.cache.Save(key, raw)
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
	}
	if !fetched {
		metrics.RouterCache.WithLabelValues("hit").Inc()
	}
	return &resp, nil
}
