// Package router talks to an OSRM-compatible routing service. The planner
// only sees the Requester interface, so tests stub it and the caching
// decorator wraps it transparently.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"scenicnav/internal/metrics"
	"scenicnav/internal/model"
)

// RouteOptions tunes one routing request.
type RouteOptions struct {
	// Alternatives asks the service for alternative routes. Disabled for
	// waypoint-constrained requests.
	Alternatives bool
}

// Route is one alternative as returned by the routing service.
type Route struct {
	Coordinates [][]float64 // GeoJSON order, lng first
	DurationSec float64
	DistanceM   float64
}

// RouteResponse is the decoded routing result.
type RouteResponse struct {
	Routes []Route
}

// Requester is the external routing capability the planner depends on.
type Requester interface {
	RequestRoute(ctx context.Context, coords []model.GeoPoint, opts RouteOptions) (*RouteResponse, error)
}

// OSRM requests driving routes from an OSRM /route/v1 endpoint. The
// endpoint may carry its own query string (e.g. ?exclude=motorway), which
// is preserved and merged with the standard parameters.
type OSRM struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewOSRM builds a client. rps caps outbound request rate (<= 0 disables
// limiting, e.g. against a local OSRM instance).
func NewOSRM(endpoint string, rps float64) *OSRM {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &OSRM{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  lim,
	}
}

// osrmResponse mirrors the wire format of OSRM's route service with
// geometries=geojson.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// buildURL merges the endpoint's existing query with the request params,
// ensures the /route/v1/driving path is present, and appends the
// lng,lat;lng,lat coordinate list.
func (c *OSRM) buildURL(coords []model.GeoPoint, opts RouteOptions) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	path := strings.TrimRight(u.Path, "/")
	const needed = "/route/v1/driving"
	if !strings.Contains(path, "/route/v1/") {
		path += needed
	}
	parts := make([]string, 0, len(coords))
	for _, p := range coords {
		parts = append(parts, fmt.Sprintf("%f,%f", p.Lng, p.Lat))
	}
	u.Path = path + "/" + strings.Join(parts, ";")

	q := u.Query()
	if opts.Alternatives {
		q.Set("alternatives", "true")
	} else {
		q.Set("alternatives", "false")
	}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RequestRoute performs one routing call. A non-"Ok" service code or an
// empty route list is an error; the caller decides whether that is fatal.
func (c *OSRM) RequestRoute(ctx context.Context, coords []model.GeoPoint, opts RouteOptions) (*RouteResponse, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("need at least 2 coordinates, got %d", len(coords))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	reqURL, err := c.buildURL(coords, opts)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RouterRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		metrics.RouterRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RouterRequests.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("routing service returned %d", resp.StatusCode)
	}
	out, err := decodeResponse(body)
	if err != nil {
		metrics.RouterRequests.WithLabelValues("bad_response").Inc()
		return nil, err
	}
	metrics.RouterRequests.WithLabelValues("ok").Inc()
	return out, nil
}

func decodeResponse(body []byte) (*RouteResponse, error) {
	var raw osrmResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed routing response: %w", err)
	}
	if raw.Code != "" && raw.Code != "Ok" {
		return nil, fmt.Errorf("routing service code %q", raw.Code)
	}
	if len(raw.Routes) == 0 {
		return nil, fmt.Errorf("routing service returned no routes")
	}
	out := &RouteResponse{Routes: make([]Route, 0, len(raw.Routes))}
	for _, r := range raw.Routes {
		out.Routes = append(out.Routes, Route{
			Coordinates: r.Geometry.Coordinates,
			DurationSec: r.Duration,
			DistanceM:   r.Distance,
		})
	}
	return out, nil
}
