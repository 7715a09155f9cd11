package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scenicnav/internal/config"
	"scenicnav/internal/model"
	"scenicnav/internal/router"
)

type stubStore struct {
	heatmap []model.ScenicPoint
	edges   []model.ScenicPoint
	roads   []model.RoadFeature
	err     error
}

func (s *stubStore) ScenicPoints(context.Context) ([]model.ScenicPoint, error) {
	return s.heatmap, s.err
}
func (s *stubStore) EdgeMidpoints(context.Context) ([]model.ScenicPoint, error) {
	return s.edges, s.err
}
func (s *stubStore) RoadFeatures(context.Context) ([]model.RoadFeature, error) {
	return s.roads, nil
}

type stubRouter struct {
	alternatives []router.Route
	primaryErr   error
	waypointErr  error
	calls        [][]model.GeoPoint
}

func (s *stubRouter) RequestRoute(_ context.Context, coords []model.GeoPoint, _ router.RouteOptions) (*router.RouteResponse, error) {
	s.calls = append(s.calls, coords)
	if len(coords) == 2 {
		if s.primaryErr != nil {
			return nil, s.primaryErr
		}
		return &router.RouteResponse{Routes: s.alternatives}, nil
	}
	if s.waypointErr != nil {
		return nil, s.waypointErr
	}
	// Synthesize a detour through the via point.
	line := [][]float64{}
	for _, c := range coords {
		line = append(line, []float64{c.Lng, c.Lat})
	}
	return &router.RouteResponse{Routes: []router.Route{{Coordinates: line, DurationSec: 900, DistanceM: 11000}}}, nil
}

// line builds a lng-first polyline at constant latitude.
func line(lat, lngFrom, lngTo float64, n int) [][]float64 {
	coords := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		coords = append(coords, []float64{lngFrom + f*(lngTo-lngFrom), lat})
	}
	return coords
}

// pointsAlong drops scenic samples tightly along a constant-latitude line.
func pointsAlong(lat, lngFrom, lngTo float64, score float64) []model.ScenicPoint {
	var pts []model.ScenicPoint
	for lng := lngFrom; lng <= lngTo+1e-9; lng += 0.001 {
		pts = append(pts, model.ScenicPoint{Lat: lat, Lng: lng, Score: score})
	}
	return pts
}

func testDefaults() config.Planner {
	d := config.Default().Planner
	d.WaypointCount = 0
	return d
}

var (
	testOrigin = model.GeoPoint{Lat: 42.5, Lng: -71.1}
	testDest   = model.GeoPoint{Lat: 42.5, Lng: -71.0}
)

func TestPlanRanksScenicDetourFirst(t *testing.T) {
	st := &stubStore{
		heatmap: append(
			pointsAlong(42.52, -71.1, -71.0, 1.0), // along the detour
			pointsAlong(42.5, -71.1, -71.0, 0.0)..., // along the direct route
		),
	}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.52, -71.1, -71.0, 40), DurationSec: 900, DistanceM: 10000},
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.NoScenicScores {
		t.Fatal("expected ranked candidates")
	}
	if resp.ScenicSource != model.SourceHeatmap {
		t.Fatalf("source: %s", resp.ScenicSource)
	}
	if len(resp.Candidates) != 2 {
		t.Fatalf("candidates: %d", len(resp.Candidates))
	}
	scenic, direct := resp.Candidates[0], resp.Candidates[1]
	if scenic.Rank == nil || *scenic.Rank != 1 || !scenic.IsTopPick {
		t.Fatalf("scenic detour should rank first: %+v", scenic)
	}
	if direct.Rank == nil || *direct.Rank != 2 || direct.IsTopPick {
		t.Fatalf("direct route should rank second: %+v", direct)
	}
	// Detour is 1.5x the fastest, inside the 1.7 cap.
	if scenic.DurationRatio == nil || *scenic.DurationRatio != 1.5 {
		t.Fatalf("duration ratio: %v", scenic.DurationRatio)
	}
	if resp.PlanID == "" {
		t.Fatal("missing plan id")
	}
}

func TestPlanWaypointVariants(t *testing.T) {
	heatmap := pointsAlong(42.5, -71.1, -71.0, 0.2)
	// One standout mid-trip point, clear of both endpoints.
	heatmap = append(heatmap, model.ScenicPoint{Lat: 42.53, Lng: -71.05, Score: 1.0})
	st := &stubStore{heatmap: heatmap}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	d := testDefaults()
	d.WaypointCount = 2
	p := New(st, rt, d)

	var events []Event
	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, func(e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var waypointCands []model.RouteCandidate
	for _, c := range resp.Candidates {
		if c.Variant == model.VariantWaypoint {
			waypointCands = append(waypointCands, c)
		}
	}
	if len(waypointCands) == 0 {
		t.Fatal("expected at least one waypoint candidate")
	}
	wp := waypointCands[0].Waypoint
	if wp == nil || wp.Lat != 42.53 || wp.Lng != -71.05 {
		t.Fatalf("waypoint: %+v", wp)
	}
	// Via request carried origin, waypoint, destination.
	var sawVia bool
	for _, call := range rt.calls {
		if len(call) == 3 && call[1].Lat == 42.53 {
			sawVia = true
		}
	}
	if !sawVia {
		t.Fatalf("no via request recorded: %+v", rt.calls)
	}
	// One candidate event per candidate plus a final done event.
	if len(events) != len(resp.Candidates)+1 {
		t.Fatalf("events: %d for %d candidates", len(events), len(resp.Candidates))
	}
	last := events[len(events)-1]
	if last.Type != EventDone || last.Response == nil {
		t.Fatalf("last event: %+v", last)
	}
}

func TestPlanWaypointFailureIsSkipped(t *testing.T) {
	heatmap := pointsAlong(42.5, -71.1, -71.0, 0.2)
	heatmap = append(heatmap, model.ScenicPoint{Lat: 42.53, Lng: -71.05, Score: 1.0})
	st := &stubStore{heatmap: heatmap}
	rt := &stubRouter{
		alternatives: []router.Route{{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200}},
		waypointErr:  errors.New("no route"),
	}
	d := testDefaults()
	d.WaypointCount = 2
	p := New(st, rt, d)

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("waypoint failures must not be fatal: %v", err)
	}
	for _, c := range resp.Candidates {
		if c.Variant == model.VariantWaypoint {
			t.Fatalf("failed waypoint produced a candidate: %+v", c)
		}
	}
}

func TestPlanPrimaryFailureIsFatal(t *testing.T) {
	st := &stubStore{heatmap: pointsAlong(42.5, -71.1, -71.0, 0.5)}
	rt := &stubRouter{primaryErr: errors.New("gateway down")}
	p := New(st, rt, testDefaults())

	_, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if !errors.Is(err, ErrRouting) {
		t.Fatalf("err: %v, want ErrRouting", err)
	}
}

func TestPlanEdgeMidpointFallback(t *testing.T) {
	st := &stubStore{edges: pointsAlong(42.5, -71.1, -71.0, 0.4)}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ScenicSource != model.SourceEdgeMidpoint {
		t.Fatalf("source: %s", resp.ScenicSource)
	}
	if resp.RoadWeighting {
		t.Fatal("edge-midpoint source must not be road weighted")
	}
}

func TestPlanEdgeMidpointMatchesBeyondHeatmapCap(t *testing.T) {
	// One midpoint ~550 m north of the route: past the 250 m heatmap cap,
	// but the sparse fallback source matches the nearest midpoint uncapped.
	st := &stubStore{edges: []model.ScenicPoint{{Lat: 42.505, Lng: -71.05, Score: 0.9}}}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ScenicSource != model.SourceEdgeMidpoint {
		t.Fatalf("source: %s", resp.ScenicSource)
	}
	if resp.NoScenicScores {
		t.Fatal("edge midpoint past the heatmap cap should still score the route")
	}
	c := resp.Candidates[0]
	if c.ScenicEffective == nil || c.SampledPoints == 0 {
		t.Fatalf("candidate unscored: %+v", c)
	}
	if c.Rank == nil || *c.Rank != 1 {
		t.Fatalf("rank: %v", c.Rank)
	}
	if c.ScenicMean == nil || *c.ScenicMean != 0.9 {
		t.Fatalf("mean: %v", c.ScenicMean)
	}
	// Lookups really did travel past the heatmap cap.
	if c.MeanLookupM == nil || *c.MeanLookupM <= 250 {
		t.Fatalf("mean lookup distance: %v", c.MeanLookupM)
	}
}

func TestPlanNoScenicDataIsFatalBeforeRouting(t *testing.T) {
	st := &stubStore{}
	rt := &stubRouter{}
	p := New(st, rt, testDefaults())

	_, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if !errors.Is(err, ErrNoScenicData) {
		t.Fatalf("err: %v, want ErrNoScenicData", err)
	}
	if len(rt.calls) != 0 {
		t.Fatalf("routing called %d times before fatal data check", len(rt.calls))
	}
}

func TestPlanInvalidRequests(t *testing.T) {
	st := &stubStore{heatmap: pointsAlong(42.5, -71.1, -71.0, 0.5)}
	p := New(st, &stubRouter{}, testDefaults())

	cases := map[string]model.PlanRequest{
		"latitude out of range": {Origin: model.GeoPoint{Lat: 99, Lng: 0}, Destination: testDest},
		"identical endpoints":   {Origin: testOrigin, Destination: testOrigin},
	}
	for name, req := range cases {
		if _, err := p.Plan(context.Background(), req, nil); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: err %v, want ErrInvalidRequest", name, err)
		}
	}
}

func TestPlanUnmatchedFieldReportsNoScenicScores(t *testing.T) {
	// Scenic data exists but is nowhere near the routes.
	st := &stubStore{heatmap: pointsAlong(44.0, -71.1, -71.0, 0.9)}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !resp.NoScenicScores {
		t.Fatal("expected NoScenicScores")
	}
	for _, c := range resp.Candidates {
		if c.ScenicEffective != nil || c.Rank != nil || c.IsTopPick {
			t.Fatalf("unmatched candidate must stay unscored: %+v", c)
		}
	}
}

func TestPlanParamOverrides(t *testing.T) {
	st := &stubStore{heatmap: pointsAlong(42.5, -71.1, -71.0, 0.5)}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{
		Origin:      testOrigin,
		Destination: testDest,
		Params:      &model.PlanParams{ScenicWeight: 0.4, MaxDurationRatio: 2.5},
	}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if resp.ScenicWeight != 0.4 || resp.MaxDurationRatio != 2.5 {
		t.Fatalf("overrides lost: %+v", resp)
	}

	if _, err := p.Plan(context.Background(), model.PlanRequest{
		Origin:      testOrigin,
		Destination: testDest,
		Params:      &model.PlanParams{ScenicWeight: 1.5},
	}, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("out-of-range weight: %v", err)
	}
}

func TestCandidateIDsAreDeterministic(t *testing.T) {
	st := &stubStore{heatmap: pointsAlong(42.5, -71.1, -71.0, 0.5)}
	rt := &stubRouter{alternatives: []router.Route{
		{Coordinates: line(42.5, -71.1, -71.0, 40), DurationSec: 600, DistanceM: 8200},
		{Coordinates: line(42.51, -71.1, -71.0, 40), DurationSec: 700, DistanceM: 9000},
	}}
	p := New(st, rt, testDefaults())

	resp, err := p.Plan(context.Background(), model.PlanRequest{Origin: testOrigin, Destination: testDest}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, c := range resp.Candidates {
		want := fmt.Sprintf("%s-%d", c.Variant, i)
		if c.ID != want {
			t.Fatalf("candidate %d id %q, want %q", i, c.ID, want)
		}
	}
}
