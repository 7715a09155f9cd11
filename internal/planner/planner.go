package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scenicnav/internal/config"
	"scenicnav/internal/metrics"
	"scenicnav/internal/model"
	"scenicnav/internal/router"
	"scenicnav/internal/scenic"
	"scenicnav/internal/store"
)

// Sentinel errors map to HTTP statuses at the API layer.
var (
	ErrInvalidRequest = errors.New("invalid plan request")
	ErrNoScenicData   = errors.New("no scenic data available")
	ErrRouting        = errors.New("routing service failed")
)

// Event is one progress notification pushed while a plan is computed.
type Event struct {
	Type      string                `json:"type"`
	Candidate *model.RouteCandidate `json:"candidate,omitempty"`
	Response  *model.PlanResponse   `json:"response,omitempty"`
}

const (
	EventCandidate = "plan.candidate"
	EventDone      = "plan.done"
)

// Notify receives progress events. May be nil.
type Notify func(Event)

// Planner computes ranked scenic route candidates for one trip.
type Planner struct {
	store    store.Store
	router   router.Requester
	defaults config.Planner
}

func New(st store.Store, rt router.Requester, defaults config.Planner) *Planner {
	return &Planner{store: st, router: rt, defaults: defaults}
}

// effectiveParams merges per-request overrides onto the server defaults.
// Zero-valued request fields keep the default.
func (p *Planner) effectiveParams(req *model.PlanParams) config.Planner {
	eff := p.defaults
	if req == nil {
		return eff
	}
	if req.StepM > 0 {
		eff.StepM = req.StepM
	}
	if req.MaxMatchDistanceM > 0 {
		eff.MaxMatchDistanceM = req.MaxMatchDistanceM
	}
	if req.ScenicWeight > 0 {
		eff.ScenicWeight = req.ScenicWeight
	}
	if req.MaxDurationRatio > 0 {
		eff.MaxDurationRatio = req.MaxDurationRatio
	}
	if req.WaypointCount > 0 {
		eff.WaypointCount = req.WaypointCount
	}
	if req.WaypointRadiusM > 0 {
		eff.WaypointRadiusM = req.WaypointRadiusM
	}
	if req.WaypointMinDistanceM > 0 {
		eff.WaypointMinDistanceM = req.WaypointMinDistanceM
	}
	if req.WaypointMinSeparationM > 0 {
		eff.WaypointMinSeparationM = req.WaypointMinSeparationM
	}
	if req.RoadSampleStepM > 0 {
		eff.RoadSampleStepM = req.RoadSampleStepM
	}
	if req.RoadMaxDistanceM > 0 {
		eff.RoadMaxDistanceM = req.RoadMaxDistanceM
	}
	if req.DeadEndRadiusM > 0 {
		eff.DeadEndRadiusM = req.DeadEndRadiusM
	}
	if req.NoRoadWeighting {
		eff.NoRoadWeighting = true
	}
	if req.NoDeadEndFilter {
		eff.NoDeadEndFilter = true
	}
	return eff
}

func validCoord(p model.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func validateRequest(req model.PlanRequest, eff config.Planner) error {
	if !validCoord(req.Origin) || !validCoord(req.Destination) {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidRequest)
	}
	if req.Origin == req.Destination {
		return fmt.Errorf("%w: origin equals destination", ErrInvalidRequest)
	}
	if eff.StepM <= 0 || eff.MaxMatchDistanceM <= 0 {
		return fmt.Errorf("%w: sampling parameters must be positive", ErrInvalidRequest)
	}
	if eff.ScenicWeight < 0 || eff.ScenicWeight > 1 {
		return fmt.Errorf("%w: scenicWeight must be within [0,1]", ErrInvalidRequest)
	}
	return nil
}

// loadField picks the scenic source: the dense heatmap when present, edge
// midpoints otherwise. No points at all is fatal, checked before any
// routing call is spent.
func (p *Planner) loadField(ctx context.Context, eff config.Planner, features []model.RoadFeature) (*scenic.Field, bool, error) {
	points, err := p.store.ScenicPoints(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load heatmap: %w", err)
	}
	source := model.SourceHeatmap
	if len(points) == 0 {
		points, err = p.store.EdgeMidpoints(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("load edge midpoints: %w", err)
		}
		source = model.SourceEdgeMidpoint
	}
	if len(points) == 0 {
		return nil, false, ErrNoScenicData
	}

	// Road-class weighting applies only to the heatmap source; edge
	// midpoints already live on roads.
	weighted := false
	if source == model.SourceHeatmap && !eff.NoRoadWeighting && len(features) > 0 {
		anchors := scenic.BuildRoadAnchors(features, eff.RoadSampleStepM)
		if len(anchors) > 0 {
			points = scenic.ApplyRoadWeighting(points, anchors, eff.RoadMaxDistanceM, eff.HeatmapCellDeg)
			weighted = true
		}
	}
	return scenic.NewField(points, eff.HeatmapCellDeg, source), weighted, nil
}

// Plan runs the full pipeline: load scenic data, request the direct
// alternatives, detour through selected waypoints, then rank the pool.
// notify (when non-nil) receives one EventCandidate per scored candidate and
// a final EventDone carrying the response.
func (p *Planner) Plan(ctx context.Context, req model.PlanRequest, notify Notify) (*model.PlanResponse, error) {
	start := time.Now()
	defer func() { metrics.PlanDuration.Observe(time.Since(start).Seconds()) }()

	eff := p.effectiveParams(req.Params)
	if err := validateRequest(req, eff); err != nil {
		return nil, err
	}

	features, err := p.store.RoadFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("load road features: %w", err)
	}
	field, weighted, err := p.loadField(ctx, eff, features)
	if err != nil {
		return nil, err
	}

	var deadEnds *scenic.DeadEndIndex
	if !eff.NoDeadEndFilter && len(features) > 0 {
		deadEnds = scenic.NewDeadEndIndex(scenic.BuildDeadEnds(features), eff.DeadEndCellDeg)
	}

	// The direct alternatives anchor the pool; losing them is fatal.
	primary, err := p.router.RequestRoute(ctx, []model.GeoPoint{req.Origin, req.Destination}, router.RouteOptions{Alternatives: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouting, err)
	}

	// The match-distance cap belongs to the dense heatmap; the sparse
	// edge-midpoint fallback matches the nearest midpoint uncapped.
	matchDist := eff.MaxMatchDistanceM
	if field.Source() == model.SourceEdgeMidpoint {
		matchDist = 0
	}

	var pool []model.RouteCandidate
	appendCandidate := func(route router.Route, variant string, wp *model.ScenicPoint) error {
		cand, err := scenic.Evaluate(route.Coordinates, eff.StepM, field, matchDist)
		if err != nil {
			return err
		}
		if cand == nil {
			return nil
		}
		cand.ID = fmt.Sprintf("%s-%d", variant, len(pool))
		cand.Variant = variant
		cand.DurationSec = route.DurationSec
		cand.DistanceM = route.DistanceM
		cand.Waypoint = wp
		pool = append(pool, *cand)
		metrics.PlanCandidates.WithLabelValues(variant, fmt.Sprintf("%t", cand.ScenicEffective != nil)).Inc()
		if notify != nil {
			notify(Event{Type: EventCandidate, Candidate: cand})
		}
		return nil
	}

	for _, route := range primary.Routes {
		if err := appendCandidate(route, model.VariantAlternative, nil); err != nil {
			return nil, err
		}
	}

	waypoints := scenic.SelectWaypoints(field.Points(), req.Origin, req.Destination, scenic.WaypointParams{
		Count:          eff.WaypointCount,
		RadiusM:        eff.WaypointRadiusM,
		MinDistanceM:   eff.WaypointMinDistanceM,
		MinSeparationM: eff.WaypointMinSeparationM,
		DeadEndRadiusM: eff.DeadEndRadiusM,
	}, deadEnds)

	for _, wp := range waypoints {
		via := []model.GeoPoint{req.Origin, {Lat: wp.Lat, Lng: wp.Lng}, req.Destination}
		resp, err := p.router.RequestRoute(ctx, via, router.RouteOptions{})
		if err != nil {
			// A single unroutable waypoint must not sink the plan.
			continue
		}
		if err := appendCandidate(resp.Routes[0], model.VariantWaypoint, &wp); err != nil {
			return nil, err
		}
	}

	ranked := scenic.Rank(pool, scenic.RankParams{
		ScenicWeight:     eff.ScenicWeight,
		MaxDurationRatio: eff.MaxDurationRatio,
	})

	out := &model.PlanResponse{
		PlanID:           uuid.NewString(),
		ScenicSource:     field.Source(),
		RoadWeighting:    weighted,
		ScenicWeight:     eff.ScenicWeight,
		MaxDurationRatio: eff.MaxDurationRatio,
		Candidates:       pool,
		NoScenicScores:   ranked == 0,
	}
	if notify != nil {
		notify(Event{Type: EventDone, Response: out})
	}
	return out, nil
}
