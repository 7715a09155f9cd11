package model

// Core domain records for scenic route planning.

// GeoPoint is a WGS84 coordinate in decimal degrees. No projection is
// performed anywhere in the module; distances use a spherical approximation.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScenicPoint is one sample of the scenic score field.
type ScenicPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Score float64 `json:"score"`
}

// RoadAnchor is a densified sample along a classified road. Weight is the
// multiplicative factor applied to scenic scores near this anchor.
type RoadAnchor struct {
	Lat    float64
	Lng    float64
	Weight float64
	Class  string
}

// RoadFeature is a road geometry with its OSM highway classification.
// Coordinates are in GeoJSON order (lng first).
type RoadFeature struct {
	Highway     string
	Coordinates [][]float64
}

// Route variant tags.
const (
	VariantAlternative = "alternative" // direct origin→destination alternative
	VariantWaypoint    = "waypoint"    // forced through a scenic waypoint
)

// RouteCandidate is one scored route. Scenic fields are pointers because
// "no data" is distinct from a zero score; a candidate without an effective
// score is kept in output but never ranked.
type RouteCandidate struct {
	ID              string       `json:"id"`
	Variant         string       `json:"variant"`
	Geometry        []GeoPoint   `json:"geometry"`
	DurationSec     float64      `json:"durationSec"`
	DistanceM       float64      `json:"distanceM"`
	ScenicMean      *float64     `json:"scenicMean"`
	ScenicCoverage  float64      `json:"scenicCoverage"`
	ScenicEffective *float64     `json:"scenicEffectiveScore"`
	SampledPoints   int          `json:"scenicSampledPoints"`
	TotalSamples    int          `json:"scenicTotalSamples"`
	MeanLookupM     *float64     `json:"scenicAvgLookupDistanceM"`
	ScenicNorm      *float64     `json:"scenicNorm"`
	DurationNorm    *float64     `json:"durationNorm"`
	DurationRatio   *float64     `json:"durationRatio"`
	Combined        *float64     `json:"combinedScore"`
	Rank            *int         `json:"rank"`
	IsTopPick       bool         `json:"isTopPick"`
	Waypoint        *ScenicPoint `json:"waypoint,omitempty"`
}

// PlanRequest is the caller-facing request for one scenic plan. Zero-valued
// tunables fall back to the server defaults.
type PlanRequest struct {
	Origin      GeoPoint    `json:"origin"`
	Destination GeoPoint    `json:"destination"`
	Params      *PlanParams `json:"params,omitempty"`
}

// PlanParams are the per-plan tunables.
type PlanParams struct {
	StepM                  float64 `json:"stepM,omitempty"`
	MaxMatchDistanceM      float64 `json:"maxMatchDistanceM,omitempty"`
	ScenicWeight           float64 `json:"scenicWeight,omitempty"`
	MaxDurationRatio       float64 `json:"maxDurationRatio,omitempty"`
	WaypointCount          int     `json:"waypointCount,omitempty"`
	WaypointRadiusM        float64 `json:"waypointRadiusM,omitempty"`
	WaypointMinDistanceM   float64 `json:"waypointMinDistanceM,omitempty"`
	WaypointMinSeparationM float64 `json:"waypointMinSeparationM,omitempty"`
	RoadSampleStepM        float64 `json:"roadSampleStepM,omitempty"`
	RoadMaxDistanceM       float64 `json:"roadMaxDistanceM,omitempty"`
	DeadEndRadiusM         float64 `json:"deadEndRadiusM,omitempty"`
	NoRoadWeighting        bool    `json:"noRoadWeighting,omitempty"`
	NoDeadEndFilter        bool    `json:"noDeadEndFilter,omitempty"`
}

// PlanResponse is the ranked candidate pool for one request.
type PlanResponse struct {
	PlanID           string           `json:"planId"`
	ScenicSource     string           `json:"scenicSource"`
	RoadWeighting    bool             `json:"roadWeighting"`
	ScenicWeight     float64          `json:"scenicWeight"`
	MaxDurationRatio float64          `json:"maxDurationRatio"`
	Candidates       []RouteCandidate `json:"candidates"`
	// NoScenicScores is set when no candidate could be ranked; the caller
	// must not treat any candidate as a best pick in that case.
	NoScenicScores bool `json:"noScenicScores"`
}

// Scenic data sources. Road-class weighting only applies to the heatmap
// source; the edge-midpoint fallback stays unweighted.
const (
	SourceHeatmap      = "heatmap"
	SourceEdgeMidpoint = "edge_midpoints"
)
