package store

import (
	"context"

	"scenicnav/internal/model"
)

// Store loads the read-only scenic datasets for the planner. Implementations
// are selected at startup (GeoJSON files by default, Postgres when
// DATABASE_URL is set) and must be safe for concurrent reads.
type Store interface {
	// ScenicPoints returns the dense heatmap samples, the preferred
	// scenic source. An empty slice is not an error; the planner falls
	// back to edge midpoints.
	ScenicPoints(ctx context.Context) ([]model.ScenicPoint, error)

	// EdgeMidpoints returns one scored point per road edge (the midpoint
	// of its geometry), the fallback scenic source.
	EdgeMidpoints(ctx context.Context) ([]model.ScenicPoint, error)

	// RoadFeatures returns classified road geometries for weighting and
	// dead-end detection. Empty when no road dataset was provided.
	RoadFeatures(ctx context.Context) ([]model.RoadFeature, error)
}

// midpointOf picks the middle vertex of a polyline, the same cheap midpoint
// the edge-score fallback has always used.
func midpointOf(coords [][]float64) (lat, lng float64, ok bool) {
	if len(coords) == 0 {
		return 0, 0, false
	}
	mid := coords[len(coords)/2]
	if len(mid) < 2 {
		return 0, 0, false
	}
	return mid[1], mid[0], true
}
