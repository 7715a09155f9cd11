// Package scenic reconstructs a continuous scenic surface from discrete
// scored samples and turns route geometries into ranked candidates.
package scenic

import (
	"scenicnav/internal/geo"
	"scenicnav/internal/model"
)

// Field is a read-only scenic score surface: a point cloud plus a grid index
// for nearest-sample lookups. Safe for concurrent reads once built.
type Field struct {
	points []model.ScenicPoint
	grid   *geo.Grid
	source string
}

// NewField indexes the given samples. Source names where the samples came
// from (heatmap vs edge midpoints); road weighting keys off it.
func NewField(points []model.ScenicPoint, cellDeg float64, source string) *Field {
	g := geo.NewGrid(cellDeg)
	for i, p := range points {
		g.Add(p.Lat, p.Lng, i)
	}
	return &Field{points: points, grid: g, source: source}
}

// Source reports which scenic data source backs this field.
func (f *Field) Source() string { return f.source }

// Len reports the number of indexed samples.
func (f *Field) Len() int { return len(f.points) }

// Points exposes the indexed samples, in insertion order. Callers must not
// mutate the returned slice.
func (f *Field) Points() []model.ScenicPoint { return f.points }

// ScoreAt looks up the nearest sample within maxDistM (<= 0 uncapped).
// A miss means "unscored here", which callers must keep distinct from a
// zero score.
func (f *Field) ScoreAt(lat, lng, maxDistM float64) (score, distM float64, ok bool) {
	idx, d, ok := f.grid.Nearest(lat, lng, maxDistM)
	if !ok {
		return 0, 0, false
	}
	return f.points[idx].Score, d, true
}

// RouteStats aggregates scenic lookups along a sampled route.
type RouteStats struct {
	Mean        float64
	Coverage    float64
	Matched     int
	Total       int
	MeanLookupM float64
}

// Stats queries the field at every sample and returns the matched-score
// aggregate, or nil when samples is empty or nothing matched.
func (f *Field) Stats(samples []model.GeoPoint, maxDistM float64) *RouteStats {
	if len(samples) == 0 {
		return nil
	}
	sum := 0.0
	lookupSum := 0.0
	matched := 0
	for _, s := range samples {
		score, d, ok := f.ScoreAt(s.Lat, s.Lng, maxDistM)
		if !ok {
			continue
		}
		sum += score
		lookupSum += d
		matched++
	}
	if matched == 0 {
		return nil
	}
	return &RouteStats{
		Mean:        sum / float64(matched),
		Coverage:    float64(matched) / float64(len(samples)),
		Matched:     matched,
		Total:       len(samples),
		MeanLookupM: lookupSum / float64(matched),
	}
}
