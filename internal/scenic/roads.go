package scenic

import (
	"math"
	"strings"

	"scenicnav/internal/geo"
	"scenicnav/internal/model"
)

// roadClassWeights biases scenic scores by the road class a sample sits on.
// Fast roads score down, quiet tracks score up. Unknown classes are neutral.
var roadClassWeights = map[string]float64{
	"motorway":      0.55,
	"trunk":         0.65,
	"primary":       0.75,
	"secondary":     0.85,
	"tertiary":      0.95,
	"unclassified":  0.9,
	"residential":   0.75,
	"living_street": 0.7,
	"service":       0.65,
	"track":         1.05,
}

const defaultRoadWeight = 1.0

// NormalizeHighwayTag reduces compound tags like "residential_link" to their
// base class when the base is known; anything else passes through unchanged.
func NormalizeHighwayTag(tag string) string {
	if tag == "" {
		return ""
	}
	if i := strings.Index(tag, "_"); i > 0 {
		base := tag[:i]
		if _, ok := roadClassWeights[base]; ok {
			return base
		}
	}
	return tag
}

// RoadClassWeight returns the multiplicative weight for a normalized class.
func RoadClassWeight(class string) float64 {
	if w, ok := roadClassWeights[class]; ok {
		return w
	}
	return defaultRoadWeight
}

// BuildRoadAnchors samples every classified road at stepM and emits one
// weighted anchor per sample. A non-positive step collapses each road to a
// single anchor at its first vertex.
func BuildRoadAnchors(features []model.RoadFeature, stepM float64) []model.RoadAnchor {
	var anchors []model.RoadAnchor
	for _, feat := range features {
		class := NormalizeHighwayTag(feat.Highway)
		if class == "" {
			continue
		}
		weight := RoadClassWeight(class)
		if len(feat.Coordinates) == 0 {
			continue
		}
		var points []model.GeoPoint
		if stepM > 0 {
			pts, err := geo.Densify(feat.Coordinates, stepM)
			if err != nil {
				continue
			}
			points = pts
		} else {
			points = []model.GeoPoint{{Lat: feat.Coordinates[0][1], Lng: feat.Coordinates[0][0]}}
		}
		for _, p := range points {
			anchors = append(anchors, model.RoadAnchor{Lat: p.Lat, Lng: p.Lng, Weight: weight, Class: class})
		}
	}
	return anchors
}

// ApplyRoadWeighting multiplies each scenic point's score by the weight of
// its nearest anchor within maxDistM. Points with no nearby anchor keep
// their score; missing road data must never zero out a sample.
func ApplyRoadWeighting(points []model.ScenicPoint, anchors []model.RoadAnchor, maxDistM, cellDeg float64) []model.ScenicPoint {
	if len(anchors) == 0 {
		return points
	}
	grid := geo.NewGrid(cellDeg)
	for i, a := range anchors {
		grid.Add(a.Lat, a.Lng, i)
	}
	weighted := make([]model.ScenicPoint, 0, len(points))
	for _, p := range points {
		idx, _, ok := grid.Nearest(p.Lat, p.Lng, maxDistM)
		if !ok {
			weighted = append(weighted, p)
			continue
		}
		weighted = append(weighted, model.ScenicPoint{
			Lat:   p.Lat,
			Lng:   p.Lng,
			Score: p.Score * anchors[idx].Weight,
		})
	}
	return weighted
}

// roundCoord snaps a degree value to 6 decimals (~0.11 m), so endpoints
// shared between features hash to the same key.
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// BuildDeadEnds finds road endpoints touched by exactly one segment in the
// undirected endpoint multigraph: the places a detour waypoint must avoid.
func BuildDeadEnds(features []model.RoadFeature) []model.GeoPoint {
	type key struct{ lat, lng float64 }
	counts := map[key]int{}
	for _, feat := range features {
		if len(feat.Coordinates) < 2 {
			continue
		}
		start := feat.Coordinates[0]
		end := feat.Coordinates[len(feat.Coordinates)-1]
		counts[key{roundCoord(start[1]), roundCoord(start[0])}]++
		counts[key{roundCoord(end[1]), roundCoord(end[0])}]++
	}
	var deadEnds []model.GeoPoint
	for k, n := range counts {
		if n == 1 {
			deadEnds = append(deadEnds, model.GeoPoint{Lat: k.lat, Lng: k.lng})
		}
	}
	return deadEnds
}

// DeadEndIndex answers "is there a dead end near here" queries.
type DeadEndIndex struct {
	grid *geo.Grid
}

// NewDeadEndIndex builds the exclusion index; nil-safe to query when no
// road data was available.
func NewDeadEndIndex(deadEnds []model.GeoPoint, cellDeg float64) *DeadEndIndex {
	g := geo.NewGrid(cellDeg)
	for i, p := range deadEnds {
		g.Add(p.Lat, p.Lng, i)
	}
	return &DeadEndIndex{grid: g}
}

// Near reports whether any dead end lies within radiusM. A radius of 0
// disables the filter entirely.
func (d *DeadEndIndex) Near(lat, lng, radiusM float64) bool {
	if d == nil || radiusM <= 0 {
		return false
	}
	_, _, ok := d.grid.Nearest(lat, lng, radiusM)
	return ok
}

// Len reports how many dead ends are indexed.
func (d *DeadEndIndex) Len() int {
	if d == nil {
		return 0
	}
	return d.grid.Len()
}
