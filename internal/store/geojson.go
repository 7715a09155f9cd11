package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"scenicnav/internal/model"
)

// GeoJSON reads scenic datasets from GeoJSON files produced by the imagery
// pipeline. Any path may be empty; the corresponding dataset is then simply
// absent. Files are read lazily on first use and kept in memory.
type GeoJSON struct {
	HeatmapPath    string
	EdgeScoresPath string
	RoadsPath      string
}

// NewGeoJSON builds a file-backed store.
func NewGeoJSON(heatmapPath, edgeScoresPath, roadsPath string) *GeoJSON {
	return &GeoJSON{HeatmapPath: heatmapPath, EdgeScoresPath: edgeScoresPath, RoadsPath: roadsPath}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ScenicScore *float64 `json:"scenic_score"`
		Tags        struct {
			Highway string `json:"highway"`
		} `json:"tags"`
		Highway string `json:"highway"`
	} `json:"properties"`
}

func readCollection(path string) (*featureCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

// ScenicPoints loads heatmap Point features carrying a scenic_score
// property. Malformed features are skipped, not fatal: one bad sample must
// not take the whole field down.
func (g *GeoJSON) ScenicPoints(_ context.Context) ([]model.ScenicPoint, error) {
	if g.HeatmapPath == "" {
		return nil, nil
	}
	fc, err := readCollection(g.HeatmapPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var points []model.ScenicPoint
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" || f.Properties.ScenicScore == nil {
			continue
		}
		var coords []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
			continue
		}
		points = append(points, model.ScenicPoint{
			Lat:   coords[1],
			Lng:   coords[0],
			Score: *f.Properties.ScenicScore,
		})
	}
	return points, nil
}

// EdgeMidpoints loads scored LineString edges and collapses each to its
// middle vertex.
func (g *GeoJSON) EdgeMidpoints(_ context.Context) ([]model.ScenicPoint, error) {
	if g.EdgeScoresPath == "" {
		return nil, nil
	}
	fc, err := readCollection(g.EdgeScoresPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var points []model.ScenicPoint
	for _, f := range fc.Features {
		if f.Geometry.Type != "LineString" || f.Properties.ScenicScore == nil {
			continue
		}
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
			continue
		}
		lat, lng, ok := midpointOf(coords)
		if !ok {
			continue
		}
		points = append(points, model.ScenicPoint{Lat: lat, Lng: lng, Score: *f.Properties.ScenicScore})
	}
	return points, nil
}

// RoadFeatures loads classified road LineStrings. The highway tag may live
// under properties.tags.highway (Overpass export) or properties.highway.
func (g *GeoJSON) RoadFeatures(_ context.Context) ([]model.RoadFeature, error) {
	if g.RoadsPath == "" {
		return nil, nil
	}
	fc, err := readCollection(g.RoadsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var features []model.RoadFeature
	for _, f := range fc.Features {
		if f.Geometry.Type != "LineString" {
			continue
		}
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) == 0 {
			continue
		}
		highway := f.Properties.Tags.Highway
		if highway == "" {
			highway = f.Properties.Highway
		}
		features = append(features, model.RoadFeature{Highway: highway, Coordinates: coords})
	}
	return features, nil
}
