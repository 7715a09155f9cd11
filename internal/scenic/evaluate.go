package scenic

import (
	"scenicnav/internal/geo"
	"scenicnav/internal/model"
)

// Evaluate samples a route geometry (GeoJSON lng-first pairs) at stepM and
// scores it against the field. The returned candidate has its scenic fields
// populated; identity, variant and ranking fields are the caller's job.
// Routes with empty geometry return (nil, nil) and must be excluded.
//
// ScenicEffective is mean × coverage, and stays nil when nothing matched:
// "no data" must not collapse into "score 0".
func Evaluate(coords [][]float64, stepM float64, field *Field, maxDistM float64) (*model.RouteCandidate, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	samples, err := geo.Resample(coords, stepM)
	if err != nil {
		return nil, err
	}
	cand := &model.RouteCandidate{
		Geometry:     toGeometry(coords),
		TotalSamples: len(samples),
	}
	stats := field.Stats(samples, maxDistM)
	if stats == nil {
		return cand, nil
	}
	mean := stats.Mean
	effective := stats.Mean * stats.Coverage
	lookup := stats.MeanLookupM
	cand.ScenicMean = &mean
	cand.ScenicCoverage = stats.Coverage
	cand.ScenicEffective = &effective
	cand.SampledPoints = stats.Matched
	cand.MeanLookupM = &lookup
	return cand, nil
}

func toGeometry(coords [][]float64) []model.GeoPoint {
	out := make([]model.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, model.GeoPoint{Lat: c[1], Lng: c[0]})
	}
	return out
}
