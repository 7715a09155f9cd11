package scenic

import (
	"testing"

	"scenicnav/internal/model"
)

func TestEvaluateScoresRoute(t *testing.T) {
	// A straight north-south line with scenic samples hugging it.
	coords := [][]float64{{-71.0, 42.500}, {-71.0, 42.510}}
	points := []model.ScenicPoint{
		{Lat: 42.502, Lng: -71.0, Score: 0.6},
		{Lat: 42.505, Lng: -71.0, Score: 0.8},
		{Lat: 42.508, Lng: -71.0, Score: 1.0},
	}
	field := NewField(points, 0.01, model.SourceHeatmap)
	cand, err := Evaluate(coords, 120, field, 250)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.ScenicMean == nil || cand.ScenicEffective == nil {
		t.Fatal("expected scenic stats")
	}
	if cand.ScenicCoverage <= 0 || cand.ScenicCoverage > 1 {
		t.Fatalf("coverage: %v", cand.ScenicCoverage)
	}
	want := *cand.ScenicMean * cand.ScenicCoverage
	if *cand.ScenicEffective != want {
		t.Fatalf("effective = %v, want mean*coverage = %v", *cand.ScenicEffective, want)
	}
	if len(cand.Geometry) != 2 {
		t.Fatalf("geometry: %d points", len(cand.Geometry))
	}
}

func TestEvaluateNoMatchesLeavesNilEffective(t *testing.T) {
	coords := [][]float64{{-71.0, 42.500}, {-71.0, 42.510}}
	field := NewField([]model.ScenicPoint{{Lat: 50, Lng: 10, Score: 1}}, 0.01, model.SourceHeatmap)
	cand, err := Evaluate(coords, 120, field, 250)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if cand.ScenicMean != nil || cand.ScenicEffective != nil {
		t.Fatal("no matches must leave scenic fields nil, not zero")
	}
	if cand.ScenicCoverage != 0 {
		t.Fatalf("coverage: %v", cand.ScenicCoverage)
	}
	if cand.TotalSamples == 0 {
		t.Fatal("samples should still be counted")
	}
}

func TestEvaluateEmptyGeometry(t *testing.T) {
	field := NewField(nil, 0.01, model.SourceHeatmap)
	cand, err := Evaluate(nil, 120, field, 250)
	if err != nil || cand != nil {
		t.Fatalf("empty geometry: cand=%v err=%v", cand, err)
	}
	if _, err := Evaluate([][]float64{{-71, 42}, {-71, 43}}, 0, field, 250); err == nil {
		t.Fatal("step 0 must error")
	}
}
