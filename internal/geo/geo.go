// Package geo holds the great-circle helpers shared by the scenic planner.
package geo

import (
	"errors"
	"math"

	"scenicnav/internal/model"
)

const earthRadiusM = 6371000.0

var ErrBadStep = errors.New("step must be > 0")

// Haversine returns the great-circle distance in meters between two WGS84
// coordinates. Good to tens of kilometers for this module's purposes.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Distance is Haversine over typed points.
func Distance(a, b model.GeoPoint) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Bearing returns the initial compass bearing from a to b in degrees [0,360),
// clockwise from north. Identical points yield 0.
func Bearing(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	if y == 0 && x == 0 {
		return 0
	}
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Interpolate linearly blends two coordinates in lat/lng space. Not
// geodesic-correct, acceptable for sub-kilometer steps. Fractions outside
// [0,1] extrapolate.
func Interpolate(a, b model.GeoPoint, fraction float64) model.GeoPoint {
	return model.GeoPoint{
		Lat: a.Lat + (b.Lat-a.Lat)*fraction,
		Lng: a.Lng + (b.Lng-a.Lng)*fraction,
	}
}

// Midpoint is the arithmetic mean of two coordinates.
func Midpoint(a, b model.GeoPoint) model.GeoPoint {
	return model.GeoPoint{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// Densify returns evenly spaced points along a GeoJSON LineString
// (lng-first coordinate pairs), keeping every original vertex. Zero-length
// segments are skipped without emitting duplicates. Inputs with fewer than
// two coordinates come back as-is.
func Densify(coords [][]float64, stepM float64) ([]model.GeoPoint, error) {
	if stepM <= 0 {
		return nil, ErrBadStep
	}
	var points []model.GeoPoint
	if len(coords) == 0 {
		return points, nil
	}
	prev := model.GeoPoint{Lat: coords[0][1], Lng: coords[0][0]}
	points = append(points, prev)
	for _, c := range coords[1:] {
		curr := model.GeoPoint{Lat: c[1], Lng: c[0]}
		segLen := Distance(prev, curr)
		if segLen <= 0 {
			prev = curr
			continue
		}
		steps := int(segLen / stepM)
		for i := 1; i <= steps; i++ {
			f := float64(i) * stepM / segLen
			if f >= 1.0 {
				break
			}
			points = append(points, Interpolate(prev, curr, f))
		}
		points = append(points, curr)
		prev = curr
	}
	return points, nil
}

// Resample walks a polyline and emits a point every stepM meters of path
// length, carrying leftover distance across vertex boundaries so spacing
// stays uniform no matter how the geometry is segmented. Fewer than two
// coordinates yield no samples.
func Resample(coords [][]float64, stepM float64) ([]model.GeoPoint, error) {
	if stepM <= 0 {
		return nil, ErrBadStep
	}
	var samples []model.GeoPoint
	if len(coords) < 2 {
		return samples, nil
	}
	carry := 0.0 // path length walked since the last emitted sample
	prev := model.GeoPoint{Lat: coords[0][1], Lng: coords[0][0]}
	for _, c := range coords[1:] {
		curr := model.GeoPoint{Lat: c[1], Lng: c[0]}
		segLen := Distance(prev, curr)
		if segLen <= 0 {
			prev = curr
			continue
		}
		pos := stepM - carry
		for pos <= segLen {
			samples = append(samples, Interpolate(prev, curr, pos/segLen))
			pos += stepM
		}
		carry = segLen - (pos - stepM)
		prev = curr
	}
	return samples, nil
}
