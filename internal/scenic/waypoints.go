package scenic

import (
	"sort"

	"scenicnav/internal/geo"
	"scenicnav/internal/model"
)

// WaypointParams constrains detour waypoint selection.
type WaypointParams struct {
	Count          int
	RadiusM        float64 // search radius around the trip midpoint
	MinDistanceM   float64 // keep-away from both trip endpoints
	MinSeparationM float64 // pairwise spacing between chosen waypoints
	DeadEndRadiusM float64 // 0 disables dead-end exclusion
}

// SelectWaypoints picks up to Count high-scoring, well separated scenic
// points near the trip midpoint to force detour routes through. The sort is
// stable so equal scores keep their input order and the selection stays
// deterministic. deadEnds may be nil when no road data was loaded.
func SelectWaypoints(candidates []model.ScenicPoint, origin, dest model.GeoPoint, p WaypointParams, deadEnds *DeadEndIndex) []model.ScenicPoint {
	if p.Count <= 0 {
		return nil
	}
	mid := geo.Midpoint(origin, dest)

	filtered := make([]model.ScenicPoint, 0, len(candidates))
	for _, c := range candidates {
		if geo.Haversine(c.Lat, c.Lng, mid.Lat, mid.Lng) > p.RadiusM {
			continue
		}
		if geo.Haversine(c.Lat, c.Lng, origin.Lat, origin.Lng) < p.MinDistanceM {
			continue
		}
		if geo.Haversine(c.Lat, c.Lng, dest.Lat, dest.Lng) < p.MinDistanceM {
			continue
		}
		if deadEnds.Near(c.Lat, c.Lng, p.DeadEndRadiusM) {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	var chosen []model.ScenicPoint
	for _, c := range filtered {
		if len(chosen) >= p.Count {
			break
		}
		farEnough := true
		for _, prev := range chosen {
			if geo.Haversine(c.Lat, c.Lng, prev.Lat, prev.Lng) < p.MinSeparationM {
				farEnough = false
				break
			}
		}
		if farEnough {
			chosen = append(chosen, c)
		}
	}
	return chosen
}
