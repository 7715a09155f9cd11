package geo

import "math"

// Grid is a flat uniform lat/lng cell index for approximate nearest-neighbor
// lookups. It stores caller-owned indices so each consumer keeps its own
// point slice. Reads are safe concurrently once construction is done.
//
// The ring scan sizes itself from an equatorial cell width, so at high
// latitudes it can in theory under-scan; every lookup in this module runs
// through a max-distance cutoff, so a missed far neighbor only means "no
// match", never a wrong score.
type Grid struct {
	cellDeg float64
	cells   map[cellKey][]gridEntry
	n       int
}

type cellKey struct{ row, col int }

type gridEntry struct {
	lat, lng float64
	idx      int
}

// NewGrid creates an empty index with the given cell size in degrees.
// 0.01° is roughly 1.1 km at the equator.
func NewGrid(cellDeg float64) *Grid {
	return &Grid{cellDeg: cellDeg, cells: map[cellKey][]gridEntry{}}
}

func (g *Grid) key(lat, lng float64) cellKey {
	return cellKey{
		row: int(math.Floor(lat / g.cellDeg)),
		col: int(math.Floor(lng / g.cellDeg)),
	}
}

// Add indexes one point under the caller's index.
func (g *Grid) Add(lat, lng float64, idx int) {
	k := g.key(lat, lng)
	g.cells[k] = append(g.cells[k], gridEntry{lat: lat, lng: lng, idx: idx})
	g.n++
}

// Len reports how many points have been indexed.
func (g *Grid) Len() int { return g.n }

// ringRadius picks how many cells around the query cell must be scanned to
// cover maxDistM. Without a cap we scan a 5x5 block.
func (g *Grid) ringRadius(maxDistM float64) int {
	if maxDistM <= 0 {
		return 2
	}
	cellM := math.Max(g.cellDeg*111000.0, 1.0)
	r := int(math.Ceil(maxDistM / cellM))
	if r < 1 {
		r = 1
	}
	return r
}

// Nearest returns the index and distance of the closest point within
// maxDistM of the query (maxDistM <= 0 means uncapped). The scan covers the
// query cell plus a ring sized for maxDistM; distances are exact haversine.
func (g *Grid) Nearest(lat, lng, maxDistM float64) (int, float64, bool) {
	base := g.key(lat, lng)
	radius := g.ringRadius(maxDistM)
	bestIdx := -1
	bestDist := math.Inf(1)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			for _, e := range g.cells[cellKey{row: base.row + dr, col: base.col + dc}] {
				d := Haversine(lat, lng, e.lat, e.lng)
				if d < bestDist {
					bestDist = d
					bestIdx = e.idx
				}
			}
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	if maxDistM > 0 && bestDist > maxDistM {
		return 0, 0, false
	}
	return bestIdx, bestDist, true
}
