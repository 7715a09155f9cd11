package scenic

import (
	"math"
	"sort"

	"scenicnav/internal/model"
)

// RankParams tunes the multi-objective ranking.
type RankParams struct {
	// ScenicWeight trades scenic value against travel time; clamped to [0,1].
	ScenicWeight float64
	// MaxDurationRatio caps how much longer than the fastest candidate a
	// ranked route may be. <= 0 disables the feasibility filter.
	MaxDurationRatio float64
}

// Rank normalizes effective scenic score and duration across the scored
// candidates, combines them under the scenic weight, applies the
// duration-ratio feasibility filter, and assigns dense ranks 1..K in place.
// Candidates without an effective score keep a nil rank. The call is
// deterministic: ties keep input order, and re-running on the same pool
// produces identical output.
//
// Returns the number of ranked candidates; zero means the caller should
// report that no scenic scores were computable.
func Rank(candidates []model.RouteCandidate, p RankParams) int {
	weight := clamp01(p.ScenicWeight)

	// Duration ratios are computed over the whole pool, ranked or not.
	minDuration := math.Inf(1)
	for _, c := range candidates {
		if c.DurationSec > 0 && c.DurationSec < minDuration {
			minDuration = c.DurationSec
		}
	}
	if !math.IsInf(minDuration, 1) {
		for i := range candidates {
			if candidates[i].DurationSec > 0 {
				r := candidates[i].DurationSec / minDuration
				candidates[i].DurationRatio = &r
			}
		}
	}

	// Only candidates with a defined effective score participate in
	// normalization and ranking.
	scored := make([]int, 0, len(candidates))
	scenicMin, scenicMax := math.Inf(1), math.Inf(-1)
	durMin, durMax := math.Inf(1), math.Inf(-1)
	for i, c := range candidates {
		if c.ScenicEffective == nil {
			continue
		}
		scored = append(scored, i)
		scenicMin = math.Min(scenicMin, *c.ScenicEffective)
		scenicMax = math.Max(scenicMax, *c.ScenicEffective)
		durMin = math.Min(durMin, c.DurationSec)
		durMax = math.Max(durMax, c.DurationSec)
	}
	if len(scored) == 0 {
		return 0
	}

	for _, i := range scored {
		c := &candidates[i]
		sn := normalize(*c.ScenicEffective, scenicMin, scenicMax)
		dn := normalize(c.DurationSec, durMin, durMax)
		combined := weight*sn + (1-weight)*(1-dn)
		c.ScenicNorm = &sn
		c.DurationNorm = &dn
		c.Combined = &combined
	}

	// Feasibility: prefer candidates within the duration-ratio cap, but
	// never let the cap empty the ranking when scored candidates exist.
	ranked := scored
	if p.MaxDurationRatio > 0 {
		feasible := make([]int, 0, len(scored))
		for _, i := range scored {
			if r := candidates[i].DurationRatio; r != nil && *r <= p.MaxDurationRatio {
				feasible = append(feasible, i)
			}
		}
		if len(feasible) > 0 {
			ranked = feasible
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return *candidates[ranked[a]].Combined > *candidates[ranked[b]].Combined
	})
	for pos, i := range ranked {
		rank := pos + 1
		candidates[i].Rank = &rank
		candidates[i].IsTopPick = rank == 1
	}
	return len(ranked)
}

// normalize maps v into [0,1] over [min,max]; a degenerate range pins the
// value at 1.0 (preserved policy choice: it keeps single-candidate pools
// fully scenic and fully slow rather than undefined).
func normalize(v, min, max float64) float64 {
	if max <= min {
		return 1.0
	}
	return (v - min) / (max - min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
