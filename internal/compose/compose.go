// Package compose decides the shape of one publishable batch and samples
// the media that fills it.
//
// Randomness is always drawn from an injected source so batch decisions
// are reproducible under a seeded generator in tests.
package compose

import (
	"math/rand/v2"
)

// BatchSize is the fixed number of media files per job.
const BatchSize = 4

// Batch is the image/video split for one job.
type Batch struct {
	Images int
	Videos int
}

// Plan decides how many images and videos form a batch. Mixing is strictly
// preferred: whenever both kinds are in stock and some split k images plus
// BatchSize-k videos is satisfiable, a single-type batch is never chosen.
// The second return is false when stock cannot fill a batch at all.
func Plan(imageCount, videoCount int, rng *rand.Rand) (Batch, bool) {
	if imageCount+videoCount < BatchSize {
		return Batch{}, false
	}

	if imageCount > 0 && videoCount > 0 {
		feasible := make([]int, 0, BatchSize-1)
		for k := 1; k < BatchSize; k++ {
			if k <= imageCount && BatchSize-k <= videoCount {
				feasible = append(feasible, k)
			}
		}
		if len(feasible) > 0 {
			k := feasible[rng.IntN(len(feasible))]
			return Batch{Images: k, Videos: BatchSize - k}, true
		}
	}

	if imageCount >= BatchSize {
		return Batch{Images: BatchSize}, true
	}
	if videoCount >= BatchSize {
		return Batch{Videos: BatchSize}, true
	}
	return Batch{}, false
}

// Sample draws n distinct elements from list by remove-and-redraw: each
// draw picks uniformly among the remaining pool and removes it. The input
// slice is not mutated. Callers must ensure n <= len(list).
func Sample(rng *rand.Rand, list []string, n int) []string {
	pool := append([]string(nil), list...)
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := rng.IntN(len(pool))
		picked = append(picked, pool[idx])
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return picked
}
