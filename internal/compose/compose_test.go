package compose

import (
	"math/rand/v2"
	"testing"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestPlanInsufficientTotal(t *testing.T) {
	rng := testRand(1)
	if _, ok := Plan(1, 1, rng); ok {
		t.Fatal("total of 2 must not produce a batch")
	}
	if _, ok := Plan(0, 3, rng); ok {
		t.Fatal("total of 3 must not produce a batch")
	}
}

func TestPlanAlwaysMixesWhenFeasible(t *testing.T) {
	rng := testRand(2)
	for i := 0; i < 200; i++ {
		batch, ok := Plan(2, 2, rng)
		if !ok {
			t.Fatal("expected a batch")
		}
		if batch.Images == 0 || batch.Videos == 0 {
			t.Fatalf("expected a mixed batch, got %+v", batch)
		}
		if batch.Images+batch.Videos != BatchSize {
			t.Fatalf("batch must sum to %d, got %+v", BatchSize, batch)
		}
	}
}

func TestPlanSingleFeasibleSplit(t *testing.T) {
	rng := testRand(3)
	for i := 0; i < 100; i++ {
		batch, ok := Plan(1, 5, rng)
		if !ok {
			t.Fatal("expected a batch")
		}
		if batch.Images != 1 || batch.Videos != 3 {
			t.Fatalf("only feasible split is 1+3, got %+v", batch)
		}
	}
}

func TestPlanAllImages(t *testing.T) {
	batch, ok := Plan(5, 0, testRand(4))
	if !ok || batch.Images != 4 || batch.Videos != 0 {
		t.Fatalf("expected {4,0}, got %+v ok=%v", batch, ok)
	}
}

func TestPlanAllVideos(t *testing.T) {
	batch, ok := Plan(0, 6, testRand(5))
	if !ok || batch.Images != 0 || batch.Videos != 4 {
		t.Fatalf("expected {0,4}, got %+v ok=%v", batch, ok)
	}
}

func TestPlanCoversAllFeasibleSplits(t *testing.T) {
	rng := testRand(6)
	seen := map[Batch]bool{}
	for i := 0; i < 500; i++ {
		batch, ok := Plan(3, 3, rng)
		if !ok {
			t.Fatal("expected a batch")
		}
		seen[batch] = true
	}
	for _, want := range []Batch{{1, 3}, {2, 2}, {3, 1}} {
		if !seen[want] {
			t.Fatalf("split %+v never chosen across 500 plans", want)
		}
	}
}

func TestSampleDistinctAndComplete(t *testing.T) {
	rng := testRand(7)
	list := []string{"a", "b", "c", "d", "e"}

	picked := Sample(rng, list, 3)
	if len(picked) != 3 {
		t.Fatalf("expected 3 picks, got %v", picked)
	}
	seen := map[string]bool{}
	for _, item := range picked {
		if seen[item] {
			t.Fatalf("duplicate pick %q in %v", item, picked)
		}
		seen[item] = true
	}

	// Full-size sample returns every element.
	all := Sample(rng, list, len(list))
	if len(all) != len(list) {
		t.Fatalf("expected full sample, got %v", all)
	}

	// Input pool is untouched.
	if list[0] != "a" || list[4] != "e" {
		t.Fatalf("input mutated: %v", list)
	}
}

func TestSampleEverySubsetReachable(t *testing.T) {
	rng := testRand(8)
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		picked := Sample(rng, []string{"a", "b", "c"}, 1)
		counts[picked[0]]++
	}
	for _, key := range []string{"a", "b", "c"} {
		if counts[key] == 0 {
			t.Fatalf("element %q never sampled: %v", key, counts)
		}
	}
}
