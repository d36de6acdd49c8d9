package trivia

import "math/rand/v2"

// Selector draws unseen questions from a candidate pool. The zero value uses
// the process-level random source from math/rand/v2, which is safe for
// concurrent draws.
type Selector struct {
	// IntN overrides the random source for tests. It must return a value in
	// [0, n) for n > 0.
	IntN func(n int) int
}

// Next picks uniformly at random among pool members whose identifier is not
// in served. The second return is false when every pool member has already
// been served; that is the normal end of a quiz round, not an error.
//
// The candidate set is computed up front so a draw is O(len(pool)) even when
// only one unseen question remains. Resampling until an unseen id turns up
// degrades to an unbounded loop as the served set approaches the pool.
func (s Selector) Next(pool []Question, served []int64) (Question, bool) {
	seen := make(map[int64]struct{}, len(served))
	for _, id := range served {
		seen[id] = struct{}{}
	}

	candidates := make([]Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[q.ID]; !ok {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return Question{}, false
	}

	intN := s.IntN
	if intN == nil {
		intN = rand.IntN
	}
	return candidates[intN(len(candidates))], true
}
