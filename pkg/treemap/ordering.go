package treemap

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// Orderer decides the order in which siblings fill rows. Implementations
// reorder children in place. The order changes placement and adjacency only:
// every child receives the same area under any ordering.
type Orderer interface {
	Order(t *Tree, children []NodeID)
}

// WeightOrderer sorts siblings by descending weight. Equal weights keep their
// previous relative order, so repeated layouts are identical.
type WeightOrderer struct{}

// Order implements [Orderer].
func (WeightOrderer) Order(t *Tree, children []NodeID) {
	slices.SortStableFunc(children, func(a, b NodeID) int {
		return cmp.Compare(t.weight(b), t.weight(a))
	})
}

// ShuffleOrderer applies a uniform random permutation to siblings.
// It is not safe for concurrent use.
type ShuffleOrderer struct {
	rng *rand.Rand
}

// NewShuffleOrderer returns a shuffler whose sequence is determined by seed.
func NewShuffleOrderer(seed uint64) *ShuffleOrderer {
	return &ShuffleOrderer{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Order implements [Orderer] with a Durstenfeld shuffle.
func (s *ShuffleOrderer) Order(_ *Tree, children []NodeID) {
	Shuffle(s.rng, children)
}

// Shuffle permutes ids in place: for i from the last index down to 1 it swaps
// element i with an element chosen uniformly from [0, i].
func Shuffle(rng *rand.Rand, ids []NodeID) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
