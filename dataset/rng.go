package dataset

import "math/rand/v2"

// DeriveRNG builds an independent random generator for one logical sample.
// PCG takes the (seed, index) pair directly as its two seed words, so the
// generator state is a pure function of both — the same index yields the
// same stream in any process, worker, or call order. This is what makes the
// pipeline safe to shard across data-loading workers.
func DeriveRNG(seed, index uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, index))
}
