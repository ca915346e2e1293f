// Package resample decouples training step count from raw dataset size.
// A finite dataset is presented at an arbitrary logical length by
// concatenating deterministically shuffled passes (epochs) over it.
package resample

import (
	"fmt"
	"sync"

	"plmtrain/dataset"
)

// Dataset is any finite indexed collection the resampler can wrap.
type Dataset[T any] interface {
	Len() int
	At(i int) (T, error)
}

// MultiEpoch presents a wrapped dataset at a requested logical length.
// Position p maps to epoch p/epochLen and offset p%epochLen; each epoch has
// its own permutation derived from (seed, epoch), or the identity order
// when shuffling is off. The mapping is a pure function, so lookups are
// reproducible across processes and safe for concurrent use.
type MultiEpoch[T any] struct {
	ds         Dataset[T]
	numSamples int
	seed       uint64
	shuffle    bool

	mu    sync.Mutex
	perms map[int][]int // lazily built per-epoch permutations
}

// New wraps ds at logical length numSamples. Oversampling wraps into
// additional epochs; undersampling touches only a prefix of epoch 0.
func New[T any](ds Dataset[T], numSamples int, seed uint64, shuffle bool) (*MultiEpoch[T], error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("cannot resample an empty dataset")
	}
	if numSamples <= 0 {
		return nil, fmt.Errorf("num samples %d must be positive", numSamples)
	}
	return &MultiEpoch[T]{
		ds:         ds,
		numSamples: numSamples,
		seed:       seed,
		shuffle:    shuffle,
		perms:      make(map[int][]int),
	}, nil
}

// Len returns the logical sample count.
func (m *MultiEpoch[T]) Len() int { return m.numSamples }

// IndexAt maps a logical position to (epoch, underlying index).
func (m *MultiEpoch[T]) IndexAt(pos int) (epoch, underlying int, err error) {
	if pos < 0 || pos >= m.numSamples {
		return 0, 0, fmt.Errorf("position %d out of range [0, %d)", pos, m.numSamples)
	}
	epochLen := m.ds.Len()
	epoch = pos / epochLen
	offset := pos % epochLen
	if !m.shuffle {
		return epoch, offset, nil
	}
	return epoch, m.permutation(epoch)[offset], nil
}

// At returns the sample at logical position pos.
func (m *MultiEpoch[T]) At(pos int) (T, error) {
	_, underlying, err := m.IndexAt(pos)
	if err != nil {
		var zero T
		return zero, err
	}
	return m.ds.At(underlying)
}

// permutation returns the epoch's shuffle order, building and caching it on
// first use. The permutation depends only on (seed, epoch), never on which
// caller asked first.
func (m *MultiEpoch[T]) permutation(epoch int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.perms[epoch]; ok {
		return p
	}
	p := dataset.DeriveRNG(m.seed, uint64(epoch)).Perm(m.ds.Len())
	m.perms[epoch] = p
	return p
}
