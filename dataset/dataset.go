package dataset

import (
	"errors"
	"fmt"

	"plmtrain/corpus"
	"plmtrain/tokenizer"
)

// IgnoreIndex is the label value marking a position excluded from the loss.
const IgnoreIndex int32 = -100

// ErrSequenceTooShort is returned when a record is empty after truncation.
// The caller decides whether to skip the record or abort.
var ErrSequenceTooShort = errors.New("sequence too short")

// MaskedExample is one masked training sample before batch padding.
// InputIDs and Labels always have the same length; Labels carries the
// original token id at positions selected for masking and IgnoreIndex
// everywhere else.
type MaskedExample struct {
	InputIDs []int32
	Labels   []int32
}

// Len returns the unpadded sequence length.
func (e MaskedExample) Len() int { return len(e.InputIDs) }

// MaskedResidueDataset derives masked MLM samples from a sequence corpus.
// Every output is a pure function of (seed, index): no state is mutated by
// At, so the dataset is safe for concurrent use by data-loading workers.
type MaskedResidueDataset struct {
	corpus       corpus.Corpus
	tok          tokenizer.Tokenizer
	seed         uint64
	maxSeqLength int
	cfg          MaskingConfig
	randomPool   []int32 // candidate ids for random-replacement masking
}

// NewMaskedResidueDataset validates the configuration and binds the corpus
// and tokenizer. maxSeqLength caps every sequence; longer records are
// truncated, not rejected.
func NewMaskedResidueDataset(c corpus.Corpus, tok tokenizer.Tokenizer, seed uint64, maxSeqLength int, cfg MaskingConfig) (*MaskedResidueDataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if maxSeqLength <= 0 {
		return nil, fmt.Errorf("%w: max_seq_length %d must be positive", ErrConfig, maxSeqLength)
	}

	var pool []int32
	switch cfg.Strategy {
	case AminoAcidsOnly:
		pool = tok.AminoAcidIDs()
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: tokenizer exposes no amino acid ids", ErrConfig)
		}
	case AllTokens:
		pool = make([]int32, tok.VocabSize())
		for i := range pool {
			pool[i] = int32(i)
		}
	}

	return &MaskedResidueDataset{
		corpus:       c,
		tok:          tok,
		seed:         seed,
		maxSeqLength: maxSeqLength,
		cfg:          cfg,
		randomPool:   pool,
	}, nil
}

// Len returns the number of underlying records.
func (d *MaskedResidueDataset) Len() int { return d.corpus.Len() }

// At returns the masked example for logical sample index i.
//
// The masking decisions come from a generator derived from (seed, i), so
// repeated calls with the same index are byte-identical regardless of
// process or call order. Positions are selected independently with
// probability MaskProb; each selected position is resolved by a three-way
// draw into mask-token, random-token, or kept-original. A kept position
// still carries its true token in Labels and contributes to the loss.
func (d *MaskedResidueDataset) At(i int) (MaskedExample, error) {
	rec, err := d.corpus.Record(i)
	if err != nil {
		return MaskedExample{}, err
	}

	seq := rec.Sequence
	if len(seq) > d.maxSeqLength {
		seq = seq[:d.maxSeqLength]
	}
	if len(seq) == 0 {
		return MaskedExample{}, fmt.Errorf("record %q (index %d): %w", rec.ID, i, ErrSequenceTooShort)
	}

	original, err := d.tok.EncodeSequence(seq)
	if err != nil {
		return MaskedExample{}, fmt.Errorf("record %q (index %d): %w", rec.ID, i, err)
	}

	rng := DeriveRNG(d.seed, uint64(i))
	inputs := make([]int32, len(original))
	labels := make([]int32, len(original))
	for pos, id := range original {
		if rng.Float64() >= d.cfg.MaskProb {
			inputs[pos] = id
			labels[pos] = IgnoreIndex
			continue
		}
		labels[pos] = id
		switch u := rng.Float64(); {
		case u < d.cfg.MaskTokenProb:
			inputs[pos] = d.tok.MaskID()
		case u < d.cfg.MaskTokenProb+d.cfg.MaskRandomProb:
			inputs[pos] = d.randomPool[rng.IntN(len(d.randomPool))]
		default:
			inputs[pos] = id
		}
	}

	return MaskedExample{InputIDs: inputs, Labels: labels}, nil
}
