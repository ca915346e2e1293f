package dataset

import (
	"errors"
	"fmt"
)

// ErrConfig marks an invalid masking configuration. Raised at construction
// time, never retried.
var ErrConfig = errors.New("invalid masking config")

// RandomMaskStrategy selects the pool random-replacement tokens are drawn
// from.
type RandomMaskStrategy int

const (
	// AminoAcidsOnly restricts random replacement to the canonical amino
	// acid tokens.
	AminoAcidsOnly RandomMaskStrategy = iota
	// AllTokens draws random replacements from the full vocabulary,
	// special tokens included.
	AllTokens
)

func (s RandomMaskStrategy) String() string {
	switch s {
	case AminoAcidsOnly:
		return "amino_acids_only"
	case AllTokens:
		return "all_tokens"
	default:
		return fmt.Sprintf("RandomMaskStrategy(%d)", int(s))
	}
}

// MaskingConfig holds the BERT-style masking probabilities. A position is
// selected with probability MaskProb; a selected position becomes the mask
// token with probability MaskTokenProb, a random token with probability
// MaskRandomProb, and keeps its original residue otherwise. A kept position
// still contributes to the loss.
type MaskingConfig struct {
	MaskProb       float64
	MaskTokenProb  float64
	MaskRandomProb float64
	Strategy       RandomMaskStrategy
}

// DefaultMaskingConfig returns the standard 15/80/10 MLM split.
func DefaultMaskingConfig() MaskingConfig {
	return MaskingConfig{
		MaskProb:       0.15,
		MaskTokenProb:  0.8,
		MaskRandomProb: 0.1,
		Strategy:       AminoAcidsOnly,
	}
}

// Validate checks probability ranges and the three-way split.
func (c MaskingConfig) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"mask_prob", c.MaskProb},
		{"mask_token_prob", c.MaskTokenProb},
		{"mask_random_prob", c.MaskRandomProb},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%w: %s %v outside [0, 1]", ErrConfig, p.name, p.v)
		}
	}
	if sum := c.MaskTokenProb + c.MaskRandomProb; sum > 1 {
		return fmt.Errorf("%w: mask_token_prob + mask_random_prob = %v > 1", ErrConfig, sum)
	}
	if c.Strategy != AminoAcidsOnly && c.Strategy != AllTokens {
		return fmt.Errorf("%w: unknown random mask strategy %d", ErrConfig, int(c.Strategy))
	}
	return nil
}
