package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"plmtrain/tokenizer"
)

// Stats summarizes observed masking behavior over a prefix of a dataset.
// Shares are fractions of masked positions; a random replacement that
// happens to redraw the original residue is counted as kept.
type Stats struct {
	Positions      int
	MaskRate       float64
	MaskTokenShare float64
	RandomShare    float64
	KeptShare      float64
}

// ComputeStats walks up to numSamples examples and measures the realized
// masking rates. Useful as a dry-run sanity report and to verify
// convergence toward the configured probabilities.
func ComputeStats(d *MaskedResidueDataset, tok tokenizer.Tokenizer, numSamples int) (Stats, error) {
	if numSamples > d.Len() {
		numSamples = d.Len()
	}

	var masked, maskTok, random []float64
	positions := 0
	for i := 0; i < numSamples; i++ {
		ex, err := d.At(i)
		if err != nil {
			return Stats{}, fmt.Errorf("sample %d: %w", i, err)
		}
		for pos := range ex.Labels {
			positions++
			if ex.Labels[pos] == IgnoreIndex {
				masked = append(masked, 0)
				continue
			}
			masked = append(masked, 1)
			switch {
			case ex.InputIDs[pos] == tok.MaskID():
				maskTok = append(maskTok, 1)
				random = append(random, 0)
			case ex.InputIDs[pos] != ex.Labels[pos]:
				maskTok = append(maskTok, 0)
				random = append(random, 1)
			default:
				maskTok = append(maskTok, 0)
				random = append(random, 0)
			}
		}
	}
	if positions == 0 {
		return Stats{}, fmt.Errorf("no positions observed over %d samples", numSamples)
	}

	s := Stats{
		Positions: positions,
		MaskRate:  stat.Mean(masked, nil),
	}
	if len(maskTok) > 0 {
		s.MaskTokenShare = stat.Mean(maskTok, nil)
		s.RandomShare = stat.Mean(random, nil)
		s.KeptShare = 1 - s.MaskTokenShare - s.RandomShare
	}
	return s, nil
}

func (s Stats) String() string {
	return fmt.Sprintf("positions=%d mask_rate=%.4f mask_token=%.4f random=%.4f kept=%.4f",
		s.Positions, s.MaskRate, s.MaskTokenShare, s.RandomShare, s.KeptShare)
}
