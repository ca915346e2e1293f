// Package collate stacks variable-length masked examples into rectangular
// padded batches.
package collate

import (
	"errors"
	"fmt"

	"plmtrain/dataset"
	"plmtrain/tensor"
)

var (
	// ErrBatchTooLong means an example exceeded the configured maximum
	// length. Upstream truncation makes this unreachable in a correct
	// pipeline; hitting it indicates a bug, not bad data.
	ErrBatchTooLong = errors.New("example exceeds max length")
	// ErrEmptyBatch means collation was asked to stack zero examples.
	ErrEmptyBatch = errors.New("empty batch")
)

// Batch is one padded micro-batch. All grids share the shape [B, L] where
// L is the longest example length, raised to minLength and never above
// maxLength. LossMask marks positions that contribute to the loss;
// AttentionMask marks non-pad positions.
type Batch struct {
	InputIDs      *tensor.Grid
	Labels        *tensor.Grid
	LossMask      *tensor.Grid
	AttentionMask *tensor.Grid
	Lengths       []int
}

// Size returns the number of examples in the batch.
func (b *Batch) Size() int { return b.InputIDs.Rows() }

// SeqLength returns the padded sequence length.
func (b *Batch) SeqLength() int { return b.InputIDs.Cols() }

// Collate stacks examples in order into a padded Batch. Inputs are padded
// with padID and labels with the ignore index, so padding never enters the
// loss. minLength <= 0 means no minimum.
func Collate(examples []dataset.MaskedExample, padID int32, minLength, maxLength int) (*Batch, error) {
	if len(examples) == 0 {
		return nil, ErrEmptyBatch
	}

	longest := 0
	for i, ex := range examples {
		if ex.Len() > maxLength {
			return nil, fmt.Errorf("%w: example %d has length %d > %d", ErrBatchTooLong, i, ex.Len(), maxLength)
		}
		if ex.Len() > longest {
			longest = ex.Len()
		}
	}
	padded := longest
	if minLength > 0 && padded < minLength {
		padded = minLength
	}

	rows := len(examples)
	inputs, err := tensor.Full(rows, padded, padID)
	if err != nil {
		return nil, err
	}
	labels, err := tensor.Full(rows, padded, dataset.IgnoreIndex)
	if err != nil {
		return nil, err
	}
	lossMask, err := tensor.NewGrid(rows, padded)
	if err != nil {
		return nil, err
	}
	attnMask, err := tensor.NewGrid(rows, padded)
	if err != nil {
		return nil, err
	}

	lengths := make([]int, rows)
	for r, ex := range examples {
		lengths[r] = ex.Len()
		copy(inputs.Row(r), ex.InputIDs)
		copy(labels.Row(r), ex.Labels)
		for c := 0; c < ex.Len(); c++ {
			attnMask.Set(r, c, 1)
			if ex.Labels[c] != dataset.IgnoreIndex {
				lossMask.Set(r, c, 1)
			}
		}
	}

	return &Batch{
		InputIDs:      inputs,
		Labels:        labels,
		LossMask:      lossMask,
		AttentionMask: attnMask,
		Lengths:       lengths,
	}, nil
}
