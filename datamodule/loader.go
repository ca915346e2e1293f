package datamodule

import (
	"fmt"
	"io"

	"plmtrain/collate"
	"plmtrain/dataset"
	"plmtrain/resample"
)

// Loader iterates a resampled dataset in micro-batch-sized slices and
// collates each slice into a padded Batch. The final batch may be short; no
// sample is dropped. Reset rewinds to the first batch with identical
// contents on every pass.
type Loader struct {
	ds        *resample.MultiEpoch[dataset.MaskedExample]
	padID     int32
	minLength int
	maxLength int
	batchSize int
	pos       int
}

func newLoader(ds *resample.MultiEpoch[dataset.MaskedExample], padID int32, minLength, maxLength, batchSize int) *Loader {
	return &Loader{
		ds:        ds,
		padID:     padID,
		minLength: minLength,
		maxLength: maxLength,
		batchSize: batchSize,
	}
}

// NumBatches returns the total batch count, counting a partial tail.
func (l *Loader) NumBatches() int {
	return (l.ds.Len() + l.batchSize - 1) / l.batchSize
}

// NextBatch returns the next collated micro-batch, or io.EOF when the
// logical sample stream is exhausted.
func (l *Loader) NextBatch() (*collate.Batch, error) {
	if l.pos >= l.ds.Len() {
		return nil, io.EOF
	}

	end := l.pos + l.batchSize
	if end > l.ds.Len() {
		end = l.ds.Len()
	}

	examples := make([]dataset.MaskedExample, 0, end-l.pos)
	for ; l.pos < end; l.pos++ {
		ex, err := l.ds.At(l.pos)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", l.pos, err)
		}
		examples = append(examples, ex)
	}

	return collate.Collate(examples, l.padID, l.minLength, l.maxLength)
}

// Reset rewinds the loader to the beginning of the sample stream.
func (l *Loader) Reset() { l.pos = 0 }
