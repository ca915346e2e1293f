// Package datamodule wires corpus, tokenizer, masking, resampling, and
// collation into per-stage batch loaders for the external training loop.
package datamodule

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"plmtrain/corpus"
	"plmtrain/dataset"
	"plmtrain/resample"
	"plmtrain/tokenizer"
)

// ErrConfig marks a fatal setup-time configuration error. Nothing behind it
// is retried; startup aborts before any batch is produced.
var ErrConfig = errors.New("invalid data module config")

// TrainerConfig carries the externally-owned trainer values the data
// pipeline needs to size itself. They are injected explicitly rather than
// read from a shared trainer handle.
type TrainerConfig struct {
	MaxSteps        int     `yaml:"max_steps"`
	GlobalBatchSize int     `yaml:"global_batch_size"`
	MicroBatchSize  int     `yaml:"micro_batch_size"`
	LimitValBatches float64 `yaml:"limit_val_batches"`
}

// Validate fails fast on values that would corrupt sample accounting.
func (c TrainerConfig) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be set and positive, got %d", ErrConfig, c.MaxSteps)
	}
	if c.GlobalBatchSize <= 0 {
		return fmt.Errorf("%w: global_batch_size %d must be positive", ErrConfig, c.GlobalBatchSize)
	}
	if c.MicroBatchSize <= 0 || c.MicroBatchSize > c.GlobalBatchSize {
		return fmt.Errorf("%w: micro_batch_size %d must be in [1, global_batch_size]", ErrConfig, c.MicroBatchSize)
	}
	if c.LimitValBatches <= 0 {
		return fmt.Errorf("%w: limit_val_batches %v must be positive", ErrConfig, c.LimitValBatches)
	}
	return nil
}

// DataConfig holds the sequence-length policy shared by both stages.
type DataConfig struct {
	Seed         uint64 `yaml:"seed"`
	MinSeqLength int    `yaml:"min_seq_length"`
	MaxSeqLength int    `yaml:"max_seq_length"`
}

func (c DataConfig) validate() error {
	if c.MaxSeqLength <= 0 {
		return fmt.Errorf("%w: max_seq_length %d must be positive", ErrConfig, c.MaxSeqLength)
	}
	if c.MinSeqLength < 0 || c.MinSeqLength > c.MaxSeqLength {
		return fmt.Errorf("%w: min_seq_length %d must be in [0, max_seq_length]", ErrConfig, c.MinSeqLength)
	}
	return nil
}

// InferNumSamples converts a validation-batch limit into a sample count.
// A fractional limit in (0, 1] scales the dataset size; a value >= 1 is a
// whole number of global batches. The result is never smaller than one
// global batch.
func InferNumSamples(limitBatches float64, datasetLen, globalBatchSize int) (int, error) {
	switch {
	case limitBatches <= 0:
		return 0, fmt.Errorf("%w: limit_val_batches %v must be positive", ErrConfig, limitBatches)
	case limitBatches <= 1:
		n := int(limitBatches * float64(datasetLen))
		if n < globalBatchSize {
			n = globalBatchSize
		}
		return n, nil
	case limitBatches != math.Trunc(limitBatches):
		return 0, fmt.Errorf("%w: limit_val_batches %v above 1 must be a whole batch count", ErrConfig, limitBatches)
	default:
		return int(limitBatches) * globalBatchSize, nil
	}
}

// DataModule builds and owns the per-stage dataset chains. Construction
// validates everything; Setup materializes the chains; the loaders stream
// padded micro-batches.
type DataModule struct {
	trainCorpus corpus.Corpus
	validCorpus corpus.Corpus
	tok         tokenizer.Tokenizer
	data        DataConfig
	masking     dataset.MaskingConfig
	trainer     TrainerConfig
	runID       string

	trainDS *resample.MultiEpoch[dataset.MaskedExample]
	validDS *resample.MultiEpoch[dataset.MaskedExample]
}

// New validates the full configuration up front. The tokenizer must expose
// a pad token id (non-negative); collation cannot run without one.
func New(trainCorpus, validCorpus corpus.Corpus, tok tokenizer.Tokenizer, data DataConfig, masking dataset.MaskingConfig, trainer TrainerConfig) (*DataModule, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: tokenizer is required", ErrConfig)
	}
	if tok.PadID() < 0 {
		return nil, fmt.Errorf("%w: tokenizer must define a pad token id", ErrConfig)
	}
	if err := trainer.Validate(); err != nil {
		return nil, err
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	if err := masking.Validate(); err != nil {
		return nil, err
	}
	if trainCorpus == nil || trainCorpus.Len() == 0 {
		return nil, fmt.Errorf("%w: train corpus is empty", ErrConfig)
	}
	if validCorpus == nil || validCorpus.Len() == 0 {
		return nil, fmt.Errorf("%w: valid corpus is empty", ErrConfig)
	}

	return &DataModule{
		trainCorpus: trainCorpus,
		validCorpus: validCorpus,
		tok:         tok,
		data:        data,
		masking:     masking,
		trainer:     trainer,
		runID:       uuid.NewString(),
	}, nil
}

// RunID identifies this data module instance in logs.
func (m *DataModule) RunID() string { return m.runID }

// Setup builds the masked datasets and resamplers for both stages. The
// training stage is upsampled to exactly MaxSteps * GlobalBatchSize logical
// samples; validation is sized by the batch limit and left unshuffled.
func (m *DataModule) Setup() error {
	trainDS, err := dataset.NewMaskedResidueDataset(m.trainCorpus, m.tok, m.data.Seed, m.data.MaxSeqLength, m.masking)
	if err != nil {
		return err
	}
	numTrain := m.trainer.MaxSteps * m.trainer.GlobalBatchSize
	m.trainDS, err = resample.New[dataset.MaskedExample](trainDS, numTrain, m.data.Seed, true)
	if err != nil {
		return err
	}

	validDS, err := dataset.NewMaskedResidueDataset(m.validCorpus, m.tok, m.data.Seed, m.data.MaxSeqLength, m.masking)
	if err != nil {
		return err
	}
	numValid, err := InferNumSamples(m.trainer.LimitValBatches, validDS.Len(), m.trainer.GlobalBatchSize)
	if err != nil {
		return err
	}
	m.validDS, err = resample.New[dataset.MaskedExample](validDS, numValid, m.data.Seed, false)
	if err != nil {
		return err
	}

	klog.Infof("data module %s: %d train samples (%d records), %d valid samples (%d records)",
		m.runID, numTrain, m.trainCorpus.Len(), numValid, m.validCorpus.Len())
	return nil
}

// NumTrainSamples returns the upsampled training length. Setup must have
// run.
func (m *DataModule) NumTrainSamples() int { return m.trainDS.Len() }

// NumValidSamples returns the inferred validation length. Setup must have
// run.
func (m *DataModule) NumValidSamples() int { return m.validDS.Len() }

// TrainLoader streams shuffled training micro-batches.
func (m *DataModule) TrainLoader() (*Loader, error) {
	if m.trainDS == nil {
		return nil, fmt.Errorf("%w: Setup must run before TrainLoader", ErrConfig)
	}
	return newLoader(m.trainDS, m.tok.PadID(), m.data.MinSeqLength, m.data.MaxSeqLength, m.trainer.MicroBatchSize), nil
}

// ValidLoader streams validation micro-batches in deterministic order.
func (m *DataModule) ValidLoader() (*Loader, error) {
	if m.validDS == nil {
		return nil, fmt.Errorf("%w: Setup must run before ValidLoader", ErrConfig)
	}
	return newLoader(m.validDS, m.tok.PadID(), m.data.MinSeqLength, m.data.MaxSeqLength, m.trainer.MicroBatchSize), nil
}
