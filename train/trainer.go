// Package train drives the data pipeline through an opaque model. The
// transformer, optimizer, and any parallelism live behind the Model
// interface; this package only owns batch flow, evaluation cadence, and
// progress reporting.
package train

import (
	"fmt"
	"io"
	"math"
	"time"

	"k8s.io/klog/v2"

	"plmtrain/collate"
	"plmtrain/datamodule"
)

// Model is the external training capability. Step consumes one padded
// micro-batch and returns its loss; Eval is a forward-only pass.
type Model interface {
	Step(batch *collate.Batch) (loss float64, err error)
	Eval(batch *collate.Batch) (loss float64, err error)
}

// Config holds the step-loop cadence knobs.
type Config struct {
	LogEvery  int
	EvalEvery int
}

func DefaultConfig() Config {
	return Config{LogEvery: 10, EvalEvery: 100}
}

// Trainer runs micro-batch steps from the data module's train loader with
// periodic validation passes.
type Trainer struct {
	Model  Model
	Data   *datamodule.DataModule
	Config Config
}

func New(model Model, data *datamodule.DataModule, cfg Config) *Trainer {
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 10
	}
	if cfg.EvalEvery <= 0 {
		cfg.EvalEvery = 100
	}
	return &Trainer{Model: model, Data: data, Config: cfg}
}

// Run streams every training micro-batch through the model. The loader is
// already sized to max_steps * global_batch_size samples, so exhausting it
// is the normal termination.
func (t *Trainer) Run() error {
	trainLoader, err := t.Data.TrainLoader()
	if err != nil {
		return err
	}
	validLoader, err := t.Data.ValidLoader()
	if err != nil {
		return err
	}

	klog.Infof("run %s: %d train batches, %d valid batches",
		t.Data.RunID(), trainLoader.NumBatches(), validLoader.NumBatches())

	start := time.Now()
	smoothLoss := float64(0)
	bestEvalLoss := math.MaxFloat64
	step := 0

	for {
		batch, err := trainLoader.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", step+1, err)
		}
		step++

		loss, err := t.Model.Step(batch)
		if err != nil {
			return fmt.Errorf("step %d: model step: %w", step, err)
		}

		if smoothLoss == 0 {
			smoothLoss = loss
		} else {
			smoothLoss = 0.95*smoothLoss + 0.05*loss
		}

		if step%t.Config.LogEvery == 0 {
			klog.Infof("step %4d | loss %.4f (smooth %.4f) | batch [%d, %d]",
				step, loss, smoothLoss, batch.Size(), batch.SeqLength())
		}

		if step%t.Config.EvalEvery == 0 {
			evalLoss, err := t.evaluate(validLoader)
			if err != nil {
				return fmt.Errorf("step %d: eval: %w", step, err)
			}
			improved := ""
			if evalLoss < bestEvalLoss {
				bestEvalLoss = evalLoss
				improved = " *best"
			}
			klog.Infof("step %4d | eval loss %.4f%s", step, evalLoss, improved)
		}
	}

	klog.Infof("run %s complete: %d steps in %v", t.Data.RunID(), step, time.Since(start))
	return nil
}

// evaluate runs one full pass over the validation loader.
func (t *Trainer) evaluate(loader *datamodule.Loader) (float64, error) {
	loader.Reset()
	total := float64(0)
	batches := 0
	for {
		batch, err := loader.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		loss, err := t.Model.Eval(batch)
		if err != nil {
			return 0, err
		}
		total += loss
		batches++
	}
	if batches == 0 {
		return 0, fmt.Errorf("validation loader produced no batches")
	}
	return total / float64(batches), nil
}
