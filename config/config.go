// Package config holds the flat experiment configuration records and their
// YAML loading. No inheritance chains: each concern (data, masking,
// trainer) is its own record composed into Experiment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plmtrain/dataset"
	"plmtrain/datamodule"
)

// Masking is the YAML-facing masking record. Strategy is a string so config
// files stay readable; ToConfig resolves it to the dataset type.
type Masking struct {
	MaskProb       float64 `yaml:"mask_prob"`
	MaskTokenProb  float64 `yaml:"mask_token_prob"`
	MaskRandomProb float64 `yaml:"mask_random_prob"`
	Strategy       string  `yaml:"random_mask_strategy"` // amino_acids_only | all_tokens
}

// ToConfig resolves the record into a validated dataset.MaskingConfig.
func (m Masking) ToConfig() (dataset.MaskingConfig, error) {
	cfg := dataset.MaskingConfig{
		MaskProb:       m.MaskProb,
		MaskTokenProb:  m.MaskTokenProb,
		MaskRandomProb: m.MaskRandomProb,
	}
	switch m.Strategy {
	case "", "amino_acids_only":
		cfg.Strategy = dataset.AminoAcidsOnly
	case "all_tokens":
		cfg.Strategy = dataset.AllTokens
	default:
		return cfg, fmt.Errorf("%w: unknown random_mask_strategy %q", dataset.ErrConfig, m.Strategy)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Experiment is the full flat configuration for one training run.
type Experiment struct {
	Name      string                   `yaml:"name"`
	TrainPath string                   `yaml:"train_path"`
	ValidPath string                   `yaml:"valid_path"`
	Data      datamodule.DataConfig    `yaml:"data"`
	Masking   Masking                  `yaml:"masking"`
	Trainer   datamodule.TrainerConfig `yaml:"trainer"`
}

// Default returns a small configuration suitable for local runs.
func Default() Experiment {
	return Experiment{
		Name: "plmtrain",
		Data: datamodule.DataConfig{
			Seed:         42,
			MaxSeqLength: 512,
		},
		Masking: Masking{
			MaskProb:       0.15,
			MaskTokenProb:  0.8,
			MaskRandomProb: 0.1,
			Strategy:       "amino_acids_only",
		},
		Trainer: datamodule.TrainerConfig{
			MaxSteps:        100,
			GlobalBatchSize: 32,
			MicroBatchSize:  8,
			LimitValBatches: 1.0,
		},
	}
}

// AMPLIFYPretrain mirrors the published AMPLIFY pretraining defaults.
func AMPLIFYPretrain() Experiment {
	e := Default()
	e.Name = "amplify-pretrain"
	e.Data.MaxSeqLength = 512
	e.Trainer = datamodule.TrainerConfig{
		MaxSteps:        1_000_000,
		GlobalBatchSize: 4096,
		MicroBatchSize:  512,
		LimitValBatches: 1.0,
	}
	return e
}

// ESM2Finetune mirrors the ESM2 fine-tuning defaults.
func ESM2Finetune() Experiment {
	e := Default()
	e.Name = "esm2-finetune"
	e.Data.MaxSeqLength = 1024
	e.Trainer = datamodule.TrainerConfig{
		MaxSteps:        500_000,
		GlobalBatchSize: 2048,
		MicroBatchSize:  32,
		LimitValBatches: 1.0,
	}
	return e
}

// Load reads a YAML experiment file over the defaults and validates it.
func Load(path string) (Experiment, error) {
	e := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return e, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Validate checks every component record.
func (e Experiment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("experiment name must not be empty")
	}
	if _, err := e.Masking.ToConfig(); err != nil {
		return err
	}
	if err := e.Trainer.Validate(); err != nil {
		return err
	}
	if e.Data.MaxSeqLength <= 0 {
		return fmt.Errorf("%w: max_seq_length %d must be positive", datamodule.ErrConfig, e.Data.MaxSeqLength)
	}
	return nil
}
