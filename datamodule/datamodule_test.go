package datamodule

import (
	"errors"
	"io"
	"testing"

	"plmtrain/corpus"
	"plmtrain/dataset"
	"plmtrain/tokenizer"
)

func testCorpus(n int) *corpus.Memory {
	seqs := make([]string, n)
	base := "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ"
	for i := range seqs {
		seqs[i] = base[:5+i%20]
	}
	return corpus.FromSequences(seqs)
}

func testConfigs() (DataConfig, dataset.MaskingConfig, TrainerConfig) {
	return DataConfig{Seed: 42, MaxSeqLength: 64},
		dataset.DefaultMaskingConfig(),
		TrainerConfig{MaxSteps: 3, GlobalBatchSize: 8, MicroBatchSize: 4, LimitValBatches: 1.0}
}

// padlessTokenizer reports no pad token to exercise the fail-fast path.
type padlessTokenizer struct{ *tokenizer.ProteinTokenizer }

func (padlessTokenizer) PadID() int32 { return -1 }

func TestFailFastWithoutPadToken(t *testing.T) {
	data, masking, trainer := testConfigs()
	tok := padlessTokenizer{tokenizer.NewProteinTokenizer()}

	_, err := New(testCorpus(10), testCorpus(10), tok, data, masking, trainer)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for missing pad token, got %v", err)
	}
}

func TestFailFastWithoutMaxSteps(t *testing.T) {
	data, masking, trainer := testConfigs()
	trainer.MaxSteps = 0

	_, err := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for missing max steps, got %v", err)
	}
}

func TestFailFastBadMasking(t *testing.T) {
	data, masking, trainer := testConfigs()
	masking.MaskTokenProb = 0.8
	masking.MaskRandomProb = 0.3 // sum > 1

	_, err := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if !errors.Is(err, dataset.ErrConfig) {
		t.Errorf("expected masking config error, got %v", err)
	}
}

func TestTrainSampleCount(t *testing.T) {
	data, masking, trainer := testConfigs()
	m, err := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	want := trainer.MaxSteps * trainer.GlobalBatchSize
	if m.NumTrainSamples() != want {
		t.Errorf("NumTrainSamples() = %d, want %d", m.NumTrainSamples(), want)
	}
}

func TestInferNumSamples(t *testing.T) {
	cases := []struct {
		limit   float64
		dsLen   int
		gbs     int
		want    int
		wantErr bool
	}{
		{1.0, 100, 8, 100, false},
		{0.5, 100, 8, 50, false},
		{0.01, 100, 8, 8, false}, // clamped to one global batch
		{2.0, 100, 8, 16, false}, // whole batch count
		{2.5, 100, 8, 0, true},
		{0, 100, 8, 0, true},
	}
	for _, c := range cases {
		got, err := InferNumSamples(c.limit, c.dsLen, c.gbs)
		if c.wantErr {
			if err == nil {
				t.Errorf("InferNumSamples(%v) expected error", c.limit)
			}
			continue
		}
		if err != nil {
			t.Errorf("InferNumSamples(%v) failed: %v", c.limit, err)
			continue
		}
		if got != c.want {
			t.Errorf("InferNumSamples(%v, %d, %d) = %d, want %d", c.limit, c.dsLen, c.gbs, got, c.want)
		}
	}
}

func TestLoaderStreamsAllSamples(t *testing.T) {
	data, masking, trainer := testConfigs()
	m, err := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	loader, err := m.TrainLoader()
	if err != nil {
		t.Fatalf("TrainLoader failed: %v", err)
	}

	total := 0
	batches := 0
	for {
		b, err := loader.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextBatch failed: %v", err)
		}
		total += b.Size()
		batches++
		if b.SeqLength() > data.MaxSeqLength {
			t.Fatalf("batch length %d exceeds max %d", b.SeqLength(), data.MaxSeqLength)
		}
	}

	if total != m.NumTrainSamples() {
		t.Errorf("streamed %d samples, want %d", total, m.NumTrainSamples())
	}
	if batches != loader.NumBatches() {
		t.Errorf("streamed %d batches, NumBatches() = %d", batches, loader.NumBatches())
	}
}

func TestLoaderPartialTail(t *testing.T) {
	data, masking, trainer := testConfigs()
	trainer.LimitValBatches = 1.0
	m, err := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	// 10 valid samples at micro batch 4 → 4, 4, 2.
	loader, _ := m.ValidLoader()
	sizes := []int{}
	for {
		b, err := loader.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextBatch failed: %v", err)
		}
		sizes = append(sizes, b.Size())
	}
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Errorf("batch sizes = %v, want [4 4 2]", sizes)
	}
}

func TestLoaderReset(t *testing.T) {
	data, masking, trainer := testConfigs()
	m, _ := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	loader, _ := m.ValidLoader()
	first, err := loader.NextBatch()
	if err != nil {
		t.Fatalf("NextBatch failed: %v", err)
	}
	loader.Reset()
	again, err := loader.NextBatch()
	if err != nil {
		t.Fatalf("NextBatch after Reset failed: %v", err)
	}

	if first.Size() != again.Size() || first.SeqLength() != again.SeqLength() {
		t.Fatal("reset batch shape differs")
	}
	for i, v := range first.InputIDs.Data() {
		if again.InputIDs.Data()[i] != v {
			t.Fatal("reset batch contents differ; loader is not deterministic")
		}
	}
}

func TestValidLoaderUnshuffledOrder(t *testing.T) {
	data, masking, trainer := testConfigs()
	trainer.GlobalBatchSize = 10
	trainer.MicroBatchSize = 10
	m, _ := New(testCorpus(10), testCorpus(10), tokenizer.NewProteinTokenizer(), data, masking, trainer)
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	loader, _ := m.ValidLoader()
	b, err := loader.NextBatch()
	if err != nil {
		t.Fatalf("NextBatch failed: %v", err)
	}

	// Unshuffled validation visits records 0..n-1 in order, so row lengths
	// must match the corpus record lengths.
	c := testCorpus(10)
	for r := 0; r < b.Size(); r++ {
		rec, _ := c.Record(r)
		if b.Lengths[r] != len(rec.Sequence) {
			t.Errorf("row %d length %d, want %d (corpus order)", r, b.Lengths[r], len(rec.Sequence))
		}
	}
}
