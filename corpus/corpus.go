package corpus

import "fmt"

// Record is one raw protein sequence with its FASTA identifier. Records are
// immutable once loaded; the pipeline only reads them by index.
type Record struct {
	ID       string
	Sequence string
	// Meta carries optional lightweight metadata (e.g. organism). The
	// pipeline never reads its keys.
	Meta map[string]string
}

// Corpus is a finite, read-only collection of sequence records. All
// implementations must be safe for concurrent reads: data-loading workers
// call Record from multiple goroutines with no external locking.
type Corpus interface {
	Len() int
	Record(i int) (Record, error)
}

// Memory is a Corpus backed by a slice. It is the standard backing for
// tests and for FASTA files loaded whole.
type Memory struct {
	records []Record
}

// NewMemory wraps records into a corpus. The slice is owned by the corpus
// afterwards and must not be mutated.
func NewMemory(records []Record) *Memory {
	return &Memory{records: records}
}

// FromSequences builds an in-memory corpus from bare sequences, assigning
// positional identifiers.
func FromSequences(seqs []string) *Memory {
	records := make([]Record, len(seqs))
	for i, s := range seqs {
		records[i] = Record{ID: fmt.Sprintf("seq%d", i), Sequence: s}
	}
	return &Memory{records: records}
}

func (m *Memory) Len() int { return len(m.records) }

func (m *Memory) Record(i int) (Record, error) {
	if i < 0 || i >= len(m.records) {
		return Record{}, fmt.Errorf("record index %d out of range [0, %d)", i, len(m.records))
	}
	return m.records[i], nil
}
