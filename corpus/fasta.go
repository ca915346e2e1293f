package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/koeng101/dnadesign/lib/bio"
)

// ReadFASTA loads every record from a FASTA stream into memory. Sequences
// are uppercased so the tokenizer sees a single case.
func ReadFASTA(r io.Reader) (*Memory, error) {
	parser := bio.NewFastaParser(r)
	var records []Record
	for {
		rec, err := parser.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse fasta record %d: %w", len(records), err)
		}
		records = append(records, Record{
			ID:       rec.Identifier,
			Sequence: strings.ToUpper(rec.Sequence),
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fasta stream contains no records")
	}
	return NewMemory(records), nil
}

// OpenFASTA loads a FASTA file into an in-memory corpus.
func OpenFASTA(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	defer f.Close()

	m, err := ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
