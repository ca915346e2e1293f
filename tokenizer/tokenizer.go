package tokenizer

import "errors"

// ErrUnknownSymbol is returned when a residue symbol falls outside the
// supported alphabet. It signals a data/tokenizer mismatch and is never
// silently skipped upstream.
var ErrUnknownSymbol = errors.New("unknown residue symbol")

// Tokenizer is the common interface for residue tokenizers in plmtrain.
// The data pipeline only needs symbol-to-id mapping plus the special token
// ids consumed by masking and padding.
type Tokenizer interface {
	// Encode maps a single residue symbol to its token id.
	Encode(residue byte) (int32, error)
	// EncodeSequence maps a whole residue string to token ids.
	EncodeSequence(seq string) ([]int32, error)
	// Decode converts token ids back to a residue string.
	Decode(ids []int32) string
	VocabSize() int

	PadID() int32
	MaskID() int32
	// AminoAcidIDs returns the ids of the canonical amino acids, used to
	// restrict random-replacement masking to valid residues.
	AminoAcidIDs() []int32
}
