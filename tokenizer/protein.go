package tokenizer

import (
	"fmt"
	"strings"
)

// Special token ids occupy the low end of the vocabulary, residues follow.
const (
	PadTokenID  int32 = 0
	UnkTokenID  int32 = 1
	ClsTokenID  int32 = 2
	EosTokenID  int32 = 3
	MaskTokenID int32 = 4

	numSpecialTokens = 5
)

// residueAlphabet is the extended amino-acid alphabet: the 20 canonical
// residues, selenocysteine (U), pyrrolysine (O), stop (*), and the
// ambiguity codes B, X, Z.
const residueAlphabet = "ACDEFGHIKLMNPQRSTVWYUO*BXZ"

// canonicalCount is the number of canonical amino acids at the front of
// residueAlphabet. Random-replacement masking draws only from these.
const canonicalCount = 20

var specialNames = [numSpecialTokens]string{"<pad>", "<unk>", "<cls>", "<eos>", "<mask>"}

// ProteinTokenizer is a char-level tokenizer over the extended amino-acid
// alphabet. No subword merging — each residue is one token.
type ProteinTokenizer struct {
	symbolToID [256]int32 // -1 for symbols outside the alphabet
	idToSymbol []byte
	aminoAcids []int32
}

// NewProteinTokenizer builds the fixed residue vocabulary.
func NewProteinTokenizer() *ProteinTokenizer {
	t := &ProteinTokenizer{
		idToSymbol: []byte(residueAlphabet),
		aminoAcids: make([]int32, canonicalCount),
	}
	for i := range t.symbolToID {
		t.symbolToID[i] = -1
	}
	for i := 0; i < len(residueAlphabet); i++ {
		t.symbolToID[residueAlphabet[i]] = numSpecialTokens + int32(i)
	}
	for i := 0; i < canonicalCount; i++ {
		t.aminoAcids[i] = numSpecialTokens + int32(i)
	}
	return t
}

// Encode maps a residue symbol to its token id. Lowercase input is accepted
// and treated as uppercase.
func (t *ProteinTokenizer) Encode(residue byte) (int32, error) {
	if residue >= 'a' && residue <= 'z' {
		residue -= 'a' - 'A'
	}
	id := t.symbolToID[residue]
	if id < 0 {
		return 0, fmt.Errorf("%w: %q (alphabet %s)", ErrUnknownSymbol, residue, residueAlphabet)
	}
	return id, nil
}

// EncodeSequence maps a residue string to token ids.
func (t *ProteinTokenizer) EncodeSequence(seq string) ([]int32, error) {
	ids := make([]int32, len(seq))
	for i := 0; i < len(seq); i++ {
		id, err := t.Encode(seq[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode converts token ids back to a residue string. Special tokens render
// as their angle-bracket names; out-of-range ids render as <unk>.
func (t *ProteinTokenizer) Decode(ids []int32) string {
	var sb strings.Builder
	for _, id := range ids {
		switch {
		case id >= 0 && id < numSpecialTokens:
			sb.WriteString(specialNames[id])
		case id >= numSpecialTokens && int(id-numSpecialTokens) < len(t.idToSymbol):
			sb.WriteByte(t.idToSymbol[id-numSpecialTokens])
		default:
			sb.WriteString(specialNames[UnkTokenID])
		}
	}
	return sb.String()
}

// VocabSize returns the total vocabulary size including special tokens.
func (t *ProteinTokenizer) VocabSize() int {
	return numSpecialTokens + len(t.idToSymbol)
}

func (t *ProteinTokenizer) PadID() int32  { return PadTokenID }
func (t *ProteinTokenizer) MaskID() int32 { return MaskTokenID }

// AminoAcidIDs returns the ids of the 20 canonical amino acids. The returned
// slice is shared; callers must not mutate it.
func (t *ProteinTokenizer) AminoAcidIDs() []int32 {
	return t.aminoAcids
}
