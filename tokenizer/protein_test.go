package tokenizer

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tok := NewProteinTokenizer()

	seq := "MKTAYIAKQR"
	ids, err := tok.EncodeSequence(seq)
	if err != nil {
		t.Fatalf("EncodeSequence(%q) failed: %v", seq, err)
	}
	if len(ids) != len(seq) {
		t.Fatalf("expected %d ids, got %d", len(seq), len(ids))
	}
	if got := tok.Decode(ids); got != seq {
		t.Errorf("round trip mismatch: got %q, want %q", got, seq)
	}
}

func TestEncodeLowercase(t *testing.T) {
	tok := NewProteinTokenizer()

	upper, err := tok.Encode('M')
	if err != nil {
		t.Fatalf("Encode('M') failed: %v", err)
	}
	lower, err := tok.Encode('m')
	if err != nil {
		t.Fatalf("Encode('m') failed: %v", err)
	}
	if upper != lower {
		t.Errorf("lowercase id %d != uppercase id %d", lower, upper)
	}
}

func TestEncodeUnknownSymbol(t *testing.T) {
	tok := NewProteinTokenizer()

	if _, err := tok.Encode('1'); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol for '1', got %v", err)
	}
	if _, err := tok.EncodeSequence("MK-TA"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol for gap character, got %v", err)
	}
}

func TestSpecialTokenIDs(t *testing.T) {
	tok := NewProteinTokenizer()

	if tok.PadID() != PadTokenID {
		t.Errorf("PadID() = %d, want %d", tok.PadID(), PadTokenID)
	}
	if tok.MaskID() != MaskTokenID {
		t.Errorf("MaskID() = %d, want %d", tok.MaskID(), MaskTokenID)
	}

	// Special ids must not collide with residue ids.
	for _, r := range []byte(residueAlphabet) {
		id, err := tok.Encode(r)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", r, err)
		}
		if id < numSpecialTokens {
			t.Errorf("residue %q id %d collides with special token range", r, id)
		}
	}
}

func TestAminoAcidIDs(t *testing.T) {
	tok := NewProteinTokenizer()

	ids := tok.AminoAcidIDs()
	if len(ids) != canonicalCount {
		t.Fatalf("expected %d canonical amino acid ids, got %d", canonicalCount, len(ids))
	}

	seen := make(map[int32]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate amino acid id %d", id)
		}
		seen[id] = true
		if id < numSpecialTokens || int(id) >= tok.VocabSize() {
			t.Errorf("amino acid id %d out of residue range", id)
		}
	}

	// Ambiguity codes must be excluded from the random-replacement set.
	for _, r := range []byte("BXZ*") {
		id, _ := tok.Encode(r)
		if seen[id] {
			t.Errorf("ambiguity code %q id %d should not be a canonical amino acid", r, id)
		}
	}
}

func TestVocabSize(t *testing.T) {
	tok := NewProteinTokenizer()
	want := numSpecialTokens + len(residueAlphabet)
	if tok.VocabSize() != want {
		t.Errorf("VocabSize() = %d, want %d", tok.VocabSize(), want)
	}
}
