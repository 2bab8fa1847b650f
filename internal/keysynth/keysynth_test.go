package keysynth

import (
	"testing"

	"github.com/bendahl/uinput"
)

func TestChordCodesOrderAndCase(t *testing.T) {
	codes := chordCodes("Ctrl+Shift+p")
	want := []int{uinput.KeyLeftctrl, uinput.KeyLeftshift, uinput.KeyP}
	if len(codes) != len(want) {
		t.Fatalf("got %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("got %v, want %v", codes, want)
		}
	}
}

func TestChordCodesDropsUnknownTokens(t *testing.T) {
	codes := chordCodes("ctrl+bogus+c")
	want := []int{uinput.KeyLeftctrl, uinput.KeyC}
	if len(codes) != len(want) {
		t.Fatalf("got %v, want %v", codes, want)
	}
}

func TestChordCodesEmptyForAllUnknown(t *testing.T) {
	if codes := chordCodes("bogus1+bogus2"); len(codes) != 0 {
		t.Fatalf("expected no codes, got %v", codes)
	}
}

func TestRuneCodesCoversLettersAndDigits(t *testing.T) {
	if _, ok := runeCodes['a']; !ok {
		t.Fatal("expected lowercase letters mapped")
	}
	if _, ok := runeCodes['A']; !ok {
		t.Fatal("expected uppercase letters mapped to the same physical key")
	}
	if _, ok := runeCodes['5']; !ok {
		t.Fatal("expected digits mapped")
	}
	if _, ok := runeCodes['\x01']; ok {
		t.Fatal("expected control characters to be unmapped")
	}
}
