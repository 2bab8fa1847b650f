// Package keysynth synthesizes keyboard input on Linux via a virtual
// uinput device, backing the __KEY_ and __TYPE_ action classes.
package keysynth

import (
	"fmt"
	"strings"
	"time"

	"github.com/bendahl/uinput"
)

// Synth owns a single virtual keyboard device for the process lifetime.
type Synth struct {
	kb uinput.Keyboard
}

// New creates the virtual keyboard device.
func New() (*Synth, error) {
	kb, err := uinput.CreateKeyboard("/dev/uinput", []byte("redragon-deck-keysynth"))
	if err != nil {
		return nil, fmt.Errorf("keysynth: create keyboard: %w", err)
	}
	return &Synth{kb: kb}, nil
}

// Close destroys the virtual keyboard device.
func (s *Synth) Close() error {
	return s.kb.Close()
}

// PressChord parses a "+"-separated token combo, presses every token in
// left-to-right order, then releases them in reverse order. Unknown
// tokens are silently dropped, matching the documented "unknown tokens
// are silently dropped" contract.
func (s *Synth) PressChord(combo string) error {
	codes := chordCodes(combo)
	if len(codes) == 0 {
		return nil
	}

	for _, code := range codes {
		if err := s.kb.KeyDown(code); err != nil {
			return fmt.Errorf("keysynth: key down %d: %w", code, err)
		}
	}
	for i := len(codes) - 1; i >= 0; i-- {
		if err := s.kb.KeyUp(codes[i]); err != nil {
			return fmt.Errorf("keysynth: key up %d: %w", codes[i], err)
		}
	}
	return nil
}

// chordCodes resolves a "+"-separated token combo into key codes,
// silently dropping any token absent from the vocabulary.
func chordCodes(combo string) []int {
	var codes []int
	for _, tok := range strings.Split(combo, "+") {
		code, ok := keyCodes[strings.ToLower(strings.TrimSpace(tok))]
		if !ok {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// TypeText synthesizes each rune of text as an individual key press,
// falling back to silently skipping runes the keyboard layout table has
// no mapping for.
func (s *Synth) TypeText(text string) error {
	for _, r := range text {
		code, ok := runeCodes[r]
		if !ok {
			continue
		}
		if err := s.kb.KeyPress(code); err != nil {
			return fmt.Errorf("keysynth: type %q: %w", r, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}
