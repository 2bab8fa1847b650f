// Package config holds the persisted device configuration: pages, buttons
// and brightness, plus the in-memory store that guards mutation and
// persistence.
package config

import (
	"fmt"
	"strconv"
)

// KeyCount is the number of logical keys on the pad.
const KeyCount = 15

// DefaultColor is the fallback background color used for a blank button and
// for any color string that fails to parse.
const DefaultColor = "#1a1a2e"

// ButtonConfig describes one key's appearance and action.
type ButtonConfig struct {
	Label   string `json:"label"`
	Command string `json:"command"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
}

// IsBlank reports whether the button matches the default seed state, i.e.
// whether the device session needs to bother rendering it at all.
func (b ButtonConfig) IsBlank() bool {
	return b.Label == "" && b.Icon == "" && (b.Color == "" || b.Color == DefaultColor)
}

// Page is a named collection of up to KeyCount buttons, keyed by the
// logical key id as a decimal string ("1".."15").
type Page struct {
	Name    string                  `json:"name"`
	Buttons map[string]ButtonConfig `json:"buttons"`
}

// Button returns the ButtonConfig for a logical key, or the zero value if
// the page has no entry for it.
func (p Page) Button(keyID int) ButtonConfig {
	return p.Buttons[strconv.Itoa(keyID)]
}

// Config is the full persisted state of the pad.
type Config struct {
	Brightness  int    `json:"brightness"`
	CurrentPage int    `json:"currentPage"`
	Pages       []Page `json:"pages"`
}

// Validate checks the invariants spec.md places on Config.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("config: pages must be non-empty")
	}
	if c.CurrentPage < 0 || c.CurrentPage >= len(c.Pages) {
		return fmt.Errorf("config: currentPage %d out of range [0,%d)", c.CurrentPage, len(c.Pages))
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return fmt.Errorf("config: brightness %d out of range [0,100]", c.Brightness)
	}
	return nil
}

// CurrentPagePtr returns a pointer into c's own Pages slice for the
// currently selected page; callers use it on a Store.Snapshot copy, so no
// lock is involved. Validate must have already succeeded.
func (c *Config) CurrentPagePtr() *Page {
	return &c.Pages[c.CurrentPage]
}

// blankButtons returns a fresh set of KeyCount default buttons.
func blankButtons() map[string]ButtonConfig {
	buttons := make(map[string]ButtonConfig, KeyCount)
	for i := 1; i <= KeyCount; i++ {
		buttons[strconv.Itoa(i)] = ButtonConfig{Color: DefaultColor}
	}
	return buttons
}

// DefaultConfig returns the seed configuration used on first run: one page
// of blank buttons with key 5 preconfigured as a next-page button.
func DefaultConfig() Config {
	buttons := blankButtons()
	buttons["5"] = ButtonConfig{
		Label:   ">>",
		Command: "__NEXT_PAGE__",
		Color:   "#e94560",
	}
	return Config{
		Brightness:  50,
		CurrentPage: 0,
		Pages: []Page{
			{Name: "Principal", Buttons: buttons},
		},
	}
}

// NewPage returns a fresh, blank Page suitable for AddPage.
func NewPage(name string) Page {
	return Page{Name: name, Buttons: blankButtons()}
}
