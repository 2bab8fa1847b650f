package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store is the single in-memory Config instance, guarded by a mutex and
// persisted to a JSON file on every mutation. It is the only writer of
// Config; readers elsewhere (the device session, the action dispatcher)
// take a Snapshot copy under this mutex rather than reading the file.
type Store struct {
	log *zap.SugaredLogger

	path string

	mu  sync.Mutex
	cfg Config
}

// Open loads the config file at path, seeding a default config if the file
// is absent or unreadable, and returns a Store guarding it.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	s := &Store{log: log, path: path}

	cfg, err := loadFile(path)
	if err != nil {
		log.Warnw("config: failed to load, using defaults", "path", path, "error", err)
		cfg = DefaultConfig()
	}
	s.cfg = cfg
	s.persistLocked()
	return s, nil
}

func loadFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: bad json on disk: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Snapshot returns a deep-enough copy of the current config for read-only
// use (e.g. serializing to the HTTP command surface).
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneConfig(s.cfg)
}

func cloneConfig(c Config) Config {
	pages := make([]Page, len(c.Pages))
	for i, p := range c.Pages {
		buttons := make(map[string]ButtonConfig, len(p.Buttons))
		for k, v := range p.Buttons {
			buttons[k] = v
		}
		pages[i] = Page{Name: p.Name, Buttons: buttons}
	}
	return Config{Brightness: c.Brightness, CurrentPage: c.CurrentPage, Pages: pages}
}

// persistLocked serializes the config to disk. Callers must hold s.mu.
// Write failures are logged and otherwise swallowed: the next successful
// save overwrites whatever partial state made it to disk, per spec.md §7.
func (s *Store) persistLocked() {
	b, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		s.log.Errorw("config: failed to marshal", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Errorw("config: failed to create config dir", "error", err)
		return
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		s.log.Errorw("config: failed to write", "path", s.path, "error", err)
	}
}

// SaveFullConfig replaces the entire config, e.g. from the GUI's bulk edit
// surface.
func (s *Store) SaveFullConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cloneConfig(cfg)
	s.persistLocked()
	return nil
}

// SetPage sets the current page index.
func (s *Store) SetPage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cfg.Pages) {
		return fmt.Errorf("config: page index %d out of range", index)
	}
	s.cfg.CurrentPage = index
	s.persistLocked()
	return nil
}

// AddPage appends a new blank page and returns its index.
func (s *Store) AddPage(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Pages = append(s.cfg.Pages, NewPage(name))
	s.persistLocked()
	return len(s.cfg.Pages) - 1, nil
}

// DeletePage removes a page, failing if it is the last one (spec.md §7.9).
func (s *Store) DeletePage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cfg.Pages) <= 1 {
		return fmt.Errorf("config: cannot delete the last page")
	}
	if index < 0 || index >= len(s.cfg.Pages) {
		return fmt.Errorf("config: page index %d out of range", index)
	}
	s.cfg.Pages = append(s.cfg.Pages[:index], s.cfg.Pages[index+1:]...)
	if s.cfg.CurrentPage >= len(s.cfg.Pages) {
		s.cfg.CurrentPage = len(s.cfg.Pages) - 1
	}
	s.persistLocked()
	return nil
}

// UpdatePageName renames a page.
func (s *Store) UpdatePageName(index int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cfg.Pages) {
		return fmt.Errorf("config: page index %d out of range", index)
	}
	s.cfg.Pages[index].Name = name
	s.persistLocked()
	return nil
}

// UpdateButton sets a single button's config on a page.
func (s *Store) UpdateButton(pageIndex int, buttonID string, btn ButtonConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageIndex < 0 || pageIndex >= len(s.cfg.Pages) {
		return fmt.Errorf("config: page index %d out of range", pageIndex)
	}
	s.cfg.Pages[pageIndex].Buttons[buttonID] = btn
	s.persistLocked()
	return nil
}

// SetBrightnessLevel sets the configured brightness percentage.
func (s *Store) SetBrightnessLevel(brightness int) error {
	if brightness < 0 || brightness > 100 {
		return fmt.Errorf("config: brightness %d out of range [0,100]", brightness)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Brightness = brightness
	s.persistLocked()
	return nil
}

// ClearPageButtons resets every button on a page back to blank.
func (s *Store) ClearPageButtons(pageIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageIndex < 0 || pageIndex >= len(s.cfg.Pages) {
		return fmt.Errorf("config: invalid page index")
	}
	s.cfg.Pages[pageIndex].Buttons = blankButtons()
	s.persistLocked()
	return nil
}

// ResetConfig restores the default configuration.
func (s *Store) ResetConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = DefaultConfig()
	s.persistLocked()
	return nil
}

// Path returns the backing file path, for diagnostics.
func (s *Store) Path() string {
	return s.path
}
