package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StateTTL is how long a cached id is trusted before it is dropped unread.
const StateTTL = 24 * time.Hour

// State is what the player remembers between runs.
type State struct {
	SessionID      string    `json:"session_id,omitempty"`
	SessionSavedAt time.Time `json:"session_saved_at,omitempty"`
	ProblemID      string    `json:"problem_id,omitempty"`
	ProblemSavedAt time.Time `json:"problem_saved_at,omitempty"`
}

// Cache persists State as a JSON file. The file is advisory: a missing or
// unreadable file is an empty state and the server stays authoritative.
type Cache struct {
	path string
	now  func() time.Time
}

func NewCache(path string) *Cache {
	return &Cache{path: path, now: time.Now}
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultCachePath returns the default location of the state file.
func DefaultCachePath() string {
	return filepath.Join(XDGConfigHome(), "mathquest", "state.json")
}

func (c *Cache) Path() string {
	return c.path
}

// Load returns the cached state with expired entries cleared.
func (c *Cache) Load() State {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return State{}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}
	}

	now := c.now()
	if s.SessionID != "" && now.Sub(s.SessionSavedAt) > StateTTL {
		s.SessionID, s.SessionSavedAt = "", time.Time{}
	}
	if s.ProblemID != "" && now.Sub(s.ProblemSavedAt) > StateTTL {
		s.ProblemID, s.ProblemSavedAt = "", time.Time{}
	}
	return s
}

// Save writes s atomically, stamping entries that have no timestamp yet.
func (c *Cache) Save(s State) error {
	now := c.now()
	if s.SessionID != "" && s.SessionSavedAt.IsZero() {
		s.SessionSavedAt = now
	}
	if s.ProblemID != "" && s.ProblemSavedAt.IsZero() {
		s.ProblemSavedAt = now
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
