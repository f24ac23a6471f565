package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Context remembers the last viewed selection (backup and dialog) so
// bare `scrollback view` reopens where the user left off.
type Context struct {
	// BackupID is the currently selected backup.
	BackupID string `yaml:"backup,omitempty"`
	// DialogID is the currently selected dialog within the backup.
	DialogID string `yaml:"dialog,omitempty"`
	// DialogKind is the selected dialog's kind.
	DialogKind string `yaml:"dialog_kind,omitempty"`
	// DialogName is the human-readable dialog name (for display).
	DialogName string `yaml:"dialog_name,omitempty"`
	// UpdatedAt is when the context was last modified.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no context is set.
func (c *Context) IsEmpty() bool {
	return c.BackupID == "" && c.DialogID == ""
}

// HasBackup returns true if a backup is set.
func (c *Context) HasBackup() bool {
	return c.BackupID != ""
}

// HasDialog returns true if a dialog is set.
func (c *Context) HasDialog() bool {
	return c.DialogID != ""
}

// SetBackup sets the backup context. The dialog selection is cleared;
// it belongs to the backup.
func (c *Context) SetBackup(id string) {
	c.BackupID = id
	c.DialogID = ""
	c.DialogKind = ""
	c.DialogName = ""
	c.UpdatedAt = time.Now()
}

// SetDialog sets the dialog context.
func (c *Context) SetDialog(id, kind, name string) {
	c.DialogID = id
	c.DialogKind = kind
	c.DialogName = name
	c.UpdatedAt = time.Now()
}

// String returns a human-readable representation of the context.
func (c *Context) String() string {
	if c.IsEmpty() {
		return "(no context set)"
	}
	result := ""
	if c.HasBackup() {
		result = fmt.Sprintf("backup:%s", shortID(c.BackupID))
	}
	if c.HasDialog() {
		name := c.DialogName
		if name == "" {
			name = shortID(c.DialogID)
		}
		if result != "" {
			result += " "
		}
		result += fmt.Sprintf("dialog:%s", name)
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ContextStore manages loading and saving context.
type ContextStore struct {
	path string
	mu   sync.RWMutex
}

// NewContextStore creates a new context store.
// If path is empty, uses the default path (~/.config/scrollback/context.yaml).
func NewContextStore(path string) *ContextStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "scrollback", "context.yaml")
	}
	return &ContextStore{path: path}
}

// Path returns the context file path.
func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the context from disk.
// Returns an empty context if the file doesn't exist.
func (s *ContextStore) Load() (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := &Context{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	if err := yaml.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	return ctx, nil
}

// Save writes the context to disk.
func (s *ContextStore) Save(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	data, err := yaml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	return nil
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
