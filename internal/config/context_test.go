// Package config provides context persistence tests.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContext_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{
			name: "empty context",
			ctx:  Context{},
			want: true,
		},
		{
			name: "with backup only",
			ctx:  Context{BackupID: "b_123"},
			want: false,
		},
		{
			name: "with dialog only",
			ctx:  Context{DialogID: "42"},
			want: false,
		},
		{
			name: "with both",
			ctx:  Context{BackupID: "b_123", DialogID: "42"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.IsEmpty(); got != tt.want {
				t.Errorf("Context.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContext_String(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{
			name: "empty",
			ctx:  Context{},
			want: "(no context set)",
		},
		{
			name: "backup only",
			ctx:  Context{BackupID: "b_1234567890"},
			want: "backup:b_123456",
		},
		{
			name: "backup and named dialog",
			ctx:  Context{BackupID: "b_1", DialogID: "42", DialogName: "Weekend plans"},
			want: "backup:b_1 dialog:Weekend plans",
		},
		{
			name: "dialog without name",
			ctx:  Context{DialogID: "42"},
			want: "dialog:42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.String(); got != tt.want {
				t.Errorf("Context.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContext_SetBackupClearsDialog(t *testing.T) {
	ctx := &Context{}
	ctx.SetDialog("42", "group", "Weekend plans")
	ctx.SetBackup("b_123")

	if ctx.BackupID != "b_123" {
		t.Errorf("BackupID = %v, want b_123", ctx.BackupID)
	}
	if ctx.DialogID != "" || ctx.DialogName != "" {
		t.Error("dialog selection should be cleared when the backup changes")
	}
}

func TestContextStore_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewContextStore(filepath.Join(tmpDir, "context.yaml"))

	ctx := &Context{
		BackupID:   "b_abc123",
		DialogID:   "42",
		DialogKind: "group",
		DialogName: "Weekend plans",
	}

	// Save
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Load
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.BackupID != ctx.BackupID {
		t.Errorf("BackupID = %v, want %v", loaded.BackupID, ctx.BackupID)
	}
	if loaded.DialogID != ctx.DialogID {
		t.Errorf("DialogID = %v, want %v", loaded.DialogID, ctx.DialogID)
	}
	if loaded.DialogName != ctx.DialogName {
		t.Errorf("DialogName = %v, want %v", loaded.DialogName, ctx.DialogName)
	}
}

func TestContextStore_LoadEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewContextStore(filepath.Join(tmpDir, "context.yaml"))

	// Load non-existent file should return empty context
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !loaded.IsEmpty() {
		t.Error("Load() should return empty context for non-existent file")
	}
}

func TestContextStore_Clear(t *testing.T) {
	tmpDir := t.TempDir()
	contextPath := filepath.Join(tmpDir, "context.yaml")
	store := NewContextStore(contextPath)

	ctx := &Context{BackupID: "b_abc123"}

	// Save first
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(contextPath); os.IsNotExist(err) {
		t.Fatal("context file should exist after save")
	}

	// Clear
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	// Verify file is removed
	if _, err := os.Stat(contextPath); !os.IsNotExist(err) {
		t.Error("context file should be removed after clear")
	}
}
