package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMigrations_OrdersAndFilters(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_tokens.sql": "CREATE TABLE tokens (department TEXT PRIMARY KEY);",
		"001_users.sql":  "CREATE TABLE users (id UUID PRIMARY KEY);",
		"notes.txt":      "not a migration",
		"README.sql":     "missing numeric prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations out of order: %v, %v", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "001_users.sql" {
		t.Errorf("unexpected first migration: %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
