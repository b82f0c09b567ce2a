package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"pharmaevents/config"
)

func TestConfirmDeletePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "uppercase Y confirms", input: "Y\n", want: true},
		{name: "lowercase y does not confirm", input: "y\n", want: false},
		{name: "N does not confirm", input: "N\n", want: false},
		{name: "empty does not confirm", input: "\n", want: false},
		{name: "Y without newline confirms", input: "Y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmDeletePrompt(bytes.NewBufferString(tt.input), &out, "./pharmaevents.db")
			if err != nil {
				t.Fatalf("confirm prompt returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if out.Len() == 0 {
				t.Fatalf("expected prompt output")
			}
		})
	}
}

func TestRemoveDatabaseFile(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pharmaevents.db")
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write temp db file: %v", err)
		}

		if err := removeDatabaseFile(path); err != nil {
			t.Fatalf("remove db file: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected file to be deleted")
		}
	})

	t.Run("fails for directory path", func(t *testing.T) {
		dir := t.TempDir()
		if err := removeDatabaseFile(dir); err == nil {
			t.Fatalf("expected error for directory path")
		}
	})

	t.Run("fails for missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.db")
		if err := removeDatabaseFile(path); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}

func TestResolveDeletePath(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		cfg     config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{name: "explicit flag", flag: "./other.db", cfg: config.DatabaseConfig{Driver: "postgres", DSN: "postgres://db/app"}, want: "./other.db"},
		{name: "configured sqlite file", cfg: config.DatabaseConfig{Driver: "sqlite", DSN: "./pharmaevents.db"}, want: "./pharmaevents.db"},
		{name: "postgres refused", cfg: config.DatabaseConfig{Driver: "postgres", DSN: "postgres://db/app"}, wantErr: true},
		{name: "memory refused", cfg: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveDeletePath(tt.flag, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got path %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
