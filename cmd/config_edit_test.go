package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestPickEditor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		visual string
		editor string
		want   string
	}{
		{name: "visual wins", visual: "code --wait", editor: "nano", want: "code --wait"},
		{name: "editor fallback", visual: "  ", editor: "nano", want: "nano"},
		{name: "default vi", want: "vi"},
	}
	for _, tt := range tests {
		if got := pickEditor(tt.visual, tt.editor); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestEditorCommand(t *testing.T) {
	t.Parallel()

	cmd, err := editorCommand("code --wait", "/tmp/cfg.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmd.Args) != 3 || cmd.Args[0] != "code" || cmd.Args[1] != "--wait" || cmd.Args[2] != "/tmp/cfg.yaml" {
		t.Fatalf("unexpected command args: %#v", cmd.Args)
	}
	if _, err := editorCommand("   ", "/tmp/cfg.yaml"); err == nil {
		t.Fatalf("expected error for empty editor")
	}
}

func TestEditConfigCreatesValidatesAndWarns(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no 'true' binary available to act as editor")
	}

	path := filepath.Join(t.TempDir(), ".pharmaevents.yaml")
	var out bytes.Buffer
	if err := editConfig(&out, "true", path); err != nil {
		t.Fatalf("edit config: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Created config file from example: " + path,
		"Database: sqlite, Import batch size: 50, Log: info/console",
		"server.session_secret",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, text)
		}
	}
}

func TestEditAndValidateConfigRejectsInvalidFile(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no 'true' binary available to act as editor")
	}

	path := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(path, []byte("database:\n  driver: \"mysql\"\n"), 0o600); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}
	_, err := editAndValidateConfig("true", path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected validation error naming %s, got %v", path, err)
	}
}
