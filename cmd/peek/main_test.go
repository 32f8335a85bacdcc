package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"config", "encode", "render", "serve", "version"}
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("peek %v: %v", args, err)
	}
	return out.String()
}

func TestRenderCommandReadsStdin(t *testing.T) {
	cfg := writeTestConfig(t)
	out := execute(t, "# Title\n", "render", "-c", cfg)
	if !strings.Contains(out, `id="title"`) || !strings.Contains(out, `data-line-begin="1"`) {
		t.Fatalf("unexpected render output %q", out)
	}
}

func TestRenderCommandMessage(t *testing.T) {
	cfg := writeTestConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("a\nb\nc"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	out := execute(t, "", "render", "-c", cfg, "--message", path)
	if !strings.HasPrefix(out, `{"action":"show"`) || !strings.Contains(out, `"lcount":3`) {
		t.Fatalf("unexpected message %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peek", "config.yaml")
	execute(t, "", "config", "init", "-o", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	out := execute(t, "", "config", "show", "-c", path)
	if !strings.Contains(out, "config_version: 1") || !strings.Contains(out, "mode: pull") {
		t.Fatalf("unexpected config output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "", "version")
	if fields := strings.Fields(out); len(fields) != 2 {
		t.Fatalf("unexpected version output %q", out)
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 1\nrender:\n  syntax: false\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
