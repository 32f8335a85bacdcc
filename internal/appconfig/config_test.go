package appconfig

import (
	"testing"

	"pkt.systems/peek/internal/markdown"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	if cfg.Session.IdleTimeoutMS != 2000 {
		t.Fatalf("expected 2000ms idle timeout, got %d", cfg.Session.IdleTimeoutMS)
	}
	if cfg.Input.Mode != InputPull {
		t.Fatalf("expected pull input by default, got %q", cfg.Input.Mode)
	}
	if len(cfg.Render.DiagramKeywords) != len(markdown.DefaultDiagramKeywords) {
		t.Fatalf("expected default diagram keywords, got %v", cfg.Render.DiagramKeywords)
	}
}
