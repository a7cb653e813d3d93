package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBuildsAWorkingService(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)

	svc, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()

	res, err := svc.Remember(ctx, RememberInput{Content: "Joe likes Python programming"})
	if err != nil || !res.Success {
		t.Fatalf("Remember: %+v err=%v", res, err)
	}

	results, err := svc.Recall(ctx, "Python", RecallOptions{MinRelevance: 0})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one recall result")
	}
}

func TestOpenRejectsBlankDBPath(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected an error for blank db_path")
	}
}

func TestOpenRejectsUnknownEmbeddingProvider(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "ignored"))
	cfg.Embedding.Provider = "carrier-pigeon"
	_, err := Open(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected an error for an unrecognized embedding provider")
	}
}

func TestDefaultConfigPassesValidate(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "db"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate cleanly: %v", err)
	}
}

func TestLoadConfigOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "instance_id: prod-1\nsearch:\n  vector_weight: 0.5\n  text_weight: 0.5\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.InstanceID != "prod-1" {
		t.Fatalf("expected instance_id overlay, got %q", cfg.InstanceID)
	}
	if cfg.Search.VectorWeight != 0.5 || cfg.Search.TextWeight != 0.5 {
		t.Fatalf("expected overlaid search weights, got %+v", cfg.Search)
	}
	if cfg.Embedding.Provider != "local" {
		t.Fatalf("expected default embedding provider to survive overlay, got %q", cfg.Embedding.Provider)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
