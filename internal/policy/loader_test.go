package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cdome-policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPolicy_Success(t *testing.T) {
	path := writePolicy(t, `
version: 1
enforcement:
  min_score: 80
  max_assets_at_risk: 5
  required_checks:
    - IAM/Root User MFA
    - S3/Block Public Access
`)

	cfg, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != 1 {
		t.Fatalf("expected version 1")
	}
	enf := cfg.Enforcement
	if enf.MinScore == nil || *enf.MinScore != 80 {
		t.Fatalf("expected min_score 80, got %v", enf.MinScore)
	}
	if enf.MaxAssetsAtRisk == nil || *enf.MaxAssetsAtRisk != 5 {
		t.Fatalf("expected max_assets_at_risk 5, got %v", enf.MaxAssetsAtRisk)
	}
	if len(enf.RequiredChecks) != 2 || enf.RequiredChecks[1] != "S3/Block Public Access" {
		t.Fatalf("unexpected required checks %v", enf.RequiredChecks)
	}
}

func TestLoadPolicy_UnsetFieldsStayNil(t *testing.T) {
	cfg, err := LoadPolicy(writePolicy(t, "version: 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Enforcement.MinScore != nil || cfg.Enforcement.MaxAssetsAtRisk != nil {
		t.Fatalf("absent limits must stay nil, got %+v", cfg.Enforcement)
	}
}

func TestLoadPolicy_InvalidVersion(t *testing.T) {
	_, err := LoadPolicy(writePolicy(t, "version: 2\n"))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadPolicy_Malformed(t *testing.T) {
	_, err := LoadPolicy(writePolicy(t, "version: [1\n"))
	if err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}

func TestLoadPolicy_FileNotFound(t *testing.T) {
	_, err := LoadPolicy("nonexistent.yaml")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
