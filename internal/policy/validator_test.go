package policy_test

import (
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policy"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// ── happy path ────────────────────────────────────────────────────────────────

func TestValidate_ValidMinimalConfig(t *testing.T) {
	// A config with only version=1 and no other sections must be valid.
	errs := policy.Validate(&policy.PolicyConfig{Version: 1})
	if len(errs) != 0 {
		t.Errorf("expected no errors; got %d: %v", len(errs), errs)
	}
}

func TestValidate_ValidFullConfig(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 1,
		Enforcement: policy.EnforcementConfig{
			MinScore:        floatPtr(75.5),
			MaxAssetsAtRisk: intPtr(0),
			RequiredChecks:  []string{"IAM/Root User MFA", " EC2 / IMDSv2 Enabled ", "CloudTrail/Multi-Region Trails"},
		},
	}
	errs := policy.Validate(cfg)
	if len(errs) != 0 {
		t.Errorf("expected no errors; got %d: %v", len(errs), errs)
	}
}

// ── failures ──────────────────────────────────────────────────────────────────

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *policy.PolicyConfig
		wantSub string
	}{
		{"nil config", nil, "nil"},
		{"version", &policy.PolicyConfig{Version: 3}, "version"},
		{"score above range", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{MinScore: floatPtr(101)}}, "min_score"},
		{"negative score", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{MinScore: floatPtr(-1)}}, "min_score"},
		{"negative assets", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{MaxAssetsAtRisk: intPtr(-2)}}, "max_assets_at_risk"},
		{"malformed ref", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{RequiredChecks: []string{"Root User MFA"}}}, "Service/Check Name"},
		{"unknown service", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{RequiredChecks: []string{"KMS/Key Rotation"}}}, "unknown service"},
		{"unknown check", &policy.PolicyConfig{Version: 1, Enforcement: policy.EnforcementConfig{RequiredChecks: []string{"S3/Bucket Shredding"}}}, "unknown check"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := policy.Validate(tt.cfg)
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error; got %d: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", errs[0], tt.wantSub)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 2,
		Enforcement: policy.EnforcementConfig{
			MinScore:       floatPtr(200),
			RequiredChecks: []string{"bogus", "IAM/Nope"},
		},
	}
	if errs := policy.Validate(cfg); len(errs) != 4 {
		t.Errorf("expected 4 errors; got %d: %v", len(errs), errs)
	}
}

// ── ParseCheckRef ─────────────────────────────────────────────────────────────

func TestParseCheckRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantSvc   models.ServiceName
		wantCheck string
		wantOK    bool
	}{
		{"IAM/Root User MFA", models.ServiceIAM, "Root User MFA", true},
		{" S3 /  Enforce SSL ", models.ServiceS3, "Enforce SSL", true},
		{"ELB/Modern TLS Policies (Classic)", models.ServiceELB, "Modern TLS Policies (Classic)", true},
		{"noslash", "", "", false},
		{"/Check", "", "", false},
		{"EC2/", "", "", false},
	}
	for _, tt := range tests {
		svc, check, ok := policy.ParseCheckRef(tt.ref)
		if svc != tt.wantSvc || check != tt.wantCheck || ok != tt.wantOK {
			t.Errorf("ParseCheckRef(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.ref, svc, check, ok, tt.wantSvc, tt.wantCheck, tt.wantOK)
		}
	}
}
