package policy

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/rules"
)

// ParseCheckRef splits "Service/Check Name" into its parts. Surrounding
// spaces are trimmed; the check name may itself contain slashes.
func ParseCheckRef(ref string) (models.ServiceName, string, bool) {
	svc, check, ok := strings.Cut(ref, "/")
	svc, check = strings.TrimSpace(svc), strings.TrimSpace(check)
	if !ok || svc == "" || check == "" {
		return "", "", false
	}
	return models.ServiceName(svc), check, true
}

// knownCheck reports whether check is in the catalogue of service.
func knownCheck(service models.ServiceName, check string) bool {
	for _, name := range rules.CheckNames(service) {
		if name == check {
			return true
		}
	}
	return false
}

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - enforcement.min_score must be within 0-100
//   - enforcement.max_assets_at_risk must not be negative
//   - every required check must name a known service and check
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	enf := cfg.Enforcement
	if enf.MinScore != nil && (*enf.MinScore < 0 || *enf.MinScore > 100) {
		errs = append(errs, fmt.Errorf("enforcement.min_score: %.2f out of range; must be within 0-100", *enf.MinScore))
	}
	if enf.MaxAssetsAtRisk != nil && *enf.MaxAssetsAtRisk < 0 {
		errs = append(errs, fmt.Errorf("enforcement.max_assets_at_risk: %d; must not be negative", *enf.MaxAssetsAtRisk))
	}

	for _, ref := range enf.RequiredChecks {
		svc, check, ok := ParseCheckRef(ref)
		if !ok {
			errs = append(errs, fmt.Errorf("enforcement.required_checks: %q; want \"Service/Check Name\"", ref))
			continue
		}
		if rules.CheckNames(svc) == nil {
			errs = append(errs, fmt.Errorf("enforcement.required_checks: %q: unknown service %q", ref, svc))
			continue
		}
		if !knownCheck(svc, check) {
			errs = append(errs, fmt.Errorf("enforcement.required_checks: %q: unknown check for %s", ref, svc))
		}
	}

	return errs
}
