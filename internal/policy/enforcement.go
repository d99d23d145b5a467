package policy

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// Violations returns one line per gate condition result breaks, in the
// order min score, assets at risk, required checks.
//
// It returns nil when cfg is nil (no policy loaded) or every condition
// holds. A required check whose service could not be evaluated is a
// violation.
func Violations(result *models.ScanResult, cfg *PolicyConfig) []string {
	if cfg == nil || result == nil {
		return nil
	}
	enf := cfg.Enforcement

	var out []string
	if enf.MinScore != nil && result.SecurityScore < *enf.MinScore {
		out = append(out, fmt.Sprintf("security score %.2f is below the minimum %.2f", result.SecurityScore, *enf.MinScore))
	}
	if enf.MaxAssetsAtRisk != nil && result.TotalAssetsAtRisk > *enf.MaxAssetsAtRisk {
		out = append(out, fmt.Sprintf("%d assets at risk exceed the maximum %d", result.TotalAssetsAtRisk, *enf.MaxAssetsAtRisk))
	}

	for _, ref := range enf.RequiredChecks {
		svc, check, ok := ParseCheckRef(ref)
		if !ok {
			continue
		}
		rep, ok := result.Services[svc]
		if !ok {
			out = append(out, fmt.Sprintf("%s/%s: not evaluated", svc, check))
			continue
		}
		for _, d := range rep.Details {
			if d.Name == check && !d.Passed {
				out = append(out, fmt.Sprintf("%s/%s: %s", svc, check, d.Message))
			}
		}
	}
	return out
}

// ShouldFail reports whether result breaks any condition of cfg.
func ShouldFail(result *models.ScanResult, cfg *PolicyConfig) bool {
	return len(Violations(result, cfg)) > 0
}
