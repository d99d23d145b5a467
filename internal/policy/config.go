// Package policy loads and enforces the scan gate: the conditions under
// which a finished scan fails a CI run.
package policy

// DefaultPath is the policy file doctor looks for in the working directory.
const DefaultPath = "./cdome-policy.yaml"

type PolicyConfig struct {
	Version     int               `yaml:"version"`
	Enforcement EnforcementConfig `yaml:"enforcement"`
}

// EnforcementConfig lists the gate conditions. Unset fields do not gate.
type EnforcementConfig struct {
	// MinScore fails scans whose security score is below it (0-100).
	MinScore *float64 `yaml:"min_score,omitempty"`

	// MaxAssetsAtRisk fails scans with more assets at risk.
	MaxAssetsAtRisk *int `yaml:"max_assets_at_risk,omitempty"`

	// RequiredChecks are "Service/Check Name" references that must pass,
	// e.g. "IAM/Root User MFA".
	RequiredChecks []string `yaml:"required_checks,omitempty"`
}
