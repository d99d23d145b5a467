package models

import "time"

// ServiceName identifies one of the AWS product areas covered by a scan.
// The value doubles as the key of ScanResult.Services.
type ServiceName string

const (
	ServiceEC2        ServiceName = "EC2"
	ServiceIAM        ServiceName = "IAM"
	ServiceS3         ServiceName = "S3"
	ServiceVPC        ServiceName = "VPC"
	ServiceRDS        ServiceName = "RDS"
	ServiceLambda     ServiceName = "Lambda"
	ServiceCloudTrail ServiceName = "CloudTrail"
	ServiceEBS        ServiceName = "EBS"
	ServiceELB        ServiceName = "ELB"
	ServiceSNS        ServiceName = "SNS"
	ServiceSQS        ServiceName = "SQS"
)

// AllServices lists every scanned service in display order.
var AllServices = []ServiceName{
	ServiceEC2, ServiceIAM, ServiceS3, ServiceVPC, ServiceRDS, ServiceLambda,
	ServiceCloudTrail, ServiceEBS, ServiceELB, ServiceSNS, ServiceSQS,
}

// GlobalRegion is the synthetic region that account-scoped services (IAM)
// attribute their assets to.
const GlobalRegion = "global"

// CheckResult is the outcome of one named check within a service evaluation.
// Passed is true exactly when ViolatingIDs is empty, except for a service's
// existence check, which fails with no violators when the inventory is empty.
type CheckResult struct {
	Name         string   `json:"name"`
	Passed       bool     `json:"passed"`
	Message      string   `json:"message"`
	ViolatingIDs []string `json:"violatingIds,omitempty"`
}

// RegionStat counts the assets one region owns and how many of them were
// flagged by at least one failing check.
type RegionStat struct {
	TotalAssets  int `json:"totalAssets"`
	AssetsAtRisk int `json:"assetsAtRisk"`
}

// ServiceReport is the aggregate produced by evaluating one service.
//
// AssetsAtRisk is the cardinality of the union of violating ids across the
// service's failing checks. It is not bounded by TotalAssets: account-level
// findings and cross-kind ids (IAM policies, RDS subnet groups) are at-risk
// entries that TotalAssets does not count. SafeAssets clamps the difference
// at zero for display.
type ServiceReport struct {
	TotalChecks  int                   `json:"totalChecks"`
	TotalPassed  int                   `json:"totalPassed"`
	TotalAssets  int                   `json:"totalAssets"`
	AssetsAtRisk int                   `json:"assetsAtRisk"`
	SafeAssets   int                   `json:"safeAssets"`
	Details      []CheckResult         `json:"details"`
	RegionStats  map[string]RegionStat `json:"regionStats,omitempty"`
}

// ServiceFailure records a service whose evaluation could not complete.
// Its checks are absent from the scan totals.
type ServiceFailure struct {
	Service ServiceName `json:"service"`
	Error   string      `json:"error"`
}

// ScanResult is the composite outcome of one scan. It is built once by the
// scanner, stored under ScanID and never mutated afterwards.
type ScanResult struct {
	ScanID            string                        `json:"scanId"`
	AccountID         string                        `json:"accountId,omitempty"`
	CreatedAt         time.Time                     `json:"createdAt"`
	DurationMs        int64                         `json:"durationMs"`
	SecurityScore     float64                       `json:"securityScore"`
	TotalChecks       int                           `json:"totalChecks"`
	TotalPassed       int                           `json:"totalPassed"`
	TotalAssets       int                           `json:"totalAssets"`
	TotalAssetsAtRisk int                           `json:"totalAssetsAtRisk"`
	SafeAssets        int                           `json:"safeAssets"`
	Services          map[ServiceName]ServiceReport `json:"services"`
	RegionStats       map[string]RegionStat         `json:"regionStats"`
	FailedServices    []ServiceFailure              `json:"failedServices,omitempty"`
	AIScoreAnalysis   []string                      `json:"aiScoreAnalysis,omitempty"`
	AIStepsToTake     []string                      `json:"aiStepsToTake,omitempty"`
}

// Messages returns every check message of the scan in service display order
// followed by check declaration order.
func (r *ScanResult) Messages() []string {
	var out []string
	for _, svc := range AllServices {
		rep, ok := r.Services[svc]
		if !ok {
			continue
		}
		for _, d := range rep.Details {
			out = append(out, d.Message)
		}
	}
	return out
}

// Credentials is the key material a scan runs with. It is passed by value
// and never persisted.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// String masks the key material so credentials never leak into logs.
func (c Credentials) String() string {
	id := c.AccessKeyID
	if len(id) > 4 {
		id = id[:4] + "****"
	}
	return "Credentials{" + id + "}"
}
