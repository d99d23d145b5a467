package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// aggregate folds per-service outcomes into a ScanResult. Totals are plain
// sums over the services that succeeded, region stats are summed per region
// key and failed services are listed in outcome order. It returns
// ErrAllServicesFailed, joined with every service error, when nothing
// succeeded.
func aggregate(outcomes []outcome) (*models.ScanResult, error) {
	result := &models.ScanResult{
		Services:    make(map[models.ServiceName]models.ServiceReport, len(outcomes)),
		RegionStats: make(map[string]models.RegionStat),
	}

	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
			result.FailedServices = append(result.FailedServices, models.ServiceFailure{
				Service: o.service,
				Error:   o.err.Error(),
			})
			continue
		}

		rep := o.report
		result.Services[o.service] = rep
		result.TotalChecks += rep.TotalChecks
		result.TotalPassed += rep.TotalPassed
		result.TotalAssets += rep.TotalAssets
		result.TotalAssetsAtRisk += rep.AssetsAtRisk

		for region, stat := range rep.RegionStats {
			merged := result.RegionStats[region]
			merged.TotalAssets += stat.TotalAssets
			merged.AssetsAtRisk += stat.AssetsAtRisk
			result.RegionStats[region] = merged
		}
	}

	if len(outcomes) > 0 && len(errs) == len(outcomes) {
		return nil, fmt.Errorf("%w: %w", ErrAllServicesFailed, errors.Join(errs...))
	}

	result.SafeAssets = max(result.TotalAssets-result.TotalAssetsAtRisk, 0)
	result.SecurityScore = securityScore(result.TotalPassed, result.TotalChecks)
	return result, nil
}

// securityScore returns passed/checks as a percentage rounded to two
// decimals, or 0 when there were no checks.
func securityScore(passed, checks int) float64 {
	if checks <= 0 {
		return 0
	}
	score, _ := decimal.NewFromInt(int64(passed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(checks))).
		Round(2).
		Float64()
	return score
}
