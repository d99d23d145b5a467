package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// ScanOptions configures a single scan run.
// It is the sole input to Engine.RunScan.
type ScanOptions struct {
	// Credentials, when set, are the static keys the scan runs with.
	// When nil the scan uses the shared-config chain of Profile.
	Credentials *models.Credentials

	// Profile is the named AWS profile to use when Credentials is nil.
	// Empty means the default profile.
	Profile string

	// Regions is an explicit list of AWS regions to scan.
	// When empty the engine discovers and iterates all active regions.
	Regions []string

	// Summarize requests the AI analysis of the check messages. It is
	// ignored when the engine has no summarizer.
	Summarize bool
}

// Engine is the central orchestration interface.
// It coordinates inventory collection, rule evaluation, aggregation and
// optional summarization, returning a fully populated ScanResult.
//
// Engine must not call AWS SDK or LLM clients directly; it delegates to
// the collector and summarizer it was built with.
type Engine interface {
	RunScan(ctx context.Context, opts ScanOptions) (*models.ScanResult, error)
}

// Summarizer turns the check messages of a scan into a short analysis of
// the top issues and a list of remediation steps.
type Summarizer interface {
	Summarize(ctx context.Context, messages []string) (analysis, steps []string, err error)
}

// ResultStore keeps finished scans for later retrieval by id.
type ResultStore interface {
	Put(result *models.ScanResult)
}
