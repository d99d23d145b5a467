package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/metrics"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
	awssecurity "github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/rules"
)

// scanIDSuffixLen is the length of the random part of a scan id.
const scanIDSuffixLen = 9

// DefaultEngine is the production implementation of Engine.
// It coordinates inventory collection, rule evaluation and result assembly.
// It never calls the AWS SDK or the LLM directly.
type DefaultEngine struct {
	provider   common.AWSClientProvider
	collector  awssecurity.SecurityCollector
	summarizer Summarizer
	store      ResultStore
	logger     *zap.Logger

	ruleOpts rules.Options
	timeout  time.Duration
	services []service
	now      func() time.Time
}

// Option customises a DefaultEngine.
type Option func(*DefaultEngine)

// WithSummarizer enables the AI analysis of scans that request it.
func WithSummarizer(s Summarizer) Option {
	return func(e *DefaultEngine) { e.summarizer = s }
}

// WithStore makes the engine put every finished scan into s.
func WithStore(s ResultStore) Option {
	return func(e *DefaultEngine) { e.store = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *DefaultEngine) { e.logger = l }
}

// WithRuleOptions sets the evaluation thresholds. The clock field is always
// replaced by the engine's clock at scan time.
func WithRuleOptions(o rules.Options) Option {
	return func(e *DefaultEngine) { e.ruleOpts = o }
}

// WithTimeout bounds every scan. Zero means no bound beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(e *DefaultEngine) { e.timeout = d }
}

// WithClock replaces time.Now. Tests use it to pin scan ids and ages.
func WithClock(now func() time.Time) Option {
	return func(e *DefaultEngine) { e.now = now }
}

// NewDefaultEngine constructs a DefaultEngine wired to the supplied provider
// and security collector.
func NewDefaultEngine(
	provider common.AWSClientProvider,
	collector awssecurity.SecurityCollector,
	opts ...Option,
) *DefaultEngine {
	e := &DefaultEngine{
		provider:  provider,
		collector: collector,
		logger:    zap.NewNop(),
		ruleOpts:  rules.DefaultOptions(),
		services:  defaultServices(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// RunScan implements Engine. It resolves the credential source and regions,
// evaluates every service concurrently and assembles the result. Failing
// services are recorded in FailedServices; an error is returned only when
// the credentials or regions cannot be resolved or every service failed.
func (e *DefaultEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.ScanResult, error) {
	start := e.now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	profile, err := e.loadProfile(ctx, opts)
	if err != nil {
		e.observeScan(metrics.StatusFailure, start)
		return nil, err
	}

	regions, err := e.resolveRegions(ctx, profile, opts.Regions)
	if err != nil {
		e.observeScan(metrics.StatusFailure, start)
		return nil, fmt.Errorf("resolve regions for account %s: %w", profile.AccountID, err)
	}

	target := awssecurity.Target{Profile: profile, Provider: e.provider, Regions: regions}
	ruleOpts := e.ruleOpts
	ruleOpts.Now = start.UTC()

	e.logger.Info("scan started",
		zap.String("account", profile.AccountID),
		zap.Int("regions", len(regions)))

	outcomes := e.evaluateAll(ctx, target, ruleOpts)

	result, err := aggregate(outcomes)
	if err != nil {
		e.observeScan(metrics.StatusFailure, start)
		return nil, err
	}
	result.ScanID = newScanID(start)
	result.AccountID = profile.AccountID
	result.CreatedAt = start.UTC()

	if opts.Summarize && e.summarizer != nil {
		result.AIScoreAnalysis, result.AIStepsToTake = e.summarize(ctx, result)
	}

	result.DurationMs = e.now().Sub(start).Milliseconds()
	if e.store != nil {
		e.store.Put(result)
	}

	status := metrics.StatusSuccess
	if len(result.FailedServices) > 0 {
		status = metrics.StatusPartial
	}
	e.observeScan(status, start)
	e.logger.Info("scan finished",
		zap.String("scan_id", result.ScanID),
		zap.Float64("score", result.SecurityScore),
		zap.Int("failed_services", len(result.FailedServices)),
		zap.Int64("duration_ms", result.DurationMs))
	return result, nil
}

// loadProfile returns the credential source of the scan: static keys when
// supplied, otherwise the shared-config profile.
func (e *DefaultEngine) loadProfile(ctx context.Context, opts ScanOptions) (*common.ProfileConfig, error) {
	if opts.Credentials != nil {
		profile, err := e.provider.LoadStatic(ctx, *opts.Credentials)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		return profile, nil
	}
	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}
	return profile, nil
}

// resolveRegions returns the explicit region list or discovers active regions.
func (e *DefaultEngine) resolveRegions(
	ctx context.Context,
	profile *common.ProfileConfig,
	explicit []string,
) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	return e.provider.GetActiveRegions(ctx, profile)
}

// outcome is the result-or-error of one service evaluation.
type outcome struct {
	service models.ServiceName
	report  models.ServiceReport
	err     error
}

// evaluateAll runs every service concurrently. Goroutines never return an
// error: each writes its own outcome slot, so one failing service never
// cancels the others.
func (e *DefaultEngine) evaluateAll(ctx context.Context, target awssecurity.Target, opts rules.Options) []outcome {
	outcomes := make([]outcome, len(e.services))
	var g errgroup.Group
	for i, svc := range e.services {
		g.Go(func() error {
			outcomes[i] = e.evaluateService(ctx, svc, target, opts)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// evaluateService collects and evaluates one service. A panic in a rule or
// collector is recovered and reported as that service's failure.
func (e *DefaultEngine) evaluateService(
	ctx context.Context,
	svc service,
	target awssecurity.Target,
	opts rules.Options,
) (out outcome) {
	out.service = svc.name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			wrapped := goerrors.Wrap(r, 2)
			e.logger.Error("service evaluation panicked",
				zap.String("service", string(svc.name)),
				zap.String("stack", wrapped.ErrorStack()))
			out.report = models.ServiceReport{}
			out.err = fmt.Errorf("evaluate %s: panic: %v", svc.name, r)
		}

		status := metrics.StatusSuccess
		if out.err != nil {
			status = metrics.StatusFailure
		}
		metrics.ServiceEvaluations.WithLabelValues(string(svc.name), status).Inc()
		metrics.ServiceDuration.WithLabelValues(string(svc.name)).Observe(time.Since(start).Seconds())
	}()

	report, err := svc.run(ctx, e.collector, target, opts)
	if err != nil {
		e.logger.Error("service evaluation failed",
			zap.String("service", string(svc.name)),
			zap.Error(err))
		return outcome{service: svc.name, err: fmt.Errorf("evaluate %s: %w", svc.name, err)}
	}
	e.logger.Debug("service evaluated",
		zap.String("service", string(svc.name)),
		zap.Int("checks", report.TotalChecks),
		zap.Int("passed", report.TotalPassed))
	return outcome{service: svc.name, report: report}
}

// summarize asks the summarizer for the analysis of every check message.
// Failures degrade to empty lists.
func (e *DefaultEngine) summarize(ctx context.Context, result *models.ScanResult) (analysis, steps []string) {
	analysis, steps, err := e.summarizer.Summarize(ctx, result.Messages())
	if err != nil {
		e.logger.Warn("scan summary unavailable", zap.Error(err))
		return []string{}, []string{}
	}
	if analysis == nil {
		analysis = []string{}
	}
	if steps == nil {
		steps = []string{}
	}
	return analysis, steps
}

func (e *DefaultEngine) observeScan(status string, start time.Time) {
	metrics.ScansTotal.WithLabelValues(status).Inc()
	metrics.ScanDuration.WithLabelValues(status).Observe(e.now().Sub(start).Seconds())
}

// newScanID returns "<unix-millis>-<random suffix>". Uniqueness is not
// checked.
func newScanID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:scanIDSuffixLen]
	return fmt.Sprintf("%d-%s", at.UnixMilli(), suffix)
}

// ErrAllServicesFailed is returned when no service could be evaluated.
var ErrAllServicesFailed = errors.New("every service failed")
