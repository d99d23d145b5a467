package awssecurity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

const (
	// defaultRegionConcurrency is the number of regions collected in parallel.
	defaultRegionConcurrency = 5

	// defaultDetailConcurrency bounds per-resource detail lookups in flight
	// within one region.
	defaultDetailConcurrency = 10
)

// DefaultSecurityCollector is the production SecurityCollector. Regional
// services are collected region by region in parallel; IAM and the S3 bucket
// listing are read once from the home region.
//
// Inject a custom secClientFactory via NewDefaultSecurityCollectorWithFactory
// to replace real SDK clients with fakes in unit tests.
type DefaultSecurityCollector struct {
	factory     secClientFactory
	regionLimit int
	detailLimit int
}

// NewDefaultSecurityCollector returns a DefaultSecurityCollector wired to
// production AWS SDK clients.
func NewDefaultSecurityCollector() *DefaultSecurityCollector {
	return NewDefaultSecurityCollectorWithFactory(newDefaultSecClients)
}

// NewDefaultSecurityCollectorWithFactory returns a DefaultSecurityCollector
// that uses the supplied factory, allowing tests to inject fake clients.
func NewDefaultSecurityCollectorWithFactory(f secClientFactory) *DefaultSecurityCollector {
	return &DefaultSecurityCollector{
		factory:     f,
		regionLimit: defaultRegionConcurrency,
		detailLimit: defaultDetailConcurrency,
	}
}

// WithConcurrency returns a copy of c with the given limits. Values below 1
// keep the current limit.
func (c *DefaultSecurityCollector) WithConcurrency(regions, details int) *DefaultSecurityCollector {
	out := *c
	if regions > 0 {
		out.regionLimit = regions
	}
	if details > 0 {
		out.detailLimit = details
	}
	return &out
}

// ---------------------------------------------------------------------------
// Fan-out helpers
// ---------------------------------------------------------------------------

// global returns clients bound to the home region, the canonical endpoint
// for IAM and the S3 bucket listing.
func (c *DefaultSecurityCollector) global(target Target) *secClients {
	return c.regional(target, common.HomeRegion)
}

func (c *DefaultSecurityCollector) regional(target Target, region string) *secClients {
	return c.factory(target.Provider.ConfigForRegion(target.Profile, region))
}

// perRegion runs fn once for every region of target, with at most
// c.regionLimit regions in flight, and returns the results in region order.
// If any region fails, errgroup cancels the rest and the first error is
// returned.
func perRegion[T any](
	ctx context.Context,
	c *DefaultSecurityCollector,
	target Target,
	fn func(ctx context.Context, clients *secClients, region string) (T, error),
) ([]T, error) {
	// The semaphore channel limits concurrent in-flight region calls.
	sem := make(chan struct{}, c.regionLimit)
	results := make([]T, len(target.Regions))

	g, gctx := errgroup.WithContext(ctx)

REGIONS:
	for i, region := range target.Regions {
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			break REGIONS
		}

		clients := c.regional(target, region)
		g.Go(func() error {
			defer func() { <-sem }()

			res, err := fn(gctx, clients, region)
			if err != nil {
				return fmt.Errorf("collect region %s: %w", region, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// flatten concatenates per-region slices, preserving region order.
func flatten[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// eachDetail calls fn for every index in [0, n) with at most c.detailLimit
// calls in flight. fn reports nothing: detail lookups coerce their own
// failures to absent values. The returned error is only ever the context's.
func (c *DefaultSecurityCollector) eachDetail(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailLimit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
