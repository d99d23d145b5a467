package rules

import (
	"fmt"
	"time"
)

// Options carries the evaluation clock and the age thresholds used by the
// time-based checks. Zero fields fall back to DefaultOptions.
type Options struct {
	// Now is the reference time for every age comparison. Fixing it makes
	// two evaluations of the same inventory produce identical messages.
	Now time.Time

	// AccessKeyMaxAge is the age after which an active IAM access key is old.
	AccessKeyMaxAge time.Duration

	// UnusedUserAge is how long an IAM user may go without signing in.
	UnusedUserAge time.Duration

	// SnapshotMaxAge is the newest-snapshot age above which an EBS volume
	// lacks recent snapshots.
	SnapshotMaxAge time.Duration

	// TrailDeliveryWindow is how recently a trail must have delivered logs.
	TrailDeliveryWindow time.Duration
}

// DefaultOptions returns the stock thresholds evaluated against the current
// time.
func DefaultOptions() Options {
	return Options{
		Now:                 time.Now().UTC(),
		AccessKeyMaxAge:     90 * 24 * time.Hour,
		UnusedUserAge:       90 * 24 * time.Hour,
		SnapshotMaxAge:      7 * 24 * time.Hour,
		TrailDeliveryWindow: 24 * time.Hour,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Now.IsZero() {
		o.Now = d.Now
	}
	if o.AccessKeyMaxAge <= 0 {
		o.AccessKeyMaxAge = d.AccessKeyMaxAge
	}
	if o.UnusedUserAge <= 0 {
		o.UnusedUserAge = d.UnusedUserAge
	}
	if o.SnapshotMaxAge <= 0 {
		o.SnapshotMaxAge = d.SnapshotMaxAge
	}
	if o.TrailDeliveryWindow <= 0 {
		o.TrailDeliveryWindow = d.TrailDeliveryWindow
	}
	return o
}

// Offender is one resource that violates a check. Label is the display name
// used in the failure message; it defaults to ID when empty.
type Offender struct {
	ID    string
	Label string
}

func (o Offender) label() string {
	if o.Label != "" {
		return o.Label
	}
	return o.ID
}

// Rule is one named, deterministic check over the inventory I of a single
// service. Rules never call AWS; everything they read is already in I.
type Rule[I any] struct {
	// Name is the stable display name of the check.
	Name string

	// Pass is the message reported when no resource violates the check.
	Pass string

	// Fail is the message reported otherwise. A single %s, when present,
	// receives the comma-separated "label (region)" list of offenders.
	Fail string

	// Check returns every violating resource. An empty result passes.
	Check func(inv I, opts Options) []Offender
}

// Catalogue is the ordered rule list of one service. Order is significant:
// checks run and report in the order they were added.
type Catalogue[I any] struct {
	rules []Rule[I]
	names map[string]struct{}
}

// NewCatalogue returns a catalogue holding rules in the given order.
// It panics on duplicate names to catch wiring mistakes at startup.
func NewCatalogue[I any](rules ...Rule[I]) *Catalogue[I] {
	c := &Catalogue[I]{names: make(map[string]struct{}, len(rules))}
	for _, r := range rules {
		c.Add(r)
	}
	return c
}

// Add appends r. Panics if a rule with the same name is already present.
func (c *Catalogue[I]) Add(r Rule[I]) {
	if _, exists := c.names[r.Name]; exists {
		panic(fmt.Sprintf("duplicate check name: %q", r.Name))
	}
	c.rules = append(c.rules, r)
	c.names[r.Name] = struct{}{}
}

// Names returns the check names in evaluation order.
func (c *Catalogue[I]) Names() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Name
	}
	return out
}

// Run evaluates every rule against inv and records the outcomes in t.
func (c *Catalogue[I]) Run(t *Tally, inv I, opts Options) {
	for _, r := range c.rules {
		t.Record(r.Name, r.Check(inv, opts), r.Pass, r.Fail)
	}
}

// offenders returns an Offender for every item that bad reports as
// violating, in input order.
func offenders[T any](items []T, who func(T) Offender, bad func(T) bool) []Offender {
	var out []Offender
	for _, it := range items {
		if bad(it) {
			out = append(out, who(it))
		}
	}
	return out
}
