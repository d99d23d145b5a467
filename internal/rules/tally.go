package rules

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// Tally accumulates the check outcomes of a single service evaluation.
// Each evaluation constructs its own Tally; it is not safe for concurrent
// use and is never shared between services.
type Tally struct {
	index      *RegionIndex
	details    []models.CheckResult
	passed     int
	atRisk     map[string]struct{}
	regionRisk map[string]map[string]struct{}
}

// NewTally returns an empty accumulator that attributes offenders through
// index. A nil index disables region attribution.
func NewTally(index *RegionIndex) *Tally {
	if index == nil {
		index = NewRegionIndex()
	}
	return &Tally{
		index:      index,
		atRisk:     make(map[string]struct{}),
		regionRisk: make(map[string]map[string]struct{}),
	}
}

// Exists records a service's existence check and reports whether the
// remaining checks should run. A failed existence check carries no
// offenders: there is nothing to flag.
func (t *Tally) Exists(name string, present bool, pass, fail string) bool {
	msg := fail
	if present {
		msg = pass
		t.passed++
	}
	t.details = append(t.details, models.CheckResult{Name: name, Passed: present, Message: msg})
	return present
}

// Record appends the outcome of one check. The check passes exactly when
// offenders is empty; otherwise every distinct offender id joins the
// service-wide at-risk set and, when its region resolves, that region's set.
func (t *Tally) Record(name string, offenders []Offender, pass, fail string) {
	offenders = dedupe(offenders)
	if len(offenders) == 0 {
		t.passed++
		t.details = append(t.details, models.CheckResult{Name: name, Passed: true, Message: pass})
		return
	}

	ids := make([]string, 0, len(offenders))
	labels := make([]string, 0, len(offenders))
	for _, o := range offenders {
		ids = append(ids, o.ID)
		t.atRisk[o.ID] = struct{}{}

		region, ok := t.index.Lookup(o.ID)
		if !ok {
			labels = append(labels, o.label())
			continue
		}
		labels = append(labels, fmt.Sprintf("%s (%s)", o.label(), region))
		set, exists := t.regionRisk[region]
		if !exists {
			set = make(map[string]struct{})
			t.regionRisk[region] = set
		}
		set[o.ID] = struct{}{}
	}

	t.details = append(t.details, models.CheckResult{
		Name:         name,
		Passed:       false,
		Message:      failMessage(fail, labels),
		ViolatingIDs: ids,
	})
}

// Report builds the ServiceReport from everything recorded so far.
// Region stats list every region that owns an asset or an at-risk id.
func (t *Tally) Report() models.ServiceReport {
	rep := models.ServiceReport{
		TotalChecks:  len(t.details),
		TotalPassed:  t.passed,
		TotalAssets:  t.index.Assets(),
		AssetsAtRisk: len(t.atRisk),
		Details:      append([]models.CheckResult(nil), t.details...),
	}
	rep.SafeAssets = max(rep.TotalAssets-rep.AssetsAtRisk, 0)

	stats := make(map[string]models.RegionStat)
	for region, n := range t.index.AssetsByRegion() {
		s := stats[region]
		s.TotalAssets = n
		stats[region] = s
	}
	for region, set := range t.regionRisk {
		s := stats[region]
		s.AssetsAtRisk = len(set)
		stats[region] = s
	}
	if len(stats) > 0 {
		rep.RegionStats = stats
	}
	return rep
}

func failMessage(tmpl string, labels []string) string {
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, strings.Join(labels, ", "))
}

func dedupe(in []Offender) []Offender {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, o := range in {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}
