package rules

import (
	"slices"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	o := DefaultOptions()
	o.Now = testNow
	return o
}

func daysAgo(n int) time.Time { return testNow.Add(-time.Duration(n) * 24 * time.Hour) }

func ptr[T any](v T) *T { return &v }

// check returns the named check of rep, failing the test when absent.
func check(t *testing.T, rep models.ServiceReport, name string) models.CheckResult {
	t.Helper()
	for _, d := range rep.Details {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("check %q not in report; have %v", name, checkNames(rep))
	return models.CheckResult{}
}

func checkNames(rep models.ServiceReport) []string {
	out := make([]string, len(rep.Details))
	for i, d := range rep.Details {
		out[i] = d.Name
	}
	return out
}

// flagged reports whether id appears in the violating ids of the named check.
func flagged(t *testing.T, rep models.ServiceReport, name, id string) bool {
	t.Helper()
	return slices.Contains(check(t, rep, name).ViolatingIDs, id)
}

func assertPassed(t *testing.T, rep models.ServiceReport, names ...string) {
	t.Helper()
	for _, n := range names {
		if c := check(t, rep, n); !c.Passed {
			t.Errorf("%s: want passed, got failed (%s)", n, c.Message)
		}
	}
}

func assertFailed(t *testing.T, rep models.ServiceReport, names ...string) {
	t.Helper()
	for _, n := range names {
		if c := check(t, rep, n); c.Passed {
			t.Errorf("%s: want failed, got passed", n)
		}
	}
}

// assertConsistent verifies the invariants every service report holds.
func assertConsistent(t *testing.T, rep models.ServiceReport) {
	t.Helper()
	if rep.TotalChecks != len(rep.Details) {
		t.Errorf("TotalChecks %d != len(Details) %d", rep.TotalChecks, len(rep.Details))
	}
	passed := 0
	atRisk := make(map[string]struct{})
	for _, d := range rep.Details {
		if d.Passed {
			passed++
			if len(d.ViolatingIDs) != 0 {
				t.Errorf("%s: passed with violating ids %v", d.Name, d.ViolatingIDs)
			}
		}
		for _, id := range d.ViolatingIDs {
			atRisk[id] = struct{}{}
		}
	}
	if rep.TotalPassed != passed {
		t.Errorf("TotalPassed %d != counted %d", rep.TotalPassed, passed)
	}
	if rep.AssetsAtRisk != len(atRisk) {
		t.Errorf("AssetsAtRisk %d != distinct violating ids %d", rep.AssetsAtRisk, len(atRisk))
	}
}
