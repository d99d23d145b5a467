// Package output renders scan results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// TableOptions controls how RenderTable renders a scan.
type TableOptions struct {
	// Colored wraps PASS/FAIL labels and the score with ANSI codes.
	// Default false (CI-safe).
	Colored bool

	// ShowPassed lists passing checks next to failing ones.
	ShowPassed bool

	// ShowRegions appends the per-region asset table.
	ShowRegions bool
}

// palette holds the colour functions for one render. Each colour is forced on
// or off so output does not depend on the global color.NoColor.
type palette struct {
	pass, fail, warn, bold *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		warn: color.New(color.FgYellow),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.warn, p.bold} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// status returns the PASS/FAIL label padded to width. Only the text carries
// ANSI codes; padding stays plain so columns line up.
func (p palette) status(passed bool, width int) string {
	text, c := "FAIL", p.fail
	if passed {
		text, c = "PASS", p.pass
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return c.Sprint(text) + strings.Repeat(" ", spaces)
}

// score colours a security score: green from 80, yellow from 50, red below.
func (p palette) score(v float64) string {
	text := fmt.Sprintf("%.2f%%", v)
	switch {
	case v >= 80:
		return p.pass.Sprint(text)
	case v >= 50:
		return p.warn.Sprint(text)
	default:
		return p.fail.Sprint(text)
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// truncateField shortens s to at most max runes for name columns.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderTable writes a human-readable report of result to w: a summary
// block, one row per service, the failing checks and, when present, the
// failed services and the AI analysis.
//
// Service table columns:
//
//	SERVICE  CHECKS  PASSED  ASSETS  AT RISK  SAFE
func RenderTable(w io.Writer, result *models.ScanResult, opts TableOptions) {
	p := newPalette(opts.Colored)

	fmt.Fprintf(w, "%s %s\n", p.bold.Sprint("Scan:"), result.ScanID)
	if result.AccountID != "" {
		fmt.Fprintf(w, "%s %s\n", p.bold.Sprint("Account:"), result.AccountID)
	}
	fmt.Fprintf(w, "%s %s (%d/%d checks passed)\n",
		p.bold.Sprint("Security score:"), p.score(result.SecurityScore),
		result.TotalPassed, result.TotalChecks)
	fmt.Fprintf(w, "%s %d total, %d at risk, %d safe\n\n",
		p.bold.Sprint("Assets:"), result.TotalAssets, result.TotalAssetsAtRisk, result.SafeAssets)

	renderServices(w, result)
	renderChecks(w, result, p, opts.ShowPassed)

	if opts.ShowRegions && len(result.RegionStats) > 0 {
		renderRegions(w, result.RegionStats)
	}

	if len(result.FailedServices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.fail.Sprint("Services that could not be evaluated:"))
		for _, f := range result.FailedServices {
			fmt.Fprintf(w, "  %-12s %s\n", f.Service, f.Error)
		}
	}

	renderList(w, p, "Top issues:", result.AIScoreAnalysis)
	renderList(w, p, "Recommended steps:", result.AIStepsToTake)
}

func renderServices(w io.Writer, result *models.ScanResult) {
	const (
		wService = 12
		wNum     = 8
	)

	header := fmt.Sprintf("%-*s  %*s  %*s  %*s  %*s  %*s",
		wService, "SERVICE", wNum, "CHECKS", wNum, "PASSED", wNum, "ASSETS", wNum, "AT RISK", wNum, "SAFE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, svc := range models.AllServices {
		rep, ok := result.Services[svc]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-*s  %*d  %*d  %*d  %*d  %*d\n",
			wService, svc, wNum, rep.TotalChecks, wNum, rep.TotalPassed,
			wNum, rep.TotalAssets, wNum, rep.AssetsAtRisk, wNum, rep.SafeAssets)
	}
}

func renderChecks(w io.Writer, result *models.ScanResult, p palette, showPassed bool) {
	const (
		wService = 12
		wStatus  = 6
		wCheck   = 32
		wCount   = 6
		wMessage = 70
	)

	var rows []string
	for _, svc := range models.AllServices {
		rep, ok := result.Services[svc]
		if !ok {
			continue
		}
		for _, d := range rep.Details {
			if d.Passed && !showPassed {
				continue
			}
			rows = append(rows, fmt.Sprintf("%-*s  %s  %-*s  %*d  %s",
				wService, svc,
				p.status(d.Passed, wStatus),
				wCheck, truncateField(d.Name, wCheck),
				wCount, len(d.ViolatingIDs),
				ShortenMessage(d.Message, wMessage)))
		}
	}

	fmt.Fprintln(w)
	if len(rows) == 0 {
		fmt.Fprintln(w, p.pass.Sprint("All checks passed."))
		return
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %*s  %s",
		wService, "SERVICE", wStatus, "STATUS", wCheck, "CHECK", wCount, "IDS", "MESSAGE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+wMessage-len("MESSAGE")))
	for _, row := range rows {
		fmt.Fprintln(w, row)
	}
}

func renderRegions(w io.Writer, stats map[string]models.RegionStat) {
	regions := make([]string, 0, len(stats))
	for r := range stats {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	header := fmt.Sprintf("%-16s  %8s  %8s", "REGION", "ASSETS", "AT RISK")
	fmt.Fprintln(w)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, r := range regions {
		s := stats[r]
		fmt.Fprintf(w, "%-16s  %8d  %8d\n", r, s.TotalAssets, s.AssetsAtRisk)
	}
}

func renderList(w io.Writer, p palette, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.bold.Sprint(title))
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}

// RenderJSON writes result as indented JSON.
func RenderJSON(w io.Writer, result *models.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}
	return nil
}
