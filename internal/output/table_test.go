package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/output"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func renderToString(result *models.ScanResult, opts output.TableOptions) string {
	var buf bytes.Buffer
	output.RenderTable(&buf, result, opts)
	return buf.String()
}

func sampleResult(overrides ...func(*models.ScanResult)) *models.ScanResult {
	r := &models.ScanResult{
		ScanID:            "1772366400000-abc123def",
		AccountID:         "123456789012",
		SecurityScore:     66.67,
		TotalChecks:       3,
		TotalPassed:       2,
		TotalAssets:       2,
		TotalAssetsAtRisk: 1,
		SafeAssets:        1,
		Services: map[models.ServiceName]models.ServiceReport{
			models.ServiceSQS: {
				TotalChecks: 2, TotalPassed: 2, TotalAssets: 1, SafeAssets: 1,
				Details: []models.CheckResult{
					{Name: "SQS Queues Exist", Passed: true, Message: "1 queue found"},
					{Name: "Queue Encryption", Passed: true, Message: "All queues are encrypted"},
				},
			},
			models.ServiceEC2: {
				TotalChecks: 1, TotalAssets: 1, AssetsAtRisk: 1,
				Details: []models.CheckResult{
					{Name: "IMDSv2 Enabled", Message: "1 instance allows IMDSv1", ViolatingIDs: []string{"i-1"}},
				},
			},
		},
		RegionStats: map[string]models.RegionStat{
			"us-east-1": {TotalAssets: 1, AssetsAtRisk: 1},
			"eu-west-1": {TotalAssets: 1},
		},
	}
	for _, fn := range overrides {
		fn(r)
	}
	return r
}

// ── summary ───────────────────────────────────────────────────────────────────

func TestRenderTable_Summary(t *testing.T) {
	out := renderToString(sampleResult(), output.TableOptions{})

	for _, want := range []string{
		"1772366400000-abc123def",
		"123456789012",
		"66.67%",
		"(2/3 checks passed)",
		"2 total, 1 at risk, 1 safe",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output\ngot:\n%s", want, out)
		}
	}
}

func TestRenderTable_ServicesInDisplayOrder(t *testing.T) {
	out := renderToString(sampleResult(), output.TableOptions{})

	ec2 := strings.Index(out, "\nEC2 ")
	sqs := strings.Index(out, "\nSQS ")
	if ec2 < 0 || sqs < 0 {
		t.Fatalf("expected EC2 and SQS service rows\ngot:\n%s", out)
	}
	if ec2 > sqs {
		t.Errorf("EC2 must be listed before SQS\ngot:\n%s", out)
	}
	if strings.Contains(out, "\nIAM ") {
		t.Errorf("services absent from the result must not be listed\ngot:\n%s", out)
	}
}

// ── checks ────────────────────────────────────────────────────────────────────

func TestRenderTable_FailingChecksOnlyByDefault(t *testing.T) {
	out := renderToString(sampleResult(), output.TableOptions{})

	if !strings.Contains(out, "IMDSv2 Enabled") {
		t.Errorf("failing check missing\ngot:\n%s", out)
	}
	if strings.Contains(out, "Queue Encryption") {
		t.Errorf("passing check must be hidden unless ShowPassed\ngot:\n%s", out)
	}
}

func TestRenderTable_ShowPassed(t *testing.T) {
	out := renderToString(sampleResult(), output.TableOptions{ShowPassed: true})

	if !strings.Contains(out, "PASS") || !strings.Contains(out, "Queue Encryption") {
		t.Errorf("expected passing checks with ShowPassed\ngot:\n%s", out)
	}
}

func TestRenderTable_AllPassed(t *testing.T) {
	r := sampleResult(func(r *models.ScanResult) {
		delete(r.Services, models.ServiceEC2)
	})
	out := renderToString(r, output.TableOptions{})

	if !strings.Contains(out, "All checks passed.") {
		t.Errorf("expected all-passed line\ngot:\n%s", out)
	}
}

// ── colour ────────────────────────────────────────────────────────────────────

func TestRenderTable_Colored(t *testing.T) {
	plain := renderToString(sampleResult(), output.TableOptions{})
	if strings.Contains(plain, "\033[") {
		t.Errorf("uncoloured output must not contain ANSI codes\ngot:\n%q", plain)
	}

	colored := renderToString(sampleResult(), output.TableOptions{Colored: true})
	if !strings.Contains(colored, "\033[31mFAIL\033[0m") {
		t.Errorf("expected red FAIL label\ngot:\n%q", colored)
	}
	if !strings.Contains(colored, "\033[33m66.67%\033[0m") {
		t.Errorf("expected yellow mid-range score\ngot:\n%q", colored)
	}
}

// ── optional sections ─────────────────────────────────────────────────────────

func TestRenderTable_Regions(t *testing.T) {
	without := renderToString(sampleResult(), output.TableOptions{})
	if strings.Contains(without, "REGION") {
		t.Errorf("region table must be opt-in\ngot:\n%s", without)
	}

	out := renderToString(sampleResult(), output.TableOptions{ShowRegions: true})
	eu := strings.Index(out, "eu-west-1")
	us := strings.Index(out, "us-east-1")
	if eu < 0 || us < 0 || eu > us {
		t.Errorf("expected regions sorted by name\ngot:\n%s", out)
	}
}

func TestRenderTable_FailedServicesAndAI(t *testing.T) {
	r := sampleResult(func(r *models.ScanResult) {
		r.FailedServices = []models.ServiceFailure{{Service: models.ServiceRDS, Error: "AccessDenied"}}
		r.AIScoreAnalysis = []string{"IMDSv1 is enabled on instances"}
		r.AIStepsToTake = []string{"Require IMDSv2", "Rotate keys"}
	})
	out := renderToString(r, output.TableOptions{})

	for _, want := range []string{
		"could not be evaluated",
		"AccessDenied",
		"Top issues:",
		"1. IMDSv1 is enabled on instances",
		"2. Rotate keys",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output\ngot:\n%s", want, out)
		}
	}
}

// ── ShortenMessage ────────────────────────────────────────────────────────────

func TestShortenMessage(t *testing.T) {
	tests := []struct {
		msg  string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 2, "a..."},
		{"ééééé", 4, "é..."},
	}
	for _, tt := range tests {
		if got := output.ShortenMessage(tt.msg, tt.max); got != tt.want {
			t.Errorf("ShortenMessage(%q, %d) = %q, want %q", tt.msg, tt.max, got, tt.want)
		}
	}
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := output.RenderJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if got["scanId"] != "1772366400000-abc123def" {
		t.Errorf("scanId = %v", got["scanId"])
	}
	if _, ok := got["services"].(map[string]any)["EC2"]; !ok {
		t.Errorf("expected services.EC2 in JSON output")
	}
}
