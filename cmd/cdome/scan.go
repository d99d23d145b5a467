package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/engine"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/output"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policy"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// scanFlags are the options of a one-shot scan.
type scanFlags struct {
	profile     string
	regions     []string
	format      string
	output      string
	ai          bool
	showPassed  bool
	showRegions bool
	colored     bool
	policyPath  string
}

func newScanCmd(flags *rootFlags) *cobra.Command {
	var sf scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan an AWS account and print the security report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(sf.format); err != nil {
				return err
			}
			cfg, logger, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if len(sf.regions) == 0 {
				sf.regions = cfg.Scan.Regions
			}
			client := newLLMClient(cfg)
			if sf.ai && !client.Available() {
				logger.Warn("--ai ignored: no LLM backend configured")
				sf.ai = false
			}

			w := cmd.OutOrStdout()
			if f, ok := w.(*os.File); ok {
				sf.colored = term.IsTerminal(int(f.Fd()))
			}

			var gate *policy.PolicyConfig
			if sf.policyPath != "" {
				if gate, err = loadGate(sf.policyPath); err != nil {
					return err
				}
			}

			eng := buildEngine(cfg, logger, common.NewDefaultAWSClientProvider(), client, nil)
			result, err := runScan(cmd.Context(), w, eng, sf, logger)
			if err != nil {
				return err
			}
			return enforceGate(cmd.ErrOrStderr(), result, gate)
		},
	}

	cmd.Flags().StringVar(&sf.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().StringSliceVar(&sf.regions, "region", nil, "AWS region(s) to scan (default: all active regions)")
	cmd.Flags().StringVar(&sf.format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&sf.output, "output", "", "Write the full JSON result to this file path (in addition to stdout output)")
	cmd.Flags().BoolVar(&sf.ai, "ai", false, "Add an AI summary of the top issues and remediation steps")
	cmd.Flags().BoolVar(&sf.showPassed, "show-passed", false, "List passing checks in the table output")
	cmd.Flags().BoolVar(&sf.showRegions, "show-regions", false, "Append per-region asset counts to the table output")
	cmd.Flags().StringVar(&sf.policyPath, "policy", "", "Exit non-zero when the scan breaks this policy file (e.g. "+policy.DefaultPath+")")
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be table or json", format)
	}
}

// runScan runs one scan with eng and renders it to w.
func runScan(ctx context.Context, w io.Writer, eng engine.Engine, sf scanFlags, logger *zap.Logger) (*models.ScanResult, error) {
	result, err := eng.RunScan(ctx, engine.ScanOptions{
		Profile:   sf.profile,
		Regions:   sf.regions,
		Summarize: sf.ai,
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if sf.output != "" {
		if err := writeResultToFile(sf.output, result); err != nil {
			return nil, err
		}
		logger.Info("scan result written", zap.String("path", sf.output))
	}

	if sf.format == "json" {
		return result, output.RenderJSON(w, result)
	}
	output.RenderTable(w, result, output.TableOptions{
		Colored:     sf.colored,
		ShowPassed:  sf.showPassed,
		ShowRegions: sf.showRegions,
	})
	return result, nil
}

// errPolicyFailed is returned when a scan breaks the gate policy.
var errPolicyFailed = errors.New("scan does not satisfy the policy")

// loadGate reads and validates the policy file at path.
func loadGate(path string) (*policy.PolicyConfig, error) {
	gate, err := policy.LoadPolicy(path)
	if err != nil {
		return nil, err
	}
	if errs := policy.Validate(gate); len(errs) > 0 {
		return nil, fmt.Errorf("invalid policy %s: %w", path, errors.Join(errs...))
	}
	return gate, nil
}

// enforceGate writes every policy violation of result to w and returns
// errPolicyFailed when there is at least one. A nil gate always passes.
func enforceGate(w io.Writer, result *models.ScanResult, gate *policy.PolicyConfig) error {
	violations := policy.Violations(result, gate)
	if len(violations) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Policy violations:")
	for _, v := range violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
	return fmt.Errorf("%w: %d violation(s)", errPolicyFailed, len(violations))
}

// writeResultToFile serialises result as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeResultToFile(path string, result *models.ScanResult) error {
	var buf bytes.Buffer
	if err := output.RenderJSON(&buf, result); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write result file %q: %w", path, err)
	}
	return nil
}
