package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/config"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policy"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// DoctorResult is the structured output of cdome doctor. It can be serialised
// to JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		RegionsOK   bool   `json:"regions_ok"`
		Regions     int    `json:"regions,omitempty"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Profiles struct {
		Names []string `json:"names,omitempty"`
		Error string   `json:"error,omitempty"`
	} `json:"profiles"`

	Config struct {
		Path   string   `json:"path,omitempty"`
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors,omitempty"`
	} `json:"config"`

	Policy struct {
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	LLM struct {
		Enabled bool   `json:"enabled"`
		KeySet  bool   `json:"key_set"`
		Model   string `json:"model,omitempty"`
	} `json:"llm"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorEnv is what collectDoctorResult inspects. Tests replace every field.
type doctorEnv struct {
	provider     common.AWSClientProvider
	listProfiles func() ([]string, error)
	configPath   string
	loadConfig   func(path string) (*config.Config, error)
	policyPath   string
}

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Run environment diagnostics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			profile, _ := cmd.Flags().GetString("profile")
			env := doctorEnv{
				provider:     common.NewDefaultAWSClientProvider(),
				listProfiles: common.ProfileNames,
				configPath:   flags.configPath,
				loadConfig:   config.Load,
				policyPath:   policy.DefaultPath,
			}
			result, err := runDoctor(cmd.Context(), env, cmd.OutOrStdout(), format, profile)
			if err != nil {
				// Rendering failure: let Cobra/main handle it.
				return err
			}
			if !result.OverallHealthy {
				// Exit directly so no error text reaches main.go's
				// fmt.Fprintln(os.Stderr, err) path.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	cmd.Flags().String("profile", "", "AWS profile to use (default: credential chain)")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures (e.g. JSON encode error).
// Callers must inspect result.OverallHealthy to determine whether the
// environment is healthy.
func runDoctor(ctx context.Context, env doctorEnv, w io.Writer, format, profile string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, env, profile)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering; callers decide how to present the result.
func collectDoctorResult(ctx context.Context, env doctorEnv, profile string) DoctorResult {
	var result DoctorResult

	// AWS: credentials → STS account ID → region discovery.
	// An empty profile string selects the default credential chain.
	if profile != "" {
		result.AWS.Profile = profile
	}
	profileCfg, err := env.provider.LoadProfile(ctx, profile)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
		regions, err := env.provider.GetActiveRegions(ctx, profileCfg)
		if err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.RegionsOK = true
			result.AWS.Regions = len(regions)
		}
	}

	// Shared config profiles are informational; the environment chain
	// works without them.
	names, err := env.listProfiles()
	if err != nil {
		result.Profiles.Error = err.Error()
	} else {
		result.Profiles.Names = names
	}

	// Config: load → validate (file is optional).
	result.Config.Path = env.configPath
	cfg, err := env.loadConfig(env.configPath)
	if err != nil {
		result.Config.Errors = []string{err.Error()}
	} else {
		errs := cfg.Validate()
		if len(errs) == 0 {
			result.Config.Valid = true
		}
		for _, e := range errs {
			result.Config.Errors = append(result.Config.Errors, e.Error())
		}
		result.LLM.Enabled = cfg.LLM.Enabled
		result.LLM.KeySet = cfg.LLM.APIKey != ""
		if cfg.LLMActive() {
			result.LLM.Model = cfg.LLM.Model
		}
	}

	// Policy: stat → load → validate (file is optional).
	_, statErr := os.Stat(env.policyPath)
	if statErr == nil {
		result.Policy.Present = true
		gate, loadErr := policy.LoadPolicy(env.policyPath)
		if loadErr != nil {
			result.Policy.Errors = []string{loadErr.Error()}
		} else {
			errs := policy.Validate(gate)
			if len(errs) == 0 {
				result.Policy.Valid = true
			}
			for _, e := range errs {
				result.Policy.Errors = append(result.Policy.Errors, e.Error())
			}
		}
	} else if !os.IsNotExist(statErr) {
		// Stat error other than "not found": treat as present but unreadable.
		result.Policy.Present = true
		result.Policy.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.AWS.Credentials &&
		result.AWS.RegionsOK &&
		result.Config.Valid &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Regions API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.RegionsOK {
			doctorPrint(w, "Regions API", "OK", fmt.Sprintf("%d enabled", result.AWS.Regions))
		} else {
			doctorPrint(w, "Regions API", "FAIL", result.AWS.Error)
		}
	}
	switch {
	case result.Profiles.Error != "":
		doctorPrint(w, "Shared profiles", "UNREADABLE", result.Profiles.Error)
	case len(result.Profiles.Names) == 0:
		doctorPrint(w, "Shared profiles", "None found (optional)", "")
	default:
		doctorPrint(w, "Shared profiles", fmt.Sprintf("%d", len(result.Profiles.Names)), "")
	}

	fmt.Fprintln(w, "\nConfig:")
	if result.Config.Path == "" {
		doctorPrint(w, "Config file", "Not set (built-in defaults)", "")
	} else {
		doctorPrint(w, "Config file", result.Config.Path, "")
	}
	if result.Config.Valid {
		doctorPrint(w, "Config valid", "OK", "")
	} else {
		for _, e := range result.Config.Errors {
			doctorPrint(w, "Config valid", "FAIL", e)
		}
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, "Policy file present", "Not found (optional)", "")
	} else {
		doctorPrint(w, "Policy file present", "YES", "")
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}

	fmt.Fprintln(w, "\nLLM:")
	switch {
	case !result.LLM.Enabled:
		doctorPrint(w, "AI summaries", "Disabled", "")
	case !result.LLM.KeySet:
		doctorPrint(w, "AI summaries", "Unavailable (optional)", config.EnvLLMAPIKey+" not set")
	default:
		doctorPrint(w, "AI summaries", "OK", "model: "+result.LLM.Model)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
