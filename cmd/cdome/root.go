package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/config"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/engine"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/llm"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/logging"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
	awssecurity "github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/security"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "cdome",
		Short:         "Cloud Dome: AWS security posture scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: json or console (overrides config)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newScanCmd(flags))
	root.AddCommand(newDoctorCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the config file and environment, applies the logging
// flags and validates the result.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// loadRuntime returns the validated config and the logger it describes.
func loadRuntime(flags *rootFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newLLMClient returns the text-generation client described by cfg, or nil
// when it is disabled or has no key.
func newLLMClient(cfg *config.Config) *llm.Client {
	if !cfg.LLMActive() {
		return nil
	}
	return llm.New(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
}

// buildEngine wires the scanner from cfg. store may be nil.
func buildEngine(
	cfg *config.Config,
	logger *zap.Logger,
	provider common.AWSClientProvider,
	client *llm.Client,
	store engine.ResultStore,
) *engine.DefaultEngine {
	collector := awssecurity.NewDefaultSecurityCollector().
		WithConcurrency(cfg.Scan.RegionConcurrency, cfg.Scan.DetailConcurrency)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRuleOptions(cfg.RuleOptions()),
		engine.WithTimeout(cfg.Scan.Timeout),
	}
	if client.Available() {
		opts = append(opts, engine.WithSummarizer(client))
	}
	if store != nil {
		opts = append(opts, engine.WithStore(store))
	}
	return engine.NewDefaultEngine(provider, collector, opts...)
}
