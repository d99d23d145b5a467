package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/config"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/httpapi"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/store"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if listen != "" {
				cfg.Server.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.ListenAddr, err)
			}
			return runServer(ctx, ln, cfg, logger, common.NewDefaultAWSClientProvider())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, e.g. :8080 (overrides config and "+config.EnvListenAddr+")")
	return cmd
}

// runServer serves the API on ln until ctx is cancelled, then drains
// in-flight requests for up to shutdownTimeout.
func runServer(
	ctx context.Context,
	ln net.Listener,
	cfg *config.Config,
	logger *zap.Logger,
	provider common.AWSClientProvider,
) error {
	keys, err := httpapi.NewKeyPair(httpapi.DefaultKeyBits)
	if err != nil {
		return err
	}

	results := store.New(cfg.Store.Capacity, cfg.Store.TTL)
	client := newLLMClient(cfg)
	eng := buildEngine(cfg, logger, provider, client, results)

	deps := httpapi.Deps{
		Engine:      eng,
		Provider:    provider,
		Results:     results,
		Keys:        keys,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Regions:     cfg.Scan.Regions,
		Summarize:   client.Available(),
	}
	if client.Available() {
		deps.Fixer = client
	}

	srv := &http.Server{
		Handler:           httpapi.NewRouter(deps),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", ln.Addr().String()),
			zap.Bool("llm", client.Available()),
			zap.String("model", client.Model()),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
