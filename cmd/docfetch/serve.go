package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-docfetch/internal/webui"
)

// shutdownTimeout bounds graceful shutdown of the web form.
const shutdownTimeout = 10 * time.Second

func newServeCmd(env *Environment, _ *commonFlags) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local download form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env, &f)
		},
	}
	addServeFlags(cmd.Flags(), &f)
	return cmd
}

// runServe starts the web form and blocks until ctx is canceled.
func runServe(ctx context.Context, env *Environment, f *serveFlags) error {
	cfg := env.Config

	srvCfg := webui.DefaultConfig()
	srvCfg.Addr = cfg.Server.Addr
	srvCfg.OutputDir = cfg.OutputDir
	srvCfg.AssetsDir = cfg.Server.AssetsDir
	srvCfg.Now = env.Now
	if f.addr != "" {
		srvCfg.Addr = f.addr
	}
	if f.outputDir != "" {
		srvCfg.OutputDir = f.outputDir
	}

	log, err := newLogger(env)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = log.Sync() }()

	srv, err := webui.New(srvCfg, env.NewDownloader(cfg, log, false), env.Opener, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Serving on http://%s (output: %s)\n", srvCfg.Addr, srvCfg.OutputDir)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown requested", zap.Error(context.Cause(ctx)))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
