package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cinechat/internal/daemon"
	"cinechat/internal/favorites"
	"cinechat/internal/logging"
	"cinechat/internal/search"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}

func runServer(cmdCtx context.Context, ctx *commandContext, bind string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind = strings.TrimSpace(bind); bind != "" {
		cfg.Server.Bind = bind
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	pipeline, err := search.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("build search pipeline", logging.Error(err))
		return err
	}
	store, err := favorites.Open(cfg)
	if err != nil {
		logger.Error("open favorites store", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, pipeline, store, logger)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("cinechat shutting down")
	return nil
}
