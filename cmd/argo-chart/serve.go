package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/internal/api"
	"github.com/rxtech-lab/argo-chart/internal/scheduler"
	"github.com/rxtech-lab/argo-chart/internal/tui"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, closeStore, err := openWatchlist(a.config, a.logger, a.metrics)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if spec := a.config.RefreshCron; spec != "" {
		sched, err := scheduler.NewScheduler(
			scheduler.Config{Spec: spec, Interval: a.config.Interval(), Range: a.config.Range()},
			a.cache,
			list,
			scheduler.WithLogger(a.logger),
			scheduler.WithMetrics(a.metrics),
		)
		if err != nil {
			return err
		}

		sched.Start()
		defer sched.Stop()
	}

	server, err := api.NewServer(
		api.Config{DefaultInterval: a.config.Interval(), DefaultRange: a.config.Range()},
		a.cache,
		list,
		a.registry,
		api.WithLogger(a.logger),
		api.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}

	listen := a.config.Listen
	if override := cmd.String("listen"); override != "" {
		listen = override
	}

	a.logger.Info("starting argo-chart",
		zap.String("provider", string(a.config.Provider)),
		zap.String("listen", listen),
		zap.String("watchlist", a.config.WatchlistPath()),
	)

	return server.ListenAndServe(ctx, listen)
}

func watchAction(_ context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, closeStore, err := openWatchlist(a.config, a.logger, a.metrics)
	if err != nil {
		return err
	}
	defer closeStore()

	model := tui.NewModel(a.cache, list, a.config.Interval(), a.config.Range())

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()

	return err
}
