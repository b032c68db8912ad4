package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/watchlist"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// withWatchlist opens the configured watchlist for a single command.
func withWatchlist(cmd *cli.Command, fn func(list *watchlist.Watchlist) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	list, closeStore, err := openWatchlist(cfg, log, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(list)
}

func watchlistListAction(_ context.Context, cmd *cli.Command) error {
	return withWatchlist(cmd, func(list *watchlist.Watchlist) error {
		for _, symbol := range list.List() {
			fmt.Fprintln(stdout(cmd), symbol)
		}

		return nil
	})
}

func watchlistAddAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "watchlist add expects at least one SYMBOL")
	}

	return withWatchlist(cmd, func(list *watchlist.Watchlist) error {
		for _, symbol := range cmd.Args().Slice() {
			added, err := list.Add(symbol)
			if err != nil {
				return err
			}

			if !added {
				fmt.Fprintf(stderr(cmd), "skipped %q: blank or already watched\n", symbol)
			}
		}

		fmt.Fprintf(stdout(cmd), "%d symbols watched\n", list.Len())

		return nil
	})
}

func watchlistRemoveAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "watchlist remove expects at least one SYMBOL")
	}

	return withWatchlist(cmd, func(list *watchlist.Watchlist) error {
		for _, symbol := range cmd.Args().Slice() {
			removed, err := list.Remove(symbol)
			if err != nil {
				return err
			}

			if !removed {
				fmt.Fprintf(stderr(cmd), "skipped %q: not watched\n", symbol)
			}
		}

		fmt.Fprintf(stdout(cmd), "%d symbols watched\n", list.Len())

		return nil
	})
}
