package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/internal/version"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "argo-chart",
		Usage:   "Price history, technical indicators and a watchlist for equity symbols",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("ARGO_CHART_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "history",
				Usage:     "Print the price history of a symbol with an optional indicator",
				ArgsUsage: "SYMBOL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   fmt.Sprintf("Bar interval (%s, %s, %s)", types.IntervalDaily, types.IntervalWeekly, types.IntervalMonthly),
					},
					&cli.StringFlag{
						Name:    "range",
						Aliases: []string{"r"},
						Usage:   "Lookback preset (1M, 3M, 1Y, 5Y, Max)",
					},
					&cli.StringFlag{
						Name:  "indicator",
						Usage: "Indicator to compute (sma, ema, rsi, macd, bollinger_bands)",
					},
					&cli.StringFlag{
						Name:  "params",
						Usage: "Comma-separated indicator parameters, e.g. 12,26,9",
					},
					&cli.IntFlag{
						Name:  "tail",
						Usage: "Number of most recent bars to print",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full chart payload as JSON",
					},
				},
				Action: historyAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address, overrides the configuration",
					},
				},
				Action: serveAction,
			},
			{
				Name:   "watch",
				Usage:  "Interactive watchlist in the terminal",
				Action: watchAction,
			},
			{
				Name:  "watchlist",
				Usage: "Manage the persisted watchlist",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Print the watchlist",
						Action: watchlistListAction,
					},
					{
						Name:      "add",
						Usage:     "Add symbols to the watchlist",
						ArgsUsage: "SYMBOL...",
						Action:    watchlistAddAction,
					},
					{
						Name:      "remove",
						Usage:     "Remove symbols from the watchlist",
						ArgsUsage: "SYMBOL...",
						Action:    watchlistRemoveAction,
					},
				},
			},
			{
				Name:      "export",
				Usage:     "Write the history of symbols to a Parquet file",
				ArgsUsage: "SYMBOL...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Bar interval",
					},
					&cli.StringFlag{
						Name:    "range",
						Aliases: []string{"r"},
						Usage:   "Lookback preset",
					},
					&cli.BoolFlag{
						Name:  "watchlist",
						Usage: "Export every watchlist symbol",
					},
				},
				Action: exportAction,
			},
			{
				Name:  "config",
				Usage: "Inspect the configuration",
				Commands: []*cli.Command{
					{
						Name:   "schema",
						Usage:  "Print the JSON schema of the configuration file",
						Action: configSchemaAction,
					},
					{
						Name:   "show",
						Usage:  "Print the effective configuration with secrets redacted",
						Action: configShowAction,
					},
					{
						Name:  "init",
						Usage: "Write the configuration schema and a sample configuration file",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "dir",
								Usage: "Output directory",
								Value: "./config",
							},
						},
						Action: configInitAction,
					},
				},
			},
			{
				Name:   "indicators",
				Usage:  "List the available indicators",
				Action: indicatorsAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
