package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata"
)

func exportAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := selectionFromFlags(cmd, a.config.Interval(), a.config.Range())
	if err != nil {
		return err
	}

	symbols := cmd.Args().Slice()

	if cmd.Bool("watchlist") {
		list, closeStore, err := openWatchlist(a.config, a.logger, nil)
		if err != nil {
			return err
		}

		symbols = append(symbols, list.List()...)
		_ = closeStore()
	}

	symbols = uniqueSymbols(symbols)
	if len(symbols) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "export expects SYMBOL arguments or --watchlist")
	}

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(stderr(cmd)),
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionShowCount(),
	)

	exporter, err := marketdata.NewExporter(a.cache, marketdata.ExporterConfig{
		WriterType: marketdata.WriterDuckDB,
		DataPath:   a.config.DataPath,
	}, func(current int, _ int, symbol string) {
		bar.Describe("exported " + symbol)
		_ = bar.Set(current)
	})
	if err != nil {
		return err
	}

	path, err := exporter.Export(ctx, marketdata.ExportParams{
		Symbols:    symbols,
		Interval:   sel.Interval,
		OutputSize: sel.Range.OutputSize,
	})

	_ = bar.Finish()
	fmt.Fprintln(stderr(cmd))

	if err != nil {
		return err
	}

	fmt.Fprintln(stdout(cmd), path)

	return nil
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		s = types.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}

		seen[s] = true
		out = append(out, s)
	}

	return out
}
