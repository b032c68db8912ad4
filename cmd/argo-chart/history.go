package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-chart/internal/chart"
	"github.com/rxtech-lab/argo-chart/internal/tui"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

func historyAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "history expects exactly one SYMBOL argument")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := selectionFromFlags(cmd, a.config.Interval(), a.config.Range())
	if err != nil {
		return err
	}

	sel.Symbol = cmd.Args().First()

	if sel.Indicator, err = chart.ParseIndicator(cmd.String("indicator")); err != nil {
		return err
	}

	if sel.Params, err = chart.ParseParams(cmd.String("params")); err != nil {
		return err
	}

	bars, err := a.cache.Get(ctx, sel.Symbol, sel.Interval, sel.Range.OutputSize)
	if err != nil {
		return err
	}

	payload, err := chart.Build(bars, a.registry, sel)
	if err != nil {
		return err
	}

	out := stdout(cmd)

	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(payload)
	}

	fmt.Fprintln(out, quoteLine(payload))
	fmt.Fprintln(out, renderBars(payload, int(cmd.Int("tail"))))

	return nil
}

// selectionFromFlags reads --interval and --range, falling back to the configured defaults.
func selectionFromFlags(cmd *cli.Command, interval types.Interval, rng types.Range) (chart.Selection, error) {
	sel := chart.Selection{Interval: interval, Range: rng}

	if raw := cmd.String("interval"); raw != "" {
		parsed, err := types.ParseInterval(raw)
		if err != nil {
			return sel, errors.Wrap(errors.ErrCodeInvalidInterval, "invalid --interval", err)
		}

		sel.Interval = parsed
	}

	if raw := cmd.String("range"); raw != "" {
		parsed, err := types.ParseRange(raw)
		if err != nil {
			return sel, errors.Wrap(errors.ErrCodeInvalidRange, "invalid --range", err)
		}

		sel.Range = parsed
	}

	return sel, nil
}

func quoteLine(p *chart.Payload) string {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s %s %s", p.Symbol, p.Interval, p.Range))
	if p.Quote == nil {
		return title + "  no data"
	}

	return fmt.Sprintf("%s  %.2f  %s", title, p.Quote.Price, tui.RenderChange(*p.Quote))
}

// renderBars prints the newest tail bars with the indicator values aligned by time.
func renderBars(p *chart.Payload, tail int) string {
	headers := []string{"Time", "Open", "High", "Low", "Close", "Volume"}
	columns := map[string]map[string]float64{}

	var names []string

	switch {
	case p.Bands != nil:
		for _, name := range p.Bands.Names() {
			names = append(names, name)
			columns[name] = byTime(p.Bands.Series(name))
		}
	case p.Indicator != "":
		name := string(p.Indicator)
		names = append(names, name)
		columns[name] = byTime(p.Line)
	}

	headers = append(headers, names...)

	bars := p.Bars
	if tail > 0 && tail < len(bars) {
		bars = bars[len(bars)-tail:]
	}

	rows := make([][]string, 0, len(bars))

	for _, bar := range bars {
		volume := "-"
		if v, err := bar.Volume.Take(); err == nil {
			volume = strconv.FormatInt(v, 10)
		}

		row := []string{
			bar.Time,
			fmt.Sprintf("%.2f", bar.Open),
			fmt.Sprintf("%.2f", bar.High),
			fmt.Sprintf("%.2f", bar.Low),
			fmt.Sprintf("%.2f", bar.Close),
			volume,
		}

		for _, name := range names {
			if v, ok := columns[name][bar.Time]; ok {
				row = append(row, fmt.Sprintf("%.2f", v))
			} else {
				row = append(row, "")
			}
		}

		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func byTime(points []types.Point) map[string]float64 {
	out := make(map[string]float64, len(points))
	for _, p := range points {
		out[p.Time] = p.Value
	}

	return out
}

func indicatorsAction(_ context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range a.registry.ListIndicators() {
		fmt.Fprintln(stdout(cmd), name)
	}

	return nil
}
