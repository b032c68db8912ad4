package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-chart/internal/chart"
	"github.com/rxtech-lab/argo-chart/internal/types"
)

// Row is one watchlist line. Quote is nil until the first successful fetch.
type Row struct {
	Symbol string
	Quote  *chart.Quote
	Err    error
}

// listItem implements list.Item for the interval list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewIntervalList creates a new list for interval selection.
func NewIntervalList() list.Model {
	items := []list.Item{
		listItem{name: string(types.IntervalDaily), description: "1 day bars"},
		listItem{name: string(types.IntervalWeekly), description: "1 week bars"},
		listItem{name: string(types.IntervalMonthly), description: "1 month bars"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Interval"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewSymbolInput creates a new text input for symbol entry.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "AAPL,MSFT,NVDA"
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseSymbols parses comma-separated symbols into a slice.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := types.NormalizeSymbol(p)
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// NewWatchlistTable creates the table that lists watchlist quotes.
func NewWatchlistTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Price", Width: 12},
		{Title: "Change", Width: 26},
		{Title: "As of", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTableRows renders rows in watchlist order.
func UpdateTableRows(t table.Model, rows []Row) table.Model {
	out := make([]table.Row, 0, len(rows))

	for _, row := range rows {
		switch {
		case row.Err != nil:
			out = append(out, table.Row{row.Symbol, "-", "error: " + row.Err.Error(), ""})
		case row.Quote == nil:
			out = append(out, table.Row{row.Symbol, "...", "", ""})
		default:
			out = append(out, table.Row{
				row.Symbol,
				fmt.Sprintf("%.2f", row.Quote.Price),
				FormatChange(*row.Quote),
				row.Quote.Time,
			})
		}
	}

	t.SetRows(out)

	return t
}

// lastValue returns the newest point of a series.
func lastValue(points []types.Point) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}

	return points[len(points)-1].Value, true
}
