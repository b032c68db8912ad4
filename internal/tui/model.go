// Package tui is a terminal watchlist: quotes for every watched symbol plus a detail view
// with the default indicators.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-chart/internal/chart"
	"github.com/rxtech-lab/argo-chart/internal/indicator"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/internal/watchlist"
)

// Application states.
const (
	StateWatchlist = iota
	StateSymbolInput
	StateIntervalSelect
	StateDetail
)

const (
	fetchTimeout     = 30 * time.Second
	fetchConcurrency = 4
	detailBars       = 5
)

// HistorySource loads oldest-first bars, normally the history cache.
type HistorySource interface {
	Get(ctx context.Context, symbol string, interval types.Interval, outputSize int) ([]types.Bar, error)
}

// Model is the main Bubble Tea model for the watchlist.
type Model struct {
	state        int
	history      HistorySource
	watchlist    *watchlist.Watchlist
	interval     types.Interval
	rng          types.Range
	symbolInput  textinput.Model
	intervalList list.Model
	dataTable    table.Model
	rows         []Row
	detail       *DetailMsg
	err          error
	width        int
	height       int
}

// NewModel creates a Model showing list with the given defaults.
func NewModel(history HistorySource, list *watchlist.Watchlist, interval types.Interval, rng types.Range) Model {
	m := Model{
		state:        StateWatchlist,
		history:      history,
		watchlist:    list,
		interval:     interval,
		rng:          rng,
		symbolInput:  NewSymbolInput(),
		intervalList: NewIntervalList(),
		dataTable:    NewWatchlistTable(),
	}

	m.rows = m.pendingRows()
	m.dataTable = UpdateTableRows(m.dataTable, m.rows)

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateSymbolInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.intervalList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 6)

		return m, nil

	case QuotesMsg:
		m.rows = msg.Rows
		m.dataTable = UpdateTableRows(m.dataTable, m.rows)

		return m, nil

	case DetailMsg:
		m.detail = &msg

		return m, nil

	case ErrorMsg:
		m.err = msg.Err

		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateWatchlist:
		return m.updateWatchlist(msg)
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateIntervalSelect:
		return m.updateIntervalSelect(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateSymbolInput:
		m.symbolInput.Reset()
		m.symbolInput.Blur()
		m.state = StateWatchlist
	case StateIntervalSelect, StateDetail:
		m.detail = nil
		m.state = StateWatchlist
	}

	return m, nil
}

func (m Model) updateWatchlist(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "a":
			m.state = StateSymbolInput
			m.symbolInput.Focus()

			return m, textinput.Blink
		case "i":
			m.state = StateIntervalSelect

			return m, nil
		case "r":
			m.err = nil

			return m, m.refresh()
		case "d", "delete":
			symbol := m.selectedSymbol()
			if symbol == "" {
				return m, nil
			}

			if _, err := m.watchlist.Remove(symbol); err != nil {
				m.err = err

				return m, nil
			}

			m.rows = m.withoutSymbol(symbol)
			m.dataTable = UpdateTableRows(m.dataTable, m.rows)

			return m, nil
		case "enter":
			symbol := m.selectedSymbol()
			if symbol == "" {
				return m, nil
			}

			m.state = StateDetail
			m.detail = nil

			return m, m.loadDetail(symbol)
		}
	}

	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		for _, symbol := range ParseSymbols(m.symbolInput.Value()) {
			if _, err := m.watchlist.Add(symbol); err != nil {
				m.err = err

				break
			}
		}

		m.symbolInput.Reset()
		m.symbolInput.Blur()
		m.state = StateWatchlist
		m.rows = m.pendingRows()
		m.dataTable = UpdateTableRows(m.dataTable, m.rows)

		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)

	return m, cmd
}

func (m Model) updateIntervalSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.intervalList.SelectedItem().(listItem); ok {
			m.interval = types.Interval(item.name)
			m.state = StateWatchlist
			m.rows = m.pendingRows()
			m.dataTable = UpdateTableRows(m.dataTable, m.rows)

			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.intervalList, cmd = m.intervalList.Update(msg)

	return m, cmd
}

func (m Model) selectedSymbol() string {
	if len(m.rows) == 0 {
		return ""
	}

	cursor := m.dataTable.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return ""
	}

	return m.rows[cursor].Symbol
}

// pendingRows lists the watchlist, keeping quotes already known for the symbols.
func (m Model) pendingRows() []Row {
	known := make(map[string]Row, len(m.rows))
	for _, row := range m.rows {
		known[row.Symbol] = row
	}

	symbols := m.watchlist.List()
	rows := make([]Row, len(symbols))

	for i, symbol := range symbols {
		rows[i] = Row{Symbol: symbol, Quote: known[symbol].Quote}
	}

	return rows
}

func (m Model) withoutSymbol(symbol string) []Row {
	rows := make([]Row, 0, len(m.rows))

	for _, row := range m.rows {
		if row.Symbol != symbol {
			rows = append(rows, row)
		}
	}

	return rows
}

// refresh fetches a quote for every watchlist symbol, a few at a time.
func (m Model) refresh() tea.Cmd {
	history := m.history
	symbols := m.watchlist.List()
	interval := m.interval
	size := m.rng.OutputSize

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		rows := make([]Row, len(symbols))

		var g errgroup.Group
		g.SetLimit(fetchConcurrency)

		for i, symbol := range symbols {
			g.Go(func() error {
				row := Row{Symbol: symbol}

				bars, err := history.Get(ctx, symbol, interval, size)
				if err != nil {
					row.Err = err
				} else if quote, ok := chart.QuoteFromBars(bars); ok {
					row.Quote = &quote
				}

				rows[i] = row

				return nil
			})
		}

		_ = g.Wait()

		return QuotesMsg{Rows: rows}
	}
}

func (m Model) loadDetail(symbol string) tea.Cmd {
	history := m.history
	interval := m.interval
	size := m.rng.OutputSize

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		bars, err := history.Get(ctx, symbol, interval, size)

		return DetailMsg{Symbol: symbol, Bars: bars, Err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateWatchlist:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Argo Chart - Watchlist (%s, %s)", m.interval, m.rng.Label)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.rows) == 0 {
			s.WriteString("Watchlist is empty. Press a to add symbols.\n")
		} else {
			s.WriteString(m.dataTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("a: add | d: remove | i: interval | r: refresh | enter: details | q: quit"))

	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Add Symbols"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated symbols (e.g., AAPL,MSFT):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateIntervalSelect:
		s.WriteString(m.intervalList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateDetail:
		s.WriteString(m.detailView())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Esc: back | q: quit"))
	}

	return s.String()
}

func (m Model) detailView() string {
	if m.detail == nil {
		return "Loading...\n"
	}

	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", m.detail.Symbol, m.interval)))
	s.WriteString("\n\n")

	if m.detail.Err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.detail.Err)))
		s.WriteString("\n")

		return s.String()
	}

	bars := m.detail.Bars

	quote, ok := chart.QuoteFromBars(bars)
	if !ok {
		s.WriteString("No data\n")

		return s.String()
	}

	fmt.Fprintf(&s, "Price  %.2f  %s\n", quote.Price, RenderChange(quote))
	fmt.Fprintf(&s, "Bars   %d (%s to %s)\n\n", len(bars), bars[0].Time, bars[len(bars)-1].Time)

	if v, ok := lastValue(indicator.CalculateSMA(bars, 20)); ok {
		fmt.Fprintf(&s, "SMA(20)  %.2f\n", v)
	} else {
		s.WriteString("SMA(20)  n/a\n")
	}

	if v, ok := lastValue(indicator.CalculateRSI(bars, 14)); ok {
		fmt.Fprintf(&s, "RSI(14)  %.2f\n", v)
	} else {
		s.WriteString("RSI(14)  n/a\n")
	}

	s.WriteString("\n")

	start := max(len(bars)-detailBars, 0)
	for _, bar := range bars[start:] {
		fmt.Fprintf(&s, "%-20s O %.2f  H %.2f  L %.2f  C %.2f\n", bar.Time, bar.Open, bar.High, bar.Low, bar.Close)
	}

	return s.String()
}
