package tui

import "github.com/rxtech-lab/argo-chart/internal/types"

// QuotesMsg carries one refresh of every watchlist row.
type QuotesMsg struct {
	Rows []Row
}

// DetailMsg carries the history of the symbol opened in the detail view.
type DetailMsg struct {
	Symbol string
	Bars   []types.Bar
	Err    error
}

// ErrorMsg reports a failure that is not tied to one row.
type ErrorMsg struct {
	Err error
}
