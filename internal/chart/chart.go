package chart

import (
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-chart/internal/indicator"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// Selection is what the viewer picked: which history and which overlay.
type Selection struct {
	Symbol    string
	Interval  types.Interval
	Range     types.Range
	Indicator types.IndicatorType // empty means no overlay
	Params    []any
}

// Payload is everything a chart needs to render one selection.
type Payload struct {
	Symbol    string              `json:"symbol"`
	Interval  string              `json:"interval"`
	Range     string              `json:"range"`
	Bars      []types.Bar         `json:"bars"`
	Quote     *Quote              `json:"quote,omitempty"`
	Indicator types.IndicatorType `json:"indicator,omitempty"`
	Line      []types.Point       `json:"line,omitempty"`
	Bands     *types.MultiSeries  `json:"bands,omitempty"`
}

// Build derives the quote and the selected indicator from bars ordered oldest-first.
// Insufficient data is not an error: the overlay is simply empty.
func Build(bars []types.Bar, registry indicator.IndicatorRegistry, sel Selection) (*Payload, error) {
	if bars == nil {
		bars = []types.Bar{}
	}

	payload := &Payload{
		Symbol:   types.NormalizeSymbol(sel.Symbol),
		Interval: sel.Interval.Wire(),
		Range:    sel.Range.Label,
		Bars:     bars,
	}

	if quote, ok := QuoteFromBars(bars); ok {
		payload.Quote = &quote
	}

	if sel.Indicator == "" {
		return payload, nil
	}

	ind, err := registry.GetIndicator(sel.Indicator)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidIndicatorSettings, "unknown indicator", err)
	}

	if len(sel.Params) > 0 {
		if err := ind.Config(sel.Params...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidIndicatorSettings, err, "invalid %s settings", sel.Indicator)
		}
	}

	result := ind.Compute(bars)
	payload.Indicator = result.Indicator

	if result.Multi {
		series := result.Series
		payload.Bands = &series
	} else {
		payload.Line = result.Line
		if payload.Line == nil {
			payload.Line = []types.Point{}
		}
	}

	return payload, nil
}

// ParseIndicator accepts the canonical names plus the short forms used in the UI.
// "" and "none" select no overlay.
func ParseIndicator(name string) (types.IndicatorType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return "", nil
	case "sma", "ma":
		return types.IndicatorTypeMA, nil
	case "ema":
		return types.IndicatorTypeEMA, nil
	case "rsi":
		return types.IndicatorTypeRSI, nil
	case "macd":
		return types.IndicatorTypeMACD, nil
	case "bollinger_bands", "bollinger", "bb":
		return types.IndicatorTypeBollingerBands, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidIndicatorSettings, "unsupported indicator %q", name)
	}
}

// ParseParams splits "12,26,9" into numeric indicator parameters.
func ParseParams(raw string) ([]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	params := make([]any, 0, len(parts))

	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidIndicatorSettings, err, "invalid indicator parameter %q", part)
		}

		params = append(params, v)
	}

	return params, nil
}
