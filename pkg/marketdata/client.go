package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/writer"
)

// WriterType defines the type of export writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// OnExportProgress is called after each symbol is written.
type OnExportProgress = func(current int, total int, symbol string)

// ExporterConfig holds the configuration for the exporter.
type ExporterConfig struct {
	WriterType WriterType `validate:"required,oneof=duckdb"`
	DataPath   string     `validate:"required"`
}

// ExportParams selects the history to export.
type ExportParams struct {
	Symbols    []string       `validate:"required,min=1,dive,required"`
	Interval   types.Interval `validate:"required,oneof=daily weekly monthly"`
	OutputSize int            `validate:"required,min=1"`
}

// Exporter writes history served by a HistoryCache to files.
type Exporter struct {
	cache      *HistoryCache
	config     ExporterConfig
	validate   *validator.Validate
	onProgress OnExportProgress
	newWriter  func(outputPath string) writer.BarWriter
}

// NewExporter creates an exporter reading through cache.
func NewExporter(cache *HistoryCache, config ExporterConfig, onProgress OnExportProgress) (*Exporter, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid exporter configuration", err)
	}

	if cache == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "exporter requires a history cache")
	}

	if onProgress == nil {
		onProgress = func(int, int, string) {}
	}

	return &Exporter{
		cache:      cache,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		newWriter:  writer.NewDuckDBWriter,
	}, nil
}

// OutputPath is the file Export writes for params.
// Filename: SYMBOLS_INTERVAL_OUTPUTSIZE.parquet
func (e *Exporter) OutputPath(params ExportParams) string {
	name := fmt.Sprintf("%s_%s_%d.parquet", joinSymbols(params.Symbols), params.Interval.Wire(), params.OutputSize)

	return filepath.Join(e.config.DataPath, name)
}

// Export fetches every symbol through the cache and writes all bars into one file.
func (e *Exporter) Export(ctx context.Context, params ExportParams) (string, error) {
	if err := e.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid export parameters", err)
	}

	if err := os.MkdirAll(e.config.DataPath, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create data path", err)
	}

	w, err := e.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer w.Close()

	for i, symbol := range params.Symbols {
		bars, err := e.cache.Get(ctx, symbol, params.Interval, params.OutputSize)
		if err != nil {
			return "", fmt.Errorf("export %s: %w", symbol, err)
		}

		for _, bar := range bars {
			if err := w.Write(types.NormalizeSymbol(symbol), params.Interval, bar); err != nil {
				return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write bar", err)
			}
		}

		e.onProgress(i+1, len(params.Symbols), types.NormalizeSymbol(symbol))
	}

	path, err := w.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize export", err)
	}

	return path, nil
}

// setupWriter initializes the writer selected by the configuration.
func (e *Exporter) setupWriter(params ExportParams) (writer.BarWriter, error) {
	switch e.config.WriterType {
	case WriterDuckDB:
		outputPath := e.OutputPath(params)

		w := e.newWriter(outputPath)
		if err := w.Initialize(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to initialize DuckDB writer at %s", outputPath)
		}

		return w, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", e.config.WriterType)
	}
}

func joinSymbols(symbols []string) string {
	name := ""

	for i, symbol := range symbols {
		if i > 0 {
			name += "-"
		}

		name += types.NormalizeSymbol(symbol)
	}

	return name
}
