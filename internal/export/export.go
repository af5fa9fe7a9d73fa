package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/backtest"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

var (
	ErrNoRecords         = errors.New("backtest report has no records")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	OutputDir    string
	OnlyMisses   bool // Only export incorrect predictions
	OnlyHighRisk bool // Only export records predicted as high risk
}

// ReportExporter writes backtest reports to disk
type ReportExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportExporter creates a new report exporter
func NewReportExporter(logger *zap.Logger) *ReportExporter {
	return &ReportExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export writes report according to options and returns the file path.
func (e *ReportExporter) Export(report *backtest.Report, options ExportOptions) (string, error) {
	if report == nil || len(report.Records) == 0 {
		return "", ErrNoRecords
	}

	filtered := filterRecords(report.Records, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("%w: nothing matches the export filters", ErrNoRecords)
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, e.generateFilename(report, options))

	var err error
	switch options.Format {
	case FormatCSV:
		err = exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = e.exportToJSON(report, filtered, outputPath)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, options.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Backtest report exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func filterRecords(records []backtest.Record, options ExportOptions) []backtest.Record {
	var filtered []backtest.Record
	for _, r := range records {
		if options.OnlyMisses && r.Correct {
			continue
		}
		if options.OnlyHighRisk && !r.PredictedHighRisk {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func (e *ReportExporter) generateFilename(report *backtest.Report, options ExportOptions) string {
	prefix := "backtest"
	if len(report.ID) >= 8 {
		prefix += "_" + report.ID[:8]
	}
	if options.OnlyMisses {
		prefix += "_misses"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), options.Format)
}

// CSVHeaders returns the column names of the CSV export
func CSVHeaders() []string {
	return []string{"index", "symbol", "address", "score", "outcome", "predicted_high_risk", "correct", "running_accuracy"}
}

func recordToCSV(r backtest.Record) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.Symbol,
		r.Address,
		strconv.Itoa(r.Score),
		string(r.Outcome),
		strconv.FormatBool(r.PredictedHighRisk),
		strconv.FormatBool(r.Correct),
		strconv.FormatFloat(r.RunningAccuracy, 'f', 2, 64),
	}
}

func exportToCSV(records []backtest.Record, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(recordToCSV(r)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (e *ReportExporter) exportToJSON(report *backtest.Report, records []backtest.Record, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime  time.Time         `json:"export_time"`
		RunID       string            `json:"run_id"`
		StartedAt   time.Time         `json:"started_at"`
		RecordCount int               `json:"record_count"`
		Summary     backtest.Summary  `json:"summary"`
		Records     []backtest.Record `json:"records"`
	}{
		ExportTime:  e.now(),
		RunID:       report.ID,
		StartedAt:   report.StartedAt,
		RecordCount: len(records),
		Summary:     report.Summary,
		Records:     records,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
