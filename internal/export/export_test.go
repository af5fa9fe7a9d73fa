package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/backtest"
	"github.com/rovshanmuradov/memescope/internal/risk"
)

func testReport() *backtest.Report {
	records := []backtest.Record{
		{Index: 0, Symbol: "RUG", Score: 10, Outcome: risk.OutcomeRugpull, PredictedHighRisk: true, Correct: true, RunningAccuracy: 100},
		{Index: 1, Symbol: "CLEAN", Score: 1, Outcome: risk.OutcomeLegitimate, Correct: true, RunningAccuracy: 100},
		{Index: 2, Symbol: "SNEAKY", Score: 2, Outcome: risk.OutcomeRugpull, Correct: false, RunningAccuracy: 66.67},
	}
	return &backtest.Report{
		ID:        "0b5e1f2a-1111-2222-3333-444455556666",
		StartedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Records:   records,
		Summary:   backtest.Summarize(records),
	}
}

func newTestExporter() *ReportExporter {
	e := NewReportExporter(zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC) }
	return e
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestExporter().Export(testReport(), ExportOptions{Format: FormatCSV, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backtest_0b5e1f2a_20240502_103000.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeaders(), rows[0])
	assert.Equal(t, []string{"2", "SNEAKY", "", "2", "rugpull", "false", "false", "66.67"}, rows[3])
}

func TestExportJSON(t *testing.T) {
	path, err := newTestExporter().Export(testReport(), ExportOptions{Format: FormatJSON, OutputDir: t.TempDir()})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		RunID       string            `json:"run_id"`
		RecordCount int               `json:"record_count"`
		Summary     backtest.Summary  `json:"summary"`
		Records     []backtest.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "0b5e1f2a-1111-2222-3333-444455556666", decoded.RunID)
	assert.Equal(t, 3, decoded.RecordCount)
	assert.Equal(t, 66.67, decoded.Summary.Accuracy)
	assert.Equal(t, testReport().Records, decoded.Records)
}

func TestExportFilters(t *testing.T) {
	e := newTestExporter()

	path, err := e.Export(testReport(), ExportOptions{Format: FormatCSV, OutputDir: t.TempDir(), OnlyMisses: true})
	require.NoError(t, err)
	assert.True(t, strings.Contains(filepath.Base(path), "_misses_"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))

	_, err = e.Export(testReport(), ExportOptions{
		Format: FormatCSV, OutputDir: t.TempDir(), OnlyMisses: true, OnlyHighRisk: true,
	})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestExportErrors(t *testing.T) {
	e := newTestExporter()

	_, err := e.Export(&backtest.Report{}, ExportOptions{Format: FormatCSV, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = e.Export(testReport(), ExportOptions{Format: "xml", OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
