// internal/storage/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rovshanmuradov/memescope/internal/storage"
	"github.com/rovshanmuradov/memescope/internal/storage/models"
)

const defaultListLimit = 100

// sqliteStorage реализует интерфейс Storage
type sqliteStorage struct {
	db     *sql.DB
	mu     sync.Mutex // serializes writers
	logger *zap.Logger
}

// NewStorage opens (or creates) the database at path and runs migrations.
func NewStorage(path string, logger *zap.Logger) (storage.Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &sqliteStorage{db: db, logger: logger.Named("sqlite")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.logger.Info("SQLite storage opened", zap.String("path", path))
	return s, nil
}

func (s *sqliteStorage) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			address     TEXT NOT NULL DEFAULT '',
			symbol      TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			score       INTEGER NOT NULL,
			label       TEXT NOT NULL,
			warnings    TEXT NOT NULL DEFAULT '[]',
			market_cap  REAL NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_address ON assessments(address, created_at)`,
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id               TEXT PRIMARY KEY,
			started_at       INTEGER NOT NULL,
			total            INTEGER NOT NULL,
			correct          INTEGER NOT NULL,
			accuracy         REAL NOT NULL,
			true_positives   INTEGER NOT NULL,
			false_positives  INTEGER NOT NULL,
			true_negatives   INTEGER NOT NULL,
			false_negatives  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS backtest_records (
			run_id             TEXT NOT NULL REFERENCES backtest_runs(id),
			idx                INTEGER NOT NULL,
			symbol             TEXT NOT NULL DEFAULT '',
			address            TEXT NOT NULL DEFAULT '',
			score              INTEGER NOT NULL,
			outcome            TEXT NOT NULL,
			predicted_high     INTEGER NOT NULL,
			correct            INTEGER NOT NULL,
			running_accuracy   REAL NOT NULL,
			PRIMARY KEY (run_id, idx)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStorage) SaveAssessment(ctx context.Context, a *models.Assessment) error {
	warnings := a.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	encoded, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (address, symbol, name, score, label, warnings, market_cap, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Address, a.Symbol, a.Name, a.Score, a.Label, string(encoded), a.MarketCap, a.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// ListAssessments returns the newest assessments first. An empty address
// lists all tokens.
func (s *sqliteStorage) ListAssessments(ctx context.Context, address string, limit int) ([]*models.Assessment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, address, symbol, name, score, label, warnings, market_cap, created_at
		FROM assessments`
	args := []any{}
	if address != "" {
		query += ` WHERE address = ?`
		args = append(args, address)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []*models.Assessment
	for rows.Next() {
		var (
			a        models.Assessment
			warnings string
			created  int64
		)
		if err := rows.Scan(&a.ID, &a.Address, &a.Symbol, &a.Name, &a.Score, &a.Label, &warnings, &a.MarketCap, &created); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &a.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
		a.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *sqliteStorage) SaveBacktestRun(ctx context.Context, run *models.BacktestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO backtest_runs (id, started_at, total, correct, accuracy,
			true_positives, false_positives, true_negatives, false_negatives)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.Total, run.Correct, run.Accuracy,
		run.TruePositives, run.FalsePositives, run.TrueNegatives, run.FalseNegatives); err != nil {
		return fmt.Errorf("insert backtest run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO backtest_records (run_id, idx, symbol, address, score, outcome,
			predicted_high, correct, running_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare backtest record: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Records {
		if _, err := stmt.ExecContext(ctx, run.ID, r.Index, r.Symbol, r.Address, r.Score, r.Outcome,
			boolToInt(r.PredictedHighRisk), boolToInt(r.Correct), r.RunningAccuracy); err != nil {
			return fmt.Errorf("insert backtest record %d: %w", r.Index, err)
		}
	}

	return tx.Commit()
}

func (s *sqliteStorage) GetBacktestRun(ctx context.Context, id string) (*models.BacktestRun, error) {
	var (
		run     models.BacktestRun
		started int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, total, correct, accuracy,
			true_positives, false_positives, true_negatives, false_negatives
		 FROM backtest_runs WHERE id = ?`, id).
		Scan(&run.ID, &started, &run.Total, &run.Correct, &run.Accuracy,
			&run.TruePositives, &run.FalsePositives, &run.TrueNegatives, &run.FalseNegatives)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query backtest run: %w", err)
	}
	run.StartedAt = time.Unix(0, started).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, symbol, address, score, outcome, predicted_high, correct, running_accuracy
		 FROM backtest_records WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query backtest records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r             models.BacktestRecord
			high, correct int
		)
		if err := rows.Scan(&r.Index, &r.Symbol, &r.Address, &r.Score, &r.Outcome, &high, &correct, &r.RunningAccuracy); err != nil {
			return nil, fmt.Errorf("scan backtest record: %w", err)
		}
		r.PredictedHighRisk = high == 1
		r.Correct = correct == 1
		run.Records = append(run.Records, r)
	}
	return &run, rows.Err()
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
