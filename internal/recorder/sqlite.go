package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists backtest runs and trades to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL UNIQUE,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT,
			source         TEXT,
			bars           INTEGER,
			period         INTEGER,
			threshold      REAL,
			starting_value REAL,
			final_value    REAL,
			realized_value REAL,
			holding        INTEGER,
			trades         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON backtest_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trade_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			action      TEXT NOT NULL,
			roc_index   INTEGER,
			price_index INTEGER,
			price       REAL,
			units       REAL,
			roc         REAL,
			value       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trade_events(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO backtest_runs
		(run_id, timestamp, symbol, source, bars, period, threshold,
		 starting_value, final_value, realized_value, holding, trades)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.StartedAt.Unix(), run.Symbol, run.Source, run.Bars,
		run.Period, run.Threshold, run.StartingValue, run.FinalValue,
		run.RealizedValue, run.Holding, run.Trades,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(trade *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trade_events
		(run_id, action, roc_index, price_index, price, units, roc, value)
		VALUES (?,?,?,?,?,?,?,?)`,
		trade.RunID, trade.Action, trade.ROCIndex, trade.PriceIndex,
		trade.Price, trade.Units, trade.ROC, trade.Value,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
