package reportcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/types"
)

// SQLite stores one row per (symbol, report_date).
type SQLite struct {
	db *sql.DB
}

var _ interfaces.ReportStore = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	schema := `
    CREATE TABLE IF NOT EXISTS report_cache (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        symbol TEXT NOT NULL,
        report_date TEXT NOT NULL,
        run_id TEXT,
        provider TEXT,
        content TEXT NOT NULL,
        payload TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE(symbol, report_date)
    );

    CREATE INDEX IF NOT EXISTS idx_symbol_date ON report_cache(symbol, report_date);
    `
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create report_cache table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, symbol, day string) (*types.Report, error) {
	query := `SELECT symbol, report_date, run_id, provider, content, payload, created_at
              FROM report_cache
              WHERE symbol = ? AND report_date = ?`

	var (
		r       types.Report
		runID   sql.NullString
		prov    sql.NullString
		payload sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, normalizeSymbol(symbol), day).
		Scan(&r.Symbol, &r.Date, &runID, &prov, &r.Content, &payload, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	r.RunID = runID.String
	r.Provider = prov.String
	if payload.Valid && payload.String != "" {
		r.Payload = []byte(payload.String)
	}
	return &r, nil
}

func (s *SQLite) Put(ctx context.Context, report *types.Report) error {
	query := `INSERT INTO report_cache (symbol, report_date, run_id, provider, content, payload, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(symbol, report_date) DO UPDATE SET
                  run_id = excluded.run_id,
                  provider = excluded.provider,
                  content = excluded.content,
                  payload = excluded.payload,
                  created_at = excluded.created_at`

	created := report.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		normalizeSymbol(report.Symbol), report.Date, report.RunID, report.Provider,
		report.Content, string(report.Payload), created.UTC())
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
