package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dyike/FundaGo/models"
)

type Store struct {
	db *sql.DB
}

// AnalysisWithMeta is a saved analysis and its row id, used as the paging cursor.
type AnalysisWithMeta struct {
	models.Analysis
	RowID int64
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    ticker TEXT NOT NULL,
    company_name TEXT,
    sector TEXT,
    description TEXT,
    strategy TEXT NOT NULL,
    metrics TEXT NOT NULL,
    undervalued INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_ticker_created ON analyses(ticker, created_at);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveAnalysis stores a. An empty ID is filled with a new UUID and a zero
// CreatedAt with the current time; both are written back to a.
func (s *Store) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	if a == nil {
		return fmt.Errorf("analysis is required")
	}
	if strings.TrimSpace(a.Ticker) == "" {
		return fmt.Errorf("analysis ticker is required")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.Now()
	}

	metrics, err := json.Marshal(a.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO analyses (id, ticker, company_name, sector, description, strategy, metrics, undervalued, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    strategy=excluded.strategy,
    metrics=excluded.metrics,
    undervalued=excluded.undervalued
`, a.ID, a.Ticker, a.Company.Name, a.Company.Sector, a.Company.Description, a.Strategy,
		string(metrics), a.Undervalued, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

const analysisColumns = `rowid, id, ticker, company_name, sector, description, strategy, metrics, undervalued, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*AnalysisWithMeta, error) {
	var (
		rec       AnalysisWithMeta
		metrics   string
		createdAt string
	)
	if err := row.Scan(&rec.RowID, &rec.ID, &rec.Ticker, &rec.Company.Name, &rec.Company.Sector,
		&rec.Company.Description, &rec.Strategy, &metrics, &rec.Undervalued, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
		return nil, fmt.Errorf("decode metrics of %s: %w", rec.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

// ListAnalyses pages saved analyses by rowid, newest first. A zero cursor starts
// from the latest row; an empty ticker matches every ticker.
func (s *Store) ListAnalyses(ctx context.Context, ticker string, cursor int64, limit int) ([]AnalysisWithMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	rows, err := s.db.QueryContext(ctx, `
SELECT `+analysisColumns+`
FROM analyses
WHERE (? = 0 OR rowid < ?) AND (? = '' OR ticker = ?)
ORDER BY rowid DESC
LIMIT ?
`, cursor, cursor, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []AnalysisWithMeta
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses rows: %w", err)
	}
	return analyses, nil
}

// GetAnalysis returns nil, nil when no analysis has the id.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*AnalysisWithMeta, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("analysis id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT `+analysisColumns+`
FROM analyses
WHERE id = ?
LIMIT 1
`, id)

	rec, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}

func (s *Store) DeleteAnalysis(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("delete analysis: %s not found", id)
	}
	return nil
}
