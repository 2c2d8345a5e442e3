package store

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

	_ "github.com/mattn/go-sqlite3"
)

const defaultHistoryLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertAnalysisStmt *sql.Stmt
	getAnalysisStmt    *sql.Stmt
	listAnalysesStmt   *sql.Stmt
}

var (
	sqliteOpen              = sql.Open
	sqlitePrepareStatements = (*SQLiteStore).prepareStatements
)

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sqliteOpen("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := sqlitePrepareStatements(st); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			pattern_count INTEGER NOT NULL,
			top_pattern TEXT NOT NULL,
			top_confidence REAL NOT NULL,
			refined INTEGER NOT NULL,
			patterns BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()
	type stmtSpec struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}

	specs := []stmtSpec{
		{
			dst: &s.insertAnalysisStmt,
			query: `
				INSERT INTO analyses (
					id, created_at, prompt, pattern_count, top_pattern, top_confidence, refined, patterns
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert analysis: %w",
		},
		{
			dst: &s.getAnalysisStmt,
			query: `
				SELECT id, created_at, prompt, pattern_count, top_pattern, top_confidence, refined, patterns
				FROM analyses WHERE id = ?
			`,
			errFmt: "store: prepare get analysis: %w",
		},
		{
			dst: &s.listAnalysesStmt,
			query: `
				SELECT id, created_at, prompt, pattern_count, top_pattern, top_confidence, refined, patterns
				FROM analyses
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			`,
			errFmt: "store: prepare list analyses: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}

	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	stmts := []*sql.Stmt{
		s.insertAnalysisStmt,
		s.getAnalysisStmt,
		s.listAnalysesStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAnalysis persists one analysis record.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if rec == nil {
		return errors.New("store: nil analysis")
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return errors.New("store: empty analysis id")
	}
	if strings.TrimSpace(rec.Prompt) == "" {
		return errors.New("store: empty analysis prompt")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	patternJSON, err := json.Marshal(rec.Patterns)
	if err != nil {
		return fmt.Errorf("store: marshal patterns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin analysis tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := tx.StmtContext(ctx, s.insertAnalysisStmt)
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		id,
		createdAt.UTC().UnixMilli(),
		rec.Prompt,
		rec.PatternCount,
		rec.TopPattern,
		rec.TopConfidence,
		rec.Refined,
		patternJSON,
	)
	if err != nil {
		return fmt.Errorf("store: insert analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads an analysis by id.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty analysis id")
	}

	row := s.getAnalysisStmt.QueryRowContext(ctx, id)
	rec, err := scanAnalysisRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get analysis: %w", err)
	}
	return rec, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]*AnalysisRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.listAnalysesStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list analyses: %w", err)
	}
	defer rows.Close()

	var out []*AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysisRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan analysis: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list analyses: %w", err)
	}
	return out, nil
}

func scanAnalysisRow(scan func(dest ...any) error) (*AnalysisRecord, error) {
	var (
		id            string
		createdAtMS   int64
		prompt        string
		patternCount  int
		topPattern    string
		topConfidence float64
		refined       bool
		patternJSON   []byte
	)
	if err := scan(&id, &createdAtMS, &prompt, &patternCount, &topPattern, &topConfidence, &refined, &patternJSON); err != nil {
		return nil, err
	}

	patterns, err := decodePatterns(patternJSON)
	if err != nil {
		return nil, err
	}

	return &AnalysisRecord{
		ID:            id,
		CreatedAt:     time.UnixMilli(createdAtMS).UTC(),
		Prompt:        prompt,
		PatternCount:  patternCount,
		TopPattern:    topPattern,
		TopConfidence: topConfidence,
		Refined:       refined,
		Patterns:      patterns,
	}, nil
}

func decodePatterns(patternJSON []byte) (map[string]PatternDetail, error) {
	if len(patternJSON) == 0 {
		return nil, nil
	}
	var out map[string]PatternDetail
	if err := json.Unmarshal(patternJSON, &out); err != nil {
		return nil, err
	}
	return out, nil
}
