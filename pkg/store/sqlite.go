package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/codereview-adk/pkg/engine"
	"github.com/user/codereview-adk/pkg/logging"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store persists lint issues, cached model feedback and the preprocessing log
// in a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// StoredIssue is an issue row with its id.
type StoredIssue struct {
	ID int64 `json:"id"`
	engine.Issue
}

// FeedbackRecord is one cached model response.
type FeedbackRecord struct {
	ID           int64  `json:"id"`
	CodeHash     string `json:"code_hash"`
	Code         string `json:"code"`
	ToolFindings string `json:"tool_findings"`
	Feedback     string `json:"feedback"`
	Model        string `json:"model"`
	CreatedAt    string `json:"created_at"`
}

// LogEntry is one preprocessing_log row.
type LogEntry struct {
	ID        int64  `json:"id"`
	Step      string `json:"step"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// IssueFilter narrows ListIssues. Zero values mean no filter.
type IssueFilter struct {
	Tool     string
	File     string
	Severity string
	Limit    int
	Offset   int
}

// Summary holds issue counts.
type Summary struct {
	Total      int            `json:"total"`
	ByTool     map[string]int `json:"by_tool"`
	BySeverity map[string]int `json:"by_severity"`
	Cached     int            `json:"cached_feedback"`
}

// Open opens (creating if needed) the database at path and makes sure the
// schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	logging.Logger.Debugf("Opening database at %s", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite is single-writer; one connection also keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lint_issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT,
			tool TEXT,
			message TEXT,
			type TEXT,
			line INTEGER,
			"column" INTEGER,
			code TEXT,
			severity TEXT,
			timestamp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ai_feedback_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code_hash TEXT UNIQUE,
			code TEXT,
			tool_findings TEXT,
			feedback TEXT,
			model TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS preprocessing_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			step TEXT,
			status TEXT,
			timestamp TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lint_issues_tool ON lint_issues(tool)`,
		`CREATE INDEX IF NOT EXISTS idx_lint_issues_file ON lint_issues(file)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// analysis_results is the older single-tool layout; expose it as a view
	// unless a real table by that name is already there.
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE name = 'analysis_results'`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		_, err := s.db.ExecContext(ctx, `CREATE VIEW analysis_results AS
			SELECT id, file AS filename, tool, line, severity, message, code AS rule_id, timestamp
			FROM lint_issues`)
		return err
	}
	return nil
}

// InsertIssues appends one row per issue. Nothing is merged or replaced.
func (s *Store) InsertIssues(ctx context.Context, issues []engine.Issue) (int, error) {
	if len(issues) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lint_issues
		(file, tool, message, type, line, "column", code, severity, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, is := range issues {
		var col sql.NullInt64
		if is.Column != nil {
			col = sql.NullInt64{Int64: int64(*is.Column), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, is.File, is.Tool, is.Message, nullString(is.Type),
			is.Line, col, nullString(is.Code), is.Severity, is.Timestamp); err != nil {
			return 0, fmt.Errorf("failed to insert issue: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(issues), nil
}

// Deduplicate keeps the lowest-id row of every (file, tool, line, column,
// code, message) group and deletes the rest. It returns the number removed.
func (s *Store) Deduplicate(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lint_issues
		WHERE id NOT IN (
			SELECT MIN(id) FROM lint_issues
			GROUP BY file, tool, line, "column", code, message
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to deduplicate issues: %w", err)
	}
	return res.RowsAffected()
}

// NormalizeSeverities rewrites every severity to high, medium or low using
// the engine's mapping table.
func (s *Store) NormalizeSeverities(ctx context.Context) (int64, error) {
	buckets := engine.SeverityBuckets()
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("UPDATE lint_issues SET severity = CASE")
	for _, bucket := range []string{engine.SeverityHigh, engine.SeverityMedium} {
		raw := buckets[bucket]
		if len(raw) == 0 {
			continue
		}
		sb.WriteString(" WHEN lower(severity) IN (" + placeholders(len(raw)) + ") THEN ?")
		for _, r := range raw {
			args = append(args, r)
		}
		args = append(args, bucket)
	}
	sb.WriteString(" ELSE ? END")
	args = append(args, engine.SeverityLow)

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to normalize severities: %w", err)
	}
	return res.RowsAffected()
}

// LogStep records a preprocessing step.
func (s *Store) LogStep(ctx context.Context, step, status string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preprocessing_log (step, status, timestamp) VALUES (?, ?, ?)`,
		step, status, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Steps returns the most recent preprocessing log entries, newest first.
func (s *Store) Steps(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(step, ''), COALESCE(status, ''), COALESCE(timestamp, '')
		 FROM preprocessing_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Step, &e.Status, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CachedFeedback returns the stored feedback text for a cache key.
func (s *Store) CachedFeedback(ctx context.Context, codeHash string) (string, bool, error) {
	var feedback sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT feedback FROM ai_feedback_cache WHERE code_hash = ?`, codeHash).Scan(&feedback)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return feedback.String, true, nil
}

// SaveFeedback inserts a cache row unless one already exists for the hash.
// It reports whether a row was written.
func (s *Store) SaveFeedback(ctx context.Context, rec FeedbackRecord) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO ai_feedback_cache
		(code_hash, code, tool_findings, feedback, model) VALUES (?, ?, ?, ?, ?)`,
		rec.CodeHash, rec.Code, rec.ToolFindings, rec.Feedback, rec.Model)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetFeedback returns the full cache row for a hash.
func (s *Store) GetFeedback(ctx context.Context, codeHash string) (*FeedbackRecord, error) {
	var rec FeedbackRecord
	err := s.db.QueryRowContext(ctx, `SELECT id, code_hash, COALESCE(code, ''), COALESCE(tool_findings, ''),
		COALESCE(feedback, ''), COALESCE(model, ''), COALESCE(created_at, '')
		FROM ai_feedback_cache WHERE code_hash = ?`, codeHash).Scan(
		&rec.ID, &rec.CodeHash, &rec.Code, &rec.ToolFindings, &rec.Feedback, &rec.Model, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListIssues returns stored issues in insertion order.
func (s *Store) ListIssues(ctx context.Context, f IssueFilter) ([]StoredIssue, error) {
	var (
		where []string
		args  []any
	)
	if f.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.File != "" {
		where = append(where, "file = ?")
		args = append(args, f.File)
	}
	if f.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, f.Severity)
	}

	query := `SELECT id, COALESCE(file, ''), COALESCE(tool, ''), COALESCE(message, ''), COALESCE(type, ''),
		COALESCE(line, 0), "column", COALESCE(code, ''), COALESCE(severity, ''), COALESCE(timestamp, '')
		FROM lint_issues`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []StoredIssue
	for rows.Next() {
		var (
			si  StoredIssue
			col sql.NullInt64
		)
		if err := rows.Scan(&si.ID, &si.File, &si.Tool, &si.Message, &si.Type,
			&si.Line, &col, &si.Code, &si.Severity, &si.Timestamp); err != nil {
			return nil, err
		}
		if col.Valid {
			c := int(col.Int64)
			si.Column = &c
		}
		issues = append(issues, si)
	}
	return issues, rows.Err()
}

// Summary counts issues per tool and per severity.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{ByTool: map[string]int{}, BySeverity: map[string]int{}}

	if err := s.countInto(ctx, `SELECT COALESCE(tool, ''), COUNT(*) FROM lint_issues GROUP BY tool`, sum.ByTool); err != nil {
		return sum, err
	}
	if err := s.countInto(ctx, `SELECT COALESCE(severity, ''), COUNT(*) FROM lint_issues GROUP BY severity`, sum.BySeverity); err != nil {
		return sum, err
	}
	for _, n := range sum.ByTool {
		sum.Total += n
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_feedback_cache`).Scan(&sum.Cached); err != nil {
		return sum, err
	}
	return sum, nil
}

func (s *Store) countInto(ctx context.Context, query string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// Tables lists the tables and views in the database.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
