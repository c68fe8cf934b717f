package store

import (
	"context"
	"database/sql"
	"time"
)

// Run is one analysis of a repository.
type Run struct {
	ID          string
	UserID      string
	RepoURL     string
	RepoPath    string
	Status      string
	TotalIssues int
	CreatedAt   int64
}

// Issue is one linter finding attached to a run.
type Issue struct {
	ID          string
	RunID       string
	FilePath    string
	DisplayPath string
	Line        int
	Column      int
	Code        string
	Message     string
	Symbol      string
}

// Fix records a generated fix for one finding.
type Fix struct {
	ID        string
	RunID     string
	FilePath  string
	SmellCode string
	Line      int
	Applied   bool
	CreatedAt int64
}

// InsertRun adds a run.
func (s *Store) InsertRun(ctx context.Context, r *Run) error {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixMilli()
	}
	if r.Status == "" {
		r.Status = "completed"
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, user_id, repo_url, repo_path, status, total_issues, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.RepoURL, r.RepoPath, r.Status, r.TotalIssues, r.CreatedAt)
	return err
}

// GetRun retrieves a run by ID, or nil if absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, repo_url, repo_path, status, total_issues, created_at
		FROM runs WHERE id = ?`, id)

	var r Run
	err := row.Scan(&r.ID, &r.UserID, &r.RepoURL, &r.RepoPath, &r.Status, &r.TotalIssues, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns the most recent runs for a user.
func (s *Store) ListRuns(ctx context.Context, userID string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, repo_url, repo_path, status, total_issues, created_at
		FROM runs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.UserID, &r.RepoURL, &r.RepoPath, &r.Status, &r.TotalIssues, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// InsertIssues stores all findings of a run in one transaction.
func (s *Store) InsertIssues(ctx context.Context, issues []*Issue) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO issues (id, run_id, file_path, display_path, line_number, column_number, code, message, symbol)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, iss := range issues {
		if _, err := stmt.ExecContext(ctx, iss.ID, iss.RunID, iss.FilePath, iss.DisplayPath,
			iss.Line, iss.Column, iss.Code, iss.Message, iss.Symbol); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListIssues returns the findings of a run.
func (s *Store) ListIssues(ctx context.Context, runID string) ([]*Issue, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, file_path, display_path, line_number, column_number, code, message, symbol
		FROM issues WHERE run_id = ? ORDER BY file_path, line_number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*Issue
	for rows.Next() {
		var iss Issue
		if err := rows.Scan(&iss.ID, &iss.RunID, &iss.FilePath, &iss.DisplayPath,
			&iss.Line, &iss.Column, &iss.Code, &iss.Message, &iss.Symbol); err != nil {
			return nil, err
		}
		issues = append(issues, &iss)
	}
	return issues, rows.Err()
}

// InsertFix records a generated fix.
func (s *Store) InsertFix(ctx context.Context, f *Fix) error {
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO fixes (id, run_id, file_path, smell_code, line_number, applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.RunID, f.FilePath, f.SmellCode, f.Line, f.Applied, f.CreatedAt)
	return err
}

// ListFixes returns the fixes recorded for a run.
func (s *Store) ListFixes(ctx context.Context, runID string) ([]*Fix, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, file_path, smell_code, line_number, applied, created_at
		FROM fixes WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixes []*Fix
	for rows.Next() {
		var f Fix
		if err := rows.Scan(&f.ID, &f.RunID, &f.FilePath, &f.SmellCode, &f.Line, &f.Applied, &f.CreatedAt); err != nil {
			return nil, err
		}
		fixes = append(fixes, &f)
	}
	return fixes, rows.Err()
}
