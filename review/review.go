// Package review orchestrates repository analysis and automated fixing:
// clone, lint, generate fixes, and push the result back to GitHub.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gitpal-dev/gitpal/githubapi"
	"github.com/gitpal-dev/gitpal/idgen"
	"github.com/gitpal-dev/gitpal/kit"
	"github.com/gitpal-dev/gitpal/linter"
	"github.com/gitpal-dev/gitpal/observability"
	"github.com/gitpal-dev/gitpal/repogit"
	"github.com/gitpal-dev/gitpal/review/internal/store"
	"github.com/gitpal-dev/gitpal/textdiff"
)

// ErrFixerUnavailable is returned when a fix operation is requested but no
// fix generator was configured (no API key at startup).
var ErrFixerUnavailable = errors.New("review: fix generation service is not available")

// Fixer produces corrected file contents for one linter finding.
// Preview returns the fix without touching disk; Apply writes it in place.
type Fixer interface {
	Preview(ctx context.Context, path, smellCode string, line int) (string, error)
	Apply(ctx context.Context, path, smellCode string, line int) (string, error)
}

// Linter reports findings for every source file under root.
type Linter interface {
	Run(ctx context.Context, root string) ([]linter.Issue, error)
}

// Service is the review orchestrator.
type Service struct {
	store  *store.Store
	gh     *githubapi.Client
	linter Linter
	fixer  Fixer
	events *observability.EventLogger
	logger *slog.Logger
	config *Config

	newRunID   func() string
	newIssueID func() string
	newFixID   func() string

	// clone is overridable so tests can stub network access.
	clone func(ctx context.Context, repoURL, token, dir string) (*repogit.Repository, error)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGitHub sets the GitHub API client.
func WithGitHub(c *githubapi.Client) ServiceOption {
	return func(s *Service) { s.gh = c }
}

// WithFixer sets the fix generator. Without one, fix operations return
// ErrFixerUnavailable.
func WithFixer(f Fixer) ServiceOption {
	return func(s *Service) { s.fixer = f }
}

// WithLinter replaces the default pylint runner.
func WithLinter(l Linter) ServiceOption {
	return func(s *Service) { s.linter = l }
}

// WithEventLogger enables business event logging.
func WithEventLogger(el *observability.EventLogger) ServiceOption {
	return func(s *Service) { s.events = el }
}

// WithCloneFunc replaces the git clone implementation.
func WithCloneFunc(fn func(ctx context.Context, repoURL, token, dir string) (*repogit.Repository, error)) ServiceOption {
	return func(s *Service) { s.clone = fn }
}

// New creates a review Service backed by db.
func New(db *sql.DB, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if db == nil {
		return nil, errors.New("review: db is required")
	}
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:      store.New(db),
		gh:         githubapi.New(),
		linter:     linter.New(),
		logger:     logger,
		config:     cfg,
		newRunID:   idgen.Prefixed("run_", idgen.Default),
		newIssueID: idgen.Prefixed("iss_", idgen.Default),
		newFixID:   idgen.Prefixed("fix_", idgen.Default),
		clone:      repogit.Clone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze clones the repository, lints it, and persists the findings. The
// clone stays on disk so later preview and fix requests can address files
// inside it by absolute path.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if err := validateRepoRequest(req.RepoURL); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(s.config.WorkDir, "gitpal-")
	if err != nil {
		return nil, fmt.Errorf("review: create work dir: %w", err)
	}

	repo, err := s.clone(ctx, req.RepoURL, req.Token, dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("review: clone: %w", err)
	}

	issues, err := s.linter.Run(ctx, repo.Root())
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("review: lint: %w", err)
	}

	runID := s.newRunID()
	userID := kit.GetUserID(ctx)
	run := &store.Run{
		ID:          runID,
		UserID:      userID,
		RepoURL:     req.RepoURL,
		RepoPath:    repo.Root(),
		TotalIssues: len(issues),
	}
	if err := s.persistRun(ctx, run, issues); err != nil {
		s.logger.Error("persist run failed", "run_id", runID, "error", err)
	}
	s.logEvent(ctx, observability.EventAnalysisRun, runID, "analyze", true)

	msg := "Analysis completed."
	if len(issues) == 0 {
		msg = "Analysis completed - no issues found."
	}
	s.logger.Info("analysis completed", "run_id", runID, "repo_url", req.RepoURL, "issues", len(issues))

	return &AnalyzeResult{
		RunID:       runID,
		Message:     msg,
		Issues:      issues,
		TotalIssues: len(issues),
		RepoPath:    repo.Root(),
	}, nil
}

// PreviewFix generates a fix for one finding without writing it, and returns
// a line diff between the current file and the proposed content.
func (s *Service) PreviewFix(ctx context.Context, req FixRequest) (*PreviewResult, error) {
	if s.fixer == nil {
		return nil, ErrFixerUnavailable
	}
	path, err := s.resolveFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("review: read file: %w", err)
	}
	preview, err := s.fixer.Preview(ctx, path, req.SmellCode, req.LineNumber)
	if err != nil {
		return nil, fmt.Errorf("review: generate fix: %w", err)
	}

	return &PreviewResult{
		FilePath:    req.FilePath,
		Original:    string(original),
		PreviewCode: preview,
		Diff:        textdiff.Diff(textdiff.Text(string(original)), textdiff.Text(preview), filepath.Base(path)),
	}, nil
}

// GenerateFix generates a fix for one finding and writes it into the clone.
func (s *Service) GenerateFix(ctx context.Context, req FixRequest) (*FixResult, error) {
	if s.fixer == nil {
		return nil, ErrFixerUnavailable
	}
	path, err := s.resolveFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	fixed, err := s.fixer.Apply(ctx, path, req.SmellCode, req.LineNumber)
	if err != nil {
		return nil, fmt.Errorf("review: generate fix: %w", err)
	}

	rec := &store.Fix{
		ID:        s.newFixID(),
		FilePath:  req.FilePath,
		SmellCode: req.SmellCode,
		Line:      req.LineNumber,
		Applied:   true,
	}
	if err := s.store.InsertFix(ctx, rec); err != nil {
		s.logger.Error("record fix failed", "file", req.FilePath, "error", err)
	}
	s.logEvent(ctx, observability.EventFixGenerated, rec.ID, "generate_fix", true)

	return &FixResult{FilePath: req.FilePath, Fix: fixed}, nil
}

// FixAll clones the repository, lints it, and applies a generated fix for
// every finding it can. Findings the generator cannot handle are reported as
// skipped rather than failing the whole pass.
func (s *Service) FixAll(ctx context.Context, req AnalyzeRequest) (*FixAllResult, error) {
	if s.fixer == nil {
		return nil, ErrFixerUnavailable
	}
	if err := validateRepoRequest(req.RepoURL); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(s.config.WorkDir, "gitpal-")
	if err != nil {
		return nil, fmt.Errorf("review: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	repo, err := s.clone(ctx, req.RepoURL, req.Token, dir)
	if err != nil {
		return nil, fmt.Errorf("review: clone: %w", err)
	}
	issues, err := s.linter.Run(ctx, repo.Root())
	if err != nil {
		return nil, fmt.Errorf("review: lint: %w", err)
	}

	runID := s.newRunID()
	result := &FixAllResult{RunID: runID}
	for _, iss := range issues {
		fixed, err := s.fixer.Apply(ctx, iss.Path, iss.Code, iss.Line)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedIssue{Issue: iss, Error: err.Error()})
			continue
		}
		result.Fixed = append(result.Fixed, FixedIssue{Issue: iss, Fix: fixed})
	}

	run := &store.Run{
		ID:          runID,
		UserID:      kit.GetUserID(ctx),
		RepoURL:     req.RepoURL,
		RepoPath:    repo.Root(),
		Status:      "auto_fixed",
		TotalIssues: len(issues),
	}
	if err := s.persistRun(ctx, run, issues); err != nil {
		s.logger.Error("persist run failed", "run_id", runID, "error", err)
	}
	s.logEvent(ctx, observability.EventFixGenerated, runID, "fix_all", true)

	result.Message = fmt.Sprintf("Fixed %d of %d issues.", len(result.Fixed), len(issues))
	return result, nil
}

// FileContent returns the contents of a file inside the work area.
func (s *Service) FileContent(ctx context.Context, path string) (string, error) {
	abs, err := s.resolveFile(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("review: read file: %w", err)
	}
	return string(data), nil
}

// CommitFixes clones the repository fresh, writes the supplied fixes, commits
// them on a new branch, pushes it, and optionally opens a pull request. A PR
// failure after a successful push is reported in the message, not as an error.
func (s *Service) CommitFixes(ctx context.Context, req CommitFixesRequest) (*CommitFixesResult, error) {
	if err := validateRepoRequest(req.RepoURL); err != nil {
		return nil, err
	}
	if len(req.Fixes) == 0 {
		return nil, ErrNoFixes
	}

	dir, err := os.MkdirTemp(s.config.WorkDir, "gitpal-commit-")
	if err != nil {
		return nil, fmt.Errorf("review: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	repo, err := s.clone(ctx, req.RepoURL, req.Token, dir)
	if err != nil {
		return nil, fmt.Errorf("review: clone: %w", err)
	}

	written := 0
	for _, fx := range req.Fixes {
		rel := strings.TrimPrefix(fx.FilePath, "/")
		if rel == "" {
			continue
		}
		if err := repo.WriteFix(rel, fx.FixedCode); err != nil {
			s.logger.Warn("skipping fix", "file", fx.FilePath, "error", err)
			continue
		}
		written++
	}
	if written == 0 {
		return nil, fmt.Errorf("%w: no valid fixes to apply", ErrInvalidInput)
	}

	dirty, err := repo.IsDirty()
	if err != nil {
		return nil, fmt.Errorf("review: status: %w", err)
	}
	if !dirty {
		return nil, ErrNoChanges
	}

	branch := repogit.FixBranchName(time.Now())
	message := fmt.Sprintf("Apply %d code fix", written)
	if written != 1 {
		message = fmt.Sprintf("Apply %d code fixes", written)
	}
	if err := repo.CommitAndPush(ctx, req.Token, branch, message); err != nil {
		if errors.Is(err, repogit.ErrNoChanges) {
			return nil, ErrNoChanges
		}
		return nil, fmt.Errorf("review: commit and push: %w", err)
	}
	s.logEvent(ctx, observability.EventFixesCommitted, branch, "commit_fixes", true)

	result := &CommitFixesResult{
		Branch:       branch,
		FilesChanged: written,
		Message:      fmt.Sprintf("Pushed %d fixed file(s) on branch %s.", written, branch),
	}

	if req.CreatePR {
		base := req.BaseBranch
		if base == "" {
			info, err := s.gh.RepoInfo(ctx, req.Token, req.RepoURL)
			if err != nil {
				return nil, fmt.Errorf("review: repo info: %w", err)
			}
			base = info.DefaultBranch
		}
		title := req.PRTitle
		if title == "" {
			title = "GitPal: automated code fixes"
		}
		body := req.PRBody
		if body == "" {
			body = fmt.Sprintf("Automated fixes for %d file(s) generated by GitPal.", written)
		}
		pr, err := s.gh.CreatePullRequest(ctx, req.Token, req.RepoURL, branch, base, title, body)
		if err != nil {
			// The branch is already pushed; the caller can open the PR by hand.
			s.logger.Error("pull request creation failed", "branch", branch, "error", err)
			result.Message += " Pull request creation failed: " + err.Error()
		} else {
			result.PRURL = pr.HTMLURL
			result.PRNumber = pr.Number
			result.Message += fmt.Sprintf(" Pull request #%d created.", pr.Number)
			s.logEvent(ctx, observability.EventPullRequest, pr.HTMLURL, "create_pr", true)
		}
	}
	return result, nil
}

// RepoInfo resolves the owner, name, and default branch of a repository.
func (s *Service) RepoInfo(ctx context.Context, token, repoURL string) (*githubapi.Info, error) {
	if err := validateRepoRequest(repoURL); err != nil {
		return nil, err
	}
	info, err := s.gh.RepoInfo(ctx, token, repoURL)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Repos lists the repositories the token can access.
func (s *Service) Repos(ctx context.Context, token string) ([]githubapi.Repo, error) {
	return s.gh.ListRepos(ctx, token)
}

// RunHistory returns the most recent analysis runs of a user.
func (s *Service) RunHistory(ctx context.Context, userID string) ([]*store.Run, error) {
	return s.store.ListRuns(ctx, userID, s.config.RunHistoryLimit)
}

// RunIssues returns the stored findings of a run.
func (s *Service) RunIssues(ctx context.Context, runID string) ([]*store.Issue, error) {
	return s.store.ListIssues(ctx, runID)
}

func (s *Service) persistRun(ctx context.Context, run *store.Run, issues []linter.Issue) error {
	if err := s.store.InsertRun(ctx, run); err != nil {
		return err
	}
	rows := make([]*store.Issue, 0, len(issues))
	for _, iss := range issues {
		rows = append(rows, &store.Issue{
			ID:          s.newIssueID(),
			RunID:       run.ID,
			FilePath:    iss.Path,
			DisplayPath: iss.DisplayPath,
			Line:        iss.Line,
			Column:      iss.Column,
			Code:        iss.Code,
			Message:     iss.Message,
			Symbol:      iss.Symbol,
		})
	}
	return s.store.InsertIssues(ctx, rows)
}

func (s *Service) logEvent(ctx context.Context, eventType, entityID, action string, success bool) {
	if s.events == nil {
		return
	}
	s.events.LogEvent(ctx, observability.BusinessEvent{
		EventType:   eventType,
		ServiceName: "review",
		EntityType:  "run",
		EntityID:    entityID,
		UserID:      kit.GetUserID(ctx),
		Action:      action,
		Success:     success,
	})
}
