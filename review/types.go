package review

import (
	"github.com/gitpal-dev/gitpal/linter"
	"github.com/gitpal-dev/gitpal/textdiff"
)

// AnalyzeRequest identifies a repository to clone and lint.
type AnalyzeRequest struct {
	RepoURL string `json:"repo_url"`
	Token   string `json:"token"`
}

// AnalyzeResult is the outcome of one analysis run. RepoPath points at the
// clone kept on disk so later fix requests can reference files inside it.
type AnalyzeResult struct {
	RunID       string         `json:"run_id"`
	Message     string         `json:"message"`
	Issues      []linter.Issue `json:"smell_patterns"`
	TotalIssues int            `json:"total_issues"`
	RepoPath    string         `json:"repo_path"`
}

// FixRequest identifies one finding to fix in an existing clone.
type FixRequest struct {
	FilePath   string `json:"file_path"`
	SmellCode  string `json:"smell_code"`
	LineNumber int    `json:"line_number"`
}

// PreviewResult carries a generated fix that has not been written to disk,
// together with the line diff against the current file.
type PreviewResult struct {
	FilePath    string          `json:"file_path"`
	Original    string          `json:"original"`
	PreviewCode string          `json:"preview_code"`
	Diff        textdiff.Result `json:"diff"`
}

// FixResult is the outcome of applying a fix to a file.
type FixResult struct {
	FilePath string `json:"file_path"`
	Fix      string `json:"fix"`
}

// FixedIssue is one finding that FixAll repaired.
type FixedIssue struct {
	linter.Issue
	Fix string `json:"fix"`
}

// SkippedIssue is one finding FixAll could not repair.
type SkippedIssue struct {
	linter.Issue
	Error string `json:"error"`
}

// FixAllResult summarises an auto-fix pass over a whole repository.
type FixAllResult struct {
	RunID   string         `json:"run_id"`
	Message string         `json:"message"`
	Fixed   []FixedIssue   `json:"fixed_issues"`
	Skipped []SkippedIssue `json:"skipped_issues"`
}

// FileFix is one rewritten file to commit, addressed by its path relative
// to the repository root.
type FileFix struct {
	FilePath  string `json:"file_path"`
	FixedCode string `json:"fixed_code"`
}

// CommitFixesRequest asks for a set of fixes to be committed on a new branch,
// optionally followed by a pull request.
type CommitFixesRequest struct {
	RepoURL    string    `json:"repo_url"`
	Token      string    `json:"token"`
	Fixes      []FileFix `json:"fixes"`
	CreatePR   bool      `json:"create_pr"`
	PRTitle    string    `json:"pr_title"`
	PRBody     string    `json:"pr_body"`
	BaseBranch string    `json:"base_branch"`
}

// CommitFixesResult reports the pushed branch and, when requested, the
// created pull request.
type CommitFixesResult struct {
	Branch       string `json:"branch"`
	FilesChanged int    `json:"files_changed"`
	Message      string `json:"message"`
	PRURL        string `json:"pr_url,omitempty"`
	PRNumber     int    `json:"pr_number,omitempty"`
}
