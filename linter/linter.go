// Package linter runs pylint over a cloned repository and parses its JSON
// report into issues with containment-checked paths.
package linter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gitpal-dev/gitpal/guard"
)

// ErrBadOutput is returned when the linter emits something other than a
// JSON report.
var ErrBadOutput = errors.New("linter: invalid JSON output")

// EnabledChecks is the pylint message-id whitelist: missing docstrings,
// line length/whitespace, import ordering, and no-member style errors.
const EnabledChecks = "C0114,C0115,C0301,C0303,C0411,C0412,C0413,C0414,C0415,C0416,D0123,C0417,E0401,E1101,E1102,E1103,E1104,E1105,E1106,E1120,E1121,E1122,E1123"

// Issue is one linter finding. Path is absolute; DisplayPath is relative to
// the repository root.
type Issue struct {
	Path        string `json:"file_path"`
	DisplayPath string `json:"display_path"`
	Line        int    `json:"line_number"`
	Column      int    `json:"column_number"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Symbol      string `json:"symbol"`
}

// Runner executes the linter binary. The zero value is not usable; use New.
type Runner struct {
	argv    []string
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithArgv replaces the linter command line. The repository path is appended
// as the final argument at run time.
func WithArgv(argv []string) Option {
	return func(r *Runner) { r.argv = argv }
}

// WithTimeout bounds a single linter run. Default: 5 minutes.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// New creates a Runner with the default pylint command line.
func New(opts ...Option) *Runner {
	r := &Runner{
		argv: []string{
			"pylint",
			"--output-format=json",
			"--disable=all",
			"--enable=" + EnabledChecks,
			"--ignore=.git,node_modules,__pycache__,.vscode,.idea,venv,env",
			"--recursive=y",
		},
		timeout: 5 * time.Minute,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run lints the repository at root and returns the issues found inside it.
// Pylint exits non-zero whenever it reports findings, so a non-zero exit
// with parseable JSON on stdout is a success.
func (r *Runner) Run(ctx context.Context, root string) ([]Issue, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("linter: resolve root: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := append(append([]string{}, r.argv...), ".")
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = abs

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("linter: run %s: %w", argv[0], err)
		}
		// Findings produce a non-zero exit; fall through to parse stdout.
	}

	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		return nil, nil
	}
	return Parse(stdout.Bytes(), abs)
}

// Parse decodes a pylint JSON report, resolving every path against root and
// dropping findings that fall outside it.
func Parse(report []byte, root string) ([]Issue, error) {
	var raw []struct {
		Path      string `json:"path"`
		Line      int    `json:"line"`
		Column    int    `json:"column"`
		MessageID string `json:"message-id"`
		Message   string `json:"message"`
		Symbol    string `json:"symbol"`
	}
	if err := json.Unmarshal(report, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("linter: resolve root: %w", err)
	}

	issues := make([]Issue, 0, len(raw))
	for _, item := range raw {
		if item.Path == "" {
			continue
		}

		abs := item.Path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}
		abs = filepath.Clean(abs)

		if !guard.ContainsPath(root, abs) {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || filepath.IsAbs(rel) {
			continue
		}

		line, col := item.Line, item.Column
		if line == 0 {
			line = 1
		}
		if col == 0 {
			col = 1
		}
		code := item.MessageID
		if code == "" {
			code = "UNKNOWN"
		}

		issues = append(issues, Issue{
			Path:        abs,
			DisplayPath: rel,
			Line:        line,
			Column:      col,
			Code:        code,
			Message:     item.Message,
			Symbol:      item.Symbol,
		})
	}
	return issues, nil
}
