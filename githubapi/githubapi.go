// Package githubapi is a thin client for the GitHub REST API covering the
// operations the review service needs: listing the authenticated user's
// repositories, reading repository metadata, and opening pull requests.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrBadRepoURL is returned when a repository URL cannot be parsed into
// owner/repo form.
var ErrBadRepoURL = errors.New("githubapi: invalid repository URL")

const maxResponseBody = 10 * 1024 * 1024

// Client calls the GitHub REST API. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the GitHub API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client against api.github.com with a 30 second timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: "https://api.github.com",
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ParseRepoURL extracts owner and repo from a GitHub repository URL.
// Accepts https://github.com/owner/repo[.git] and git@github.com:owner/repo[.git].
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	var path string
	switch {
	case strings.HasPrefix(repoURL, "https://github.com/"):
		path = strings.TrimPrefix(repoURL, "https://github.com/")
	case strings.HasPrefix(repoURL, "git@github.com:"):
		path = strings.TrimPrefix(repoURL, "git@github.com:")
	default:
		return "", "", fmt.Errorf("%w: %q", ErrBadRepoURL, repoURL)
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.TrimRight(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadRepoURL, repoURL)
	}
	return parts[0], parts[1], nil
}

// Repo is one entry from the authenticated user's repository listing.
type Repo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language"`
	UpdatedAt     string `json:"updated_at"`
}

// ListRepos returns the repositories of the user the token belongs to.
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	body, err := c.get(ctx, token, "/user/repos?per_page=100&sort=updated")
	if err != nil {
		return nil, fmt.Errorf("githubapi: list repos: %w", err)
	}
	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("githubapi: decode repos: %w", err)
	}
	return repos, nil
}

// Info describes a repository, resolved from its URL.
type Info struct {
	Owner         string
	Repo          string
	DefaultBranch string
}

// RepoInfo resolves the owner, name, and default branch of a repository.
// When the metadata request fails, the default branch falls back to "main"
// so commit flows stay usable with limited-scope tokens.
func (c *Client) RepoInfo(ctx context.Context, token, repoURL string) (Info, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return Info{}, err
	}

	info := Info{Owner: owner, Repo: repo, DefaultBranch: "main"}
	body, err := c.get(ctx, token, "/repos/"+owner+"/"+repo)
	if err != nil {
		return info, nil
	}

	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.Unmarshal(body, &meta); err == nil && meta.DefaultBranch != "" {
		info.DefaultBranch = meta.DefaultBranch
	}
	return info, nil
}

// PullRequest is the result of opening a pull request.
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, token, repoURL, head, base, title, body string) (*PullRequest, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"title": title,
		"head":  head,
		"base":  base,
		"body":  body,
	})
	if err != nil {
		return nil, fmt.Errorf("githubapi: marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/repos/"+owner+"/"+repo+"/pulls", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("githubapi: create pull request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode != http.StatusCreated {
		var ghErr struct {
			Message string `json:"message"`
		}
		json.Unmarshal(respBody, &ghErr)
		if ghErr.Message == "" {
			ghErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("githubapi: create pull request: HTTP %d: %s", resp.StatusCode, ghErr.Message)
	}

	var pr PullRequest
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, fmt.Errorf("githubapi: decode pull request: %w", err)
	}
	return &pr, nil
}

func (c *Client) get(ctx context.Context, token, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
