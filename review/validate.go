package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitpal-dev/gitpal/guard"
)

func validateRepoRequest(repoURL string) error {
	if strings.TrimSpace(repoURL) == "" {
		return fmt.Errorf("%w: repo_url is required", ErrInvalidInput)
	}
	if err := guard.ValidateRepoURL(repoURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// resolveFile confines path to the service work area and verifies the file
// exists. Fix and read requests carry absolute paths produced by Analyze, so
// anything outside WorkDir is a forged request.
func (s *Service) resolveFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: file_path is required", ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !guard.ContainsPath(s.config.WorkDir, abs) {
		return "", fmt.Errorf("%w: path outside work area", ErrInvalidInput)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return abs, nil
}
