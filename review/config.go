package review

import "os"

// Config carries the tunable parts of the review service.
type Config struct {
	// WorkDir is the root under which analysis clones are created.
	// Defaults to the system temp directory.
	WorkDir string

	// RunHistoryLimit caps how many past runs RunHistory returns per user.
	RunHistoryLimit int
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	if c.RunHistoryLimit <= 0 {
		c.RunHistoryLimit = 50
	}
}
