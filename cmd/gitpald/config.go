package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is loaded from an optional YAML file, then overridden by environment
// variables. The env names match what the deployment sets; the file keeps
// local development out of the shell profile.
type config struct {
	Port        string `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	ObsDBPath   string `yaml:"observability_db_path"`
	WorkDir     string `yaml:"work_dir"`
	FrontendURL string `yaml:"frontend_url"`
	LogLevel    string `yaml:"log_level"`

	SessionSecret      string `yaml:"session_secret"`
	GitHubClientID     string `yaml:"github_client_id"`
	GitHubClientSecret string `yaml:"github_client_secret"`
	OAuthRedirectURL   string `yaml:"oauth_redirect_url"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
}

func loadConfig() (*config, error) {
	cfg := &config{
		Port:        "8000",
		DBPath:      "db/gitpal.db",
		ObsDBPath:   "db/observability.db",
		WorkDir:     os.TempDir(),
		FrontendURL: "http://localhost:5173",
		LogLevel:    "info",
		OpenAIModel: "gpt-4o-mini",
	}

	path := env("CONFIG_FILE", "gitpald.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	overrides := []struct {
		key string
		dst *string
	}{
		{"PORT", &cfg.Port},
		{"DB_PATH", &cfg.DBPath},
		{"OBSERVABILITY_DB_PATH", &cfg.ObsDBPath},
		{"WORK_DIR", &cfg.WorkDir},
		{"FRONTEND_URL", &cfg.FrontendURL},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"SESSION_SECRET", &cfg.SessionSecret},
		{"GITHUB_CLIENT_ID", &cfg.GitHubClientID},
		{"GITHUB_CLIENT_SECRET", &cfg.GitHubClientSecret},
		{"OAUTH_REDIRECT_URL", &cfg.OAuthRedirectURL},
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"OPENAI_MODEL", &cfg.OpenAIModel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = "http://localhost:" + cfg.Port + "/auth/callback"
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
