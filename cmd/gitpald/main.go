// Entry point for the GitPal HTTP service: GitHub OAuth login, repository
// analysis, fix generation, and commit/PR endpoints on a chi router.
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/gitpal-dev/gitpal/auth"
	"github.com/gitpal-dev/gitpal/dbopen"
	"github.com/gitpal-dev/gitpal/fixer"
	"github.com/gitpal-dev/gitpal/githubapi"
	"github.com/gitpal-dev/gitpal/observability"
	"github.com/gitpal-dev/gitpal/review"
	"github.com/gitpal-dev/gitpal/shield"
	"github.com/gitpal-dev/gitpal/textdiff"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Derive a 32-byte JWT secret from whatever the operator supplied.
	secretHash := sha256.Sum256([]byte(cfg.SessionSecret))
	jwtSecret := secretHash[:]

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Application DB: review runs plus the shield rate limit rules.
	appDB, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("app db", "error", err)
		os.Exit(1)
	}
	defer appDB.Close()
	if err := review.InitSchema(appDB); err != nil {
		slog.Error("review schema", "error", err)
		os.Exit(1)
	}
	if err := shield.Init(appDB); err != nil {
		slog.Error("shield schema", "error", err)
		os.Exit(1)
	}

	// Observability DB is separate so request logs never contend with runs.
	obsDB, err := dbopen.Open(cfg.ObsDBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(observability.Schema))
	if err != nil {
		slog.Error("observability db", "error", err)
		os.Exit(1)
	}
	defer obsDB.Close()
	events := observability.NewEventLogger(obsDB)

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		slog.Error("work dir", "error", err)
		os.Exit(1)
	}

	svcOpts := []review.ServiceOption{review.WithEventLogger(events)}
	if cfg.OpenAIAPIKey != "" {
		svcOpts = append(svcOpts, review.WithFixer(fixer.New(cfg.OpenAIAPIKey, fixer.WithModel(cfg.OpenAIModel))))
	} else {
		slog.Warn("OPENAI_API_KEY not set, fix generation disabled")
	}
	svc, err := review.New(appDB, &review.Config{WorkDir: cfg.WorkDir}, logger, svcOpts...)
	if err != nil {
		slog.Error("review service", "error", err)
		os.Exit(1)
	}

	oauthCfg := auth.NewGitHubProvider(auth.OAuthConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	})

	r := chi.NewRouter()
	rl := shield.DefaultStack(r, appDB)
	rl.StartReloader(ctx.Done())
	r.Use(observability.RequestLog(obsDB))
	r.Use(auth.Middleware(jwtSecret))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	// OAuth login flow.
	r.Get("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		state := randomState()
		http.SetCookie(w, &http.Cookie{
			Name:     "oauth_state",
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, oauthCfg.AuthCodeURL(state), http.StatusFound)
	})

	r.Get("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie("oauth_state")
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			writeJSON(w, 400, map[string]string{"error": "invalid oauth state"})
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			writeJSON(w, 400, map[string]string{"error": "missing code"})
			return
		}

		user, ghToken, err := auth.FetchGitHubUser(r.Context(), oauthCfg, code)
		if err != nil {
			slog.Error("oauth callback", "error", err)
			writeJSON(w, 502, map[string]string{"error": "github authentication failed"})
			return
		}

		claims := &auth.Claims{
			UserID:      user.ProviderUserID,
			Login:       user.Login,
			Name:        user.Name,
			Email:       user.Email,
			AvatarURL:   user.AvatarURL,
			GitHubToken: ghToken.AccessToken,
		}
		token, err := auth.GenerateToken(jwtSecret, claims, 24*time.Hour)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
		auth.SetTokenCookie(w, token, "", secure)
		events.LogEvent(r.Context(), observability.BusinessEvent{
			EventType:   observability.EventLogin,
			ServiceName: "auth",
			EntityType:  "user",
			EntityID:    user.ProviderUserID,
			UserID:      user.ProviderUserID,
			Action:      "login",
			Success:     true,
		})
		http.Redirect(w, r, cfg.FrontendURL, http.StatusFound)
	})

	r.Post("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		auth.ClearTokenCookie(w, "")
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	// The diff engine is exposed directly: the frontend diffs arbitrary
	// before/after pairs without going through a fix preview.
	r.Post("/diff", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Before json.RawMessage `json:"before"`
			After  json.RawMessage `json:"after"`
			Name   string          `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
		writeJSON(w, 200, textdiff.Diff(textdiff.ValueFromJSON(req.Before), textdiff.ValueFromJSON(req.After), req.Name))
	})

	// Everything below needs a session.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			c := auth.GetClaims(r.Context())
			writeJSON(w, 200, map[string]string{
				"id": c.UserID, "login": c.Login, "name": c.Name,
				"email": c.Email, "avatar_url": c.AvatarURL,
			})
		})

		r.Get("/github/repos", func(w http.ResponseWriter, r *http.Request) {
			repos, err := svc.Repos(r.Context(), auth.GitHubToken(r.Context()))
			if err != nil {
				writeError(w, 502, err)
				return
			}
			writeJSON(w, 200, repos)
		})

		r.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
			var req review.AnalyzeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if req.Token == "" {
				req.Token = auth.GitHubToken(r.Context())
			}
			res, err := svc.Analyze(r.Context(), req)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/analyze/preview-fix", func(w http.ResponseWriter, r *http.Request) {
			var req review.FixRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			res, err := svc.PreviewFix(r.Context(), req)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/analyze/generate-fix", func(w http.ResponseWriter, r *http.Request) {
			var req review.FixRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			res, err := svc.GenerateFix(r.Context(), req)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/analyze/fix-all", func(w http.ResponseWriter, r *http.Request) {
			var req review.AnalyzeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if req.Token == "" {
				req.Token = auth.GitHubToken(r.Context())
			}
			res, err := svc.FixAll(r.Context(), req)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/analyze/get-file-content", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				FilePath string `json:"file_path"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			content, err := svc.FileContent(r.Context(), req.FilePath)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, map[string]string{"file_path": req.FilePath, "content": content})
		})

		r.Post("/analyze/commit-fixes", func(w http.ResponseWriter, r *http.Request) {
			var req review.CommitFixesRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if req.Token == "" {
				req.Token = auth.GitHubToken(r.Context())
			}
			res, err := svc.CommitFixes(r.Context(), req)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/analyze/get-repo-info", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				RepoURL string `json:"repo_url"`
				Token   string `json:"token"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if req.Token == "" {
				req.Token = auth.GitHubToken(r.Context())
			}
			info, err := svc.RepoInfo(r.Context(), req.Token, req.RepoURL)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, info)
		})

		r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
			c := auth.GetClaims(r.Context())
			runs, err := svc.RunHistory(r.Context(), c.UserID)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, runs)
		})

		r.Get("/runs/{runID}/issues", func(w http.ResponseWriter, r *http.Request) {
			issues, err := svc.RunIssues(r.Context(), chi.URLParam(r, "runID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, issues)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute, // analyze clones and lints synchronously
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, review.ErrNoFixes),
		errors.Is(err, review.ErrNoChanges),
		errors.Is(err, githubapi.ErrBadRepoURL):
		return 400
	case errors.Is(err, review.ErrFileNotFound):
		return 404
	case errors.Is(err, review.ErrFixerUnavailable):
		return 503
	default:
		return 500
	}
}

func randomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
