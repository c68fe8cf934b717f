// Entry point for the GitPal MCP server: exposes the diff engine and the
// review operations as tools over stdio.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/gitpal-dev/gitpal/dbopen"
	"github.com/gitpal-dev/gitpal/fixer"
	"github.com/gitpal-dev/gitpal/review"
	"github.com/gitpal-dev/gitpal/textdiff"
)

func main() {
	// Logs go to stderr; stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	dbPath := env("DB_PATH", "db/gitpal.db")
	workDir := env("WORK_DIR", os.TempDir())

	db, err := dbopen.Open(dbPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("db", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := review.InitSchema(db); err != nil {
		slog.Error("schema", "error", err)
		os.Exit(1)
	}

	var opts []review.ServiceOption
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts = append(opts, review.WithFixer(fixer.New(key, fixer.WithModel(env("OPENAI_MODEL", "gpt-4o-mini")))))
	}
	svc, err := review.New(db, &review.Config{WorkDir: workDir}, logger, opts...)
	if err != nil {
		slog.Error("review service", "error", err)
		os.Exit(1)
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "gitpal",
		Version: "1.0.0",
	}, nil)
	textdiff.RegisterMCP(srv)
	review.RegisterMCP(srv, svc)

	ctx := context.Background()
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		slog.Error("mcp server", "error", err)
		os.Exit(1)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
