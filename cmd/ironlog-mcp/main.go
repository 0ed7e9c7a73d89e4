// Package main runs the IronLog MCP server over stdio, for wiring workout
// data into local AI tooling. It talks to the same Postgres database as the
// HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/ironlog/internal/config"
	"github.com/meltforce/ironlog/internal/mcp"
	"github.com/meltforce/ironlog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	user := flag.String("user", "", "login to serve data for (defaults to the configured dev user)")
	flag.Parse()

	// Stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	login := *user
	if login == "" {
		login = cfg.Auth.DevUser
	}
	uid, err := db.GetOrCreateUser(ctx, login, login)
	if err != nil {
		log.Error("resolving user", "login", login, "error", err)
		os.Exit(1)
	}
	log.Info("IronLog MCP starting", "version", Version, "login", login)

	srv := mcp.New(db, Version, log)
	err = mcpserver.ServeStdio(srv,
		mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, uid)
		}),
	)
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
