package internal

import (
	"context"
	"fmt"

	"github.com/eralp/turbonote/internal/flashcard"
	"github.com/eralp/turbonote/internal/mcpserver"
	"github.com/eralp/turbonote/internal/noterepo"
	"github.com/eralp/turbonote/internal/store"
)

// RunMCP starts the MCP stdio server bound to a single owner. An empty
// owner falls back to the configured dev user.
func RunMCP(_ context.Context, cfg *Config, owner string) error {
	if owner == "" {
		owner = cfg.Auth.DevUser
	}
	if owner == "" {
		return fmt.Errorf("mcp: owner is required")
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	repo := noterepo.New(db)
	gen := flashcard.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.Timeout())

	return mcpserver.New(repo, gen, owner).ServeStdio()
}
