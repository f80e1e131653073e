// Command settlersim generates a board, plays an autoplayed match on it and
// stores the match in SQLite.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/config"
	"github.com/vgerber/settler-island-server/internal/engine"
	"github.com/vgerber/settler-island-server/internal/entropy"
	"github.com/vgerber/settler-island-server/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("settlersim failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if last, err := db.GetMeta("last_match"); err == nil {
		slog.Info("previous match on record", "match", last)
	}

	// ── Match ─────────────────────────────────────────────────────────
	match, err := engine.NewMatch(engine.Config{
		Players: cfg.Players,
		Seed:    cfg.Seed,
		Board:   board.GenConfigForSize(cfg.BoardSize),
		Store:   db,
	})
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if err := db.SaveMeta("seed:"+match.ID, strconv.FormatInt(match.Seed, 10)); err != nil {
		slog.Error("seed save failed", "error", err)
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nMatch %s: %d players, seed %d. (Ctrl+C to stop)\n", match.ID, cfg.Players, match.Seed)

	runner := engine.Runner{MaxActions: cfg.MaxActions, TargetScore: cfg.TargetScore}
	policy := engine.NewGreedy(entropy.New(match.Seed+1), slog.Default())
	res, err := runner.Run(ctx, match, policy)
	if err != nil {
		return fmt.Errorf("autoplay: %w", err)
	}
	if err := db.SaveResult(match.ID, res); err != nil {
		slog.Error("result save failed", "error", err)
	}

	stats := match.Stats()
	slog.Info("match summary",
		"outcome", res.Outcome,
		"stats", stats.Summary(),
		"sevens", stats.Sevens,
		"trades", stats.Categories[engine.CategoryTrade],
	)

	fmt.Printf("\n%s after %s actions.\n", res.Outcome, humanize.Comma(int64(res.Actions)))
	for rank, st := range res.Standings {
		fmt.Printf("  %-4s player %d: %d points (%d villages, %d cities, %d roads, %d victory cards)\n",
			engine.Place(rank), st.Player, st.Score, st.Villages, st.Cities, st.Roads, st.Cards)
	}
	if res.Winner != nil {
		fmt.Printf("Player %d wins.\n", *res.Winner)
	}
	return nil
}
