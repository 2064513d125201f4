// Command demo is a reference bootstrap for the tournament engine: it
// wires config, the SQLite store, and the websocket hub into a
// golobby/container instance, resolves a facade.Facade from it, and
// registers a tournament and creates a round-robin category through it
// so the wiring can be exercised. It adds no pairs and plays no matches.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/golobby/container/v3"

	"github.com/shuttlecourt/tournament-engine/config"
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/facade"
	"github.com/shuttlecourt/tournament-engine/metrics"
	"github.com/shuttlecourt/tournament-engine/notify"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	c := container.New()
	if err := wireContainer(c, cfg, logger); err != nil {
		logger.Error("failed to wire container", slog.Any("error", err))
		os.Exit(1)
	}

	var hub *notify.Hub
	if err := c.Resolve(&hub); err != nil {
		logger.Error("failed to resolve hub", slog.Any("error", err))
		os.Exit(1)
	}
	go hub.Run()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info("metrics listening", slog.String("addr", cfg.MetricsAddr))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	f, err := facade.New(c)
	if err != nil {
		logger.Error("failed to build facade", slog.Any("error", err))
		os.Exit(1)
	}

	if err := runDemoCategory(context.Background(), f); err != nil {
		logger.Error("demo run failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("demo tournament and category registered")
}

func wireContainer(c *container.Container, cfg config.Config, logger *slog.Logger) error {
	if err := c.Singleton(func() (*storagedb.Store, error) {
		return storagedb.Open(cfg.DatabasePath, cfg.ChangeLogEnabled, logger)
	}); err != nil {
		return err
	}
	return c.Singleton(func() *notify.Hub {
		return notify.NewHub()
	})
}

// runDemoCategory registers a tournament and creates a round-robin
// category through the facade's public commands. Player registration
// and pair creation are domain-layer operations the facade doesn't
// wrap, so a real caller populates pairs directly against domain
// before freezing.
func runDemoCategory(ctx context.Context, f *facade.Facade) error {
	if err := f.RegisterTournament(ctx, facade.RegisterTournamentRequest{
		Name: "Club Open", Organizer: "Demo Club", Date: "2026-07-30",
	}); err != nil {
		return err
	}

	_, err := f.CreateCategory(ctx, facade.CreateCategoryRequest{
		Name:        "Men's Singles Demo",
		MatchType:   domain.MatchTypeSingles,
		Sex:         domain.SexMale,
		MatchSystem: domain.MatchSystemRoundRobin,
		Params:      domain.CategoryParams{WinScore: 2},
	})
	return err
}
