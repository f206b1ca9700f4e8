package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newsloom/newsloom/internal/config"
	"github.com/newsloom/newsloom/internal/store"
)

// configDir returns the per-user configuration directory for newsloom.
func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "newsloom")
}

// openStore loads the configuration, opens the backing store, and applies
// pending migrations. Callers own the returned store and must Close it.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() // nolint:errcheck // best-effort cleanup
		return nil, nil, fmt.Errorf("migrate store: %w", err)
	}

	return db, cfg, nil
}
