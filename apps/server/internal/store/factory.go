package store

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/config"
)

// New opens the store selected by cfg.Mode and reports the mode in use.
func New(cfg config.Store, log *logrus.Entry) (Store, string, error) {
	switch cfg.Mode {
	case config.StoreModeMemory:
		return NewMemory(cfg.RecentLimit, cfg.SavedLimit), config.StoreModeMemory, nil
	case config.StoreModeSQLite, "":
		s, err := NewSQLite(cfg.SQLitePath, cfg.RecentLimit, cfg.SavedLimit, log)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return s, config.StoreModeSQLite, nil
	case config.StoreModePostgres:
		s, err := NewPostgres(cfg.DatabaseDSN, cfg.RecentLimit, cfg.SavedLimit, log)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return s, config.StoreModePostgres, nil
	default:
		return nil, "", fmt.Errorf("unknown store mode %q", cfg.Mode)
	}
}
