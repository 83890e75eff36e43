package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/presswire-ai/presswire/internal/config"
)

// Manager loads executive profiles and seeds the repository at startup when a
// seed directory is configured.
type Manager struct {
	repo Repository
}

// NewManager creates a profile manager. If cfg.SeedDir is set the directory is
// imported immediately; seed failures are logged but do not prevent startup
// since profiles may already exist in the database.
func NewManager(ctx context.Context, cfg config.ProfilesConfig, repo Repository) *Manager {
	m := &Manager{repo: repo}
	if cfg.SeedDir != "" {
		n, err := SeedDir(ctx, repo, cfg.SeedDir)
		if err != nil {
			slog.Warn("profile seed incomplete", "dir", cfg.SeedDir, "imported", n, "error", err)
		} else {
			slog.Info("profiles seeded", "dir", cfg.SeedDir, "imported", n)
		}
	}
	return m
}

// Load fetches the profile for the named executive.
func (m *Manager) Load(ctx context.Context, name string) (*Profile, error) {
	p, err := m.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading profile for %q: %w", name, err)
	}
	return p, nil
}

// List returns all known profiles.
func (m *Manager) List(ctx context.Context) ([]Profile, error) {
	return m.repo.List(ctx)
}
