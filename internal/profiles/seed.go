package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SeedDir imports every *.json profile file under dir, upserting each into the
// repository. Files that fail to parse are skipped with a warning so one bad
// file does not block the rest of the seed.
func SeedDir(ctx context.Context, repo Repository, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading profiles dir %q: %w", dir, err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p, err := loadFile(path)
		if err != nil {
			slog.Warn("skipping profile file", "path", path, "error", err)
			continue
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("seeding profile %q: %w", p.Name, err)
		}
		imported++
	}
	return imported, nil
}

func loadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("profile in %q has no name", filepath.Base(path))
	}
	return &p, nil
}
