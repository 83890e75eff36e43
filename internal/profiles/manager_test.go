package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswire-ai/presswire/internal/config"
)

type fakeRepo struct {
	byName    map[string]*Profile
	upsertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byName: map[string]*Profile{}}
}

func (f *fakeRepo) GetByName(_ context.Context, name string) (*Profile, error) {
	p, ok := f.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Upsert(_ context.Context, p *Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *p
	f.byName[p.Name] = &cp
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]Profile, error) {
	out := make([]Profile, 0, len(f.byName))
	for _, p := range f.byName {
		out = append(out, *p)
	}
	return out, nil
}

func writeProfileFile(t *testing.T, dir, name string, p Profile) {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestSeedDirImportsProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "sarah.json", Profile{
		Name:    "Sarah Chen",
		Title:   "CEO",
		Company: "Meridian Systems",
		Tone:    "confident",
	})
	writeProfileFile(t, dir, "marcus.json", Profile{
		Name:  "Marcus Webb",
		Title: "CTO",
	})

	repo := newFakeRepo()
	n, err := SeedDir(context.Background(), repo, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := repo.GetByName(context.Background(), "Sarah Chen")
	require.NoError(t, err)
	assert.Equal(t, "Meridian Systems", p.Company)
}

func TestSeedDirSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nameless.json"), []byte(`{"title":"CEO"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a profile"), 0o644))
	writeProfileFile(t, dir, "good.json", Profile{Name: "Sarah Chen", Title: "CEO"})

	repo := newFakeRepo()
	n, err := SeedDir(context.Background(), repo, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeedDirMissingDir(t *testing.T) {
	repo := newFakeRepo()
	_, err := SeedDir(context.Background(), repo, "/nonexistent/profiles")
	assert.Error(t, err)
}

func TestSeedDirUpsertFailure(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "sarah.json", Profile{Name: "Sarah Chen"})

	repo := newFakeRepo()
	repo.upsertErr = errors.New("db down")
	_, err := SeedDir(context.Background(), repo, dir)
	assert.Error(t, err)
}

func TestManagerLoad(t *testing.T) {
	repo := newFakeRepo()
	repo.byName["Sarah Chen"] = &Profile{Name: "Sarah Chen", Title: "CEO"}

	m := NewManager(context.Background(), config.ProfilesConfig{}, repo)

	p, err := m.Load(context.Background(), "Sarah Chen")
	require.NoError(t, err)
	assert.Equal(t, "CEO", p.Title)

	_, err = m.Load(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerSeedsOnConstruction(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "sarah.json", Profile{Name: "Sarah Chen", Title: "CEO"})

	repo := newFakeRepo()
	m := NewManager(context.Background(), config.ProfilesConfig{SeedDir: dir}, repo)

	p, err := m.Load(context.Background(), "Sarah Chen")
	require.NoError(t, err)
	assert.Equal(t, "CEO", p.Title)
}

func TestProfileSummary(t *testing.T) {
	p := &Profile{
		Name:               "Sarah Chen",
		Title:              "CEO",
		Company:            "Meridian Systems",
		CommunicationStyle: "direct, data-driven",
		Tone:               "confident",
	}
	s := p.Summary()
	assert.Contains(t, s, "Name: Sarah Chen")
	assert.Contains(t, s, "Company: Meridian Systems")
	assert.Contains(t, s, "Tone: confident")

	minimal := &Profile{Name: "Marcus Webb", Title: "CTO"}
	assert.NotContains(t, minimal.Summary(), "Company:")
}
