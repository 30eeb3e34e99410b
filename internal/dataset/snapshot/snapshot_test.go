package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"canestats/internal/core"
	"canestats/internal/storage"
)

func TestLoader_LatestFromSQLite(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "canestats.db"))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	defer repo.Close()

	l := New(repo)
	if _, err := l.Load(ctx); !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	tree := []core.Division{{Name: "Pune", Districts: []core.District{{Name: "Satara", Talukas: []core.TalukaRecord{{Taluka: "Karad"}}}}}}
	saved, err := repo.Save(ctx, "file", tree)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, divs, err := l.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if snap.ID != saved.ID || len(divs) != 1 || divs[0].Districts[0].Talukas[0].Taluka != "Karad" {
		t.Fatalf("snap=%+v divs=%+v", snap, divs)
	}

	if _, _, err := l.LoadID(ctx, saved.ID); err != nil {
		t.Fatalf("load id: %v", err)
	}
	if _, _, err := l.LoadID(ctx, "nope"); !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}
