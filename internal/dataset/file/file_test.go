package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	doc := `[{"division":"Pune","districts":[{"district":"Satara","talukas":[{"taluka":"Karad","total_area_ha":"12"}]}]}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	divs, err := New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(divs) != 1 || divs[0].Districts[0].Talukas[0].TotalAreaHa.Float() != 12 {
		t.Fatalf("divisions=%+v", divs)
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(filepath.Join(dir, "missing.json")).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644)
	if _, err := New(bad).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(bad).Load(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
