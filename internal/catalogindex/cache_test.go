package catalogindex

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"storefront-catalog/internal/model"
)

func TestLoad_ParsesAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.json")
	content := `[
		{"styleID": 39, "brandName": "Gildan", "styleName": "2000", "baseCategory": "T-Shirts"},
		{"styleID": "PC54", "brandName": "Port & Company", "sizePrices": [{"label": "S", "price": 6.5, "cost": 3}]},
		{"brandName": "No ID"},
		{"styleID": "BAD", "sizePrices": [{"label": "S", "price": -1, "cost": 3}]}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(map[Source]string{SourcePrimary: path})
	rows := c.Load(SourcePrimary)
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(rows))
	}
	if rows[0].ID() != "39" {
		t.Fatalf("numeric styleID not decoded: %q", rows[0].ID())
	}

	// Later file changes are invisible until Reset.
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Load(SourcePrimary)); got != 2 {
		t.Fatalf("cached load returned %d rows", got)
	}
	c.Reset()
	if got := len(c.Load(SourcePrimary)); got != 0 {
		t.Fatalf("after reset expected 0 rows, got %d", got)
	}
}

func TestLoad_MissingOrBrokenIsEmpty(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewCache(map[Source]string{
		SourcePrimary:   filepath.Join(dir, "missing.json"),
		SourceSecondary: broken,
	})
	if rows := c.Load(SourcePrimary); rows == nil || len(rows) != 0 {
		t.Fatalf("missing file: %v", rows)
	}
	if rows := c.Load(SourceSecondary); len(rows) != 0 {
		t.Fatalf("broken file: %v", rows)
	}
	if rows := c.Load(Source("unknown")); len(rows) != 0 {
		t.Fatalf("unknown source: %v", rows)
	}
}

func TestLoad_SourcesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	_ = os.WriteFile(a, []byte(`[{"styleID":"1"}]`), 0o644)
	_ = os.WriteFile(b, []byte(`[{"styleID":"2"},{"styleID":"3"}]`), 0o644)

	c := NewCache(map[Source]string{SourcePrimary: a, SourceSecondary: b})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Load(SourcePrimary)
			_ = c.Load(SourceSecondary)
		}()
	}
	wg.Wait()
	if len(c.Load(SourcePrimary)) != 1 || len(c.Load(SourceSecondary)) != 2 {
		t.Fatal("sources cross-contaminated")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.json")
	rows := []model.CatalogStyle{{StyleID: "PC54", BrandName: "Port & Company"}}
	if err := Write(path, rows, time.Second); err != nil {
		t.Fatalf("Write: %v", err)
	}
	c := NewCache(map[Source]string{SourceSecondary: path})
	got := c.Load(SourceSecondary)
	if len(got) != 1 || got[0].BrandName != "Port & Company" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}
