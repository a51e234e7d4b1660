package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"anuncios/internal/profile"
	"anuncios/internal/storage"
	"anuncios/internal/util"
)

func newTestService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db, util.NewLogger(false), profile.Default()), db
}

func writeFeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServiceProcessFile(t *testing.T) {
	svc, db := newTestService(t)
	feed := writeFeed(t, t.TempDir(), "enero.txt",
		"ALQUILERES\nApartamento Palmira, 2 hab, L. 14,000 mensuales\nCasa Kennedy, 3 hab, $ 850\n")

	res, err := svc.ProcessFile(feed)
	if err != nil {
		t.Fatal(err)
	}
	if res.Listings != 2 {
		t.Fatalf("persisted %d listings, want 2", res.Listings)
	}

	rows, err := db.GetExportRows(res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Transaction != "RENT" {
			t.Errorf("row transaction = %q, want RENT", row.Transaction)
		}
	}
}

func TestServiceProcessDir(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()
	writeFeed(t, dir, "a.txt", "VENTAS\nCasa Miraflores, 3 hab, L. 2,400,000\n")
	writeFeed(t, dir, "b.txt", "ALQUILERES\nApartamento Lomas, 1 hab, $ 650\n")
	writeFeed(t, dir, "skip.jpg", "not a feed")

	results, merged, err := svc.ProcessDir(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("processed %d files, want 2", len(results))
	}
	total := 0
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s failed: %v", res.Path, res.Err)
		}
		total += res.Listings
	}
	if total != 2 {
		t.Errorf("total listings = %d, want 2", total)
	}
	if merged == nil {
		t.Fatal("merged collector missing")
	}
}

func TestServiceProcessDirEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	if _, _, err := svc.ProcessDir(t.TempDir(), 2); err == nil {
		t.Fatal("expected an error for a directory without feed files")
	}
}
