package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	saves := []Save{
		{LrcPath: "/music/a.lrc", TrackTitle: "First", LinesTotal: 10, LinesSynced: 4, SavedAt: base},
		{LrcPath: "/music/b.lrc", TrackTitle: "Second", LinesTotal: 8, LinesSynced: 8, SavedAt: base.Add(time.Minute)},
		{LrcPath: "/music/c.lrc", TrackTitle: "Third", LinesTotal: 5, LinesSynced: 0, SavedAt: base.Add(2 * time.Minute)},
	}
	for _, save := range saves {
		if err := store.Record(save); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TrackTitle != "Third" || got[1].TrackTitle != "Second" {
		t.Errorf("order = %q, %q; want newest first", got[0].TrackTitle, got[1].TrackTitle)
	}
	if got[0].ID == "" {
		t.Error("ID was not generated")
	}
	if got[0].SavedAt.Unix() != base.Add(2*time.Minute).Unix() {
		t.Errorf("SavedAt = %v", got[0].SavedAt)
	}
}

func TestRecordRequiresPath(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(Save{TrackTitle: "pathless"}); err == nil {
		t.Error("expected an error for a save without an lrc path")
	}
}

func TestForPath(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		save := Save{
			LrcPath:     "/music/song.lrc",
			LinesTotal:  12,
			LinesSynced: 4 * (i + 1),
			SavedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(save); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := store.Record(Save{LrcPath: "/music/other.lrc", LinesTotal: 1, SavedAt: base}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.ForPath("/music/song.lrc")
	if err != nil {
		t.Fatalf("ForPath: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].LinesSynced != 12 {
		t.Errorf("newest LinesSynced = %d, want 12", got[0].LinesSynced)
	}
	if !got[0].Complete() {
		t.Error("12/12 should report complete")
	}
	if got[1].Complete() {
		t.Error("8/12 should not report complete")
	}
}

func TestLatest(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("Latest on empty log = %+v, want nil", latest)
	}

	if err := store.Record(Save{LrcPath: "/m/x.lrc", LinesTotal: 2, LinesSynced: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	latest, err = store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.LrcPath != "/m/x.lrc" {
		t.Errorf("Latest = %+v", latest)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(Save{LrcPath: "/m/persist.lrc", LinesTotal: 3, LinesSynced: 3}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].LrcPath != "/m/persist.lrc" {
		t.Errorf("rows after reopen = %+v", got)
	}
}
