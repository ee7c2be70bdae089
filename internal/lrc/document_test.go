package lrc

import (
	"os"
	"path/filepath"
	"testing"
)

func docFromStrings(t *testing.T, raw ...string) *Document {
	t.Helper()
	d := New()
	d.lines = d.lines[:0]
	for _, r := range raw {
		d.lines = append(d.lines, parseLine(r))
	}
	return d
}

func TestNewDocumentNeverEmpty(t *testing.T) {
	d := New()
	if d.Len() != 1 {
		t.Fatalf("new document has %d lines, want 1", d.Len())
	}
	if d.At(0).Synced() || d.At(0).Text != "" {
		t.Errorf("new document line = %+v, want empty unsynced line", d.At(0))
	}
	if d.Modified() {
		t.Error("new document reports modified")
	}
}

func TestInsertTimestampAtCursor(t *testing.T) {
	t.Run("prepends to plain line and advances", func(t *testing.T) {
		d := docFromStrings(t, "first", "second")
		d.InsertTimestampAtCursor(90)

		if got := d.At(0).String(); got != "[01:30.00]first" {
			t.Errorf("line 0 = %q, want %q", got, "[01:30.00]first")
		}
		if d.Cursor() != 1 {
			t.Errorf("cursor = %d, want 1", d.Cursor())
		}
		if d.Len() != 2 {
			t.Errorf("len = %d, want 2", d.Len())
		}
		if !d.Modified() {
			t.Error("insert did not set modified")
		}
	})

	t.Run("replaces existing tag", func(t *testing.T) {
		d := docFromStrings(t, "[00:10.00]hello", "next")
		d.InsertTimestampAtCursor(125.4)

		if got := d.At(0).String(); got != "[02:05.40]hello" {
			t.Errorf("line 0 = %q, want %q", got, "[02:05.40]hello")
		}
	})

	t.Run("replaces unparseable bracket prefix", func(t *testing.T) {
		d := docFromStrings(t, "[chorus]la la", "next")
		d.InsertTimestampAtCursor(60)

		if got := d.At(0).String(); got != "[01:00.00]la la" {
			t.Errorf("line 0 = %q, want %q", got, "[01:00.00]la la")
		}
	})

	t.Run("last line grows document by one", func(t *testing.T) {
		d := docFromStrings(t, "only")
		d.InsertTimestampAtCursor(5)

		if d.Len() != 2 {
			t.Fatalf("len = %d, want 2", d.Len())
		}
		if d.Cursor() != 1 {
			t.Errorf("cursor = %d, want 1", d.Cursor())
		}
		last := d.At(1)
		if last.Synced() || last.Text != "" {
			t.Errorf("trailing line = %+v, want empty unsynced line", last)
		}
	})
}

func TestClearTimestampOrDeleteAtCursor(t *testing.T) {
	t.Run("strips tag keeping text", func(t *testing.T) {
		d := docFromStrings(t, "[01:30.00]hello", "next")
		d.ClearTimestampOrDeleteAtCursor()

		if got := d.At(0).String(); got != "hello" {
			t.Errorf("line 0 = %q, want %q", got, "hello")
		}
		if d.Len() != 2 {
			t.Errorf("len = %d, want 2", d.Len())
		}
		if !d.Modified() {
			t.Error("clear did not set modified")
		}
	})

	t.Run("deletes empty line and clamps cursor", func(t *testing.T) {
		d := docFromStrings(t, "one", "")
		d.SetCursor(1)
		d.ClearTimestampOrDeleteAtCursor()

		if d.Len() != 1 {
			t.Fatalf("len = %d, want 1", d.Len())
		}
		if d.Cursor() != 0 {
			t.Errorf("cursor = %d, want 0", d.Cursor())
		}
	})

	t.Run("never deletes the last remaining line", func(t *testing.T) {
		d := New()
		d.ClearTimestampOrDeleteAtCursor()

		if d.Len() != 1 {
			t.Fatalf("len = %d, want 1", d.Len())
		}
		if d.Modified() {
			t.Error("no-op clear set modified")
		}
	})

	t.Run("plain line is untouched", func(t *testing.T) {
		d := docFromStrings(t, "just words")
		d.ClearTimestampOrDeleteAtCursor()

		if got := d.At(0).String(); got != "just words" {
			t.Errorf("line 0 = %q, want %q", got, "just words")
		}
		if d.Modified() {
			t.Error("no-op clear set modified")
		}
	})

	t.Run("strips unparseable bracket prefix", func(t *testing.T) {
		d := docFromStrings(t, "[bridge]ooh")
		d.ClearTimestampOrDeleteAtCursor()

		if got := d.At(0).String(); got != "ooh" {
			t.Errorf("line 0 = %q, want %q", got, "ooh")
		}
	})
}

func TestMoveCursorClamps(t *testing.T) {
	d := docFromStrings(t, "a", "b", "c")

	d.MoveCursor(-5)
	if d.Cursor() != 0 {
		t.Errorf("cursor after move below start = %d, want 0", d.Cursor())
	}

	d.MoveCursor(10)
	if d.Cursor() != 2 {
		t.Errorf("cursor after move past end = %d, want 2", d.Cursor())
	}

	d.MoveCursor(-1)
	if d.Cursor() != 1 {
		t.Errorf("cursor after move -1 = %d, want 1", d.Cursor())
	}

	if d.Modified() {
		t.Error("cursor motion set modified")
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.lrc")
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file returned error: %v", err)
	}
	if d.Len() != 1 || d.At(0).Text != "" {
		t.Errorf("missing file loaded as %d lines, want single empty line", d.Len())
	}
	if d.Path() != path {
		t.Errorf("path = %q, want %q", d.Path(), path)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.lrc")
	content := "[00:12.00]first line\nplain line\n[01:30.50]third line\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("len = %d, want 3 (trailing newline must not add a line)", d.Len())
	}
	if d.At(0).Time != 12.0 || d.At(0).Text != "first line" {
		t.Errorf("line 0 = %+v", d.At(0))
	}
	if d.At(1).Synced() {
		t.Errorf("line 1 unexpectedly synced: %+v", d.At(1))
	}

	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != content {
		t.Errorf("saved content = %q, want %q", written, content)
	}
}

func TestSaveClearsModified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.lrc")
	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	d.InsertTimestampAtCursor(1.5)
	if !d.Modified() {
		t.Fatal("insert did not set modified")
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.Modified() {
		t.Error("save did not clear modified")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	d := New()
	if err := d.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestFromText(t *testing.T) {
	d := FromText("line one\nline two")
	if d.Len() != 2 {
		t.Fatalf("len = %d, want 2", d.Len())
	}
	if d.At(0).Text != "line one" || d.At(1).Text != "line two" {
		t.Errorf("lines = %+v, %+v", d.At(0), d.At(1))
	}

	empty := FromText("")
	if empty.Len() != 1 {
		t.Errorf("empty text loaded as %d lines, want 1", empty.Len())
	}
}

func TestSyncedCount(t *testing.T) {
	d := docFromStrings(t, "[00:01.00]a", "b", "[00:03.00]c", "")
	if got := d.SyncedCount(); got != 2 {
		t.Errorf("SyncedCount = %d, want 2", got)
	}
}

func TestText(t *testing.T) {
	d := docFromStrings(t, "[00:01.00]a", "plain", "")
	want := "[00:01.00]a\nplain\n\n"
	if got := d.Text(); got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}
