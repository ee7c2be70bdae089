package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mkowalczyk.dev/lrctap/internal/editor"
	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/player"
	"mkowalczyk.dev/lrctap/internal/track"
)

// fakeSession satisfies both the editor transport and the screen's playback
// interface, so one fake drives the whole pipeline.
type fakeSession struct {
	pos      float64
	status   player.Status
	trk      *track.Info
	events   chan player.Event
	seeks    []float64
	restarts int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		status: player.StatusPlaying,
		events: make(chan player.Event, 4),
	}
}

func (f *fakeSession) Position() float64 {
	if f.status != player.StatusPlaying {
		return player.PositionUnavailable
	}
	return f.pos
}

func (f *fakeSession) CurrentTrack() *track.Info { return f.trk }

func (f *fakeSession) Poll() player.Snapshot {
	return player.Snapshot{Position: f.Position(), At: time.Now(), Status: f.status}
}

func (f *fakeSession) SeekBy(delta float64) player.SeekResult {
	f.seeks = append(f.seeks, delta)
	return player.SeekApplied
}

func (f *fakeSession) Restart() player.SeekResult {
	f.restarts++
	return player.SeekApplied
}

func (f *fakeSession) Events() <-chan player.Event { return f.events }

func (f *fakeSession) Service() string { return "org.mpris.MediaPlayer2.vlc" }

func newTestModel(t *testing.T, fake *fakeSession, doc *lrc.Document) Model {
	t.Helper()

	m := NewModel(ModelConfig{
		Controller:   editor.NewController(fake, doc),
		Playback:     fake,
		PollInterval: 50 * time.Millisecond,
		SyncInterval: time.Second,
		SeekStep:     5,
	})
	m.width = 80
	m.height = 24
	return m
}

func pressKey(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func pressRune(t *testing.T, m Model, r rune) Model {
	t.Helper()
	return pressKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func spaceKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

func TestMarkKeyStampsLineAndAdvances(t *testing.T) {
	fake := newFakeSession()
	fake.pos = 12.5
	doc := lrc.FromText("first\nsecond\nthird")
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, spaceKey())

	d := m.ctrl.Document()
	if d.At(0).Time != 12.5 {
		t.Errorf("line 0 time = %v, want 12.5", d.At(0).Time)
	}
	if d.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", d.Cursor())
	}
}

func TestMarkWithoutPlaybackShowsStatus(t *testing.T) {
	fake := newFakeSession()
	fake.status = player.StatusPaused
	doc := lrc.FromText("first\nsecond")
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, spaceKey())

	if m.ctrl.Document().At(0).Synced() {
		t.Error("line should not be stamped without a playback position")
	}
	if !strings.Contains(m.statusText, "no playback") {
		t.Errorf("status = %q, want a no-playback notice", m.statusText)
	}
}

func TestCursorKeys(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("a\nb\nc")
	m := newTestModel(t, fake, doc)

	m = pressRune(t, m, 'j')
	m = pressRune(t, m, 'j')
	if got := m.ctrl.Document().Cursor(); got != 2 {
		t.Fatalf("cursor after jj = %d, want 2", got)
	}

	m = pressRune(t, m, 'k')
	if got := m.ctrl.Document().Cursor(); got != 1 {
		t.Fatalf("cursor after k = %d, want 1", got)
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.ctrl.Document().Cursor(); got != 0 {
		t.Fatalf("cursor should clamp at 0, got %d", got)
	}
}

func TestClearKeyRemovesTimestamp(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("[00:05.00]first\nsecond")
	m := newTestModel(t, fake, doc)

	m = pressRune(t, m, 'x')

	if m.ctrl.Document().At(0).Synced() {
		t.Error("timestamp should be cleared")
	}
	if m.ctrl.Document().At(0).Text != "first" {
		t.Errorf("text = %q, want %q", m.ctrl.Document().At(0).Text, "first")
	}
}

func TestSeekKeys(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("a")
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyLeft})

	if len(fake.seeks) != 2 || fake.seeks[0] != 5 || fake.seeks[1] != -5 {
		t.Errorf("seeks = %v, want [5 -5]", fake.seeks)
	}
}

func TestRestartKey(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("a")
	m := newTestModel(t, fake, doc)

	m = pressRune(t, m, 'r')

	if fake.restarts != 1 {
		t.Errorf("restarts = %d, want 1", fake.restarts)
	}
	if !strings.Contains(m.statusText, "restarted") {
		t.Errorf("status = %q", m.statusText)
	}
}

func TestJumpKeyMovesCursorToPlayingLine(t *testing.T) {
	fake := newFakeSession()
	fake.pos = 21
	doc := lrc.FromText("[00:10.00]a\n[00:20.00]b\n[00:30.00]c")
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.ctrl.Document().Cursor(); got != 1 {
		t.Errorf("cursor = %d, want 1 (line at 20s is closest to 21s)", got)
	}
}

func TestModeToggleReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "song.mp3")
	lrcPath := filepath.Join(dir, "song.lrc")
	if err := os.WriteFile(lrcPath, []byte("[00:01.00]hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fake := newFakeSession()
	fake.pos = 30
	fake.trk = &track.Info{Title: "Song", Artist: "Artist", FileURL: "file://" + audioPath}

	doc, err := lrc.Load(lrcPath)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, fake, doc)

	// stamp over the stored tag, then toggle: the reload discards it
	m = pressKey(t, m, spaceKey())
	m = pressRune(t, m, 'e')

	if m.ctrl.Mode() != editor.ModeSync {
		t.Fatalf("mode = %v, want sync", m.ctrl.Mode())
	}
	d := m.ctrl.Document()
	if d.At(0).Time != 1.0 {
		t.Errorf("line 0 time = %v, want the on-disk 1.0", d.At(0).Time)
	}
	if d.Modified() {
		t.Error("reloaded document should not be modified")
	}
}

func TestSyncTickFollowsPlayback(t *testing.T) {
	fake := newFakeSession()
	fake.pos = 21
	doc := lrc.FromText("[00:10.00]a\n[00:20.00]b\n[00:30.00]c")
	m := newTestModel(t, fake, doc)

	// no track file is known, so the toggle keeps the in-memory document
	m = pressRune(t, m, 'e')
	if m.ctrl.Mode() != editor.ModeSync {
		t.Fatalf("mode = %v, want sync", m.ctrl.Mode())
	}

	updated, cmd := m.Update(SyncTickMsg(time.Now()))
	m = updated.(Model)

	if got := m.ctrl.Document().Cursor(); got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
	if cmd == nil {
		t.Error("sync tick should re-arm itself")
	}
}

func TestTickPollsPlayback(t *testing.T) {
	fake := newFakeSession()
	fake.pos = 42
	doc := lrc.FromText("a")
	m := newTestModel(t, fake, doc)

	updated, cmd := m.Update(TickMsg(time.Now()))
	m = updated.(Model)

	if m.snapshot.Position != 42 {
		t.Errorf("snapshot position = %v, want 42", m.snapshot.Position)
	}
	if cmd == nil {
		t.Error("tick should re-arm itself")
	}
}

func TestTickExpiresStatus(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("a")
	m := newTestModel(t, fake, doc)

	m.setStatus("stale message")
	m.statusAt = time.Now().Add(-statusTTL - time.Second)

	updated, _ := m.Update(TickMsg(time.Now()))
	m = updated.(Model)

	if m.statusText != "" {
		t.Errorf("status should expire, got %q", m.statusText)
	}
}

func TestTrackChangeInSyncModeLoadsNewFile(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "next.flac")
	lrcPath := filepath.Join(dir, "next.lrc")
	if err := os.WriteFile(lrcPath, []byte("[00:02.00]next song line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fake := newFakeSession()
	doc := lrc.FromText("old line")
	m := newTestModel(t, fake, doc)
	m = pressRune(t, m, 'e')

	next := &track.Info{Title: "Next", Artist: "Artist", FileURL: "file://" + audioPath}
	fake.trk = next

	updated, cmd := m.Update(PlayerEventMsg{Event: player.Event{Kind: player.EventTrackChanged, Track: next}})
	m = updated.(Model)

	d := m.ctrl.Document()
	if d.Path() != lrcPath {
		t.Errorf("document path = %q, want %q", d.Path(), lrcPath)
	}
	if d.At(0).Text != "next song line" {
		t.Errorf("line 0 = %q", d.At(0).Text)
	}
	if cmd == nil {
		t.Error("event handler should re-arm the listener")
	}
}

func TestTrackChangeInEditModeKeepsDocument(t *testing.T) {
	fake := newFakeSession()
	doc := lrc.FromText("my work in progress")
	m := newTestModel(t, fake, doc)

	next := &track.Info{Title: "Next", Artist: "Artist"}
	updated, _ := m.Update(PlayerEventMsg{Event: player.Event{Kind: player.EventTrackChanged, Track: next}})
	m = updated.(Model)

	if m.ctrl.Document().At(0).Text != "my work in progress" {
		t.Error("edit mode should keep the current document on track change")
	}
	if m.current == nil || m.current.Title != "Next" {
		t.Error("header track should update")
	}
}

func TestQuitSavesModifiedDocument(t *testing.T) {
	dir := t.TempDir()
	lrcPath := filepath.Join(dir, "song.lrc")

	fake := newFakeSession()
	fake.pos = 3.25
	doc, err := lrc.Load(lrcPath)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, spaceKey())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(Model)

	if !m.quitting {
		t.Fatal("q should quit")
	}
	if cmd == nil {
		t.Fatal("q should return the quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}

	data, err := os.ReadFile(lrcPath)
	if err != nil {
		t.Fatalf("document was not saved: %v", err)
	}
	if !strings.Contains(string(data), "[00:03.25]") {
		t.Errorf("saved file missing stamp: %q", string(data))
	}
}

func TestForceQuitSkipsSave(t *testing.T) {
	dir := t.TempDir()
	lrcPath := filepath.Join(dir, "song.lrc")

	fake := newFakeSession()
	fake.pos = 3
	doc, err := lrc.Load(lrcPath)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, spaceKey())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)

	if !m.quitting {
		t.Fatal("ctrl+c should quit")
	}
	if _, err := os.Stat(lrcPath); !os.IsNotExist(err) {
		t.Error("ctrl+c should not write the file")
	}
}

func TestQuitWithoutPathWarnsInsteadOfQuitting(t *testing.T) {
	fake := newFakeSession()
	fake.pos = 1
	doc := lrc.New()
	m := newTestModel(t, fake, doc)

	m = pressKey(t, m, spaceKey())
	m = pressRune(t, m, 'q')

	if m.quitting {
		t.Error("q should not quit while changes cannot be saved")
	}
	if !strings.Contains(m.statusText, "ctrl+c") {
		t.Errorf("status = %q, want a hint about ctrl+c", m.statusText)
	}
}

func TestHelpToggle(t *testing.T) {
	fake := newFakeSession()
	m := newTestModel(t, fake, lrc.FromText("a"))

	m = pressRune(t, m, '?')
	if !m.help.ShowAll {
		t.Error("? should expand help")
	}
	m = pressRune(t, m, '?')
	if m.help.ShowAll {
		t.Error("? again should collapse help")
	}
}

func TestViewRendersDocument(t *testing.T) {
	fake := newFakeSession()
	fake.trk = &track.Info{Title: "Some Song", Artist: "Some Artist", DurationSecs: 180}
	doc := lrc.FromText("[00:05.00]hello world\ngoodbye world")
	m := newTestModel(t, fake, doc)
	m.current = fake.trk

	view := m.View()
	if view == "" {
		t.Fatal("view should not be empty")
	}
	if !strings.Contains(view, "hello world") {
		t.Error("view should contain the first lyric line")
	}
	if !strings.Contains(view, "goodbye world") {
		t.Error("view should contain the second lyric line")
	}
	if !strings.Contains(view, "synced") {
		t.Error("view should contain the sync counter")
	}
}

func TestViewWhileQuittingIsEmpty(t *testing.T) {
	fake := newFakeSession()
	m := newTestModel(t, fake, lrc.FromText("a"))
	m.quitting = true

	if view := m.View(); view != "" {
		t.Errorf("quitting view = %q, want empty", view)
	}
}

func TestViewBareLaunchShowsWaitingScreen(t *testing.T) {
	fake := newFakeSession()
	m := newTestModel(t, fake, lrc.New())

	view := m.View()
	if !strings.Contains(view, "awaiting music") {
		t.Error("bare launch should show the waiting screen")
	}
}
