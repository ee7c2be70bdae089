package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFakeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, []byte("not real flac bytes"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTranscribeParsesVerboseJSON(t *testing.T) {
	audio := writeFakeAudio(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		file.Close()
		if header.Filename != "song.flac" {
			t.Errorf("filename = %q", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"language": "english",
			"duration": 12.5,
			"text": "first line second line",
			"segments": [
				{"start": 0.4, "end": 4.1, "text": " first line "},
				{"start": 5.0, "end": 9.9, "text": "second line"},
				{"start": 10.0, "end": 11.0, "text": "   "}
			]
		}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(srv.URL, "test-key", "whisper-1", "en")
	tr, err := backend.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if tr.Language != "english" {
		t.Errorf("Language = %q", tr.Language)
	}
	if tr.Duration != 12500*time.Millisecond {
		t.Errorf("Duration = %v", tr.Duration)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(tr.Segments))
	}
	if tr.Segments[0].Text != "first line" || tr.Segments[0].StartSec != 0.4 {
		t.Errorf("segment[0] = %+v", tr.Segments[0])
	}
}

func TestTranscribeWithoutKeySendsNoAuth(t *testing.T) {
	audio := writeFakeAudio(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty for a local server", got)
		}
		w.Write([]byte(`{"text": "plain words", "segments": []}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(srv.URL+"/", "", "whisper-1", "")
	tr, err := backend.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	// no segments came back, the text survives as one untimed chunk
	if len(tr.Segments) != 1 || tr.Segments[0].Text != "plain words" {
		t.Errorf("segments = %+v", tr.Segments)
	}
}

func TestTranscribeServerError(t *testing.T) {
	audio := writeFakeAudio(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(srv.URL, "k", "whisper-1", "")
	if _, err := backend.Transcribe(context.Background(), audio); err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	backend := NewOpenAIBackend("http://localhost:1", "k", "whisper-1", "")
	if _, err := backend.Transcribe(context.Background(), "/no/such/file.flac"); err == nil {
		t.Fatal("expected an error for a missing audio file")
	}
}

func TestDraftLRC(t *testing.T) {
	tr := Transcript{
		Segments: []Segment{
			{StartSec: 0.4, Text: "first line"},
			{StartSec: 65.25, Text: " padded "},
			{StartSec: 70, Text: ""},
			{StartSec: 3723.5, Text: "over an hour in"},
		},
	}

	got := DraftLRC(tr)
	want := "[00:00.40]first line\n[01:05.25]padded\n[62:03.50]over an hour in\n"
	if got != want {
		t.Errorf("DraftLRC =\n%q\nwant\n%q", got, want)
	}
}

func TestDraftLRCEmpty(t *testing.T) {
	if got := DraftLRC(Transcript{}); got != "" {
		t.Errorf("DraftLRC(empty) = %q", got)
	}
}
