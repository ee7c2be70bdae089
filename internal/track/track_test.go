package track

import "testing"

func TestLocalPath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain file url", "file:///music/song.flac", "/music/song.flac"},
		{"escaped spaces", "file:///music/My%20Album/track%201.mp3", "/music/My Album/track 1.mp3"},
		{"http stream has no path", "https://stream.example.net/radio", ""},
		{"empty url", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &Info{FileURL: tt.url}
			if got := info.LocalPath(); got != tt.want {
				t.Errorf("LocalPath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}

	var nilInfo *Info
	if got := nilInfo.LocalPath(); got != "" {
		t.Errorf("nil LocalPath = %q, want empty", got)
	}
}

func TestIsValid(t *testing.T) {
	if (&Info{Title: "x"}).IsValid() {
		t.Error("title without artist should not be valid")
	}
	if !(&Info{Title: "x", Artist: "y"}).IsValid() {
		t.Error("title and artist should be valid")
	}
	var nilInfo *Info
	if nilInfo.IsValid() {
		t.Error("nil info should not be valid")
	}
}

func TestIsSameTrack(t *testing.T) {
	a := &Info{Title: "Song", Artist: "Band", TrackID: "/track/1"}
	b := &Info{Title: "Song", Artist: "Band", TrackID: "/track/2"}
	if a.IsSameTrack(b) {
		t.Error("differing track ids should differ")
	}

	c := &Info{Title: "Song", Artist: "Band"}
	d := &Info{Title: "Song", Artist: "Band"}
	if !c.IsSameTrack(d) {
		t.Error("same title and artist without ids should match")
	}

	if c.IsSameTrack(nil) {
		t.Error("nil other should not match")
	}
}
