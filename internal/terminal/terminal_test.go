package terminal

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestDetectCapabilitiesDefault(t *testing.T) {
	t.Setenv("LRCTAP_USE_KITTY_GRAPHICS", "")
	t.Setenv("TERM_PROGRAM", "")

	caps := DetectCapabilities()
	if caps.SupportsKittyGraphics {
		t.Error("kitty graphics should be off unless opted in")
	}
	if !caps.SupportsRGB {
		t.Error("rgb should default to on")
	}
}

func TestDetectCapabilitiesOptIn(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"maybe", false},
	}

	for _, tc := range cases {
		t.Setenv("LRCTAP_USE_KITTY_GRAPHICS", tc.value)
		caps := DetectCapabilities()
		if caps.SupportsKittyGraphics != tc.want {
			t.Errorf("LRCTAP_USE_KITTY_GRAPHICS=%q: kitty graphics = %v, want %v", tc.value, caps.SupportsKittyGraphics, tc.want)
		}
	}
}

func TestDetectCapabilitiesAssumesKittyProgram(t *testing.T) {
	t.Setenv("LRCTAP_USE_KITTY_GRAPHICS", "1")
	t.Setenv("TERM_PROGRAM", "")

	caps := DetectCapabilities()
	if caps.TermProgram != "kitty" {
		t.Errorf("opting in without TERM_PROGRAM should assume kitty, got %q", caps.TermProgram)
	}
}

func TestEncodeImageForKitty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	encoded := EncodeImageForKitty(img, 10, 5)
	if encoded == "" {
		t.Fatal("expected a non-empty escape sequence")
	}
	if !strings.HasPrefix(encoded, "\x1b_Ga=T,f=100") {
		t.Errorf("missing kitty transmit header: %q", encoded[:20])
	}
	if !strings.HasSuffix(encoded, "\x1b\\") {
		t.Error("missing escape terminator")
	}
	// the final chunk must signal that no more data follows
	if !strings.Contains(encoded, "m=0;") {
		t.Error("missing final-chunk marker")
	}
}

func TestEncodeImageForKittyNilImage(t *testing.T) {
	if got := EncodeImageForKitty(nil, 10, 5); got != "" {
		t.Errorf("nil image should encode to nothing, got %q", got)
	}
}
