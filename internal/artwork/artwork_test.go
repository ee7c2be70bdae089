package artwork

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestCover(t *testing.T, dir string, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create cover: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode cover: %v", err)
	}
	return path
}

func TestFetchLocalFile(t *testing.T) {
	path := writeTestCover(t, t.TempDir(), "cover.png")

	img, err := Fetch("file://" + path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("decoded width = %d, want 64", img.Bounds().Dx())
	}
}

func TestFetchUnescapesFileURL(t *testing.T) {
	dir := t.TempDir()
	path := writeTestCover(t, dir, "cover art.png")

	escaped := "file://" + strings.ReplaceAll(path, " ", "%20")
	if _, err := Fetch(escaped); err != nil {
		t.Fatalf("Fetch with escaped url: %v", err)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	if _, err := Fetch(""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestExtractPaletteShape(t *testing.T) {
	path := writeTestCover(t, t.TempDir(), "cover.png")
	img, err := Fetch("file://" + path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	p := ExtractPalette(img)
	if p == nil {
		t.Fatal("nil palette")
	}
	for _, c := range []string{p.Primary, p.Secondary, p.Accent, p.Dim} {
		if !strings.HasPrefix(c, "#") || len(c) != 7 {
			t.Errorf("palette color %q is not a hex color", c)
		}
	}
	if len(p.Gradient) != 20 {
		t.Errorf("gradient has %d steps, want 20", len(p.Gradient))
	}
}

func TestExtractPaletteNilImage(t *testing.T) {
	p := ExtractPalette(nil)
	want := DefaultPalette()
	if p.Primary != want.Primary || p.Dim != want.Dim {
		t.Errorf("nil image should yield the default palette, got %+v", p)
	}
}

func TestRenderHalfBlockArt(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 40, B: 220, A: 255})
		}
	}

	lines := RenderHalfBlockArt(img, 8, 4)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	for i, line := range lines {
		if line == "" {
			t.Errorf("line %d is empty", i)
		}
	}
}

func TestRenderHalfBlockArtRejectsTinyTargets(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if lines := RenderHalfBlockArt(img, 2, 4); lines != nil {
		t.Errorf("expected nil for narrow target, got %d lines", len(lines))
	}
	if lines := RenderHalfBlockArt(nil, 8, 4); lines != nil {
		t.Errorf("expected nil for nil image, got %d lines", len(lines))
	}
}
