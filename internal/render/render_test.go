package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matthewpi/redragon-deck/internal/config"
)

func writeTestPNGIcon(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create icon: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode icon: %v", err)
	}
}

func TestParseHexColorValid(t *testing.T) {
	r, g, b := ParseHexColor("#e94560")
	if r != 0xe9 || g != 0x45 || b != 0x60 {
		t.Fatalf("got (%d,%d,%d)", r, g, b)
	}
}

func TestParseHexColorFallsBackToDefault(t *testing.T) {
	for _, in := range []string{"", "#zzz", "nothex"} {
		r, g, b := ParseHexColor(in)
		if r != 26 || g != 26 || b != 46 {
			t.Fatalf("ParseHexColor(%q) = (%d,%d,%d), want default", in, r, g, b)
		}
	}
}

func TestButtonProducesValidJPEGOfExpectedSize(t *testing.T) {
	btn := config.ButtonConfig{Label: "Mute", Color: "#1a1a2e"}
	data, err := Button(btn, t.TempDir())
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != Size || bounds.Dy() != Size {
		t.Fatalf("expected %dx%d image, got %dx%d", Size, Size, bounds.Dx(), bounds.Dy())
	}
}

func TestButtonWithMissingIconFallsBackToSolidColor(t *testing.T) {
	btn := config.ButtonConfig{Icon: "does-not-exist.png", Color: "#112233"}
	data, err := Button(btn, t.TempDir())
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty jpeg")
	}
}

func TestTargetFontHeightTiers(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{"OK", 28},
		{"Medium", 20},
		{"A Very Long Label", 16},
	}
	for _, c := range cases {
		if got := targetFontHeight(c.label); got != c.want {
			t.Fatalf("targetFontHeight(%q) = %d, want %d", c.label, got, c.want)
		}
	}
}

func TestButtonDecodesPNGIconAndDrawsWidgetTextOverIt(t *testing.T) {
	dir := t.TempDir()
	writeTestPNGIcon(t, dir, "clock.png")

	btn := config.ButtonConfig{Command: "__CLOCK", Label: "12:00", Icon: "clock.png", Color: "#112233"}
	data, err := Button(btn, dir)
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != Size || img.Bounds().Dy() != Size {
		t.Fatalf("expected %dx%d image, got %dx%d", Size, Size, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestButtonDrawsPlainLabelOverIconWithoutDarkening(t *testing.T) {
	dir := t.TempDir()
	writeTestPNGIcon(t, dir, "app.png")

	btn := config.ButtonConfig{Command: "firefox", Label: "FF", Icon: "app.png", Color: "#112233"}
	data, err := Button(btn, dir)
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty jpeg")
	}
}
