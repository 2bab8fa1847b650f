// Package render turns a button's configuration into a JPEG image ready
// to upload to a key, matching the device's fixed 100x100, 180-degree
// rotated image requirement.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/gift"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

// Size is the fixed width and height, in pixels, of a rendered key image.
const Size = 100

// defaultRGB is the fallback background color, matching
// config.DefaultColor's (26, 26, 46) parse failure.
var defaultRGB = [3]uint8{26, 26, 46}

// ParseHexColor parses a "#rrggbb" string into RGB components, falling
// back to the dark default on any malformed input.
func ParseHexColor(hex string) (r, g, b uint8) {
	h := hex
	if len(h) > 0 && h[0] == '#' {
		h = h[1:]
	}
	if len(h) < 6 {
		return defaultRGB[0], defaultRGB[1], defaultRGB[2]
	}
	rv, err1 := strconv.ParseUint(h[0:2], 16, 8)
	gv, err2 := strconv.ParseUint(h[2:4], 16, 8)
	bv, err3 := strconv.ParseUint(h[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return defaultRGB[0], defaultRGB[1], defaultRGB[2]
	}
	return uint8(rv), uint8(gv), uint8(bv)
}

// Button renders a ButtonConfig to a 100x100 baseline JPEG. It loads and
// resizes the configured icon if one is present under iconsDir, otherwise
// fills with the configured (or default) background color. Whenever the
// button has a non-empty label, centered white text is drawn on top of
// whichever background resulted — icon or fill — with the text band
// darkened first if the label is a widget's live text over an icon.
//
// The result is rotated 180 degrees before encoding, matching the
// device's mounted screen orientation.
func Button(btn config.ButtonConfig, iconsDir string) ([]byte, error) {
	r, g, b := ParseHexColor(btn.Color)
	bg := color.RGBA{R: r, G: g, B: b, A: 255}

	canvas := image.NewRGBA(image.Rect(0, 0, Size, Size))

	hasIcon := false
	if btn.Icon != "" {
		iconPath := filepath.Join(iconsDir, btn.Icon)
		if icon, err := loadIcon(iconPath); err == nil {
			draw.Draw(canvas, canvas.Bounds(), icon, image.Point{}, draw.Src)
			hasIcon = true
		} else {
			fillSolid(canvas, bg)
		}
	} else {
		fillSolid(canvas, bg)
	}

	if btn.Label != "" {
		// A widget's live text overlaid on an icon needs a darkened band
		// behind it to stay legible against whatever the icon is showing.
		darken := hasIcon && widget.IsWidgetCommand(btn.Command)
		drawLabel(canvas, btn.Label, darken)
	}

	rotated := image.NewRGBA(image.Rect(0, 0, Size, Size))
	gift.New(gift.Rotate180()).Draw(rotated, canvas)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadIcon opens, decodes, and resizes an icon file to Size x Size using
// Lanczos resampling.
func loadIcon(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	gift.New(gift.Resize(Size, Size, gift.LanczosResampling)).Draw(dst, src)
	return dst, nil
}

func fillSolid(canvas *image.RGBA, bg color.RGBA) {
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// targetFontHeight picks a display font size, in pixels, by label length:
// short labels get the biggest type, long ones shrink to fit.
func targetFontHeight(label string) int {
	switch {
	case len(label) <= 5:
		return 28
	case len(label) <= 8:
		return 20
	default:
		return 16
	}
}

// drawLabel centers label in white text on canvas. basicfont ships only
// one fixed glyph size (Face7x13), so hitting targetFontHeight's larger
// sizes means drawing at native size onto a smaller auxiliary canvas and
// upscaling that back to Size x Size, magnifying the glyphs along with
// whatever background they sit on.
func drawLabel(canvas *image.RGBA, label string, darkenBand bool) {
	face := basicfont.Face7x13
	nativeHeight := face.Metrics().Height.Round()
	target := targetFontHeight(label)

	auxSize := Size
	if target != nativeHeight {
		auxSize = int(math.Round(float64(Size) * float64(nativeHeight) / float64(target)))
		if auxSize < 1 {
			auxSize = 1
		}
	}

	aux := image.NewRGBA(image.Rect(0, 0, auxSize, auxSize))
	gift.New(gift.Resize(auxSize, auxSize, gift.LanczosResampling)).Draw(aux, canvas)

	d := &font.Drawer{
		Src:  image.NewUniform(color.White),
		Face: face,
		Dst:  aux,
	}
	textWidth := d.MeasureString(label).Round()
	textHeight := face.Metrics().Height.Round()

	x := (auxSize - textWidth) / 2
	if x < 2 {
		x = 2
	}
	y := (auxSize-textHeight)/2 + textHeight
	if y < textHeight+2 {
		y = textHeight + 2
	}

	if darkenBand {
		darkenBandRows(aux, y-textHeight, textHeight)
	}

	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(label)

	gift.New(gift.Resize(Size, Size, gift.LanczosResampling)).Draw(canvas, aux)
}

// darkenBandRows multiplies the RGB channels of the [top, top+height) rows
// of img by 0.4, giving subsequently-drawn white text enough contrast
// against a busy icon underneath it.
func darkenBandRows(img *image.RGBA, top, height int) {
	bounds := img.Bounds()
	bottom := top + height
	if top < bounds.Min.Y {
		top = bounds.Min.Y
	}
	if bottom > bounds.Max.Y {
		bottom = bounds.Max.Y
	}
	for y := top; y < bottom; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			c.R = uint8(float64(c.R) * 0.4)
			c.G = uint8(float64(c.G) * 0.4)
			c.B = uint8(float64(c.B) * 0.4)
			img.SetRGBA(x, y, c)
		}
	}
}
