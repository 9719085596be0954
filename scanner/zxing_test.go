package scanner

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderQR draws a QR code for content into a size x size RGBA image.
func renderQR(t *testing.T, content string, size int) *image.RGBA {
	t.Helper()

	matrix, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			c := color.RGBA{255, 255, 255, 255}
			if matrix.Get(x, y) {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// countingDetector wraps a real detector to count strategy attempts.
type countingDetector struct {
	CodeDetector
	detects int
}

func (c *countingDetector) Detect(img *image.Gray) ([]Grid, error) {
	c.detects++
	return c.CodeDetector.Detect(img)
}

func TestZXing_DecodesHello(t *testing.T) {
	img := renderQR(t, "hello", 200)
	require.Equal(t, 200, img.Bounds().Dx())

	det := &countingDetector{CodeDetector: NewZXingDetector()}
	codes, err := NewEngine(det).Decode(img)
	require.NoError(t, err)
	assert.Equal(t, []Code{{Content: "hello", Kind: KindText}}, codes)
	assert.Equal(t, 1, det.detects, "a clean code decodes with the first strategy")
}

func TestZXing_DecodesURL(t *testing.T) {
	img := renderQR(t, "https://example.com/qr", 240)

	codes, err := NewEngine(NewZXingDetector()).Decode(img)
	require.NoError(t, err)
	assert.Equal(t, []Code{{Content: "https://example.com/qr", Kind: KindURL}}, codes)
}

func TestZXing_DecodesInvertedCode(t *testing.T) {
	img := renderQR(t, "light on dark", 200)
	inverted := Strategy{Scale: 1, Filter: FilterInvert}.Apply(img)

	codes, err := NewEngine(NewZXingDetector()).Decode(inverted)
	require.NoError(t, err)
	assert.Equal(t, []Code{NewCode("light on dark")}, codes)
}

func TestZXing_BlankImageHasNoCodes(t *testing.T) {
	det := &countingDetector{CodeDetector: NewZXingDetector()}
	codes, err := NewEngine(det).Decode(solid(120, 120, color.RGBA{255, 255, 255, 255}))
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Equal(t, len(Strategies()), det.detects)
}

func TestZXing_DuplicateRenderingsYieldOneCode(t *testing.T) {
	code := renderQR(t, "twice", 200)
	canvas := image.NewRGBA(image.Rect(0, 0, 440, 220))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(10, 10, 210, 210), code, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(230, 10, 430, 210), code, image.Point{}, draw.Src)

	codes, err := NewEngine(NewZXingDetector()).Decode(canvas)
	require.NoError(t, err)
	assert.Equal(t, []Code{NewCode("twice")}, codes)
}
