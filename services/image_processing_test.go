package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeTestImage(t *testing.T, fill color.RGBA, size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWhitenBackgroundFeatheredBrightensEdges(t *testing.T) {
	// light gray backdrop, above the upper threshold everywhere
	input := encodeTestImage(t, color.RGBA{R: 230, G: 230, B: 230, A: 255}, 20)

	out, err := WhitenBackgroundFeathered(input, 200, 220, 0.0)
	assert.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestWhitenBackgroundFeatheredProtectsCenter(t *testing.T) {
	input := encodeTestImage(t, color.RGBA{R: 230, G: 230, B: 230, A: 255}, 20)

	out, err := WhitenBackgroundFeathered(input, 200, 220, 1.0)
	assert.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	r, _, _, _ := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(230*257), r)
}

func TestWhitenBackgroundFeatheredLeavesDarkPixels(t *testing.T) {
	input := encodeTestImage(t, color.RGBA{R: 40, G: 40, B: 40, A: 255}, 8)

	out, err := WhitenBackgroundFeathered(input, 200, 220, 0.0)
	assert.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(40*257), r)
}

func TestWhitenBackgroundFeatheredValidation(t *testing.T) {
	input := encodeTestImage(t, color.RGBA{A: 255}, 4)

	_, err := WhitenBackgroundFeathered(input, 220, 200, 0.5)
	assert.Error(t, err)

	_, err = WhitenBackgroundFeathered(input, 200, 220, 1.5)
	assert.Error(t, err)

	_, err = WhitenBackgroundFeathered([]byte("not an image"), 200, 220, 0.5)
	assert.Error(t, err)
}
