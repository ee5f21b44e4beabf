package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	p := NewImageProcessor()

	ct, err := p.ValidateImage(samplePNG(t, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = p.ValidateImage([]byte("definitely not an image"))
	assert.Error(t, err)

	p.MaxSize = 10
	_, err = p.ValidateImage(samplePNG(t, 20, 10))
	assert.Error(t, err)
}

func TestProcessImage_FitsVariants(t *testing.T) {
	p := NewImageProcessor()

	variants, err := p.ProcessImage(samplePNG(t, 2400, 1200))
	require.NoError(t, err)
	require.Len(t, variants, len(CoverVariants))

	for name, max := range CoverVariants {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(variants[name]))
		require.NoError(t, err, name)
		assert.Equal(t, "jpeg", format)
		assert.LessOrEqual(t, cfg.Width, max, name)
		assert.LessOrEqual(t, cfg.Height, max, name)
	}
}
