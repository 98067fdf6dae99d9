package photosvc

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/staffdesk/core"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResult(t *testing.T, dataURL string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		wantSide int
	}{
		{name: "small landscape", w: 120, h: 80, wantSide: 80},
		{name: "small portrait", w: 60, h: 90, wantSide: 60},
		{name: "large", w: 800, h: 600, wantSide: MaxSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Process(pngDataURL(t, tt.w, tt.h))
			require.NoError(t, err)
			img := decodeResult(t, out)
			assert.Equal(t, tt.wantSide, img.Bounds().Dx())
			assert.Equal(t, tt.wantSide, img.Bounds().Dy())
		})
	}
}

func TestProcess_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		dataURL string
	}{
		{name: "empty", dataURL: " "},
		{name: "not a data url", dataURL: "https://example.com/a.png"},
		{name: "not base64", dataURL: "data:image/png;base64,%%%"},
		{name: "not an image", dataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))},
		{name: "missing encoding", dataURL: "data:image/png,abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.dataURL)
			require.Error(t, err)
			assert.IsType(t, &core.ValidationError{}, err)
		})
	}
}

func TestProcess_TooLarge(t *testing.T) {
	grayDataURL := func(w, h int) string {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	tests := []struct {
		name string
		w, h int
	}{
		{name: "wide", w: MaxDimension + 1, h: 1},
		{name: "tall", w: 1, h: MaxDimension + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(grayDataURL(tt.w, tt.h))
			require.Error(t, err)
			assert.IsType(t, &core.ValidationError{}, err)
			assert.Equal(t, "photo: photo is too large", err.Error())
		})
	}

	out, err := Process(grayDataURL(MaxDimension, 2))
	require.NoError(t, err)
	img := decodeResult(t, out)
	assert.Equal(t, 2, img.Bounds().Dx())
}
