// Package photosvc prepares captured employee photos for storage in the session.
package photosvc

import (
	"bytes"
	"encoding/base64"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png" // register decoder
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/trezcool/staffdesk/core"
)

const (
	MaxSize      = 512
	MaxBytes     = 10 << 20
	MaxDimension = 8000 // pixels per side, checked before decoding
	jpegQuality = 85
)

func invalid(msg string) error {
	return core.Invalid("photo", msg)
}

// Process decodes a base64 image data URL (png, jpeg or webp), crops it to a centered square
// no larger than MaxSize and returns it as a jpeg data URL.
func Process(dataURL string) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return "", invalid("photo must be png, jpeg, or webp")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", invalid("unable to decode photo")
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return "", invalid("photo is too large")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", invalid("unable to decode photo")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return "", invalid("invalid image dimensions")
	}

	side := width
	if height < side {
		side = height
	}
	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	srcPoint := image.Point{X: bounds.Min.X + (width-side)/2, Y: bounds.Min.Y + (height-side)/2}
	stddraw.Draw(cropped, cropRect, img, srcPoint, stddraw.Src)

	var out image.Image = cropped
	if side > MaxSize {
		resized := image.NewRGBA(image.Rect(0, 0, MaxSize, MaxSize))
		xdraw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", invalid("unable to encode photo")
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return nil, invalid("photo is required")
	}
	comma := strings.IndexByte(dataURL, ',')
	if !strings.HasPrefix(dataURL, "data:image/") || comma < 0 || !strings.HasSuffix(dataURL[:comma], ";base64") {
		return nil, invalid("photo must be a base64 image data URL")
	}
	payload := dataURL[comma+1:]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxBytes {
		return nil, invalid("photo is too large")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid("photo is not valid base64")
	}
	if len(raw) == 0 {
		return nil, invalid("photo is empty")
	}
	return raw, nil
}
