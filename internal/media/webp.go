package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	DefaultMaxSide = 800
	webpQuality    = 80
	// MaxUploadBytes bounds what is read from a request body.
	MaxUploadBytes = 5 << 20
)

var ErrUnsupportedImage = errors.New("media: unsupported image")

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// ToWebP decodes a JPEG, PNG or WebP image, shrinks it so that its longest
// side is at most maxSide and encodes it as lossy WebP. Smaller images keep
// their size.
func ToWebP(r io.Reader, maxSide int) ([]byte, error) {
	src, _, err := image.Decode(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img := Fit(src, maxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("media: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales src down to fit a maxSide square, preserving aspect ratio.
func Fit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return src
	}

	nw, nh := maxSide, maxSide
	if w >= h {
		nh = max(1, h*maxSide/w)
	} else {
		nw = max(1, w*maxSide/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
