// Package screenshot shrinks chart images into data URLs small enough to
// live inside a trade record.
package screenshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	// Registered decoders for the formats browsers typically upload.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	MaxWidth    = 1000
	JPEGQuality = 70
	dataPrefix  = "data:image/jpeg;base64,"
)

var ErrDecode = errors.New("failed to process image")

// Process decodes an image, scales it down to at most MaxWidth pixels wide
// keeping the aspect ratio, and returns it as a base64 JPEG data URL.
func Process(ctx context.Context, r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := Resize(src, MaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return dataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Resize returns src unchanged when it already fits within maxWidth.
func Resize(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth {
		return src
	}
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Decode reverses Process, for callers that need the pixels back.
func Decode(dataURL string) (image.Image, error) {
	if len(dataURL) < len(dataPrefix) || dataURL[:len(dataPrefix)] != dataPrefix {
		return nil, fmt.Errorf("%w: not a jpeg data url", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(dataPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}
