// Package vision prepares rasterized page images for multimodal inference.
// Conversion scripts often emit very large rasters; sending those to the
// model wastes tokens and upload time, so pages above a dimension ceiling
// are downscaled before the inference call.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// Image preprocessing errors
var (
	ErrEmptyImage    = errors.New("vision: empty image data")
	ErrInvalidImage  = errors.New("vision: invalid image data")
	ErrInvalidMaxDim = errors.New("vision: max dimension must be positive")
)

// DecodeImage decodes image data from common raster formats (PNG, JPEG, GIF).
// This is a pure function with no side effects.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// DownscaleToFit scales an image down so that its longest side is at most
// maxDim, preserving aspect ratio with high-quality Catmull-Rom resampling.
// Images already within the limit are returned unchanged.
func DownscaleToFit(img image.Image, maxDim int) (image.Image, error) {
	if maxDim <= 0 {
		return nil, ErrInvalidMaxDim
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	longest := max(width, height)
	if longest <= maxDim {
		return img, nil
	}

	scale := float64(maxDim) / float64(longest)
	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("vision: failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareForInference decodes raw image bytes, downscales them if their
// longest side exceeds maxDim, and re-encodes as PNG. Images already within
// the limit are passed through byte-for-byte.
func PrepareForInference(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		return nil, ErrInvalidMaxDim
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if max(bounds.Dx(), bounds.Dy()) <= maxDim {
		return data, nil
	}

	scaled, err := DownscaleToFit(img, maxDim)
	if err != nil {
		return nil, err
	}
	return EncodePNG(scaled)
}
