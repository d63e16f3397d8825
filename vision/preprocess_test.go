package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// makePNG produces PNG bytes for a solid image of the given size.
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	data := makePNG(t, 10, 20)
	img, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v, want 10x20", img.Bounds())
	}
}

func TestDecodeImageErrors(t *testing.T) {
	if _, err := DecodeImage(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty data: err = %v, want ErrEmptyImage", err)
	}
	if _, err := DecodeImage([]byte("definitely not an image")); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("garbage data: err = %v, want ErrInvalidImage", err)
	}
}

func TestDownscaleToFit(t *testing.T) {
	tests := []struct {
		name                 string
		width, height        int
		maxDim               int
		wantWidth, wantHeight int
	}{
		{"landscape over limit", 400, 200, 100, 100, 50},
		{"portrait over limit", 200, 400, 100, 50, 100},
		{"square over limit", 300, 300, 150, 150, 150},
		{"already within limit", 80, 60, 100, 80, 60},
		{"exactly at limit", 100, 100, 100, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got, err := DownscaleToFit(src, tt.maxDim)
			if err != nil {
				t.Fatalf("DownscaleToFit failed: %v", err)
			}
			if got.Bounds().Dx() != tt.wantWidth || got.Bounds().Dy() != tt.wantHeight {
				t.Errorf("bounds = %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestDownscaleToFitInvalidMaxDim(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := DownscaleToFit(src, 0); !errors.Is(err, ErrInvalidMaxDim) {
		t.Errorf("err = %v, want ErrInvalidMaxDim", err)
	}
}

func TestPrepareForInferencePassThrough(t *testing.T) {
	data := makePNG(t, 50, 50)
	got, err := PrepareForInference(data, 100)
	if err != nil {
		t.Fatalf("PrepareForInference failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("image within limit should pass through unchanged")
	}
}

func TestPrepareForInferenceDownscales(t *testing.T) {
	data := makePNG(t, 500, 250)
	got, err := PrepareForInference(data, 100)
	if err != nil {
		t.Fatalf("PrepareForInference failed: %v", err)
	}
	img, err := DecodeImage(got)
	if err != nil {
		t.Fatalf("result is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("bounds = %v, want 100x50", img.Bounds())
	}
}
