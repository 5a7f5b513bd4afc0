package image

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{name: "within limits", w: 800, h: 600, maxW: 1920, maxH: 1080, wantW: 800, wantH: 600},
		{name: "too wide", w: 3840, h: 1080, maxW: 1920, maxH: 1080, wantW: 1920, wantH: 540},
		{name: "too tall", w: 1000, h: 2160, maxW: 1920, maxH: 1080, wantW: 500, wantH: 1080},
		{name: "both exceed, height binds", w: 4000, h: 3000, maxW: 1920, maxH: 1080, wantW: 1440, wantH: 1080},
		{name: "unbounded height", w: 4000, h: 3000, maxW: 2000, maxH: 0, wantW: 2000, wantH: 1500},
		{name: "empty", w: 0, h: 0, maxW: 10, maxH: 10, wantW: 0, wantH: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResize(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if got := Resize(small, 200, 200); got != image.Image(small) {
		t.Error("Resize() of small image should return the input")
	}

	big := image.NewRGBA(image.Rect(10, 10, 410, 210))
	got := Resize(big, 200, 200)
	if got.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Errorf("Resize() bounds = %v, want (0,0)-(200,100)", got.Bounds())
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	data, err := EncodeJPEG(img, 0)
	if err != nil {
		t.Fatalf("EncodeJPEG() error: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode() error: %v", err)
	}
	if decoded.Bounds().Dx() != 16 {
		t.Errorf("decoded width = %d, want 16", decoded.Bounds().Dx())
	}
}
