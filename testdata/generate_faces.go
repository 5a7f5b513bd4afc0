// Portrait generator for exercising batch analysis. Writes one synthetic
// portrait per skin tone into testdata/faces: a face-shaped oval of skin
// colour with mild pixel noise on a neutral background.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
)

var tones = []struct {
	name string
	c    color.RGBA
}{
	{"porcelain", color.RGBA{R: 246, G: 214, B: 190, A: 255}},
	{"light", color.RGBA{R: 232, G: 190, B: 160, A: 255}},
	{"medium", color.RGBA{R: 200, G: 160, B: 130, A: 255}},
	{"tan", color.RGBA{R: 176, G: 128, B: 96, A: 255}},
	{"deep", color.RGBA{R: 128, G: 86, B: 62, A: 255}},
	{"rich", color.RGBA{R: 92, G: 60, B: 44, A: 255}},
}

func main() {
	const width, height = 480, 640
	dir := filepath.Join("testdata", "faces")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	background := color.RGBA{R: 90, G: 100, B: 110, A: 255}

	for _, tone := range tones {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		cx, cy := float64(width)/2, float64(height)/2
		rx, ry := float64(width)*0.35, float64(height)*0.4

		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
				if dx*dx+dy*dy > 1 {
					img.SetRGBA(x, y, background)
					continue
				}
				n := rng.IntN(9) - 4
				img.SetRGBA(x, y, color.RGBA{
					R: clamp(int(tone.c.R) + n),
					G: clamp(int(tone.c.G) + n),
					B: clamp(int(tone.c.B) + n),
					A: 255,
				})
			}
		}

		path := filepath.Join(dir, tone.name+".png")
		f, err := os.Create(path)
		if err != nil {
			panic(err)
		}
		if err := png.Encode(f, img); err != nil {
			panic(err)
		}
		f.Close()
		fmt.Println("Portrait created:", path)
	}
}

func clamp(v int) uint8 {
	return uint8(max(0, min(255, v)))
}
