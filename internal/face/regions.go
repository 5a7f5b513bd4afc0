package face

import (
	"math"

	"github.com/jmylchreest/shade/internal/skin"
)

// LandmarkCount is the number of points in the landmark model.
const LandmarkCount = 68

// Region weights: the cheeks carry most of the signal, the forehead is
// more often shadowed by hair.
const (
	cheekWeight    = 0.4
	foreheadWeight = 0.2
)

const (
	regionPadding = 10.0
	maxRegionSize = 50
)

// LandmarkRegions derives cheek and forehead sampling regions from a
// 68-point landmark set. Each region is the padded bounding box of its
// landmarks, moved inside the image and capped at 50x50 pixels.
func LandmarkRegions(points []Point, width, height int) []skin.Region {
	if len(points) < LandmarkCount {
		return nil
	}

	forehead := []Point{
		points[19],
		points[24],
		{X: points[27].X, Y: points[19].Y - 20},
	}

	return []skin.Region{
		boundedRegion("leftCheek", points[1:5], cheekWeight, width, height),
		boundedRegion("rightCheek", points[12:16], cheekWeight, width, height),
		boundedRegion("forehead", forehead, foreheadWeight, width, height),
	}
}

// BoxRegions derives sampling regions from the face box alone: one patch
// on each cheek and one on the forehead.
func BoxRegions(b Box, width, height int) []skin.Region {
	cheekW := math.Min(b.Width*0.2, maxRegionSize)
	cheekH := math.Min(b.Height*0.15, maxRegionSize)
	foreW := math.Min(b.Width*0.3, maxRegionSize)
	foreH := math.Min(b.Height*0.1, maxRegionSize)

	return []skin.Region{
		clampRegion("leftCheek", b.X+b.Width*0.15, b.Y+b.Height*0.5, cheekW, cheekH, cheekWeight, width, height),
		clampRegion("rightCheek", b.X+b.Width*0.85-cheekW, b.Y+b.Height*0.5, cheekW, cheekH, cheekWeight, width, height),
		clampRegion("forehead", b.X+(b.Width-foreW)/2, b.Y+b.Height*0.12, foreW, foreH, foreheadWeight, width, height),
	}
}

func boundedRegion(name string, points []Point, weight float64, width, height int) skin.Region {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	x := minX - regionPadding
	y := minY - regionPadding
	w := (maxX - minX) + 2*regionPadding
	h := (maxY - minY) + 2*regionPadding

	return clampRegion(name, x, y, math.Min(w, maxRegionSize), math.Min(h, maxRegionSize), weight, width, height)
}

// clampRegion moves a rectangle inside the image, shrinking it only when
// the image itself is smaller than the rectangle.
func clampRegion(name string, x, y, w, h, weight float64, width, height int) skin.Region {
	iw, ih := float64(width), float64(height)
	w = math.Max(0, math.Min(w, iw))
	h = math.Max(0, math.Min(h, ih))
	x = math.Max(0, math.Min(x, iw-w))
	y = math.Max(0, math.Min(y, ih-h))

	return skin.Region{
		Name:   name,
		X:      int(math.Round(x)),
		Y:      int(math.Round(y)),
		Width:  int(math.Round(w)),
		Height: int(math.Round(h)),
		Weight: weight,
	}
}
