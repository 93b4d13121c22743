// Package synth builds synthetic frames and contours for testing the
// vision pipeline without camera input. Shapes are drawn in a fixed
// skin-toned color that falls inside both detector skin ranges.
package synth

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// SkinColor is a BGR skin tone. In HSV it lands near (8, 140, 200), inside
// the default (0-30, 30-255, 60-255) and orientation (0-20, 48-255, 80-255)
// skin ranges.
var SkinColor = color.RGBA{R: 200, G: 120, B: 90, A: 255}

// White fills binary masks, Black blanks regions out of them.
var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
)

// Blue is a BGR tone well outside every skin hue band.
var Blue = color.RGBA{R: 30, G: 40, B: 220, A: 255}

// NewFrame returns a black BGR frame of the given size. The caller owns the
// returned Mat.
func NewFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
}

// NewMask returns a black single-channel mask of the given size. The caller
// owns the returned Mat.
func NewMask(width, height int) gocv.Mat {
	return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
}

// FillRect paints a filled rectangle in the given color.
func FillRect(img *gocv.Mat, r image.Rectangle, c color.RGBA) {
	gocv.Rectangle(img, r, c, -1)
}

// FillEllipse paints a filled ellipse rotated by angle degrees.
func FillEllipse(img *gocv.Mat, center, axes image.Point, angle float64, c color.RGBA) {
	gocv.Ellipse(img, center, axes, angle, 0, 360, c, -1)
}

// FillPolygon paints a filled polygon.
func FillPolygon(img *gocv.Mat, pts []image.Point, c color.RGBA) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(img, pv, c)
}

// Comb returns the outline of a comb-shaped hand stand-in: a palm block
// with fingers fingers of the given width and height rising from its top
// edge, separated by gap-wide valleys. A comb with n fingers has exactly
// n-1 deep finger valleys.
func Comb(origin image.Point, fingers, fingerW, fingerH, gap, palmH int) []image.Point {
	top := origin.Y
	bottom := origin.Y + palmH
	left := origin.X
	right := origin.X + fingers*fingerW + (fingers-1)*gap

	pts := []image.Point{{X: left, Y: bottom}}
	x := left
	for i := 0; i < fingers; i++ {
		pts = append(pts,
			image.Pt(x, top),
			image.Pt(x, top-fingerH),
			image.Pt(x+fingerW, top-fingerH),
			image.Pt(x+fingerW, top),
		)
		x += fingerW + gap
	}
	pts = append(pts, image.Pt(right, bottom))
	return pts
}

// PointingHand returns the outline of a hand pointing straight up: a palm
// block with one tall finger flush against its left edge and a short thumb
// flush against its right edge, leaving a single deep valley between them.
func PointingHand(origin image.Point) []image.Point {
	// origin is the palm's top-left corner.
	left := origin.X
	top := origin.Y
	right := left + 120
	bottom := top + 100

	return []image.Point{
		{X: left, Y: bottom},
		{X: left, Y: top - 160},       // finger left edge
		{X: left + 40, Y: top - 160},  // finger tip
		{X: left + 40, Y: top},        // valley left wall
		{X: right - 40, Y: top},       // valley floor
		{X: right - 40, Y: top - 40},  // thumb left edge
		{X: right, Y: top - 40},       // thumb tip
		{X: right, Y: bottom},
	}
}
