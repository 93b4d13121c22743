package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Refiner cleans a raw segmentation mask: erosion strips thin noise before
// dilation can inflate it, dilation rejoins fingers and palm into one blob,
// and a blur plus re-threshold softens then restores crisp binary edges.
type Refiner struct {
	kernel    gocv.Mat
	dilations int
}

// NewRefiner creates a refiner with a 5x5 rectangular kernel and the given
// number of dilation passes.
func NewRefiner(dilations int) *Refiner {
	if dilations < 1 {
		dilations = 1
	}
	return &Refiner{
		kernel:    gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5)),
		dilations: dilations,
	}
}

// Refine cleans src into dst. src and dst may be the same Mat. The output
// is always a same-size binary mask, possibly all zero.
func (r *Refiner) Refine(src gocv.Mat, dst *gocv.Mat) {
	gocv.Erode(src, dst, r.kernel)
	for i := 0; i < r.dilations; i++ {
		gocv.Dilate(*dst, dst, r.kernel)
	}
	gocv.GaussianBlur(*dst, dst, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	gocv.Threshold(*dst, dst, 60, 255, gocv.ThresholdBinary)
}

// Close releases the morphology kernel.
func (r *Refiner) Close() {
	r.kernel.Close()
}
