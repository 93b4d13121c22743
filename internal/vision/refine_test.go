package vision

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/synth"
)

func TestRefiner_RemovesSpeckle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	r := NewRefiner(3)
	defer r.Close()

	mask := synth.NewMask(640, 480)
	defer mask.Close()
	// Scatter isolated single-pixel noise.
	for _, p := range []image.Point{{X: 50, Y: 50}, {X: 321, Y: 17}, {X: 600, Y: 450}} {
		mask.SetUCharAt(p.Y, p.X, 255)
	}

	r.Refine(mask, &mask)
	if n := gocv.CountNonZero(mask); n != 0 {
		t.Errorf("speckle survived refinement: %d nonzero pixels", n)
	}
}

func TestRefiner_BridgesNearbyBlobs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	r := NewRefiner(3)
	defer r.Close()

	mask := synth.NewMask(640, 480)
	defer mask.Close()
	// Two 60x60 blocks separated by a 4px gap, like a finger split from the
	// palm by a segmentation dropout.
	synth.FillRect(&mask, image.Rect(100, 100, 160, 160), synth.White)
	synth.FillRect(&mask, image.Rect(164, 100, 224, 160), synth.White)

	r.Refine(mask, &mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() != 1 {
		t.Errorf("got %d contours after refinement, want the blobs merged into 1", contours.Size())
	}
}

func TestRefiner_OutputStaysBinary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	r := NewRefiner(3)
	defer r.Close()

	src := synth.NewMask(640, 480)
	defer src.Close()
	synth.FillRect(&src, image.Rect(200, 150, 400, 350), synth.White)

	dst := gocv.NewMat()
	defer dst.Close()
	r.Refine(src, &dst)

	// Threshold after the blur must leave only 0 and 255.
	minVal, maxVal, _, _ := gocv.MinMaxLoc(dst)
	if minVal != 0 || maxVal != 255 {
		t.Errorf("mask values span [%f, %f], want binary 0/255", minVal, maxVal)
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Threshold(dst, &diff, 0, 255, gocv.ThresholdBinary)
	gocv.BitwiseXor(dst, diff, &diff)
	if n := gocv.CountNonZero(diff); n != 0 {
		t.Errorf("%d pixels hold intermediate gray values", n)
	}
}
