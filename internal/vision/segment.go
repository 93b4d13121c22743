package vision

import (
	"gocv.io/x/gocv"
)

// Segmenter converts a color frame into a binary mask of hand-colored
// foreground pixels. Segmentation is skin-color thresholding in HSV,
// optionally intersected with an adaptive background-model motion mask and
// an exclusion mask.
type Segmenter struct {
	lower      gocv.Scalar
	upper      gocv.Scalar
	background *BackgroundModel

	hsv    gocv.Mat
	skin   gocv.Mat
	motion gocv.Mat
}

// NewSegmenter creates a segmenter for the given skin color range. The
// background model may be nil, in which case segmentation is skin color
// alone.
func NewSegmenter(lower, upper gocv.Scalar, background *BackgroundModel) *Segmenter {
	return &Segmenter{
		lower:      lower,
		upper:      upper,
		background: background,
		hsv:        gocv.NewMat(),
		skin:       gocv.NewMat(),
		motion:     gocv.NewMat(),
	}
}

// SetRange replaces the skin color bounds.
func (s *Segmenter) SetRange(lower, upper gocv.Scalar) {
	s.lower = lower
	s.upper = upper
}

// Background returns the attached background model, or nil.
func (s *Segmenter) Background() *BackgroundModel {
	return s.background
}

// Segment writes the binary hand mask for the frame into dst. A frame with
// no skin-colored pixels yields an all-zero mask; there is no error case.
// The exclusion mask, when non-nil, must be a same-size single-channel
// image where 0 marks pixels to drop.
func (s *Segmenter) Segment(frame gocv.Mat, exclusion *gocv.Mat, dst *gocv.Mat) {
	gocv.CvtColor(frame, &s.hsv, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(s.hsv, s.lower, s.upper, &s.skin)

	// The background model learns from every frame; its mask only
	// participates once the learning window has elapsed.
	motionReady := false
	if s.background != nil {
		motionReady = s.background.Apply(frame, &s.motion)
	}

	if motionReady {
		gocv.BitwiseAnd(s.skin, s.motion, dst)
	} else {
		s.skin.CopyTo(dst)
	}

	if exclusion != nil && !exclusion.Empty() {
		gocv.BitwiseAnd(*dst, *exclusion, dst)
	}
}

// Close releases the segmenter's scratch buffers and background model.
func (s *Segmenter) Close() {
	if s.background != nil {
		s.background.Close()
	}
	s.hsv.Close()
	s.skin.Close()
	s.motion.Close()
}
