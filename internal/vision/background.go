package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// BackgroundModel maintains an adaptive per-pixel statistic of the empty
// scene and classifies pixels that deviate from it as foreground motion.
// The model observes every frame but its output is only trusted after a
// fixed learning window has elapsed.
type BackgroundModel struct {
	subtractor gocv.BackgroundSubtractorMOG2
	history    int
	varThresh  float64
	learning   int
	seen       int

	raw        gocv.Mat
	openKernel gocv.Mat
	closeKernel gocv.Mat
}

// NewBackgroundModel creates a background model with the given MOG2
// parameters and learning window.
func NewBackgroundModel(history int, varThreshold float64, learningFrames int) *BackgroundModel {
	return &BackgroundModel{
		subtractor: gocv.NewBackgroundSubtractorMOG2WithParams(history, varThreshold, false),
		history:    history,
		varThresh:  varThreshold,
		learning:   learningFrames,
		raw:        gocv.NewMat(),
		openKernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		closeKernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5)),
	}
}

// Ready reports whether the learning window has elapsed and the motion mask
// can participate in segmentation.
func (m *BackgroundModel) Ready() bool {
	return m.seen >= m.learning
}

// Apply updates the model from the frame and, once the model is ready,
// writes a high-confidence binary motion mask into dst. It reports whether
// dst was written. During the learning phase the model is updated but the
// mask is withheld.
func (m *BackgroundModel) Apply(frame gocv.Mat, dst *gocv.Mat) bool {
	m.subtractor.Apply(frame, &m.raw)
	m.seen++

	if !m.Ready() {
		return false
	}

	// One open pass strips speckle, one close pass fills pinholes, then a
	// high cutoff keeps only confident foreground.
	gocv.MorphologyEx(m.raw, dst, gocv.MorphOpen, m.openKernel)
	gocv.MorphologyEx(*dst, dst, gocv.MorphClose, m.closeKernel)
	gocv.Threshold(*dst, dst, 200, 255, gocv.ThresholdBinary)
	return true
}

// FramesSeen returns the number of frames the model has observed.
func (m *BackgroundModel) FramesSeen() int {
	return m.seen
}

// Reset discards the learned background and restarts the learning window.
func (m *BackgroundModel) Reset() {
	m.subtractor.Close()
	m.subtractor = gocv.NewBackgroundSubtractorMOG2WithParams(m.history, m.varThresh, false)
	m.seen = 0
}

// Close releases resources held by the model.
func (m *BackgroundModel) Close() {
	m.subtractor.Close()
	m.raw.Close()
	m.openKernel.Close()
	m.closeKernel.Close()
}
