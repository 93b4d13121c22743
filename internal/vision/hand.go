package vision

import (
	"sync"

	"gocv.io/x/gocv"
)

// HandDetector is the general-purpose pose detector: skin segmentation with
// adaptive background subtraction, contour tracking with centroid smoothing,
// fingertip/rotated-box orientation and defect-count gesture labels.
//
// A HandDetector is safe for use from multiple goroutines; the pipeline
// itself is strictly sequential per call.
type HandDetector struct {
	config     Config
	segmenter  *Segmenter
	refiner    *Refiner
	tracker    *Tracker
	estimator  *Estimator
	classifier *Classifier

	mask gocv.Mat
	mu   sync.Mutex
}

// NewHandDetector creates a detector with the given configuration.
func NewHandDetector(config Config) *HandDetector {
	var background *BackgroundModel
	if config.EnableBackground {
		background = NewBackgroundModel(
			config.BackgroundHistory,
			config.BackgroundVarThreshold,
			config.LearningFrames,
		)
	}

	return &HandDetector{
		config:     config,
		segmenter:  NewSegmenter(config.LowerSkin, config.UpperSkin, background),
		refiner:    NewRefiner(config.DilateIterations),
		tracker:    NewTracker(config.MinContourArea, config.SmoothWindow),
		estimator:  NewEstimator(config.FingertipMinArea, config.TipAngleMax, config.TipRadius),
		classifier: NewClassifier(config.GapAngleMax, config.SolidityMin),
		mask:       gocv.NewMat(),
	}
}

// Process runs the full pipeline on one frame. A nil or empty frame yields
// an empty pose. Failures are per-frame and local: a frame that defeats the
// orientation chain still reports center, contour and gesture.
func (d *HandDetector) Process(frame *gocv.Mat, exclusion *gocv.Mat) (Pose, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pose := Pose{Gesture: GestureUnknown}
	if frame == nil || frame.Empty() {
		return pose, nil
	}

	d.segmenter.Segment(*frame, exclusion, &d.mask)
	d.refiner.Refine(d.mask, &d.mask)

	contour, center, ok := d.tracker.Extract(d.mask)
	if !ok {
		return pose, nil
	}

	pose.Center = &center
	pose.Contour = contour
	pose.Gesture = d.classifier.Classify(contour)

	if dir, ok := d.estimator.Estimate(contour, center); ok {
		pose.Direction = &dir
	}

	return pose, nil
}

// Recalibrate discards the learned background and the centroid history,
// restarting the model's learning window.
func (d *HandDetector) Recalibrate() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if bg := d.segmenter.Background(); bg != nil {
		bg.Reset()
	}
	d.tracker.Reset()
}

// SetSkinRange replaces the skin color bounds, typically from a stored
// calibration profile.
func (d *HandDetector) SetSkinRange(lower, upper gocv.Scalar) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.segmenter.SetRange(lower, upper)
}

// SnapshotMask returns a copy of the most recent refined mask for debug
// display. The caller owns the returned Mat.
func (d *HandDetector) SnapshotMask() gocv.Mat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mask.Clone()
}

// Close releases all pipeline resources.
func (d *HandDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.segmenter.Close()
	d.refiner.Close()
	d.tracker.Close()
	d.mask.Close()
	return nil
}
