package vision

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// OrientationDetector is the orientation-focused variant: skin segmentation
// without a background model, rotated-box orientation only, and smoothing
// applied to the angle rather than the centroid. Alongside the direction
// vector it maintains a coarse compass heading for consumers that steer on
// four-way input.
type OrientationDetector struct {
	config     Config
	segmenter  *Segmenter
	refiner    *Refiner
	tracker    *Tracker
	smoother   *angleSmoother
	classifier *Classifier

	angle   float64
	heading Heading

	mask gocv.Mat
	mu   sync.Mutex
}

// NewOrientationDetector creates an orientation detector. Callers usually
// pass OrientationConfig().
func NewOrientationDetector(config Config) *OrientationDetector {
	return &OrientationDetector{
		config:     config,
		segmenter:  NewSegmenter(config.LowerSkin, config.UpperSkin, nil),
		refiner:    NewRefiner(config.DilateIterations),
		tracker:    NewTracker(config.MinContourArea, config.SmoothWindow),
		smoother:   newAngleSmoother(config.AngleWindow),
		classifier: NewClassifier(config.GapAngleMax, config.SolidityMin),
		heading:    HeadingUnknown,
		mask:       gocv.NewMat(),
	}
}

// Process analyzes one frame. The direction is derived from the rotated
// bounding box angle averaged over the last AngleWindow detections.
func (d *OrientationDetector) Process(frame *gocv.Mat, exclusion *gocv.Mat) (Pose, error) {
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

	if raw, ok := boxDirection(contour); ok {
		avg := d.smoother.add(normalizeAngle(raw.Angle()))
		d.angle = avg
		d.heading = CompassHeading(avg)

		rad := avg * math.Pi / 180
		pose.Direction = &Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
	}

	return pose, nil
}

// Angle returns the smoothed orientation angle in degrees, [0, 360).
func (d *OrientationDetector) Angle() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.angle
}

// Heading returns the compass heading for the smoothed angle.
func (d *OrientationDetector) Heading() Heading {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.heading
}

// Reset clears the angle history and heading.
func (d *OrientationDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.smoother.reset()
	d.tracker.Reset()
	d.angle = 0
	d.heading = HeadingUnknown
}

// Close releases all pipeline resources.
func (d *OrientationDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.segmenter.Close()
	d.refiner.Close()
	d.tracker.Close()
	d.mask.Close()
	return nil
}
