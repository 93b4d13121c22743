// Package vision implements the hand-pose estimation pipeline: skin and
// foreground segmentation, mask refinement, contour tracking, orientation
// estimation and gesture classification.
package vision

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Gesture is a coarse hand-shape label derived from contour geometry.
type Gesture string

const (
	GestureUnknown    Gesture = "unknown"
	GestureClosedFist Gesture = "closed_fist"
	GesturePointing   Gesture = "pointing"
	GestureVictory    Gesture = "victory"
	GestureOpenPalm   Gesture = "open_palm"
	GestureThumbsUp   Gesture = "thumbs_up"
)

// Vec2 is a 2D vector in image coordinates (y grows downward).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Length returns the Euclidean length of the vector.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Unit returns the normalized vector. Reports false for the zero vector.
func (v Vec2) Unit() (Vec2, bool) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{X: v.X / l, Y: v.Y / l}, true
}

// Angle returns the vector angle in degrees in the range [0, 360),
// measured clockwise from the positive x-axis in image coordinates.
func (v Vec2) Angle() float64 {
	deg := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Pose is the per-frame output of a detector. Center and Direction are nil
// and Contour is empty when no hand was found; Gesture is always set and
// defaults to GestureUnknown.
type Pose struct {
	Center    *image.Point  `json:"center,omitempty"`
	Contour   []image.Point `json:"contour,omitempty"`
	Direction *Vec2         `json:"direction,omitempty"`
	Gesture   Gesture       `json:"gesture"`
}

// Found reports whether the pose contains a detected hand.
func (p Pose) Found() bool {
	return p.Center != nil
}

// Detector analyzes video frames and reports the hand pose.
type Detector interface {
	// Process analyzes one frame. The optional exclusion mask is a same-size
	// single-channel image where 255 marks eligible pixels and 0 marks
	// excluded regions (for example a detected face). A nil or empty frame
	// yields an empty pose, never an error; errors are reserved for
	// detector-level failures.
	Process(frame *gocv.Mat, exclusion *gocv.Mat) (Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds construction-time parameters for the detectors.
type Config struct {
	// LowerSkin and UpperSkin bound the skin color range in HSV.
	LowerSkin gocv.Scalar
	UpperSkin gocv.Scalar

	// MinContourArea is the minimum enclosed area, in px², for a contour to
	// count as a hand. Contours must be strictly larger to qualify.
	MinContourArea float64

	// FingertipMinArea gates the convexity-defect fingertip strategy; below
	// it the estimator goes straight to the rotated-box fallback.
	FingertipMinArea float64

	// TipAngleMax is the maximum far-vertex angle, in radians, for a defect
	// to contribute fingertip candidates.
	TipAngleMax float64

	// GapAngleMax is the maximum far-vertex angle, in radians, for a defect
	// to count as a gap between two fingers. Deliberately looser than
	// TipAngleMax; the two thresholds are independent knobs.
	GapAngleMax float64

	// TipRadius is the maximum pixel distance from the topmost contour point
	// for a defect endpoint to remain a fingertip candidate.
	TipRadius float64

	// SolidityMin disambiguates a three-gap contour: above it the shape is
	// compact enough to read as thumbs-up.
	SolidityMin float64

	// SmoothWindow is the capacity of the centroid smoothing history.
	SmoothWindow int

	// AngleWindow is the capacity of the angle smoothing history used by the
	// orientation detector.
	AngleWindow int

	// DilateIterations controls how aggressively the refiner rejoins the
	// fingers and palm into one blob.
	DilateIterations int

	// EnableBackground turns on adaptive background subtraction.
	EnableBackground bool

	// BackgroundHistory and BackgroundVarThreshold parameterize the MOG2
	// background model.
	BackgroundHistory      int
	BackgroundVarThreshold float64

	// LearningFrames is the number of frames the background model observes
	// before its output participates in segmentation.
	LearningFrames int
}

// DefaultConfig returns the configuration used by the general hand detector.
// The skin range is deliberately permissive; background subtraction narrows
// it down once the model has learned the scene.
func DefaultConfig() Config {
	return Config{
		LowerSkin:              gocv.NewScalar(0, 30, 60, 0),
		UpperSkin:              gocv.NewScalar(30, 255, 255, 0),
		MinContourArea:         3000,
		FingertipMinArea:       3000,
		TipAngleMax:            math.Pi / 2.5,
		GapAngleMax:            math.Pi / 2,
		TipRadius:              50,
		SolidityMin:            0.9,
		SmoothWindow:           5,
		AngleWindow:            5,
		DilateIterations:       3,
		EnableBackground:       true,
		BackgroundHistory:      200,
		BackgroundVarThreshold: 25,
		LearningFrames:         30,
	}
}

// OrientationConfig returns the configuration used by the orientation
// detector: a tighter skin range, gentler dilation and no background model.
func OrientationConfig() Config {
	c := DefaultConfig()
	c.LowerSkin = gocv.NewScalar(0, 48, 80, 0)
	c.UpperSkin = gocv.NewScalar(20, 255, 255, 0)
	c.DilateIterations = 2
	c.SmoothWindow = 1
	c.EnableBackground = false
	return c
}

// Velocity derives a velocity vector, in pixels per second, from two hand
// positions. Returns the zero vector when either position is missing or the
// time delta is zero.
func Velocity(current, previous *image.Point, deltaSeconds float64) Vec2 {
	if current == nil || previous == nil || deltaSeconds == 0 {
		return Vec2{}
	}
	return Vec2{
		X: float64(current.X-previous.X) / deltaSeconds,
		Y: float64(current.Y-previous.Y) / deltaSeconds,
	}
}
