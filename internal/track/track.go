// Package track records hand motion paths and matches them against stored
// motion patterns with dynamic time warping.
package track

import (
	"image"
	"time"
)

// PathPoint is one sample of a hand motion path.
type PathPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"` // milliseconds since epoch
}

// Pattern is a stored motion template.
type Pattern struct {
	ID        string      // unique identifier
	Name      string      // human-readable name
	Path      []PathPoint // template path
	Tolerance float64     // maximum normalized DTW distance for a match
}

// Match is a scored result of comparing a path against a pattern.
type Match struct {
	Pattern  *Pattern // the matched pattern
	Score    float64  // 0-1, higher is better
	Distance float64  // normalized DTW distance
}

// Recorder accumulates smoothed hand centers into a motion path. A path
// completes when the hand leaves the frame for gapLimit consecutive frames
// or when it reaches maxPoints; paths shorter than minPoints are discarded
// as jitter.
type Recorder struct {
	maxPoints int
	minPoints int
	gapLimit  int

	path   []PathPoint
	misses int
}

// NewRecorder creates a recorder. maxPoints caps the path length, minPoints
// drops too-short paths, gapLimit is the number of consecutive frames
// without a hand that ends the current path.
func NewRecorder(maxPoints, minPoints, gapLimit int) *Recorder {
	if maxPoints < 2 {
		maxPoints = 2
	}
	if minPoints < 2 {
		minPoints = 2
	}
	if gapLimit < 1 {
		gapLimit = 1
	}
	return &Recorder{
		maxPoints: maxPoints,
		minPoints: minPoints,
		gapLimit:  gapLimit,
	}
}

// Observe feeds one frame's hand center (nil when no hand was found) into
// the recorder. When this observation completes a path, the path is
// returned and recording restarts.
func (r *Recorder) Observe(center *image.Point, at time.Time) ([]PathPoint, bool) {
	if center == nil {
		r.misses++
		if r.misses < r.gapLimit {
			return nil, false
		}
		return r.Flush()
	}

	r.misses = 0
	r.path = append(r.path, PathPoint{
		X:         float64(center.X),
		Y:         float64(center.Y),
		Timestamp: at.UnixMilli(),
	})

	if len(r.path) >= r.maxPoints {
		return r.Flush()
	}
	return nil, false
}

// Flush ends the current path and returns it if it is long enough.
func (r *Recorder) Flush() ([]PathPoint, bool) {
	path := r.path
	r.path = nil
	r.misses = 0

	if len(path) < r.minPoints {
		return nil, false
	}
	return path, true
}

// Len returns the number of points in the path being recorded.
func (r *Recorder) Len() int {
	return len(r.path)
}
