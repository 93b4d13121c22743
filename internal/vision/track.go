package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Tracker extracts the hand contour and its temporally smoothed centroid
// from a refined mask. The centroid history is a bounded FIFO; the smoothed
// center is the arithmetic mean over however many entries are present,
// which trades up to SmoothWindow frames of lag for jitter suppression.
type Tracker struct {
	minArea float64
	window  int
	history []image.Point

	fill gocv.Mat
}

// NewTracker creates a tracker with the given minimum contour area and
// smoothing window capacity.
func NewTracker(minArea float64, window int) *Tracker {
	if window < 1 {
		window = 1
	}
	return &Tracker{
		minArea: minArea,
		window:  window,
		fill:    gocv.NewMat(),
	}
}

// Extract finds the largest contour in the mask whose enclosed area is
// strictly greater than the minimum, and returns its boundary points and
// smoothed centroid. When two contours tie on area the first in scan order
// wins. Reports false when no contour qualifies or the centroid moment is
// degenerate; the smoothing history is untouched in that case.
func (t *Tracker) Extract(mask gocv.Mat) ([]image.Point, image.Point, bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	bestArea := t.minArea
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 {
		return nil, image.Point{}, false
	}

	contour := contours.At(best).ToPoints()

	center, ok := t.centroid(contour, mask.Rows(), mask.Cols())
	if !ok {
		return nil, image.Point{}, false
	}

	return contour, t.smooth(center), true
}

// centroid computes the contour centroid from the zeroth and first image
// moments of the filled contour region. gocv exposes moments over images
// only, so the contour is rasterized into a scratch mask first.
func (t *Tracker) centroid(contour []image.Point, rows, cols int) (image.Point, bool) {
	if t.fill.Empty() || t.fill.Rows() != rows || t.fill.Cols() != cols {
		t.fill.Close()
		t.fill = gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	}
	t.fill.SetTo(gocv.NewScalar(0, 0, 0, 0))

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{contour})
	defer pts.Close()
	gocv.FillPoly(&t.fill, pts, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	m := gocv.Moments(t.fill, true)
	if m["m00"] == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(m["m10"]/m["m00"]), int(m["m01"]/m["m00"])), true
}

// smooth pushes a raw centroid into the history and returns the mean.
func (t *Tracker) smooth(raw image.Point) image.Point {
	if len(t.history) >= t.window {
		copy(t.history, t.history[1:])
		t.history = t.history[:t.window-1]
	}
	t.history = append(t.history, raw)

	var sx, sy int
	for _, p := range t.history {
		sx += p.X
		sy += p.Y
	}
	return image.Pt(sx/len(t.history), sy/len(t.history))
}

// HistoryLen returns the number of centroids currently in the smoothing
// history.
func (t *Tracker) HistoryLen() int {
	return len(t.history)
}

// Reset clears the smoothing history.
func (t *Tracker) Reset() {
	t.history = t.history[:0]
}

// Close releases the scratch buffer.
func (t *Tracker) Close() {
	t.fill.Close()
}
