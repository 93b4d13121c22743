package vision

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Estimator derives a pointing direction from a hand contour and its
// center. Two strategies run as an ordered chain: fingertip isolation via
// convexity defects, then the minimum-area rotated bounding box. Each
// strategy is a pure function reporting an optional result; any geometric
// failure simply passes control to the next link, never out of the chain.
type Estimator struct {
	minArea     float64
	tipAngleMax float64
	tipRadius   float64
}

// NewEstimator creates an estimator. minArea gates the fingertip strategy;
// tipAngleMax and tipRadius filter defect endpoints down to likely
// fingertip candidates.
func NewEstimator(minArea, tipAngleMax, tipRadius float64) *Estimator {
	return &Estimator{
		minArea:     minArea,
		tipAngleMax: tipAngleMax,
		tipRadius:   tipRadius,
	}
}

// Estimate returns the unit pointing direction for the contour, or reports
// false when no direction can be derived this frame.
func (e *Estimator) Estimate(contour []image.Point, center image.Point) (Vec2, bool) {
	if dir, ok := e.fingertipDirection(contour, center); ok {
		return dir, true
	}
	return boxDirection(contour)
}

// fingertipDirection locates the fingertip as the defect endpoint (or
// extreme contour point) farthest from the hand center and points from the
// center toward it. The defect filter keeps endpoints whose valley angle is
// tight and which sit near the topmost contour point, biasing toward an
// upward index finger.
func (e *Estimator) fingertipDirection(contour []image.Point, center image.Point) (Vec2, bool) {
	if len(contour) < 3 {
		return Vec2{}, false
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	if gocv.ContourArea(pv) <= e.minArea {
		return Vec2{}, false
	}

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(pv, &hull, false, false)
	if hull.Rows() < 3 {
		return Vec2{}, false
	}

	defects := gocv.NewMat()
	defer defects.Close()
	gocv.ConvexityDefects(pv, hull, &defects)
	if defects.Empty() {
		return Vec2{}, false
	}

	top, bottom, left, right := extremePoints(contour)

	var candidates []image.Point
	for i := 0; i < defects.Rows(); i++ {
		start := pv.At(int(defects.GetIntAt(i, 0)))
		end := pv.At(int(defects.GetIntAt(i, 1)))
		far := pv.At(int(defects.GetIntAt(i, 2)))

		if defectAngle(start, end, far) > e.tipAngleMax {
			continue
		}
		if pointDistance(start, top) < e.tipRadius {
			candidates = append(candidates, start)
		}
		if pointDistance(end, top) < e.tipRadius {
			candidates = append(candidates, end)
		}
	}

	if len(candidates) == 0 {
		candidates = []image.Point{top, bottom, left, right}
	}

	var fingertip image.Point
	maxDist := 0.0
	for _, p := range candidates {
		if d := pointDistance(p, center); d > maxDist {
			maxDist = d
			fingertip = p
		}
	}
	if maxDist == 0 {
		return Vec2{}, false
	}

	return Vec2{
		X: float64(fingertip.X-center.X) / maxDist,
		Y: float64(fingertip.Y-center.Y) / maxDist,
	}, true
}

// boxDirection derives the direction from the rotation of the minimum-area
// bounding rectangle. The +90° adjustment when width < height resolves the
// ambiguous rotated-rect angle convention so the long axis maps to the
// pointing direction; the result is meaningful modulo 180°.
func boxDirection(contour []image.Point) (Vec2, bool) {
	if len(contour) < 3 {
		return Vec2{}, false
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	rect := gocv.MinAreaRect(pv)
	angle := rect.Angle
	if rect.Width < rect.Height {
		angle += 90
	}

	rad := angle * math.Pi / 180
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}, true
}

// angleSmoother averages an orientation angle, in degrees, over a bounded
// history of recent frames.
type angleSmoother struct {
	window  int
	history []float64
}

func newAngleSmoother(window int) *angleSmoother {
	if window < 1 {
		window = 1
	}
	return &angleSmoother{window: window}
}

// add pushes an angle into the history and returns the running mean.
func (s *angleSmoother) add(deg float64) float64 {
	if len(s.history) >= s.window {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.window-1]
	}
	s.history = append(s.history, deg)

	var sum float64
	for _, a := range s.history {
		sum += a
	}
	return sum / float64(len(s.history))
}

func (s *angleSmoother) reset() {
	s.history = s.history[:0]
}
