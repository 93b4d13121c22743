package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Classifier maps a hand contour to a discrete gesture label by counting
// finger valleys among the convexity defects. It keeps no state between
// frames.
type Classifier struct {
	gapAngleMax float64
	solidityMin float64
}

// NewClassifier creates a classifier. gapAngleMax is the widest far-vertex
// angle that still counts as a finger gap; solidityMin separates thumbs-up
// from unrecognized three-gap shapes.
func NewClassifier(gapAngleMax, solidityMin float64) *Classifier {
	return &Classifier{
		gapAngleMax: gapAngleMax,
		solidityMin: solidityMin,
	}
}

// Classify labels the contour. Contours too malformed for hull or defect
// computation read as unknown; a hull with no defects reads as a fist.
func (c *Classifier) Classify(contour []image.Point) Gesture {
	if len(contour) < 3 {
		return GestureUnknown
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(pv, &hull, false, false)
	if hull.Rows() < 3 {
		return GestureUnknown
	}

	defects := gocv.NewMat()
	defer defects.Close()
	gocv.ConvexityDefects(pv, hull, &defects)
	if defects.Empty() {
		// No valleys at all: the hand is balled into a fist.
		return GestureClosedFist
	}

	gaps := 0
	for i := 0; i < defects.Rows(); i++ {
		start := pv.At(int(defects.GetIntAt(i, 0)))
		end := pv.At(int(defects.GetIntAt(i, 1)))
		far := pv.At(int(defects.GetIntAt(i, 2)))

		if defectAngle(start, end, far) <= c.gapAngleMax {
			gaps++
		}
	}

	switch {
	case gaps == 0:
		return GestureClosedFist
	case gaps == 1:
		return GesturePointing
	case gaps == 2:
		return GestureVictory
	case gaps >= 4:
		return GestureOpenPalm
	}

	// Exactly three gaps is ambiguous; a compact, hull-filling shape reads
	// as thumbs-up.
	solidity, ok := c.solidity(pv, hull)
	if ok && solidity > c.solidityMin {
		return GestureThumbsUp
	}
	return GestureUnknown
}

// solidity returns contour area over convex hull area.
func (c *Classifier) solidity(pv gocv.PointVector, hull gocv.Mat) (float64, bool) {
	hullPoints := make([]image.Point, 0, hull.Rows())
	for i := 0; i < hull.Rows(); i++ {
		idx := int(hull.GetIntAt(i, 0))
		if idx < 0 || idx >= pv.Size() {
			return 0, false
		}
		hullPoints = append(hullPoints, pv.At(idx))
	}

	hullPV := gocv.NewPointVectorFromPoints(hullPoints)
	defer hullPV.Close()

	hullArea := gocv.ContourArea(hullPV)
	if hullArea == 0 {
		return 0, false
	}
	return gocv.ContourArea(pv) / hullArea, true
}
