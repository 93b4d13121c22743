package vision

import (
	"image"
	"math"
)

// Heading is a coarse compass label for a pointing direction.
type Heading string

const (
	HeadingUnknown Heading = "unknown"
	HeadingRight   Heading = "RIGHT"
	HeadingDown    Heading = "DOWN"
	HeadingLeft    Heading = "LEFT"
	HeadingUp      Heading = "UP"
)

// pointDistance returns the Euclidean distance between two pixel points.
func pointDistance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// defectAngle computes the angle at the far vertex of a convexity defect
// triangle via the law of cosines. A degenerate triangle (far coincides with
// start or end) reads as π, i.e. not a finger valley.
func defectAngle(start, end, far image.Point) float64 {
	a := pointDistance(start, end)
	b := pointDistance(start, far)
	c := pointDistance(end, far)
	if b == 0 || c == 0 {
		return math.Pi
	}
	cos := (b*b + c*c - a*a) / (2 * b * c)
	// Clamp against floating-point drift before acos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// extremePoints returns the topmost, bottommost, leftmost and rightmost
// points of a contour, in that order. The contour must be non-empty.
func extremePoints(contour []image.Point) (top, bottom, left, right image.Point) {
	top, bottom, left, right = contour[0], contour[0], contour[0], contour[0]
	for _, p := range contour[1:] {
		if p.Y < top.Y {
			top = p
		}
		if p.Y > bottom.Y {
			bottom = p
		}
		if p.X < left.X {
			left = p
		}
		if p.X > right.X {
			right = p
		}
	}
	return top, bottom, left, right
}

// normalizeAngle wraps an angle in degrees into [0, 360).
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CompassHeading buckets an angle in degrees (clockwise from the positive
// x-axis, image coordinates) into one of four headings. Right covers
// (315, 360) and [0, 45], down (45, 135], left (135, 225], up (225, 315].
func CompassHeading(deg float64) Heading {
	a := normalizeAngle(deg)
	switch {
	case a > 315 || a <= 45:
		return HeadingRight
	case a <= 135:
		return HeadingDown
	case a <= 225:
		return HeadingLeft
	default:
		return HeadingUp
	}
}
