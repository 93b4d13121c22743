package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay colors.
var (
	contourColor   = color.RGBA{G: 255, A: 255}
	centerColor    = color.RGBA{R: 255, A: 255}
	directionColor = color.RGBA{R: 255, B: 255, A: 255}
	textColor      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// DrawOverlay paints the pose onto the frame for the debug stream: contour
// outline, smoothed center, direction ray and gesture text.
func DrawOverlay(frame *gocv.Mat, pose Pose) {
	if frame == nil || frame.Empty() {
		return
	}

	if len(pose.Contour) > 0 {
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{pose.Contour})
		gocv.DrawContours(frame, pts, -1, contourColor, 2)
		pts.Close()
	}

	if pose.Center != nil {
		gocv.Circle(frame, *pose.Center, 5, centerColor, -1)

		if pose.Direction != nil {
			end := image.Pt(
				pose.Center.X+int(pose.Direction.X*100),
				pose.Center.Y+int(pose.Direction.Y*100),
			)
			gocv.Line(frame, *pose.Center, end, directionColor, 2)

			angleText := fmt.Sprintf("Direction: %.1f deg", pose.Direction.Angle())
			gocv.PutText(frame, angleText, image.Pt(10, 60), gocv.FontHersheySimplex, 0.7, textColor, 2)
		}
	}

	gocv.PutText(frame, fmt.Sprintf("Gesture: %s", pose.Gesture), image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, textColor, 2)
}

// DrawMaskCorner renders a quarter-size thumbnail of the binary mask into
// the bottom-right corner of the frame.
func DrawMaskCorner(frame *gocv.Mat, mask gocv.Mat) {
	if frame == nil || frame.Empty() || mask.Empty() {
		return
	}

	w := frame.Cols() / 4
	h := frame.Rows() / 4
	if w == 0 || h == 0 {
		return
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(mask, &small, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(small, &bgr, gocv.ColorGrayToBGR)

	corner := frame.Region(image.Rect(frame.Cols()-w, frame.Rows()-h, frame.Cols(), frame.Rows()))
	defer corner.Close()
	bgr.CopyTo(&corner)
}
