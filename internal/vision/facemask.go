package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// FacePadding is the number of pixels added around each detected face
// rectangle before it is blanked from the exclusion mask.
const FacePadding = 20

// FaceMasker builds exclusion masks that blank out detected face regions,
// which would otherwise be the largest skin-colored blob in the frame.
type FaceMasker struct {
	cascade gocv.CascadeClassifier
	gray    gocv.Mat
}

// NewFaceMasker loads a Haar frontal-face cascade from the given XML file.
func NewFaceMasker(cascadePath string) (*FaceMasker, error) {
	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		cascade.Close()
		return nil, fmt.Errorf("load cascade %s failed", cascadePath)
	}
	return &FaceMasker{
		cascade: cascade,
		gray:    gocv.NewMat(),
	}, nil
}

// Mask writes an exclusion mask for the frame into dst: 255 everywhere,
// 0 over each detected face rectangle plus padding. Returns the number of
// faces found. Detection trouble degrades to an all-eligible mask.
func (f *FaceMasker) Mask(frame gocv.Mat, dst *gocv.Mat) int {
	if dst.Empty() || dst.Rows() != frame.Rows() || dst.Cols() != frame.Cols() {
		dst.Close()
		*dst = gocv.NewMatWithSize(frame.Rows(), frame.Cols(), gocv.MatTypeCV8U)
	}
	dst.SetTo(gocv.NewScalar(255, 255, 255, 255))

	if frame.Empty() {
		return 0
	}

	gocv.CvtColor(frame, &f.gray, gocv.ColorBGRToGray)
	faces := f.cascade.DetectMultiScaleWithParams(
		f.gray, 1.3, 5, 0, image.Point{}, image.Point{},
	)

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	for _, face := range faces {
		padded := image.Rect(
			face.Min.X-FacePadding,
			face.Min.Y-FacePadding,
			face.Max.X+FacePadding,
			face.Max.Y+FacePadding,
		).Intersect(bounds)
		if padded.Empty() {
			continue
		}
		gocv.Rectangle(dst, padded, color.RGBA{}, -1)
	}

	return len(faces)
}

// Close releases the cascade and scratch buffers.
func (f *FaceMasker) Close() {
	f.cascade.Close()
	f.gray.Close()
}
