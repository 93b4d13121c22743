package vision

import (
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/synth"
)

func skinHandFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := synth.NewFrame(640, 480)
	synth.FillPolygon(&frame, synth.PointingHand(image.Pt(300, 300)), synth.SkinColor)
	return frame
}

func TestHandDetector_PointingHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := DefaultConfig()
	cfg.EnableBackground = false
	d := NewHandDetector(cfg)
	defer d.Close()

	frame := skinHandFrame(t)
	defer frame.Close()

	pose, err := d.Process(&frame, nil)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !pose.Found() {
		t.Fatal("hand not found")
	}

	if pose.Gesture != GesturePointing {
		t.Errorf("gesture = %s, want %s", pose.Gesture, GesturePointing)
	}

	// The smoothed center sits near the shape's centroid.
	if pose.Center.X < 330 || pose.Center.X > 370 {
		t.Errorf("center.X = %d, want ~350", pose.Center.X)
	}
	if pose.Center.Y < 280 || pose.Center.Y > 320 {
		t.Errorf("center.Y = %d, want ~300", pose.Center.Y)
	}

	if pose.Direction == nil {
		t.Fatal("no direction estimated")
	}
	if math.Abs(pose.Direction.Length()-1.0) > 1e-6 {
		t.Errorf("direction length = %f, want 1.0", pose.Direction.Length())
	}
	if pose.Direction.Y > -0.85 {
		t.Errorf("direction.Y = %f, want strongly upward", pose.Direction.Y)
	}

	// The refined mask is retained for the debug stream.
	mask := d.SnapshotMask()
	defer mask.Close()
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		t.Error("snapshot mask is empty after a detection")
	}
}

func TestHandDetector_EmptyInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := DefaultConfig()
	cfg.EnableBackground = false
	d := NewHandDetector(cfg)
	defer d.Close()

	pose, err := d.Process(nil, nil)
	if err != nil {
		t.Fatalf("Process(nil) error: %v", err)
	}
	if pose.Found() {
		t.Error("pose found in nil frame")
	}
	if pose.Gesture != GestureUnknown {
		t.Errorf("gesture = %s, want %s", pose.Gesture, GestureUnknown)
	}

	empty := gocv.NewMat()
	defer empty.Close()
	pose, err = d.Process(&empty, nil)
	if err != nil {
		t.Fatalf("Process(empty) error: %v", err)
	}
	if pose.Found() {
		t.Error("pose found in empty frame")
	}
}

func TestHandDetector_ExclusionMasksHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := DefaultConfig()
	cfg.EnableBackground = false
	d := NewHandDetector(cfg)
	defer d.Close()

	frame := skinHandFrame(t)
	defer frame.Close()

	// An all-zero exclusion mask marks every pixel ineligible.
	exclusion := synth.NewMask(640, 480)
	defer exclusion.Close()

	pose, err := d.Process(&frame, &exclusion)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if pose.Found() {
		t.Error("pose found despite a fully excluding mask")
	}
}

func TestHandDetector_BackgroundGateAndRecalibrate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := DefaultConfig()
	cfg.EnableBackground = true
	cfg.LearningFrames = 2
	d := NewHandDetector(cfg)
	defer d.Close()

	frame := skinHandFrame(t)
	defer frame.Close()

	// While the model learns, skin color alone finds the hand.
	pose, err := d.Process(&frame, nil)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !pose.Found() {
		t.Fatal("hand not found during learning phase")
	}

	// A hand that never moves is absorbed into the background, and the
	// motion intersection suppresses it.
	for i := 0; i < 4; i++ {
		pose, err = d.Process(&frame, nil)
		if err != nil {
			t.Fatalf("Process() error: %v", err)
		}
	}
	if pose.Found() {
		t.Error("static hand still reported after the model learned it")
	}

	// Recalibration restarts the learning window, so detection resumes.
	d.Recalibrate()
	pose, err = d.Process(&frame, nil)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !pose.Found() {
		t.Error("hand not found after recalibration")
	}
}

func TestHandDetector_SetSkinRange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := DefaultConfig()
	cfg.EnableBackground = false
	d := NewHandDetector(cfg)
	defer d.Close()

	frame := skinHandFrame(t)
	defer frame.Close()

	pose, err := d.Process(&frame, nil)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !pose.Found() {
		t.Fatal("hand not found under default range")
	}

	// A disjoint hue band drops the hand entirely.
	d.SetSkinRange(gocv.NewScalar(90, 30, 60, 0), gocv.NewScalar(120, 255, 255, 0))
	pose, err = d.Process(&frame, nil)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if pose.Found() {
		t.Error("hand found under a disjoint skin range")
	}
}
