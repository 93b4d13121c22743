package e2e

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/synth"
	"github.com/ayusman/mudra/internal/vision"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// Application wired to mocks: the mock camera feeds blank frames and
	// the mock detector plays back poses.
	application := app.New(app.Config{Store: s, CameraID: -1})

	frame := synth.NewFrame(640, 480)
	defer frame.Close()
	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	mockDetector := vision.NewMockDetector()

	orig := application.Detector()
	application.SetCamera(camera)
	application.SetDetector(mockDetector)
	orig.Close()

	srv := server.New(server.Config{Store: s, Pipeline: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	var patternID string

	t.Run("CreatePattern", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/patterns",
			"application/json",
			strings.NewReader(`{"name": "swipe_right", "tolerance": 0.3}`),
		)
		if err != nil {
			t.Fatalf("create pattern error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			ID string `json:"id"`
		}
		json.NewDecoder(resp.Body).Decode(&created)
		patternID = created.ID
	})

	t.Run("RecordAndTrain", func(t *testing.T) {
		samplesBody := `{"samples": [
			{"path": [{"x": 100, "y": 240, "timestamp": 0}, {"x": 300, "y": 240, "timestamp": 500}, {"x": 500, "y": 240, "timestamp": 1000}], "timestamp": 1000},
			{"path": [{"x": 110, "y": 250, "timestamp": 0}, {"x": 310, "y": 245, "timestamp": 500}, {"x": 510, "y": 250, "timestamp": 1000}], "timestamp": 2000}
		]}`
		resp, err := client.Post(ts.URL+"/api/patterns/"+patternID+"/samples", "application/json", strings.NewReader(samplesBody))
		if err != nil {
			t.Fatalf("record samples error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("samples status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		resp, err = client.Post(ts.URL+"/api/patterns/"+patternID+"/train", "application/json", nil)
		if err != nil {
			t.Fatalf("train error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("train status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		// Training reloads the live matcher through the server callback
		if application.Matcher().Len() != 1 {
			t.Fatalf("matcher has %d patterns after training, want 1", application.Matcher().Len())
		}
	})

	t.Run("DetectSwipe", func(t *testing.T) {
		application.SetEnabled(true)
		if err := application.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		defer application.Stop()

		// Play back a rightward swipe through the mock detector, then let
		// the hand leave the frame so the recorder completes the path
		go func() {
			for x := 100; x <= 500; x += 10 {
				center := image.Point{X: x, Y: 240}
				mockDetector.SetPose(vision.Pose{
					Center:  &center,
					Gesture: vision.GesturePointing,
				})
				time.Sleep(50 * time.Millisecond)
			}
			mockDetector.SetPose(vision.Pose{Gesture: vision.GestureUnknown})
		}()

		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if match, _ := application.LastMatch(); match != nil {
				if match.Pattern.Name != "swipe_right" {
					t.Fatalf("matched pattern = %s, want swipe_right", match.Pattern.Name)
				}
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
		t.Fatal("swipe was never matched against the trained pattern")
	})

	t.Run("PoseVisibleOverAPI", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/detection")
		if err != nil {
			t.Fatalf("GET /api/detection error = %v", err)
		}
		defer resp.Body.Close()

		var status struct {
			Enabled bool `json:"enabled"`
		}
		json.NewDecoder(resp.Body).Decode(&status)
		if !status.Enabled {
			t.Error("detection should be enabled")
		}
	})

	t.Run("DeletePattern", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/patterns/"+patternID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete pattern error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}

		// The live matcher follows the deletion
		if application.Matcher().Len() != 0 {
			t.Errorf("matcher has %d patterns after delete, want 0", application.Matcher().Len())
		}
	})
}

func TestE2E_ProfileCalibration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{Store: s, CameraID: -1})
	defer application.Detector().Close()

	srv := server.New(server.Config{Store: s, Pipeline: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// Create and activate a calibration profile over the API; activation
	// pushes the skin range into the live detector
	resp, err := client.Post(
		ts.URL+"/api/profiles",
		"application/json",
		strings.NewReader(`{"name": "studio", "lower": {"h": 0, "s": 48, "v": 80}, "upper": {"h": 20, "s": 255, "v": 255}}`),
	)
	if err != nil {
		t.Fatalf("create profile error = %v", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	resp, err = client.Post(ts.URL+"/api/profiles/"+created.ID+"/activate", "application/json", nil)
	if err != nil {
		t.Fatalf("activate profile error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// A fresh application loads the stored active profile at startup
	fresh := app.New(app.Config{Store: s, CameraID: -1})
	defer fresh.Detector().Close()

	if err := fresh.LoadProfile(); err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
}
