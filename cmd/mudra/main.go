package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	cameraID := flag.Int("camera", 0, "camera device ID")
	mirror := flag.Bool("mirror", true, "mirror the camera horizontally")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "", "path to the SQLite database (default ~/.mudra/mudra.db)")
	cascade := flag.String("cascade", "", "path to a Haar face cascade XML for face exclusion")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Mudra - Hand Pose Tracking")

	// Initialize the store
	path := *dbPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}

		dbDir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		path = filepath.Join(dbDir, "mudra.db")
	}

	st, err := store.New(path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Persisted settings fill in what the flags left at their defaults
	cascadePath := *cascade
	if cascadePath == "" {
		cascadePath, _ = st.Settings().GetDefault(store.SettingCascadeXML, "")
	}
	mirrorOn := *mirror
	if v, err := st.Settings().Get(store.SettingMirror); err == nil {
		mirrorOn = v == "true"
	}

	application := app.New(app.Config{
		Store:       st,
		CameraID:    *cameraID,
		Mirror:      mirrorOn,
		CascadePath: cascadePath,
		IdleFPS:     settingInt(st, store.SettingIdleFPS, app.IdleFPS),
		ActiveFPS:   settingInt(st, store.SettingActiveFPS, app.ActiveFPS),
	})

	if err := application.LoadPatterns(); err != nil {
		log.Printf("Failed to load patterns: %v", err)
	}
	if err := application.LoadProfile(); err != nil {
		log.Printf("Failed to load calibration profile: %v", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Pipeline:  application,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start detection pipeline: %v", err)
	}
	defer application.Stop()

	if *noTray {
		select {}
	}

	t := tray.New()
	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
	})
	t.OnRecalibrate(func() {
		application.Recalibrate()
	})
	t.OnSettings(func() {
		log.Printf("Settings available at http://localhost%s/", *addr)
	})
	t.OnQuit(func() {
		application.Stop()
	})

	// Blocks until quit
	t.Run()
}

// settingInt reads an integer setting, falling back to def when the value
// is missing or malformed.
func settingInt(st *store.Store, key string, def int) int {
	v, err := st.Settings().Get(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
