// Package api provides the HTTP API handlers for the hand tracking service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/track"
)

// PatternHandler handles HTTP requests for motion pattern resources.
type PatternHandler struct {
	store   *store.Store
	trainer *track.Trainer

	// OnChange is invoked after any mutation so the live matcher can
	// reload its pattern set. May be nil.
	OnChange func()
}

// NewPatternHandler creates a PatternHandler backed by the given store.
func NewPatternHandler(s *store.Store) *PatternHandler {
	return &PatternHandler{
		store:   s,
		trainer: track.NewTrainer(),
	}
}

// ServeHTTP routes pattern requests.
// Expected paths: /api/patterns, /api/patterns/{id}, /api/patterns/{id}/train
func (h *PatternHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/patterns")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/train"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.train(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createPatternRequest struct {
	Name      string  `json:"name"`
	Tolerance float64 `json:"tolerance"`
}

type updatePatternRequest struct {
	Name      string  `json:"name"`
	Tolerance float64 `json:"tolerance"`
}

type pathPointResponse struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
}

type patternResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Tolerance float64             `json:"tolerance"`
	Samples   int                 `json:"samples"`
	Path      []pathPointResponse `json:"path,omitempty"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

type listPatternsResponse struct {
	Patterns []patternResponse `json:"patterns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func patternToResponse(p *store.Pattern) patternResponse {
	return patternResponse{
		ID:        p.ID,
		Name:      p.Name,
		Tolerance: p.Tolerance,
		Samples:   p.Samples,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *PatternHandler) changed() {
	if h.OnChange != nil {
		h.OnChange()
	}
}

// list handles GET /api/patterns.
func (h *PatternHandler) list(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.store.Patterns().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list patterns")
		return
	}

	response := listPatternsResponse{
		Patterns: make([]patternResponse, 0, len(patterns)),
	}
	for _, p := range patterns {
		response.Patterns = append(response.Patterns, patternToResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/patterns/{id}, including the template path.
func (h *PatternHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	pattern, err := h.store.Patterns().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pattern not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pattern")
		return
	}

	path, err := h.store.Patterns().GetPath(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pattern path")
		return
	}

	response := patternToResponse(pattern)
	for _, p := range path {
		response.Path = append(response.Path, pathPointResponse{
			X: p.X, Y: p.Y, Timestamp: p.TimestampMS,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/patterns.
func (h *PatternHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = 0.15
	}

	pattern := &store.Pattern{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Tolerance: tolerance,
	}

	if err := h.store.Patterns().Create(pattern); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create pattern")
		return
	}

	h.changed()
	writeJSON(w, http.StatusCreated, patternToResponse(pattern))
}

// update handles PUT /api/patterns/{id}.
func (h *PatternHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	pattern, err := h.store.Patterns().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pattern not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pattern")
		return
	}

	var req updatePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		pattern.Name = req.Name
	}
	if req.Tolerance != 0 {
		pattern.Tolerance = req.Tolerance
	}

	if err := h.store.Patterns().Update(pattern); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update pattern")
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, patternToResponse(pattern))
}

// delete handles DELETE /api/patterns/{id}.
func (h *PatternHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Patterns().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pattern not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete pattern")
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

// train handles POST /api/patterns/{id}/train: it folds the stored samples
// into a template path and saves it on the pattern.
func (h *PatternHandler) train(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Patterns().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pattern not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pattern")
		return
	}

	samples, err := h.store.Samples().GetByPatternID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusBadRequest, "No samples recorded for pattern")
		return
	}

	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	path, err := h.trainer.Train(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Training failed: "+err.Error())
		return
	}

	stored := make([]store.PathPoint, len(path))
	for i, p := range path {
		stored[i] = store.PathPoint{X: p.X, Y: p.Y, TimestampMS: p.Timestamp}
	}
	if err := h.store.Patterns().SavePath(id, stored); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template path")
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"points": len(path),
	})
}
