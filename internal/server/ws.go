package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// poseMessage is one WebSocket broadcast frame.
type poseMessage struct {
	Pose      interface{} `json:"pose"`
	LastMatch interface{} `json:"last_match,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type matchMessage struct {
	PatternID   string  `json:"pattern_id"`
	PatternName string  `json:"pattern_name"`
	Score       float64 `json:"score"`
	Distance    float64 `json:"distance"`
	MatchedAt   int64   `json:"matched_at"`
}

// PoseHandler broadcasts the pipeline's live pose and pattern matches via
// WebSocket.
type PoseHandler struct {
	pipeline Pipeline
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewPoseHandler creates a new PoseHandler reading from the pipeline.
func NewPoseHandler(pipeline Pipeline) *PoseHandler {
	h := &PoseHandler{
		pipeline: pipeline,
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the latest pose to all connected clients.
func (h *PoseHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		pose, at := h.pipeline.LatestPose()
		if at.IsZero() {
			continue
		}

		message := poseMessage{
			Pose:      pose,
			Timestamp: at.UnixMilli(),
		}
		if match, matchedAt := h.pipeline.LastMatch(); match != nil {
			message.LastMatch = matchMessage{
				PatternID:   match.Pattern.ID,
				PatternName: match.Pattern.Name,
				Score:       match.Score,
				Distance:    match.Distance,
				MatchedAt:   matchedAt.UnixMilli(),
			}
		}

		msg, _ := json.Marshal(message)

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
