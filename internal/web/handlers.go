package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"Hollow-Pines/server/internal/config"
	"Hollow-Pines/server/internal/engine"
	"Hollow-Pines/server/internal/storage"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type Handlers struct {
	config  *config.Config
	hub     *Hub
	engine  *engine.Engine
	history *storage.RedisStore
}

func NewHandlers(cfg *config.Config, hub *Hub, eng *engine.Engine, history *storage.RedisStore) *Handlers {
	return &Handlers{
		config:  cfg,
		hub:     hub,
		engine:  eng,
		history: history,
	}
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewRouter(cfg *config.Config, eng *engine.Engine, hub *Hub, history *storage.RedisStore) *chi.Mux {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("REQUEST: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	r.Use(corsMiddleware)

	handlers := NewHandlers(cfg, hub, eng, history)

	r.Get("/health", handlers.HealthCheck)
	r.Get("/ws", handlers.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/start", handlers.StartSession)
			r.Post("/input", handlers.SubmitInput)
			r.Post("/pause", handlers.PauseSession)
			r.Post("/resume", handlers.ResumeSession)
		})
		r.Get("/messages/recent", handlers.RecentMessages)
	})

	return r
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "hollow-pines",
		"clients": h.hub.ClientCount(),
	})
}

// SessionRequest represents a session control request
type SessionRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text,omitempty"`
}

func decodeSessionRequest(w http.ResponseWriter, r *http.Request) (*SessionRequest, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return nil, false
	}
	if req.UserID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "user_id is required"})
		return nil, false
	}
	return &req, true
}

// StartSession resets the user's session and begins paced delivery. The
// delivery run outlives the request, so it runs detached and the handler
// answers 202.
func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	go func() {
		if err := h.engine.Start(context.Background(), req.UserID); err != nil {
			log.Printf("[Web] Start failed for %s: %v", req.UserID, err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// SubmitInput forwards the user's message for dialogue generation and
// continues scripted delivery.
func (h *Handlers) SubmitInput(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}
	if req.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "text is required"})
		return
	}

	go func() {
		if err := h.engine.SubmitInput(context.Background(), req.UserID, req.Text); err != nil {
			log.Printf("[Web] Input failed for %s: %v", req.UserID, err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// PauseSession requests suspension at the next line boundary.
func (h *Handlers) PauseSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	h.engine.Pause(req.UserID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "paused"})
}

// ResumeSession clears the pause and restarts delivery from the stored
// resume point.
func (h *Handlers) ResumeSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	go func() {
		if err := h.engine.Resume(context.Background(), req.UserID); err != nil {
			log.Printf("[Web] Resume failed for %s: %v", req.UserID, err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// RecentMessages returns the user's recent outbound messages from the
// optional history store.
func (h *Handlers) RecentMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.history == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Message history not available"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "user_id is required"})
		return
	}

	messages, err := h.history.RecentMessages(r.Context(), userID, 50)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load messages"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})
}

// ServeWS upgrades the connection and attaches it to the hub as the user's
// outbound channel.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "user_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    h.hub,
	}

	h.hub.register <- client

	go client.readPump()
}
