package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"podium/internal/collab"
	"podium/internal/metrics"
	"podium/internal/models"
	"podium/internal/rating"
	"podium/internal/session"
	"podium/internal/utils"
)

// Handlers is the transport layer over the session aggregator. It tracks one
// live WebSocket connection per user for pushing feedback and rating events.
type Handlers struct {
	ctx context.Context
	rdb *redis.Client
	agg *session.Aggregator
	log *utils.Logger

	upgrader    websocket.Upgrader
	connections map[string]*websocket.Conn
	mu          sync.Mutex

	critique  *collab.CritiqueClient // nil when no critique service configured
	visual    *collab.VisualGenerator
	jwtSecret []byte
}

func NewHandlers(agg *session.Aggregator, rdb *redis.Client, critique *collab.CritiqueClient, visual *collab.VisualGenerator, secret []byte) *Handlers {
	return &Handlers{
		ctx: context.Background(),
		rdb: rdb,
		agg: agg,
		log: utils.NewLogger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: make(map[string]*websocket.Conn),
		critique:    critique,
		visual:      visual,
		jwtSecret:   secret,
	}
}

// Health check endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// --- Session lifecycle ---

func (h *Handlers) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if _, err := h.agg.StartSession(req.UserID, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			utils.WriteJSON(w, http.StatusConflict, models.Resp{OK: false, Info: "session already active"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to start session"})
		return
	}

	token, err := utils.GenerateSessionToken(sessionID, req.UserID, h.jwtSecret)
	if err != nil {
		h.log.Error("failed to sign session token", "user", req.UserID, "err", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to issue token"})
		return
	}

	info, err := h.agg.CurrentRating(req.UserID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to load rating"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: models.StartSessionResp{
		SessionID: sessionID,
		Token:     token,
		Rating:    info.Rating,
		Category:  rating.RatingCategory(info.Rating),
	}})
}

func (h *Handlers) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.EndSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	summary, err := h.agg.EndSession(req.UserID)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			utils.WriteJSON(w, http.StatusConflict, models.Resp{OK: false, Info: "no active session"})
			return
		}
		h.log.Error("failed to end session", "user", req.UserID, "err", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to end session"})
		return
	}

	metrics.SessionsCompleted.Inc()
	metrics.CombinedScore.Observe(float64(summary.CombinedScore))

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: summary})
}

// --- Feedback ingestion ---

func (h *Handlers) SpeechFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SpeechFeedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	h.recordSpeech(req.UserID, req.Feedback)

	// 202 even when no session is active: producers may race teardown
	utils.WriteJSON(w, http.StatusAccepted, models.Resp{OK: true, Info: "accepted"})
}

func (h *Handlers) VisualFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req models.VisualFeedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	h.recordVisual(req.UserID, req.Feedback)

	utils.WriteJSON(w, http.StatusAccepted, models.Resp{OK: true, Info: "accepted"})
}

// TranscriptHandler runs a transcript through the external critique service
// and records the resulting speech feedback.
func (h *Handlers) TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TranscriptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" || req.Transcript == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId and transcript required"})
		return
	}

	if h.critique == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, models.Resp{OK: false, Info: "critique service not configured"})
		return
	}

	fb, err := h.critique.Critique(r.Context(), req.Transcript)
	if err != nil {
		h.log.Error("critique call failed", "user", req.UserID, "err", err)
		utils.WriteJSON(w, http.StatusBadGateway, models.Resp{OK: false, Info: "critique service error"})
		return
	}

	h.recordSpeech(req.UserID, *fb)

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: fb})
}

// SimulateVisualHandler records one synthetic gesture-analysis frame.
func (h *Handlers) SimulateVisualHandler(w http.ResponseWriter, r *http.Request) {
	var req models.EndSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	if req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	frame := h.visual.Frame()
	h.recordVisual(req.UserID, frame)

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: frame})
}

func (h *Handlers) recordSpeech(userID string, fb models.SpeechFeedback) {
	h.agg.RecordSpeechFeedback(userID, fb)
	metrics.FeedbackReceived.WithLabelValues("speech").Inc()
	h.sendToUser(userID, map[string]interface{}{
		"type":     "speech_feedback",
		"feedback": fb,
	})
}

func (h *Handlers) recordVisual(userID string, fb models.VisualFeedback) {
	h.agg.RecordVisualFeedback(userID, fb)
	metrics.FeedbackReceived.WithLabelValues("visual").Inc()
	h.sendToUser(userID, map[string]interface{}{
		"type":     "visual_feedback",
		"feedback": fb,
	})
}

// --- Read endpoints ---

func (h *Handlers) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	history := h.agg.SessionHistory(userID)
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: history})
}

func (h *Handlers) RatingHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	info, err := h.agg.CurrentRating(userID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{OK: false, Info: "failed to load rating"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: models.RatingResp{
		UserID:            info.UserID,
		Rating:            info.Rating,
		Category:          rating.RatingCategory(info.Rating),
		SessionsCompleted: info.SessionsCompleted,
	}})
}

// --- Live WebSocket ---

// LiveWS accepts feedback frames pushed by the speech and visual producers
// and forwards rating updates back down the same connection.
func (h *Handlers) LiveWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	claims, err := utils.ValidateSessionToken(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil || claims.UserID != userID {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "user", userID, "err", err)
		return
	}

	h.mu.Lock()
	h.connections[userID] = conn
	h.mu.Unlock()
	h.log.Info("websocket connected", "user", userID)

	for {
		var frame models.FeedbackFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.mu.Lock()
			delete(h.connections, userID)
			h.mu.Unlock()
			conn.Close()
			h.log.Info("websocket disconnected", "user", userID)
			break
		}

		switch frame.Type {
		case "speech_feedback":
			h.recordSpeech(userID, frame.Speech)
		case "visual_feedback":
			h.recordVisual(userID, frame.Visual)
		default:
			h.log.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

// SubscribeToRatingUpdates relays rating events from Redis pub/sub to the
// affected user's live connection. Run in its own goroutine.
func (h *Handlers) SubscribeToRatingUpdates() {
	subscriber := h.rdb.Subscribe(h.ctx, rating.RatingUpdatesChannel)
	ch := subscriber.Channel()

	for msg := range ch {
		var update models.RatingUpdate
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			h.log.Error("failed to parse rating update", "err", err)
			continue
		}

		h.sendToUser(update.UserID, map[string]interface{}{
			"type":   "rating_update",
			"update": update,
		})
	}
}

func (h *Handlers) sendToUser(userID string, data interface{}) {
	h.mu.Lock()
	conn, ok := h.connections[userID]
	h.mu.Unlock()

	if ok {
		if err := conn.WriteJSON(data); err != nil {
			h.log.Error("failed to send to user", "user", userID, "err", err)
			h.mu.Lock()
			delete(h.connections, userID)
			h.mu.Unlock()
			conn.Close()
		}
	}
}
