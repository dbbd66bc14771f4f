package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pos-till/internal/display"
	"pos-till/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const keepAliveInterval = 25 * time.Second

// DisplayHandler streams the operator's customer display as server-sent events
type DisplayHandler struct {
	hub       *display.Hub
	logger    *zap.Logger
	keepAlive time.Duration
}

func NewDisplayHandler(hub *display.Hub, logger *zap.Logger) *DisplayHandler {
	return &DisplayHandler{hub: hub, logger: logger, keepAlive: keepAliveInterval}
}

func (h *DisplayHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/api/display/stream", h.Stream)
}

// Stream holds the connection open and writes one event per display message
// until the client goes away.
func (h *DisplayHandler) Stream(w http.ResponseWriter, r *http.Request) {
	op, ok := requireOperator(w, r, h.logger)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.hub.Subscribe(op.ID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.logger.Debug("Display subscriber connected", zap.String("user_id", op.ID))

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("Display subscriber disconnected", zap.String("user_id", op.ID))
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, open := <-sub.Messages():
			if !open {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("Failed to encode display message", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			flusher.Flush()
		}
	}
}
