package handler

import (
	"net/http"
	"time"
)

type connectionChecker interface {
	Connected() bool
}

type HealthHandler struct {
	db      connectionChecker
	started time.Time
}

func NewHealthHandler(db connectionChecker) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Status reports liveness without touching the database: a lazy client must
// not be forced to dial just because something probed /health.
func (h *HealthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	database := "disconnected"
	if h.db != nil && h.db.Connected() {
		database = "connected"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"database":       database,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
