package service

import (
	"context"
	"log/slog"
	"time"
)

type expiredCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

// Janitor removes refresh-token rows past their expiry on a fixed interval.
// Expired rows are otherwise inert: lookups always check the token signature
// first, so a stale row can never authenticate.
type Janitor struct {
	sessions expiredCleaner
	// connected gates the sweep so the janitor never forces the lazy
	// database client to dial on an idle process.
	connected func() bool
}

func NewJanitor(sessions expiredCleaner, connected func() bool) *Janitor {
	return &Janitor{sessions: sessions, connected: connected}
}

func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if j.connected != nil && !j.connected() {
				continue
			}

			removed, err := j.sessions.CleanExpired(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
