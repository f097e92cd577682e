// Copyright (c) 2026 Parcelia. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"time"
)

// RunSessionCleanup periodically removes expired refresh-token sessions.
// It blocks until ctx is cancelled; run it in its own goroutine.
func (service *Service) RunSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := service.sessionRepository.DeleteExpired(ctx); err != nil {
				service.logger.Warn("auth_session_cleanup_failed", slog.Any("error", err))
				continue
			}
			service.logger.Debug("auth_session_cleanup_ran")
		}
	}
}
