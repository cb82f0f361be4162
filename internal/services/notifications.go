package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/honeynil/finboard/internal/models"
)

// notify raises a toast for a completed action. Delivery failures are logged
// and never fail the action itself.
func (s *dashboardService) notify(ctx context.Context, level models.NotificationLevel, title, description string) {
	if s.publisher == nil {
		return
	}
	n := models.Notification{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   s.opts.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		slog.Error("failed to publish notification", "id", n.ID, "title", title, "error", err)
	}
}

func (s *dashboardService) Notifications(ctx context.Context, limit int) []models.Notification {
	if s.feed == nil {
		return []models.Notification{}
	}
	return s.feed.Recent(limit)
}
