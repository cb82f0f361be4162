// Package notify keeps the recent toast notifications raised by dashboard
// actions.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/honeynil/finboard/internal/models"
)

const DefaultCapacity = 50

// Publisher delivers a notification, either straight to a Feed or through a
// broker whose consumer feeds one.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Feed is a bounded, newest-first list of notifications.
type Feed struct {
	mu       sync.RWMutex
	items    []models.Notification
	capacity int
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity}
}

func (f *Feed) HandleNotification(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]models.Notification{n}, f.items...)
	if len(f.items) > f.capacity {
		f.items = f.items[:f.capacity]
	}
	slog.Info("notification recorded", "id", n.ID, "level", n.Level, "title", n.Title)
	return nil
}

// Publish makes the Feed usable as an in-process Publisher.
func (f *Feed) Publish(ctx context.Context, n models.Notification) error {
	return f.HandleNotification(ctx, n)
}

// Recent returns up to limit notifications, newest first. A non-positive
// limit returns all of them.
func (f *Feed) Recent(limit int) []models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}
	out := make([]models.Notification, limit)
	copy(out, f.items[:limit])
	return out
}
