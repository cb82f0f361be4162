package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/honeynil/finboard/internal/models"
	"github.com/honeynil/finboard/internal/viewstate"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// loadCards returns the cards view, reading the repository on first use.
// Callers must hold cardsMu.
func (s *dashboardService) loadCards(ctx context.Context) (viewstate.CardsView, error) {
	if s.cardsLoaded {
		return s.cards, nil
	}
	cards, err := s.repos.Cards.List(ctx)
	if err != nil {
		slog.Error("failed to list cards", "error", err)
		return viewstate.CardsView{}, fmt.Errorf("failed to list cards: %w", err)
	}
	s.cards = viewstate.NewCardsView(cards)
	s.cardsLoaded = true
	return s.cards, nil
}

func (s *dashboardService) ListCards(ctx context.Context) ([]models.CardView, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "ListCards")
	defer span.End()

	s.cardsMu.Lock()
	defer s.cardsMu.Unlock()
	view, err := s.loadCards(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list cards failed")
		return nil, err
	}
	return view.Render(), nil
}

// updateCard applies reducer to the cards view and returns the rendered card.
func (s *dashboardService) updateCard(ctx context.Context, cardID string, reducer func(viewstate.CardsView) viewstate.CardsView) (*models.CardView, error) {
	s.cardsMu.Lock()
	defer s.cardsMu.Unlock()

	view, err := s.loadCards(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := view.Find(cardID); !ok {
		slog.Error("card not found", "card_id", cardID)
		return nil, pkgerrors.ErrCardNotFound
	}

	s.cards = reducer(view)
	card, _ := s.cards.Find(cardID)
	rendered := s.cards.RenderCard(card)
	return &rendered, nil
}

func (s *dashboardService) ToggleCardLock(ctx context.Context, cardID string) (*models.CardView, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "ToggleCardLock")
	defer span.End()
	span.SetAttributes(attribute.String("card_id", cardID))

	card, err := s.updateCard(ctx, cardID, func(v viewstate.CardsView) viewstate.CardsView {
		return v.ToggleLock(cardID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle lock failed")
		return nil, err
	}

	title := "Card Unlocked"
	if card.Locked {
		title = "Card Locked"
	}
	s.notify(ctx, models.LevelInfo, title, fmt.Sprintf("%s ending in %s is now %s.", card.Name, card.Last4, card.StatusText))
	slog.Info("card lock toggled", "card_id", cardID, "locked", card.Locked)
	return card, nil
}

func (s *dashboardService) ToggleCardReveal(ctx context.Context, cardID string) (*models.CardView, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "ToggleCardReveal")
	defer span.End()
	span.SetAttributes(attribute.String("card_id", cardID))

	card, err := s.updateCard(ctx, cardID, func(v viewstate.CardsView) viewstate.CardsView {
		return v.ToggleReveal(cardID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle reveal failed")
		return nil, err
	}
	return card, nil
}
