package viewstate

import (
	"maps"
	"slices"

	"github.com/honeynil/finboard/internal/models"
)

// CardsView is the cards page state: the cards with their lock flags and the
// set of cards whose full number is on screen.
type CardsView struct {
	Cards    []models.Card
	Revealed map[string]bool
}

func NewCardsView(cards []models.Card) CardsView {
	return CardsView{Cards: slices.Clone(cards), Revealed: map[string]bool{}}
}

// ToggleLock flips the lock flag of the card and its status text. Unknown ids
// leave the view unchanged.
func (v CardsView) ToggleLock(cardID string) CardsView {
	cards := slices.Clone(v.Cards)
	for i := range cards {
		if cards[i].ID != cardID {
			continue
		}
		cards[i].Locked = !cards[i].Locked
		if cards[i].Locked {
			cards[i].StatusText = models.CardStatusFrozen
		} else {
			cards[i].StatusText = models.CardStatusActive
		}
	}
	return CardsView{Cards: cards, Revealed: v.Revealed}
}

func (v CardsView) ToggleReveal(cardID string) CardsView {
	if _, ok := v.Find(cardID); !ok {
		return v
	}
	revealed := maps.Clone(v.Revealed)
	if revealed == nil {
		revealed = map[string]bool{}
	}
	revealed[cardID] = !revealed[cardID]
	return CardsView{Cards: v.Cards, Revealed: revealed}
}

func (v CardsView) Find(cardID string) (models.Card, bool) {
	for _, c := range v.Cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return models.Card{}, false
}

// DisplayNumber renders the card number, masked unless revealed. Revealed
// numbers are simulated per network; the full PAN is never held.
func (v CardsView) DisplayNumber(card models.Card) string {
	if !v.Revealed[card.ID] {
		return "•••• •••• •••• " + card.Last4
	}
	switch card.Network {
	case models.NetworkVisa:
		return "4916 1234 5678 " + card.Last4
	case models.NetworkMastercard:
		return "5424 1800 1234 " + card.Last4
	case models.NetworkAmex:
		return "3782 822463 " + card.Last4[:min(1, len(card.Last4))]
	default:
		return "XXXX XXXX XXXX " + card.Last4
	}
}

func (v CardsView) Render() []models.CardView {
	out := make([]models.CardView, 0, len(v.Cards))
	for _, c := range v.Cards {
		out = append(out, v.RenderCard(c))
	}
	return out
}

func (v CardsView) RenderCard(c models.Card) models.CardView {
	return models.CardView{Card: c, DisplayNumber: v.DisplayNumber(c), Revealed: v.Revealed[c.ID]}
}
