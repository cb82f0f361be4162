package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used by sample data, the database and the API.
const DateLayout = "2006-01-02"

type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id,omitempty"`
	CardID      string          `json:"card_id,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Status      StatusType      `json:"status,omitempty"`
	Category    string          `json:"category,omitempty"`
	Currency    string          `json:"currency,omitempty"`
}

type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

type StatusType string

const (
	StatusPending   StatusType = "pending"
	StatusCompleted StatusType = "completed"
	StatusFailed    StatusType = "failed"
)

// Valid reports whether s is a known status. The empty status is allowed.
func (s StatusType) Valid() bool {
	switch s {
	case "", StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// DisplayAmount renders the magnitude with a +/- prefix, e.g. "-75.20 USD".
func (t Transaction) DisplayAmount(currency string) string {
	if t.Currency != "" {
		currency = t.Currency
	}
	prefix := "+"
	if t.Type == TypeDebit {
		prefix = "-"
	}
	out := prefix + t.Amount.Abs().StringFixed(2)
	if currency != "" {
		out += " " + currency
	}
	return out
}

// OwnerKind selects which owner field a transaction query matches against.
type OwnerKind string

const (
	OwnerAccount OwnerKind = "account"
	OwnerCard    OwnerKind = "card"
)

// Owner returns the owner key of t for the given kind.
func (t Transaction) Owner(kind OwnerKind) string {
	switch kind {
	case OwnerCard:
		return t.CardID
	default:
		return t.AccountID
	}
}

// TransactionView is a transaction as rendered in a list row.
type TransactionView struct {
	Transaction
	Display string `json:"display_amount"`
}

func NewTransactionView(t Transaction, currency string) TransactionView {
	return TransactionView{Transaction: t, Display: t.DisplayAmount(currency)}
}
