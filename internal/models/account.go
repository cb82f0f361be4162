package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"account_name"`
	Type           string          `json:"account_type"`
	Number         string          `json:"-"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CurrencyCode   string          `json:"currency_code"`
}

// MaskedNumber hides all but the last four digits of the account number.
func (a Account) MaskedNumber() string {
	if len(a.Number) <= 4 {
		return "•••• " + a.Number
	}
	return "•••• •••• •••• " + a.Number[len(a.Number)-4:]
}

// AccountSummary is the account as shown on the summary widget.
type AccountSummary struct {
	Account
	MaskedNumber string `json:"account_number"`
}

func NewAccountSummary(a Account) AccountSummary {
	if a.CurrencyCode == "" {
		a.CurrencyCode = "USD"
	}
	return AccountSummary{Account: a, MaskedNumber: a.MaskedNumber()}
}

type CardNetwork string

const (
	NetworkVisa       CardNetwork = "Visa"
	NetworkMastercard CardNetwork = "Mastercard"
	NetworkAmex       CardNetwork = "Amex"
	NetworkDebit      CardNetwork = "Debit"
	NetworkCredit     CardNetwork = "Credit"
)

const (
	CardStatusActive = "Active"
	CardStatusFrozen = "Frozen by User"
)

type Card struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Last4           string      `json:"last4"`
	Expiry          string      `json:"expiry"`
	Network         CardNetwork `json:"type"`
	StatusText      string      `json:"status_text"`
	Locked          bool        `json:"is_locked"`
	Balance         string      `json:"balance,omitempty"`
	AvailableCredit string      `json:"available_credit,omitempty"`
	CardHolder      string      `json:"card_holder"`
	IssueDate       string      `json:"issue_date"`
}

// CardView is a card together with its currently displayed number.
type CardView struct {
	Card
	DisplayNumber string `json:"display_number"`
	Revealed      bool   `json:"revealed"`
}

type Beneficiary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details"`
}

type Biller struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type PaymentKind string

const (
	PaymentBill     PaymentKind = "Bill Payment"
	PaymentTransfer PaymentKind = "Transfer"
)

type PaymentRecord struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Kind        PaymentKind     `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
}

// CategoryTotal is one bar of the spending analysis chart.
type CategoryTotal struct {
	Category string          `json:"category"`
	Spending decimal.Decimal `json:"spending"`
}
