// Package viewstate holds dashboard UI state as plain values with pure
// transition functions. Callers keep the returned value; nothing here is
// shared or mutated in place.
package viewstate

import "github.com/honeynil/finboard/internal/models"

// TransactionView is the (owner, search, page) tuple behind a paginated
// transaction table.
type TransactionView struct {
	OwnerKind models.OwnerKind `json:"owner_kind"`
	OwnerKey  string           `json:"owner_key"`
	Search    string           `json:"search"`
	Page      int              `json:"page"`
}

func NewTransactionView(kind models.OwnerKind, ownerKey string) TransactionView {
	return TransactionView{OwnerKind: kind, OwnerKey: ownerKey, Page: 1}
}

// SelectOwner switches the owner, clearing the search and returning to page 1.
func (v TransactionView) SelectOwner(ownerKey string) TransactionView {
	v.OwnerKey = ownerKey
	v.Search = ""
	v.Page = 1
	return v
}

// WithSearch changes the search term and returns to page 1.
func (v TransactionView) WithSearch(term string) TransactionView {
	v.Search = term
	v.Page = 1
	return v
}

func (v TransactionView) GoToPage(page int) TransactionView {
	v.Page = page
	return v
}

func (v TransactionView) Next(totalPages int) TransactionView {
	v.Page = min(v.Page+1, max(totalPages, 1))
	return v
}

func (v TransactionView) Prev() TransactionView {
	v.Page = max(v.Page-1, 1)
	return v
}

// Clamp pulls the page back into [1, totalPages].
func (v TransactionView) Clamp(totalPages int) TransactionView {
	if v.Page > totalPages {
		v.Page = totalPages
	}
	if v.Page < 1 {
		v.Page = 1
	}
	return v
}
