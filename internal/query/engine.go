// Package query derives paginated, date-descending views over an in-memory
// transaction collection.
package query

import (
	"sort"
	"strings"

	"github.com/honeynil/finboard/internal/models"
	"github.com/shopspring/decimal"
)

const DefaultPageSize = 5

type Params struct {
	OwnerKind models.OwnerKind
	OwnerKey  string
	Search    string
	PageSize  int
	Page      int
}

type Result struct {
	Page       []models.Transaction `json:"page"`
	PageNumber int                  `json:"page_number"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
	TotalCount int                  `json:"total_count"`
}

// Run filters all by owner and search term, sorts the matches by date
// descending (id ascending on equal dates) and returns the requested page.
// all is never modified.
func Run(all []models.Transaction, p Params) Result {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	res := Result{Page: []models.Transaction{}, PageNumber: p.Page, PageSize: p.PageSize}
	if p.OwnerKey == "" {
		return res
	}

	matched := Filter(all, p.OwnerKind, p.OwnerKey, p.Search)
	res.TotalCount = len(matched)
	res.TotalPages = (len(matched) + p.PageSize - 1) / p.PageSize
	if p.Page < 1 || p.Page > res.TotalPages {
		return res
	}

	start := (p.Page - 1) * p.PageSize
	end := min(start+p.PageSize, len(matched))
	res.Page = matched[start:end]
	return res
}

// Filter returns the filtered and sorted sequence, prior to pagination.
// The returned slice is freshly allocated.
func Filter(all []models.Transaction, kind models.OwnerKind, ownerKey, search string) []models.Transaction {
	needle := strings.ToLower(search)
	out := make([]models.Transaction, 0)
	for _, tx := range all {
		if tx.Owner(kind) != ownerKey {
			continue
		}
		if !strings.Contains(strings.ToLower(tx.Description), needle) {
			continue
		}
		out = append(out, tx)
	}
	sortByDateDesc(out)
	return out
}

// Recent returns the n most recent transactions across every owner.
func Recent(all []models.Transaction, n int) []models.Transaction {
	out := make([]models.Transaction, len(all))
	copy(out, all)
	sortByDateDesc(out)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

const uncategorized = "Other"

// SpendingByCategory sums debit magnitudes per category for the owner, or for
// every owner of that kind when ownerKey is empty. Totals are ordered largest
// first.
func SpendingByCategory(all []models.Transaction, kind models.OwnerKind, ownerKey string) []models.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range all {
		if tx.Type != models.TypeDebit {
			continue
		}
		owner := tx.Owner(kind)
		if owner == "" || (ownerKey != "" && owner != ownerKey) {
			continue
		}
		category := tx.Category
		if category == "" {
			category = uncategorized
		}
		totals[category] = totals[category].Add(tx.Amount.Abs())
	}

	out := make([]models.CategoryTotal, 0, len(totals))
	for category, spending := range totals {
		out = append(out, models.CategoryTotal{Category: category, Spending: spending})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spending.Cmp(out[j].Spending); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func sortByDateDesc(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
}
