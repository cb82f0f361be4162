package query

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/honeynil/finboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(id, account, date, desc string, amount float64) models.Transaction {
	return models.Transaction{
		ID:          id,
		AccountID:   account,
		Date:        day(date),
		Description: desc,
		Amount:      decimal.NewFromFloat(amount),
		Type:        models.TypeDebit,
	}
}

func ids(txs []models.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func exampleSet() []models.Transaction {
	// deliberately unordered
	return []models.Transaction{
		tx("t3", "A", "2024-07-20", "Sub", 15),
		tx("t1", "A", "2024-07-22", "Grocery", 75.20),
		tx("t2", "A", "2024-07-21", "Salary", 2500),
	}
}

func TestRun_Examples(t *testing.T) {
	all := exampleSet()

	t.Run("FirstPage", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", PageSize: 2, Page: 1})
		assert.Equal(t, []string{"t1", "t2"}, ids(res.Page))
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 3, res.TotalCount)
	})

	t.Run("SecondPage", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", PageSize: 2, Page: 2})
		assert.Equal(t, []string{"t3"}, ids(res.Page))
	})

	t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", Search: "SAL", PageSize: 2, Page: 1})
		assert.Equal(t, []string{"t2"}, ids(res.Page))
		assert.Equal(t, 1, res.TotalPages)
		assert.Equal(t, 1, res.TotalCount)
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "B", PageSize: 2, Page: 1})
		assert.Empty(t, res.Page)
		assert.NotNil(t, res.Page)
		assert.Equal(t, 0, res.TotalPages)
		assert.Equal(t, 0, res.TotalCount)
	})

	t.Run("UnsetOwner", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, PageSize: 2, Page: 1})
		assert.Empty(t, res.Page)
		assert.Equal(t, 0, res.TotalPages)
		assert.Equal(t, 0, res.TotalCount)
	})

	t.Run("PageBeyondTotal", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", PageSize: 2, Page: 3})
		assert.Empty(t, res.Page)
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 3, res.TotalCount)
	})

	t.Run("PageBelowOne", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", PageSize: 2, Page: 0})
		assert.Empty(t, res.Page)
		assert.Equal(t, 3, res.TotalCount)
	})

	t.Run("DefaultPageSize", func(t *testing.T) {
		res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", Page: 1})
		assert.Equal(t, DefaultPageSize, res.PageSize)
		assert.Equal(t, 1, res.TotalPages)
		assert.Len(t, res.Page, 3)
	})
}

func TestRun_CardOwner(t *testing.T) {
	all := []models.Transaction{
		{ID: "c1", CardID: "1", AccountID: "acc", Date: day("2024-07-15"), Description: "Amazon"},
		{ID: "c2", CardID: "2", AccountID: "acc", Date: day("2024-07-16"), Description: "United"},
	}
	res := Run(all, Params{OwnerKind: models.OwnerCard, OwnerKey: "1", Page: 1})
	assert.Equal(t, []string{"c1"}, ids(res.Page))

	res = Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "acc", Page: 1})
	assert.Equal(t, []string{"c2", "c1"}, ids(res.Page))
}

func TestRun_EqualDatesOrderByID(t *testing.T) {
	all := []models.Transaction{
		tx("b", "A", "2024-07-01", "x", 1),
		tx("c", "A", "2024-07-01", "x", 1),
		tx("a", "A", "2024-07-01", "x", 1),
	}
	res := Run(all, Params{OwnerKind: models.OwnerAccount, OwnerKey: "A", Page: 1})
	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Page))
}

func randomSet(r *rand.Rand, n int) []models.Transaction {
	owners := []string{"A", "B", "C"}
	words := []string{"Grocery", "Salary", "ATM", "Coffee", "Rent", "Transfer"}
	base := day("2024-01-01")
	out := make([]models.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Transaction{
			ID:          fmt.Sprintf("t%03d", i),
			AccountID:   owners[r.Intn(len(owners))],
			Date:        base.AddDate(0, 0, r.Intn(30)),
			Description: words[r.Intn(len(words))] + " " + words[r.Intn(len(words))],
			Amount:      decimal.NewFromInt(int64(r.Intn(1000))),
			Type:        models.TypeDebit,
		})
	}
	return out
}

func TestRun_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	searches := []string{"", "gro", "SALARY", "atm rent", "zzz"}

	for round := 0; round < 20; round++ {
		all := randomSet(r, r.Intn(40))
		snapshot := make([]models.Transaction, len(all))
		copy(snapshot, all)

		for _, owner := range []string{"A", "B", "D"} {
			for _, search := range searches {
				for _, size := range []int{1, 3, 5} {
					p := Params{OwnerKind: models.OwnerAccount, OwnerKey: owner, Search: search, PageSize: size, Page: 1}
					first := Run(all, p)

					full := Filter(all, models.OwnerAccount, owner, search)
					require.Equal(t, len(full), first.TotalCount)
					assert.Equal(t, (len(full)+size-1)/size, first.TotalPages)

					for i := 1; i < len(full); i++ {
						assert.False(t, full[i-1].Date.Before(full[i].Date), "sequence must be date-descending")
					}

					var concatenated []models.Transaction
					for page := 1; page <= first.TotalPages; page++ {
						p.Page = page
						res := Run(all, p)
						assert.LessOrEqual(t, len(res.Page), size)
						for _, got := range res.Page {
							assert.Equal(t, owner, got.AccountID)
							assert.Contains(t, strings.ToLower(got.Description), strings.ToLower(search))
						}
						concatenated = append(concatenated, res.Page...)
					}
					assert.Equal(t, ids(full), ids(concatenated))

					p.Page = 1
					assert.Equal(t, first, Run(all, p))
				}
			}
		}
		assert.Equal(t, snapshot, all, "input must not be mutated")
	}
}

func TestRecent(t *testing.T) {
	all := exampleSet()
	assert.Equal(t, []string{"t1", "t2"}, ids(Recent(all, 2)))
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(Recent(all, 10)))
	assert.Equal(t, "t3", all[0].ID)
}

func TestSpendingByCategory(t *testing.T) {
	all := []models.Transaction{
		{ID: "1", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("75.20"), Category: "Groceries"},
		{ID: "2", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("24.80"), Category: "Groceries"},
		{ID: "3", AccountID: "A", Type: models.TypeCredit, Amount: decimal.RequireFromString("2500"), Category: "Income"},
		{ID: "4", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("15")},
		{ID: "5", AccountID: "B", Type: models.TypeDebit, Amount: decimal.RequireFromString("500"), Category: "Shopping"},
		{ID: "6", CardID: "C", Type: models.TypeDebit, Amount: decimal.RequireFromString("900"), Category: "Travel"},
	}

	got := SpendingByCategory(all, models.OwnerAccount, "A")
	require.Len(t, got, 2)
	assert.Equal(t, "Groceries", got[0].Category)
	assert.True(t, decimal.NewFromInt(100).Equal(got[0].Spending))
	assert.Equal(t, "Other", got[1].Category)

	got = SpendingByCategory(all, models.OwnerAccount, "")
	require.Len(t, got, 3)
	assert.Equal(t, "Shopping", got[0].Category)
}

func TestSpendingByCategory_EqualTotalsOrderedByName(t *testing.T) {
	all := []models.Transaction{
		{ID: "1", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("40.00"), Category: "Utilities"},
		{ID: "2", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("25.00"), Category: "Dining"},
		{ID: "3", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("15"), Category: "Dining"},
		{ID: "4", AccountID: "A", Type: models.TypeDebit, Amount: decimal.RequireFromString("10"), Category: "Books"},
	}

	got := SpendingByCategory(all, models.OwnerAccount, "A")
	require.Len(t, got, 3)
	assert.Equal(t, "Dining", got[0].Category)
	assert.Equal(t, "Utilities", got[1].Category)
	assert.True(t, got[0].Spending.Equal(got[1].Spending))
	assert.Equal(t, "Books", got[2].Category)
}
