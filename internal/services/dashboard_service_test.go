package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/honeynil/finboard/internal/infrastructure/cache"
	cachemocks "github.com/honeynil/finboard/internal/infrastructure/cache/mocks"
	"github.com/honeynil/finboard/internal/models"
	"github.com/honeynil/finboard/internal/notify"
	notifymocks "github.com/honeynil/finboard/internal/notify/mocks"
	"github.com/honeynil/finboard/internal/query"
	"github.com/honeynil/finboard/internal/repository/memory"
	repositorymocks "github.com/honeynil/finboard/internal/repository/mocks"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 7, 23, 10, 0, 0, 0, time.UTC)

func sampleRepositories(t *testing.T) (Repositories, *memory.SampleData) {
	t.Helper()
	data, err := memory.LoadSampleData()
	require.NoError(t, err)
	return Repositories{
		Accounts:      memory.NewAccountRepository(data.Accounts),
		Transactions:  memory.NewTransactionRepository(data.Transactions),
		Cards:         memory.NewCardRepository(data.Cards),
		Beneficiaries: memory.NewBeneficiaryRepository(data.Beneficiaries),
		Billers:       memory.NewBillerRepository(data.Billers),
		Payments:      memory.NewPaymentRepository(data.Payments),
	}, data
}

func testOptions() Options {
	return Options{
		CacheTTL:        time.Minute,
		BcryptCost:      bcrypt.MinCost,
		InitialPassword: "changeme123",
		Now:             func() time.Time { return fixedNow },
	}
}

func newTestService(t *testing.T, repos Repositories, c cache.Cache, pub notify.Publisher, feed *notify.Feed) *dashboardService {
	t.Helper()
	svc, err := NewDashboardService(repos, c, pub, feed, testOptions())
	require.NoError(t, err)
	return svc
}

func ids(rows []models.TransactionView) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestDashboardService_AccountTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repos, _ := sampleRepositories(t)
	cacheClient := cachemocks.NewMockCache(ctrl)
	ctx := context.Background()
	svc := newTestService(t, repos, cacheClient, nil, nil)

	t.Run("cache miss computes and stores the page", func(t *testing.T) {
		key := "txq:account:acc_chk_001:5:1:"
		cacheClient.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrKeyNotFound)
		cacheClient.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

		page, err := svc.AccountTransactions(ctx, "acc_chk_001", "", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"txn_001", "txn_002", "txn_003", "txn_004", "txn_005"}, ids(page.Transactions))
		assert.Equal(t, 7, page.TotalCount)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, "-75.20 USD", page.Transactions[0].Display)
		assert.Equal(t, "+2500.00 USD", page.Transactions[1].Display)
	})

	t.Run("search is case-insensitive and part of the key", func(t *testing.T) {
		key := "txq:account:acc_chk_001:5:1:bill"
		cacheClient.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrKeyNotFound)
		cacheClient.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

		page, err := svc.AccountTransactions(ctx, "acc_chk_001", "BILL", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"txn_005", "txn_011"}, ids(page.Transactions))
		assert.Equal(t, "BILL", page.View.Search)
	})

	t.Run("cache failures fall back to the repository", func(t *testing.T) {
		key := "txq:account:acc_chk_001:5:2:"
		cacheClient.EXPECT().Get(gomock.Any(), key).Return("", errors.New("connection refused"))
		cacheClient.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(errors.New("connection refused"))

		page, err := svc.AccountTransactions(ctx, "acc_chk_001", "", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"txn_011", "txn_012"}, ids(page.Transactions))
	})

	t.Run("empty owner skips the cache", func(t *testing.T) {
		page, err := svc.AccountTransactions(ctx, "", "", 1)
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
		assert.Equal(t, 0, page.TotalPages)
	})

	t.Run("page beyond total is empty and not cached", func(t *testing.T) {
		key := "txq:account:acc_chk_001:5:9:"
		cacheClient.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrKeyNotFound)

		page, err := svc.AccountTransactions(ctx, "acc_chk_001", "", 9)
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
		assert.Equal(t, 7, page.TotalCount)
	})

	t.Run("unknown owner is not cached", func(t *testing.T) {
		key := "txq:account:acc_unknown:5:1:"
		cacheClient.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrKeyNotFound)

		page, err := svc.AccountTransactions(ctx, "acc_unknown", "", 1)
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
	})

	t.Run("page below one skips the cache", func(t *testing.T) {
		page, err := svc.AccountTransactions(ctx, "acc_chk_001", "", 0)
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
		assert.Equal(t, 7, page.TotalCount)
	})

	t.Run("long search terms skip the cache", func(t *testing.T) {
		search := strings.Repeat("x", maxCachedSearchLen+1)

		page, err := svc.AccountTransactions(ctx, "acc_chk_001", search, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
		assert.Equal(t, 0, page.TotalCount)
	})
}

func TestDashboardService_Transaction(t *testing.T) {
	repos, _ := sampleRepositories(t)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), nil, nil)
	ctx := context.Background()

	tx, err := svc.Transaction(ctx, "txn_002")
	require.NoError(t, err)
	assert.Equal(t, "Salary Deposit", tx.Description)
	assert.Equal(t, "+2500.00 USD", tx.Display)

	_, err = svc.Transaction(ctx, "txn_999")
	assert.ErrorIs(t, err, pkgerrors.ErrTransactionNotFound)
}

func TestDashboardService_TransactionPageFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, data := sampleRepositories(t)
	txRepo := repositorymocks.NewMockTransactionRepository(ctrl)
	cacheClient := cachemocks.NewMockCache(ctrl)
	svc := newTestService(t, Repositories{Transactions: txRepo}, cacheClient, nil, nil)

	params := query.Params{OwnerKind: models.OwnerCard, OwnerKey: "1", PageSize: 5, Page: 1}
	raw, err := json.Marshal(query.Run(data.Transactions, params))
	require.NoError(t, err)

	cacheClient.EXPECT().Get(gomock.Any(), "txq:card:1:5:1:").Return(string(raw), nil)

	page, err := svc.CardTransactions(context.Background(), "1", "", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t8"}, ids(page.Transactions))
	assert.Equal(t, 1, page.TotalPages)
}

func TestDashboardService_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txRepo := repositorymocks.NewMockTransactionRepository(ctrl)
	accountRepo := repositorymocks.NewMockAccountRepository(ctrl)
	cacheClient := cachemocks.NewMockCache(ctrl)
	svc := newTestService(t, Repositories{Transactions: txRepo, Accounts: accountRepo}, cacheClient, nil, nil)
	ctx := context.Background()

	dbErr := errors.New("db down")
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", cache.ErrKeyNotFound)
	txRepo.EXPECT().List(gomock.Any()).Return(nil, dbErr)

	_, err := svc.AccountTransactions(ctx, "acc_chk_001", "", 1)
	assert.ErrorIs(t, err, dbErr)

	accountRepo.EXPECT().List(gomock.Any()).Return(nil, dbErr)
	_, err = svc.Overview(ctx)
	assert.ErrorIs(t, err, dbErr)
}

func TestDashboardService_Overview(t *testing.T) {
	repos, _ := sampleRepositories(t)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), nil, nil)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, overview.Accounts, 3)
	assert.Equal(t, "•••• •••• •••• 9012", overview.Accounts[0].MaskedNumber)
	assert.Len(t, overview.RecentTransactions, 5)
	assert.Equal(t, "txn_001", overview.RecentTransactions[0].ID)
	require.NotEmpty(t, overview.Spending)
	assert.Equal(t, "Transfer", overview.Spending[0].Category)
	assert.True(t, decimal.RequireFromString("500").Equal(overview.Spending[0].Spending))

	spending, err := svc.Spending(context.Background(), "acc_cc_003")
	require.NoError(t, err)
	require.Len(t, spending, 2)
	assert.Equal(t, "Shopping", spending[0].Category)
}

func TestDashboardService_Cards(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repos, _ := sampleRepositories(t)
	publisher := notifymocks.NewMockPublisher(ctrl)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), publisher, nil)
	ctx := context.Background()

	t.Run("unlock a frozen card", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n models.Notification) error {
			assert.Equal(t, "Card Unlocked", n.Title)
			assert.Equal(t, models.LevelInfo, n.Level)
			assert.Equal(t, fixedNow, n.CreatedAt)
			assert.NotEmpty(t, n.ID)
			return nil
		})

		card, err := svc.ToggleCardLock(ctx, "2")
		require.NoError(t, err)
		assert.False(t, card.Locked)
		assert.Equal(t, models.CardStatusActive, card.StatusText)
	})

	t.Run("publish failure does not fail the action", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

		card, err := svc.ToggleCardLock(ctx, "1")
		require.NoError(t, err)
		assert.True(t, card.Locked)
		assert.Equal(t, models.CardStatusFrozen, card.StatusText)
	})

	t.Run("reveal shows the full number", func(t *testing.T) {
		card, err := svc.ToggleCardReveal(ctx, "1")
		require.NoError(t, err)
		assert.True(t, card.Revealed)
		assert.Equal(t, "4916 1234 5678 1234", card.DisplayNumber)

		cards, err := svc.ListCards(ctx)
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.True(t, cards[0].Locked)
		assert.Equal(t, "•••• •••• •••• 5678", cards[1].DisplayNumber)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := svc.ToggleCardLock(ctx, "99")
		assert.ErrorIs(t, err, pkgerrors.ErrCardNotFound)
		_, err = svc.ToggleCardReveal(ctx, "99")
		assert.ErrorIs(t, err, pkgerrors.ErrCardNotFound)
	})
}

func TestDashboardService_SubmitTransfer(t *testing.T) {
	repos, _ := sampleRepositories(t)
	feed := notify.NewFeed(10)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), feed, feed)
	ctx := context.Background()

	t.Run("valid transfer is recorded as pending", func(t *testing.T) {
		rec, err := svc.SubmitTransfer(ctx, TransferRequest{
			FromAccount:   "acc_chk_001",
			ToBeneficiary: "ben1",
			Amount:        decimal.RequireFromString("250"),
			TransferDate:  "2024-07-25",
		})
		require.NoError(t, err)
		assert.Equal(t, "Pending", rec.Status)
		assert.Equal(t, models.PaymentTransfer, rec.Kind)
		assert.Equal(t, "To John Smith (Savings)", rec.Description)

		history, err := svc.PaymentHistory(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 5)
		assert.Equal(t, rec.ID, history[0].ID)

		notes := svc.Notifications(ctx, 1)
		require.Len(t, notes, 1)
		assert.Equal(t, "Transfer Submitted!", notes[0].Title)
		assert.Equal(t, models.LevelSuccess, notes[0].Level)
	})

	t.Run("invalid form reports every field", func(t *testing.T) {
		_, err := svc.SubmitTransfer(ctx, TransferRequest{
			Amount:       decimal.Zero,
			TransferDate: "25/07/2024",
			Remarks:      string(make([]byte, 201)),
		})
		require.ErrorIs(t, err, pkgerrors.ErrInvalidInput)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Please select a source account.", verr.Fields["FromAccount"])
		assert.Equal(t, "Please select a beneficiary or enter account details.", verr.Fields["ToBeneficiary"])
		assert.Equal(t, "Transfer date must be formatted YYYY-MM-DD.", verr.Fields["TransferDate"])
		assert.Equal(t, "Remarks cannot exceed 200 characters.", verr.Fields["Remarks"])
		assert.Equal(t, "Amount must be positive.", verr.Fields["Amount"])
	})

	t.Run("amount below one cent", func(t *testing.T) {
		_, err := svc.SubmitTransfer(ctx, TransferRequest{
			FromAccount:   "acc_chk_001",
			ToBeneficiary: "ben1",
			Amount:        decimal.RequireFromString("0.001"),
			TransferDate:  "2024-07-25",
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Amount must be at least $0.01.", verr.Fields["Amount"])
	})

	t.Run("unknown account and beneficiary", func(t *testing.T) {
		_, err := svc.SubmitTransfer(ctx, TransferRequest{
			FromAccount:   "acc_missing",
			ToBeneficiary: "ben1",
			Amount:        decimal.RequireFromString("10"),
			TransferDate:  "2024-07-25",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)

		_, err = svc.SubmitTransfer(ctx, TransferRequest{
			FromAccount:   "acc_chk_001",
			ToBeneficiary: "ben_missing",
			Amount:        decimal.RequireFromString("10"),
			TransferDate:  "2024-07-25",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrBeneficiaryNotFound)
	})
}

func TestDashboardService_PayBill(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repos, _ := sampleRepositories(t)
	payments := repositorymocks.NewMockPaymentRepository(ctrl)
	repos.Payments = payments
	publisher := notifymocks.NewMockPublisher(ctrl)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), publisher, nil)
	ctx := context.Background()

	t.Run("defaults the payment date to today", func(t *testing.T) {
		payments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *models.PaymentRecord) error {
			assert.Equal(t, models.PaymentBill, p.Kind)
			assert.Equal(t, "Speedy Internet Inc.", p.Description)
			assert.Equal(t, time.Date(2024, 7, 23, 0, 0, 0, 0, time.UTC), p.Date)
			return nil
		})
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		rec, err := svc.PayBill(ctx, BillPaymentRequest{
			FromAccount: "acc_chk_001",
			BillerID:    "bill2",
			Amount:      decimal.RequireFromString("59.99"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Pending", rec.Status)
	})

	t.Run("unknown biller", func(t *testing.T) {
		_, err := svc.PayBill(ctx, BillPaymentRequest{
			FromAccount: "acc_chk_001",
			BillerID:    "bill9",
			Amount:      decimal.RequireFromString("10"),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrBillerNotFound)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		payments.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := svc.PayBill(ctx, BillPaymentRequest{
			FromAccount: "acc_chk_001",
			BillerID:    "bill1",
			Amount:      decimal.RequireFromString("10"),
			PaymentDate: "2024-08-01",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrInternal)
	})

	billers, err := svc.ListBillers(ctx)
	require.NoError(t, err)
	assert.Len(t, billers, 3)
}

func TestDashboardService_Beneficiaries(t *testing.T) {
	repos, _ := sampleRepositories(t)
	feed := notify.NewFeed(10)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), feed, feed)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, BeneficiaryRequest{Name: "  Jane Roe ", Details: "Bank Q - Acct 42"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", b.Name)

	list, err := svc.ListBeneficiaries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	_, err = svc.AddBeneficiary(ctx, BeneficiaryRequest{Name: " "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Beneficiary name is required.", verr.Fields["Name"])
	assert.Equal(t, "Account details are required.", verr.Fields["Details"])

	require.NoError(t, svc.DeleteBeneficiary(ctx, b.ID))
	assert.ErrorIs(t, svc.DeleteBeneficiary(ctx, b.ID), pkgerrors.ErrBeneficiaryNotFound)

	notes := svc.Notifications(ctx, 0)
	require.Len(t, notes, 2)
	assert.Equal(t, "Beneficiary Removed", notes[0].Title)
	assert.Equal(t, "Beneficiary Added", notes[1].Title)
}

func TestDashboardService_Settings(t *testing.T) {
	repos, _ := sampleRepositories(t)
	feed := notify.NewFeed(10)
	svc := newTestService(t, repos, cache.NewLocalCache(time.Minute, time.Minute), feed, feed)
	ctx := context.Background()

	t.Run("profile", func(t *testing.T) {
		assert.Equal(t, "John Doe", svc.Profile(ctx).FullName)

		_, err := svc.UpdateProfile(ctx, models.Profile{FullName: "Jane", Email: "not-an-email"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Invalid email address.", verr.Fields["Email"])

		p, err := svc.UpdateProfile(ctx, models.Profile{FullName: "Jane Doe", Email: "jane@example.com"})
		require.NoError(t, err)
		assert.Equal(t, p, svc.Profile(ctx))
	})

	t.Run("password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, PasswordChangeRequest{CurrentPassword: "changeme123", NewPassword: "newsecret1", ConfirmPassword: "newsecret2"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "New passwords don't match", verr.Fields["ConfirmPassword"])

		err = svc.ChangePassword(ctx, PasswordChangeRequest{CurrentPassword: "wrong", NewPassword: "newsecret1", ConfirmPassword: "newsecret1"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

		require.NoError(t, svc.ChangePassword(ctx, PasswordChangeRequest{CurrentPassword: "changeme123", NewPassword: "newsecret1", ConfirmPassword: "newsecret1"}))

		err = svc.ChangePassword(ctx, PasswordChangeRequest{CurrentPassword: "changeme123", NewPassword: "another12", ConfirmPassword: "another12"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)
	})

	t.Run("notification preferences", func(t *testing.T) {
		assert.Equal(t, models.DefaultNotificationPreferences(), svc.NotificationPreferences(ctx))

		prefs := models.NotificationPreferences{PromotionalEmails: true}
		assert.Equal(t, prefs, svc.UpdateNotificationPreferences(ctx, prefs))
		assert.Equal(t, prefs, svc.NotificationPreferences(ctx))
	})

	notes := svc.Notifications(ctx, 0)
	require.Len(t, notes, 3)
	assert.Equal(t, "Preferences Saved", notes[0].Title)
	assert.Equal(t, "Password Changed", notes[1].Title)
	assert.Equal(t, "Profile Updated", notes[2].Title)
}
