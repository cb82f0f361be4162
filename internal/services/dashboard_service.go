package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/honeynil/finboard/internal/infrastructure/cache"
	"github.com/honeynil/finboard/internal/models"
	"github.com/honeynil/finboard/internal/notify"
	"github.com/honeynil/finboard/internal/query"
	"github.com/honeynil/finboard/internal/repository"
	"github.com/honeynil/finboard/internal/viewstate"
	"golang.org/x/crypto/bcrypt"
)

type DashboardService interface {
	ListAccounts(ctx context.Context) ([]models.AccountSummary, error)
	AccountTransactions(ctx context.Context, accountID, search string, page int) (*TransactionPage, error)
	Transaction(ctx context.Context, id string) (*models.TransactionView, error)
	Overview(ctx context.Context) (*Overview, error)
	Spending(ctx context.Context, accountID string) ([]models.CategoryTotal, error)

	ListCards(ctx context.Context) ([]models.CardView, error)
	CardTransactions(ctx context.Context, cardID, search string, page int) (*TransactionPage, error)
	ToggleCardLock(ctx context.Context, cardID string) (*models.CardView, error)
	ToggleCardReveal(ctx context.Context, cardID string) (*models.CardView, error)

	SubmitTransfer(ctx context.Context, req TransferRequest) (*models.PaymentRecord, error)
	PayBill(ctx context.Context, req BillPaymentRequest) (*models.PaymentRecord, error)
	PaymentHistory(ctx context.Context) ([]models.PaymentRecord, error)
	ListBillers(ctx context.Context) ([]models.Biller, error)
	ListBeneficiaries(ctx context.Context) ([]models.Beneficiary, error)
	AddBeneficiary(ctx context.Context, req BeneficiaryRequest) (*models.Beneficiary, error)
	DeleteBeneficiary(ctx context.Context, id string) error

	Profile(ctx context.Context) models.Profile
	UpdateProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	ChangePassword(ctx context.Context, req PasswordChangeRequest) error
	NotificationPreferences(ctx context.Context) models.NotificationPreferences
	UpdateNotificationPreferences(ctx context.Context, p models.NotificationPreferences) models.NotificationPreferences

	Notifications(ctx context.Context, limit int) []models.Notification
}

type Repositories struct {
	Accounts      repository.AccountRepository
	Transactions  repository.TransactionRepository
	Cards         repository.CardRepository
	Beneficiaries repository.BeneficiaryRepository
	Billers       repository.BillerRepository
	Payments      repository.PaymentRepository
}

type Options struct {
	PageSize        int
	CacheTTL        time.Duration
	CurrencyCode    string
	RecentCount     int
	InitialPassword string
	BcryptCost      int
	Now             func() time.Time
}

type dashboardService struct {
	repos     Repositories
	cache     cache.Cache
	publisher notify.Publisher
	feed      *notify.Feed
	opts      Options

	cardsMu     sync.Mutex
	cards       viewstate.CardsView
	cardsLoaded bool

	settingsMu   sync.RWMutex
	profile      models.Profile
	prefs        models.NotificationPreferences
	passwordHash []byte
}

func NewDashboardService(
	repos Repositories,
	cacheClient cache.Cache,
	publisher notify.Publisher,
	feed *notify.Feed,
	opts Options,
) (*dashboardService, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = query.DefaultPageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CurrencyCode == "" {
		opts.CurrencyCode = "USD"
	}
	if opts.RecentCount <= 0 {
		opts.RecentCount = 5
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.InitialPassword == "" {
		opts.InitialPassword = "changeme123"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.InitialPassword), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash initial password: %w", err)
	}

	return &dashboardService{
		repos:     repos,
		cache:     cacheClient,
		publisher: publisher,
		feed:      feed,
		opts:      opts,
		profile: models.Profile{
			FullName:    "John Doe",
			Email:       "john.doe@example.com",
			PhoneNumber: "(555) 123-4567",
		},
		prefs:        models.DefaultNotificationPreferences(),
		passwordHash: hash,
	}, nil
}
