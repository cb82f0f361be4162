package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/finboard/internal/infrastructure/cache"
	"github.com/honeynil/finboard/internal/infrastructure/observability"
	"github.com/honeynil/finboard/internal/models"
	"github.com/honeynil/finboard/internal/query"
	"github.com/honeynil/finboard/internal/viewstate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TransactionPage is one page of an owner's transaction table together with
// the view state that produced it.
type TransactionPage struct {
	View         viewstate.TransactionView `json:"view"`
	Transactions []models.TransactionView  `json:"transactions"`
	TotalPages   int                       `json:"total_pages"`
	TotalCount   int                       `json:"total_count"`
	PageSize     int                       `json:"page_size"`
}

type Overview struct {
	Accounts           []models.AccountSummary  `json:"accounts"`
	RecentTransactions []models.TransactionView `json:"recent_transactions"`
	Spending           []models.CategoryTotal   `json:"spending"`
}

func (s *dashboardService) ListAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "ListAccounts")
	defer span.End()

	accounts, err := s.repos.Accounts.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list accounts failed")
		slog.Error("failed to list accounts", "error", err)
		return nil, err
	}

	out := make([]models.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.NewAccountSummary(a))
	}
	return out, nil
}

func (s *dashboardService) AccountTransactions(ctx context.Context, accountID, search string, page int) (*TransactionPage, error) {
	view := viewstate.NewTransactionView(models.OwnerAccount, accountID).WithSearch(search).GoToPage(page)
	return s.transactionPage(ctx, view)
}

func (s *dashboardService) CardTransactions(ctx context.Context, cardID, search string, page int) (*TransactionPage, error) {
	view := viewstate.NewTransactionView(models.OwnerCard, cardID).WithSearch(search).GoToPage(page)
	return s.transactionPage(ctx, view)
}

// Transaction returns a single row for the transaction detail view.
func (s *dashboardService) Transaction(ctx context.Context, id string) (*models.TransactionView, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "Transaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction_id", id))

	tx, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get transaction failed")
		return nil, err
	}
	view := models.NewTransactionView(*tx, s.opts.CurrencyCode)
	return &view, nil
}

func (s *dashboardService) transactionPage(ctx context.Context, view viewstate.TransactionView) (*TransactionPage, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "TransactionPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("owner_kind", string(view.OwnerKind)),
		attribute.String("owner_key", view.OwnerKey),
		attribute.Int("page", view.Page),
	)

	res, err := s.runQuery(ctx, query.Params{
		OwnerKind: view.OwnerKind,
		OwnerKey:  view.OwnerKey,
		Search:    view.Search,
		PageSize:  s.opts.PageSize,
		Page:      view.Page,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction query failed")
		return nil, err
	}

	rows := make([]models.TransactionView, 0, len(res.Page))
	for _, t := range res.Page {
		rows = append(rows, models.NewTransactionView(t, s.opts.CurrencyCode))
	}
	return &TransactionPage{
		View:         view,
		Transactions: rows,
		TotalPages:   res.TotalPages,
		TotalCount:   res.TotalCount,
		PageSize:     res.PageSize,
	}, nil
}

// maxCachedSearchLen bounds the search terms that get their own cache entry.
const maxCachedSearchLen = 64

func queryCacheKey(p query.Params) string {
	return fmt.Sprintf("txq:%s:%s:%d:%d:%s", p.OwnerKind, p.OwnerKey, p.PageSize, p.Page, strings.ToLower(p.Search))
}

// runQuery serves a page from the cache when possible. Cache failures only
// cost a recomputation. Only pages that exist are stored, and long search
// terms bypass the cache, so client input cannot grow it without bound.
func (s *dashboardService) runQuery(ctx context.Context, p query.Params) (query.Result, error) {
	if p.OwnerKey == "" {
		observability.TransactionQueries.WithLabelValues(string(p.OwnerKind), "skip").Inc()
		return query.Run(nil, p), nil
	}

	cacheable := p.Page >= 1 && len(p.Search) <= maxCachedSearchLen
	key := queryCacheKey(p)
	if cacheable {
		if res, ok := s.cachedPage(ctx, key); ok {
			observability.TransactionQueries.WithLabelValues(string(p.OwnerKind), "hit").Inc()
			return res, nil
		}
	}

	all, err := s.repos.Transactions.List(ctx)
	if err != nil {
		slog.Error("failed to load transactions", "owner_kind", p.OwnerKind, "owner_key", p.OwnerKey, "error", err)
		return query.Result{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	res := query.Run(all, p)
	if !cacheable {
		observability.TransactionQueries.WithLabelValues(string(p.OwnerKind), "skip").Inc()
		return res, nil
	}
	observability.TransactionQueries.WithLabelValues(string(p.OwnerKind), "miss").Inc()

	if p.Page <= res.TotalPages {
		if raw, err := json.Marshal(res); err != nil {
			slog.Error("failed to marshal transaction page", "key", key, "error", err)
		} else if err := s.cache.Set(ctx, key, string(raw), s.opts.CacheTTL); err != nil {
			slog.Error("failed to cache transaction page", "key", key, "error", err)
		}
	}

	observability.WithContext(ctx).Info("transaction page computed",
		"owner_kind", p.OwnerKind,
		"owner_key", p.OwnerKey,
		"page", p.Page,
		"total_count", res.TotalCount)
	return res, nil
}

func (s *dashboardService) cachedPage(ctx context.Context, key string) (query.Result, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var res query.Result
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			slog.Debug("transaction page served from cache", "key", key)
			return res, true
		}
		slog.Error("failed to unmarshal cached page", "key", key, "error", err)
	} else if !stderrors.Is(err, cache.ErrKeyNotFound) {
		slog.Error("failed to read transaction page cache", "key", key, "error", err)
	}
	return query.Result{}, false
}

func (s *dashboardService) Overview(ctx context.Context) (*Overview, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "Overview")
	defer span.End()

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.repos.Transactions.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list transactions failed")
		slog.Error("failed to load transactions", "method", "Overview", "error", err)
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	recent := query.Recent(all, s.opts.RecentCount)
	rows := make([]models.TransactionView, 0, len(recent))
	for _, t := range recent {
		rows = append(rows, models.NewTransactionView(t, s.opts.CurrencyCode))
	}

	return &Overview{
		Accounts:           accounts,
		RecentTransactions: rows,
		Spending:           query.SpendingByCategory(all, models.OwnerAccount, ""),
	}, nil
}

func (s *dashboardService) Spending(ctx context.Context, accountID string) ([]models.CategoryTotal, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "Spending")
	defer span.End()

	all, err := s.repos.Transactions.List(ctx)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to load transactions", "method", "Spending", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return query.SpendingByCategory(all, models.OwnerAccount, accountID), nil
}
