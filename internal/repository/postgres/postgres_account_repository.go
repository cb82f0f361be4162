package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		a       models.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Number, &balance, &a.CurrencyCode); err != nil {
		return models.Account{}, err
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return models.Account{}, fmt.Errorf("invalid balance %q for account %s: %w", balance, a.ID, err)
	}
	a.CurrentBalance = d
	return a, nil
}

func (r *PostgresAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var err error
	ctx, _, done := instrument(ctx, "account-repository", "ListAccounts")
	defer done(&err)

	query := `SELECT id, account_name, account_type, account_number, current_balance, currency_code FROM accounts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("failed to list accounts", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var a models.Account
		a, err = scanAccount(rows)
		if err != nil {
			slog.Error("failed to scan account", "method", "List", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	slog.Info("accounts listed", "method", "List", "count", len(accounts))
	return accounts, nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var err error
	ctx, span, done := instrument(ctx, "account-repository", "GetAccountByID")
	defer done(&err)
	span.SetAttributes(attribute.String("account_id", id))

	query := `SELECT id, account_name, account_type, account_number, current_balance, currency_code FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		slog.Error("account not found", "method", "GetByID", "account_id", id)
		err = pkgerrors.ErrAccountNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get account by id", "method", "GetByID", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	slog.Info("account retrieved", "method", "GetByID", "account_id", id)
	return &a, nil
}
