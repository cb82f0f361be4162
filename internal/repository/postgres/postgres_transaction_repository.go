package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/finboard/internal/infrastructure/observability"
	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const transactionColumns = `id, COALESCE(account_id, ''), COALESCE(card_id, ''), tx_date, description, amount, type, COALESCE(status, ''), COALESCE(category, ''), COALESCE(currency, '')`

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

// instrument starts a span for method and returns a finisher that records the
// call outcome in the span and the repository metrics.
func instrument(ctx context.Context, tracerName, method string) (context.Context, trace.Span, func(*error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method)
	start := time.Now()
	return ctx, span, func(errp *error) {
		status := "success"
		if err := *errp; err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues(method, status).Inc()
		observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		span.End()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		tx     models.Transaction
		amount string
		typ    string
		status string
	)
	if err := row.Scan(&tx.ID, &tx.AccountID, &tx.CardID, &tx.Date, &tx.Description, &amount, &typ, &status, &tx.Category, &tx.Currency); err != nil {
		return models.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q for transaction %s: %w", amount, tx.ID, err)
	}
	tx.Amount = d
	tx.Type = models.TransactionType(typ)
	if !tx.Type.Valid() {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, pkgerrors.ErrInvalidTransactionType)
	}
	tx.Status = models.StatusType(status)
	if !tx.Status.Valid() {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, pkgerrors.ErrInvalidTransactionStatus)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	var err error
	ctx, _, done := instrument(ctx, "transaction-repository", "ListTransactions")
	defer done(&err)

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("failed to list transactions", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		tx, err = scanTransaction(rows)
		if err != nil {
			slog.Error("failed to scan transaction", "method", "List", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		slog.Error("failed to iterate transactions", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	slog.Info("transactions listed", "method", "List", "count", len(txs))
	return txs, nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var err error
	ctx, span, done := instrument(ctx, "transaction-repository", "GetTransactionByID")
	defer done(&err)
	span.SetAttributes(attribute.String("transaction_id", id))

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		slog.Error("transaction not found", "method", "GetByID", "transaction_id", id, "error", err)
		err = pkgerrors.ErrTransactionNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get transaction by id", "method", "GetByID", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to get transaction by id: %w", err)
	}

	slog.Info("transaction retrieved", "method", "GetByID", "transaction_id", id, "type", tx.Type)
	return &tx, nil
}
