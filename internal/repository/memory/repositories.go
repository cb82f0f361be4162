// Package memory implements the repositories over the in-process sample
// dataset. Transactions, accounts, cards and billers are read-only;
// beneficiaries and payment history accept writes for the process lifetime.
package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
)

type TransactionRepository struct {
	txs []models.Transaction
}

func NewTransactionRepository(txs []models.Transaction) *TransactionRepository {
	return &TransactionRepository{txs: slices.Clone(txs)}
}

func (r *TransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	return slices.Clone(r.txs), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	for _, t := range r.txs {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	slog.Error("transaction not found", "method", "GetByID", "transaction_id", id)
	return nil, pkgerrors.ErrTransactionNotFound
}

type AccountRepository struct {
	accounts []models.Account
}

func NewAccountRepository(accounts []models.Account) *AccountRepository {
	return &AccountRepository{accounts: slices.Clone(accounts)}
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	return slices.Clone(r.accounts), nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	slog.Error("account not found", "method", "GetByID", "account_id", id)
	return nil, pkgerrors.ErrAccountNotFound
}

type CardRepository struct {
	cards []models.Card
}

func NewCardRepository(cards []models.Card) *CardRepository {
	return &CardRepository{cards: slices.Clone(cards)}
}

func (r *CardRepository) List(ctx context.Context) ([]models.Card, error) {
	return slices.Clone(r.cards), nil
}

type BillerRepository struct {
	billers []models.Biller
}

func NewBillerRepository(billers []models.Biller) *BillerRepository {
	return &BillerRepository{billers: slices.Clone(billers)}
}

func (r *BillerRepository) List(ctx context.Context) ([]models.Biller, error) {
	return slices.Clone(r.billers), nil
}

func (r *BillerRepository) GetByID(ctx context.Context, id string) (*models.Biller, error) {
	for _, b := range r.billers {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, pkgerrors.ErrBillerNotFound
}

type BeneficiaryRepository struct {
	mu            sync.RWMutex
	beneficiaries []models.Beneficiary
}

func NewBeneficiaryRepository(beneficiaries []models.Beneficiary) *BeneficiaryRepository {
	return &BeneficiaryRepository{beneficiaries: slices.Clone(beneficiaries)}
}

func (r *BeneficiaryRepository) List(ctx context.Context) ([]models.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.beneficiaries), nil
}

func (r *BeneficiaryRepository) Create(ctx context.Context, b *models.Beneficiary) error {
	if b == nil {
		return pkgerrors.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beneficiaries = append(r.beneficiaries, *b)
	slog.Info("beneficiary created", "method", "Create", "beneficiary_id", b.ID)
	return nil
}

func (r *BeneficiaryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := slices.IndexFunc(r.beneficiaries, func(b models.Beneficiary) bool { return b.ID == id })
	if idx < 0 {
		slog.Error("beneficiary not found", "method", "Delete", "beneficiary_id", id)
		return pkgerrors.ErrBeneficiaryNotFound
	}
	r.beneficiaries = slices.Delete(r.beneficiaries, idx, idx+1)
	slog.Info("beneficiary deleted", "method", "Delete", "beneficiary_id", id)
	return nil
}

type PaymentRepository struct {
	mu       sync.RWMutex
	payments []models.PaymentRecord
}

func NewPaymentRepository(payments []models.PaymentRecord) *PaymentRepository {
	return &PaymentRepository{payments: slices.Clone(payments)}
}

// List returns the payment history, most recent first.
func (r *PaymentRepository) List(ctx context.Context) ([]models.PaymentRecord, error) {
	r.mu.RLock()
	out := slices.Clone(r.payments)
	r.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b models.PaymentRecord) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentRecord) error {
	if p == nil {
		return pkgerrors.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *p)
	slog.Info("payment recorded", "method", "Create", "payment_id", p.ID, "type", p.Kind)
	return nil
}
