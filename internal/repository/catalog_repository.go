package repository

import (
	"context"

	"github.com/honeynil/finboard/internal/models"
)

type CardRepository interface {
	List(ctx context.Context) ([]models.Card, error)
}

type BeneficiaryRepository interface {
	List(ctx context.Context) ([]models.Beneficiary, error)
	Create(ctx context.Context, b *models.Beneficiary) error
	Delete(ctx context.Context, id string) error
}

type BillerRepository interface {
	List(ctx context.Context) ([]models.Biller, error)
	GetByID(ctx context.Context, id string) (*models.Biller, error)
}

type PaymentRepository interface {
	List(ctx context.Context) ([]models.PaymentRecord, error)
	Create(ctx context.Context, p *models.PaymentRecord) error
}
