package repository

import (
	"context"

	"github.com/honeynil/finboard/internal/models"
)

type TransactionRepository interface {
	List(ctx context.Context) ([]models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}
