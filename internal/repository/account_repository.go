package repository

import (
	"context"

	"github.com/honeynil/finboard/internal/models"
)

type AccountRepository interface {
	List(ctx context.Context) ([]models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
