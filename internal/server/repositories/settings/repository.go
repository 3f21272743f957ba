package settings

import (
	"context"

	"github.com/outfitcal/daybook/internal/server/models"
)

type Repository interface {
	// Get returns the account's settings row, or ErrNotFound when the
	// account has never entered the app before.
	Get(ctx context.Context, userID string) (*models.Settings, error)

	// Upsert inserts or replaces the account's single settings row.
	Upsert(ctx context.Context, s *models.Settings) (*models.Settings, error)
}
