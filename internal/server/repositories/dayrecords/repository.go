package dayrecords

import (
	"context"

	"github.com/outfitcal/daybook/internal/server/models"
)

type Repository interface {
	// Get returns the record for (userID, date), or ErrNotFound when the
	// date has never been saved. date is a YYYY-MM-DD key.
	Get(ctx context.Context, userID, date string) (*models.DayRecord, error)

	// Upsert inserts or replaces the record keyed by (userID, date). A
	// second save for the same date overwrites, it never duplicates.
	Upsert(ctx context.Context, rec *models.DayRecord) (*models.DayRecord, error)
}
