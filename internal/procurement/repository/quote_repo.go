package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nirmaan-app/procurement/internal/procurement/entity"
)

// quoteWindow bounds how far back a quote still counts as "recent".
const quoteWindow = 90 * 24 * time.Hour

// QuoteRepository reads historical approved quotes. Reference prices only.
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// LowestRecent returns the lowest recent quote for one item, or nil when no
// recent quote exists.
func (r *QuoteRepository) LowestRecent(ctx context.Context, itemID string) (*float64, error) {
	quotes, err := r.LowestRecentBulk(ctx, []string{itemID})
	if err != nil {
		return nil, err
	}
	if q, ok := quotes[itemID]; ok {
		return &q, nil
	}
	return nil, nil
}

// LowestRecentBulk returns the lowest recent quote per item id in a single
// query. Items with no recent quote are absent from the map.
func (r *QuoteRepository) LowestRecentBulk(ctx context.Context, itemIDs []string) (map[string]float64, error) {
	if len(itemIDs) == 0 {
		return map[string]float64{}, nil
	}

	type row struct {
		ItemID string
		Lowest float64
	}
	var rows []row

	cutoff := time.Now().Add(-quoteWindow)
	err := r.db.WithContext(ctx).
		Model(&entity.ApprovedQuote{}).
		Select("item_id, MIN(quote) AS lowest").
		Where("item_id IN ? AND created_at >= ?", itemIDs, cutoff).
		Group("item_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Lowest
	}
	return out, nil
}

// Record stores quotes for the items of an approved order so future reviews
// can show them as reference prices.
func (r *QuoteRepository) Record(ctx context.Context, quotes []entity.ApprovedQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	for i := range quotes {
		if quotes[i].ID == "" {
			quotes[i].ID = uuid.New().String()[:32]
		}
	}
	return r.db.WithContext(ctx).Create(&quotes).Error
}
