package cards

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardgrader/internal/model"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert saves a card keyed by (card_name, set_name, language). An existing row
// gets its prices, derived fields and pulled-at marks replaced; created_at is
// left untouched. The saved row, including its id, is loaded back into card.
func (that *Repository) Upsert(ctx context.Context, card *model.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("validate card: %w", err)
	}

	query := that.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "card_name"}, {Name: "set_name"}, {Name: "language"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rarity":                 gorm.Expr("EXCLUDED.rarity"),
				"card_number":            gorm.Expr("EXCLUDED.card_number"),
				"product_id":             gorm.Expr("EXCLUDED.product_id"),
				"tcgplayer_price":        gorm.Expr("EXCLUDED.tcgplayer_price"),
				"tcgplayer_market_price": gorm.Expr("EXCLUDED.tcgplayer_market_price"),
				"psa_10_price":           gorm.Expr("EXCLUDED.psa_10_price"),
				"price_delta":            gorm.Expr("EXCLUDED.price_delta"),
				"profit_potential":       gorm.Expr("EXCLUDED.profit_potential"),
				"tcgplayer_last_pulled":  gorm.Expr("EXCLUDED.tcgplayer_last_pulled"),
				"ebay_last_pulled":       gorm.Expr("EXCLUDED.ebay_last_pulled"),
				"last_updated":           gorm.Expr("EXCLUDED.last_updated"),
			}),
		},
		clause.Returning{},
	)

	if err := query.Create(card).Error; err != nil {
		return fmt.Errorf("upsert card in database: %w", err)
	}

	return nil
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	CardName          string
	SetName           string
	Language          string
	TCGPlayerPriceMin *float64
	TCGPlayerPriceMax *float64
	PSA10PriceMin     *float64
	PSA10PriceMax     *float64
	Page              int
	PageSize          int
}

func (that *Repository) List(ctx context.Context, filter Filter) ([]*model.Card, int64, error) {
	query := that.db.WithContext(ctx).Model(&model.Card{})

	if filter.CardName != "" {
		query = query.Where("card_name ILIKE ?", "%"+filter.CardName+"%")
	}
	if filter.SetName != "" {
		query = query.Where("set_name = ?", filter.SetName)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.TCGPlayerPriceMin != nil {
		query = query.Where("tcgplayer_price >= ?", *filter.TCGPlayerPriceMin)
	}
	if filter.TCGPlayerPriceMax != nil {
		query = query.Where("tcgplayer_price <= ?", *filter.TCGPlayerPriceMax)
	}
	if filter.PSA10PriceMin != nil {
		query = query.Where("psa_10_price >= ?", *filter.PSA10PriceMin)
	}
	if filter.PSA10PriceMax != nil {
		query = query.Where("psa_10_price <= ?", *filter.PSA10PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count cards in database: %w", err)
	}

	query = query.Order("card_name ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var result []*model.Card
	if err := query.Find(&result).Error; err != nil {
		return nil, 0, fmt.Errorf("fetch cards from database: %w", err)
	}

	return result, total, nil
}

func (that *Repository) GetByID(ctx context.Context, id int64) (*model.Card, error) {
	var card model.Card

	query := that.db.WithContext(ctx).Where("id = ?", id)
	if err := query.First(&card).Error; err != nil {
		return nil, fmt.Errorf("fetch card by id from database: %w", err)
	}

	return &card, nil
}

// FetchByName returns the first card whose name contains cardName, matching the
// way the fetch_card endpoint looks records up.
func (that *Repository) FetchByName(ctx context.Context, cardName string) (*model.Card, error) {
	var card model.Card

	query := that.db.WithContext(ctx).Where("card_name ILIKE ?", "%"+cardName+"%").Order("card_name ASC")
	if err := query.First(&card).Error; err != nil {
		return nil, fmt.Errorf("fetch card by name from database: %w", err)
	}

	return &card, nil
}
