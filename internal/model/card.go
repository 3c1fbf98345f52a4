package model

import (
	"fmt"
	"time"
)

const (
	LanguageEnglish  = "English"
	LanguageJapanese = "Japanese"
)

// ValidLanguage reports whether lang is one of the supported card languages.
func ValidLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageJapanese
}

// Card is one denormalized card price record.
// Identity is (CardName, SetName, Language); re-scraping upserts into the same row.
type Card struct {
	ID         int64  `gorm:"column:id;primaryKey" json:"id"`
	CardName   string `gorm:"column:card_name;index;uniqueIndex:card_identity" json:"card_name"`
	SetName    string `gorm:"column:set_name;index;uniqueIndex:card_identity" json:"set_name"`
	Language   string `gorm:"column:language;default:English;uniqueIndex:card_identity" json:"language"`
	Rarity     string `gorm:"column:rarity;default:Unknown" json:"rarity"`
	CardNumber string `gorm:"column:card_number" json:"card_number"`
	ProductID  string `gorm:"column:product_id;index" json:"product_id"`

	TCGPlayerPrice       *float64 `gorm:"column:tcgplayer_price" json:"tcgplayer_price"`
	TCGPlayerMarketPrice *float64 `gorm:"column:tcgplayer_market_price" json:"tcgplayer_market_price"`
	PSA10Price           *float64 `gorm:"column:psa_10_price" json:"psa_10_price"`
	PriceDelta           *float64 `gorm:"column:price_delta" json:"price_delta"`
	ProfitPotential      *float64 `gorm:"column:profit_potential" json:"profit_potential"`

	TCGPlayerLastPulled *time.Time `gorm:"column:tcgplayer_last_pulled" json:"tcgplayer_last_pulled"`
	EBayLastPulled      *time.Time `gorm:"column:ebay_last_pulled" json:"ebay_last_pulled"`

	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	LastUpdated time.Time `gorm:"column:last_updated;autoUpdateTime;index" json:"last_updated"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (*Card) TableName() string {
	return "cards"
}

func (that *Card) String() string {
	return fmt.Sprintf("%s (%s) - %s - %s", that.CardName, that.SetName, that.Rarity, that.Language)
}

// RecomputeDerived refreshes PriceDelta and ProfitPotential from the source
// prices. Null inputs propagate; a zero TCGPlayer price leaves the profit
// undefined instead of dividing by zero.
func (that *Card) RecomputeDerived() {
	that.PriceDelta = nil
	that.ProfitPotential = nil

	if that.PSA10Price == nil || that.TCGPlayerPrice == nil {
		return
	}

	delta := *that.PSA10Price - *that.TCGPlayerPrice
	that.PriceDelta = &delta

	if *that.TCGPlayerPrice > 0 {
		profit := delta / *that.TCGPlayerPrice * 100
		that.ProfitPotential = &profit
	}
}

// Validate checks the invariants kept on every write: prices are non-negative
// or null, and the language is one of the supported values.
func (that *Card) Validate() error {
	if !ValidLanguage(that.Language) {
		return fmt.Errorf("language needs to be %s or %s, got %q", LanguageEnglish, LanguageJapanese, that.Language)
	}

	for name, price := range map[string]*float64{
		"tcgplayer_price":        that.TCGPlayerPrice,
		"tcgplayer_market_price": that.TCGPlayerMarketPrice,
		"psa_10_price":           that.PSA10Price,
	} {
		if price != nil && *price < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	return nil
}
