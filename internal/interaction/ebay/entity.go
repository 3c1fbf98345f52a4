package ebay

import "time"

// SoldItem is one completed PSA-10 sale extracted from the results page.
type SoldItem struct {
	Price  float64   // sale price in USD
	SoldAt time.Time // zero when the listing carries no parsable sold date
}
