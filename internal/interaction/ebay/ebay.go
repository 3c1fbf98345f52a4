package ebay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"cardgrader/internal/config"
)

// ErrNoSoldListings means the search produced no completed PSA-10 sales.
// Callers treat this as a missing field, not as a fatal failure.
var ErrNoSoldListings = errors.New("no sold psa 10 listings")

type Interaction struct {
	logger *slog.Logger
	rest   *resty.Client
	cnf    config.EBay
}

// NewInteraction creates a new instance of Interaction with eBay. The HTTP
// client is injected so tests can replay recorded traffic through it.
func NewInteraction(logger *slog.Logger, client *http.Client, cnf config.EBay) *Interaction {
	rest := resty.NewWithClient(client).
		SetTimeout(cnf.ParsedTimeout).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Interaction{
		logger: logger.With("component", "ebay"),
		rest:   rest,
		cnf:    cnf,
	}
}

// GetPSA10Price returns the average price over the completed PSA-10 sales found
// for the card, ignoring dated sales outside the configured window.
// ErrNoSoldListings when none remain.
func (that *Interaction) GetPSA10Price(ctx context.Context, cardName, setName string) (*float64, error) {
	log := that.logger.With("method", "GetPSA10Price", "card_name", cardName, "set_name", setName)

	resp, err := that.rest.R().SetContext(ctx).Get(that.searchURL(cardName, setName))
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode())
	}

	items, err := ParseSoldItems(string(resp.Body()), that.cnf)
	if err != nil {
		return nil, fmt.Errorf("parse sold listings: %w", err)
	}

	items = that.recentItems(items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w for %q %q", ErrNoSoldListings, cardName, setName)
	}

	var sum float64
	for _, item := range items {
		sum += item.Price
	}
	average := sum / float64(len(items))

	log.Info("averaged sold listings", "count", len(items), "average_price", average)
	return &average, nil
}

// recentItems drops dated sales older than the configured window. Sales whose
// date did not parse are kept; age is unknown, not excessive.
func (that *Interaction) recentItems(items []SoldItem) []SoldItem {
	if that.cnf.ParsedMaxSoldAge <= 0 {
		return items
	}

	cutoff := time.Now().Add(-that.cnf.ParsedMaxSoldAge)

	kept := make([]SoldItem, 0, len(items))
	for _, item := range items {
		if !item.SoldAt.IsZero() && item.SoldAt.Before(cutoff) {
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (that *Interaction) searchURL(cardName, setName string) string {
	params := url.Values{}
	params.Set("_nkw", fmt.Sprintf("%s %s psa 10", cardName, setName))
	params.Set("_sacat", "0")
	params.Set("_from", "R40")
	params.Set("rt", "nc")
	params.Set("LH_Sold", "1")
	params.Set("LH_Complete", "1")

	return that.cnf.BaseURL + "?" + params.Encode()
}
