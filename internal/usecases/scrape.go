package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cardgrader/internal/interaction/tcgplayer"
	"cardgrader/internal/model"
)

type CardsRepository interface {
	Upsert(ctx context.Context, card *model.Card) error
}

type TCGPlayerInteraction interface {
	SearchPrices(ctx context.Context, query, setName, language string) ([]tcgplayer.Listing, error)
}

type EBayInteraction interface {
	GetPSA10Price(ctx context.Context, cardName, setName string) (*float64, error)
}

type Notifier interface {
	SendProfitAlert(ctx context.Context, card *model.Card) error
}

type cacheEntry struct {
	listings  []tcgplayer.Listing
	fetchedAt time.Time
}

type ScrapeCardUseCase struct {
	logger          *slog.Logger
	repository      CardsRepository
	tcgInteraction  TCGPlayerInteraction
	ebayInteraction EBayInteraction
	notifier        Notifier // nil when alerts are not configured
	profitThreshold float64

	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cacheEntry
}

func NewScrapeCardUseCase(logger *slog.Logger, repository CardsRepository, tcgInteraction TCGPlayerInteraction, ebayInteraction EBayInteraction, notifier Notifier, profitThreshold float64, cacheTTL time.Duration) *ScrapeCardUseCase {
	return &ScrapeCardUseCase{
		logger:          logger.With("component", "scrape_card"),
		repository:      repository,
		tcgInteraction:  tcgInteraction,
		ebayInteraction: ebayInteraction,
		notifier:        notifier,
		profitThreshold: profitThreshold,
		cacheTTL:        cacheTTL,
		cache:           make(map[string]cacheEntry),
	}
}

// ScrapeAndSave runs the full pipeline for one query: fetch TCGPlayer listings,
// look each one up on eBay, compute the derived fields and upsert every record.
// An eBay miss leaves psa_10_price null and still persists the record; a total
// TCGPlayer miss is an error for the caller to surface.
func (that *ScrapeCardUseCase) ScrapeAndSave(ctx context.Context, query, setName, language string) ([]*model.Card, error) {
	log := that.logger.With("method", "ScrapeAndSave", "query", query, "language", language)

	listings, err := that.cachedListings(ctx, query, setName, language)
	if err != nil {
		return nil, fmt.Errorf("get tcgplayer listings: %w", err)
	}

	var saved []*model.Card

	for _, listing := range listings {
		card := that.buildCard(ctx, listing)

		if err := that.repository.Upsert(ctx, card); err != nil {
			log.Error("failed to save card", "card", card.String(), "error", err)
			continue
		}

		saved = append(saved, card)
		that.maybeNotify(ctx, card)
	}

	if len(saved) == 0 {
		return nil, fmt.Errorf("no cards saved for %q (%s)", query, language)
	}

	return saved, nil
}

// buildCard assembles one record from a listing plus its eBay lookup. The eBay
// side failing for this card does not abort the record.
func (that *ScrapeCardUseCase) buildCard(ctx context.Context, listing tcgplayer.Listing) *model.Card {
	log := that.logger.With("method", "buildCard", "card_name", listing.CardName)

	now := time.Now()
	card := &model.Card{
		CardName:            listing.CardName,
		SetName:             listing.SetName,
		Language:            listing.Language,
		Rarity:              listing.Rarity,
		TCGPlayerPrice:      listing.Price,
		TCGPlayerLastPulled: &now,
		IsActive:            true,
		LastUpdated:         now,
	}

	psaPrice, err := that.ebayInteraction.GetPSA10Price(ctx, listing.CardName, listing.SetName)
	if err != nil {
		log.Warn("no psa 10 price", "error", err)
	} else {
		card.PSA10Price = psaPrice
		card.EBayLastPulled = &now
	}

	card.RecomputeDerived()
	return card
}

func (that *ScrapeCardUseCase) maybeNotify(ctx context.Context, card *model.Card) {
	if that.notifier == nil || card.ProfitPotential == nil || *card.ProfitPotential < that.profitThreshold {
		return
	}

	if err := that.notifier.SendProfitAlert(ctx, card); err != nil {
		that.logger.Error("failed to send profit alert", "card", card.String(), "error", err)
	}
}

// cachedListings reuses TCGPlayer results fetched within the TTL, so repeated
// calls for the same query do not open a browser session each time.
func (that *ScrapeCardUseCase) cachedListings(ctx context.Context, query, setName, language string) ([]tcgplayer.Listing, error) {
	key := query + "|" + setName + "|" + language

	that.cacheMu.Lock()
	entry, ok := that.cache[key]
	that.cacheMu.Unlock()

	if ok && time.Since(entry.fetchedAt) < that.cacheTTL {
		return entry.listings, nil
	}

	listings, err := that.tcgInteraction.SearchPrices(ctx, query, setName, language)
	if err != nil {
		return nil, err
	}

	that.cacheMu.Lock()
	that.cache[key] = cacheEntry{listings: listings, fetchedAt: time.Now()}
	that.cacheMu.Unlock()

	return listings, nil
}
