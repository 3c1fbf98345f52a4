package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cardgrader/internal/interaction/ebay"
	"cardgrader/internal/interaction/tcgplayer"
	"cardgrader/internal/model"
	"cardgrader/internal/repository/cards"
	"cardgrader/internal/usecases"
	"cardgrader/testing/suite"
)

type stubTCGPlayer struct {
	listings []tcgplayer.Listing
	err      error
	calls    int
}

func (that *stubTCGPlayer) SearchPrices(_ context.Context, _, _, _ string) ([]tcgplayer.Listing, error) {
	that.calls++
	return that.listings, that.err
}

type stubEBay struct {
	price *float64
	err   error
}

func (that *stubEBay) GetPSA10Price(_ context.Context, _, _ string) (*float64, error) {
	return that.price, that.err
}

type stubNotifier struct {
	alerted []*model.Card
}

func (that *stubNotifier) SendProfitAlert(_ context.Context, card *model.Card) error {
	that.alerted = append(that.alerted, card)
	return nil
}

func charizardListing() tcgplayer.Listing {
	return tcgplayer.Listing{
		CardName: "Charizard ex - 223/197",
		SetName:  "Obsidian Flames",
		Language: model.LanguageEnglish,
		Rarity:   "Special Illustration Rare",
		Price:    suite.FloatPtr(165.40),
	}
}

func Test_ScrapeCardUseCase(t *testing.T) {
	t.Run("should persist records with derived fields", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		cardsRepository := cards.NewRepository(st.GetDB())

		tcg := &stubTCGPlayer{listings: []tcgplayer.Listing{charizardListing()}}
		ebayStub := &stubEBay{price: suite.FloatPtr(220.04)}

		uc := usecases.NewScrapeCardUseCase(st.Logger, cardsRepository, tcg, ebayStub, nil, 50, 24*time.Hour)

		saved, err := uc.ScrapeAndSave(ctx, "Charizard ex", "Charizard ex", model.LanguageEnglish)
		require.NoError(t, err)
		require.Len(t, saved, 1)

		card := saved[0]
		require.NotZero(t, card.ID)
		require.InDelta(t, 54.64, *card.PriceDelta, 1e-6)
		require.InDelta(t, 33.03, *card.ProfitPotential, 0.01)
		require.NotNil(t, card.TCGPlayerLastPulled)
		require.NotNil(t, card.EBayLastPulled)
	})

	t.Run("should persist a record even when ebay has no graded sales", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		cardsRepository := cards.NewRepository(st.GetDB())

		tcg := &stubTCGPlayer{listings: []tcgplayer.Listing{charizardListing()}}
		ebayStub := &stubEBay{err: ebay.ErrNoSoldListings}

		uc := usecases.NewScrapeCardUseCase(st.Logger, cardsRepository, tcg, ebayStub, nil, 50, 24*time.Hour)

		saved, err := uc.ScrapeAndSave(ctx, "Charizard ex", "Charizard ex", model.LanguageEnglish)
		require.NoError(t, err)
		require.Len(t, saved, 1)

		card := saved[0]
		require.InDelta(t, 165.40, *card.TCGPlayerPrice, 1e-9)
		require.Nil(t, card.PSA10Price)
		require.Nil(t, card.PriceDelta)
		require.Nil(t, card.ProfitPotential)
		require.Nil(t, card.EBayLastPulled)
	})

	t.Run("should return the same record id on a repeated scrape", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		cardsRepository := cards.NewRepository(st.GetDB())

		tcg := &stubTCGPlayer{listings: []tcgplayer.Listing{charizardListing()}}
		ebayStub := &stubEBay{price: suite.FloatPtr(220.04)}

		uc := usecases.NewScrapeCardUseCase(st.Logger, cardsRepository, tcg, ebayStub, nil, 50, 24*time.Hour)

		first, err := uc.ScrapeAndSave(ctx, "Charizard ex", "Charizard ex", model.LanguageEnglish)
		require.NoError(t, err)

		second, err := uc.ScrapeAndSave(ctx, "Charizard ex", "Charizard ex", model.LanguageEnglish)
		require.NoError(t, err)

		require.Equal(t, first[0].ID, second[0].ID)

		var count int64
		require.NoError(t, st.GetDB().WithContext(ctx).Model(&model.Card{}).Count(&count).Error)
		require.EqualValues(t, 1, count)

		// The second call was served from the listings cache.
		require.Equal(t, 1, tcg.calls)
	})

	t.Run("should surface a total tcgplayer failure", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		cardsRepository := cards.NewRepository(st.GetDB())

		tcg := &stubTCGPlayer{err: tcgplayer.ErrNoResults}
		uc := usecases.NewScrapeCardUseCase(st.Logger, cardsRepository, tcg, &stubEBay{}, nil, 50, 24*time.Hour)

		_, err := uc.ScrapeAndSave(ctx, "Nonexistent Card", "Nonexistent Card", model.LanguageEnglish)
		require.ErrorIs(t, err, tcgplayer.ErrNoResults)

		var count int64
		require.NoError(t, st.GetDB().WithContext(ctx).Model(&model.Card{}).Count(&count).Error)
		require.Zero(t, count)
	})

	t.Run("should alert only above the profit threshold", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		cardsRepository := cards.NewRepository(st.GetDB())

		cheap := charizardListing()
		cheap.CardName = "Pidgeot ex - 225/197"
		cheap.Price = suite.FloatPtr(200)

		tcg := &stubTCGPlayer{listings: []tcgplayer.Listing{charizardListing(), cheap}}
		ebayStub := &stubEBay{price: suite.FloatPtr(220.04)}
		notifier := &stubNotifier{}

		// Charizard sits at ~33% profit, Pidgeot at ~10%.
		uc := usecases.NewScrapeCardUseCase(st.Logger, cardsRepository, tcg, ebayStub, notifier, 30, 24*time.Hour)

		_, err := uc.ScrapeAndSave(ctx, "ex", "ex", model.LanguageEnglish)
		require.NoError(t, err)

		require.Len(t, notifier.alerted, 1)
		require.Equal(t, "Charizard ex - 223/197", notifier.alerted[0].CardName)
	})
}

type stubCardScraper struct {
	perSet map[string][]*model.Card
	err    error
}

func (that *stubCardScraper) ScrapeAndSave(_ context.Context, _, setName, _ string) ([]*model.Card, error) {
	if cardsForSet, ok := that.perSet[setName]; ok {
		return cardsForSet, nil
	}
	if that.err != nil {
		return nil, that.err
	}
	return nil, errors.New("no cards saved")
}
