package ebay_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"

	"cardgrader/internal/config"
	"cardgrader/internal/interaction/ebay"
)

func Test_GetPSA10Price(t *testing.T) {
	r, err := recorder.New(filepath.Join("testdata", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)

	t.Cleanup(func() {
		// Make sure recorder is stopped once done with it.
		require.NoError(t, r.Stop())
	})

	client := r.GetDefaultClient()

	cnf := config.EBay{
		BaseURL:          "https://www.ebay.com/sch/i.html",
		ParsedTimeout:    30 * time.Second,
		SoldItemSelector: "li.s-item.s-item__pl-on-bottom",
		PriceSelector:    "span.s-item__price",
		SoldDateSelector: "span.s-item__caption",
	}

	interaction := ebay.NewInteraction(slog.Default(), client, cnf)

	price, err := interaction.GetPSA10Price(context.Background(), "Charizard ex", "Obsidian Flames")
	require.NoError(t, err)
	require.NotNil(t, price)
	require.InDelta(t, 220.04, *price, 1e-9)
}

func Test_GetPSA10Price_StaleSales(t *testing.T) {
	// Same recorded traffic as the happy path; the window excludes both dated
	// sales, so the card ends up without a usable PSA 10 price.
	r, err := recorder.New(filepath.Join("testdata", "Test_GetPSA10Price"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, r.Stop())
	})

	cnf := config.EBay{
		BaseURL:          "https://www.ebay.com/sch/i.html",
		ParsedTimeout:    30 * time.Second,
		ParsedMaxSoldAge: 30 * 24 * time.Hour,
		SoldItemSelector: "li.s-item.s-item__pl-on-bottom",
		PriceSelector:    "span.s-item__price",
		SoldDateSelector: "span.s-item__caption",
	}

	interaction := ebay.NewInteraction(slog.Default(), r.GetDefaultClient(), cnf)

	price, err := interaction.GetPSA10Price(context.Background(), "Charizard ex", "Obsidian Flames")
	require.ErrorIs(t, err, ebay.ErrNoSoldListings)
	require.Nil(t, price)
}

func Test_GetPSA10Price_NoListings(t *testing.T) {
	r, err := recorder.New(filepath.Join("testdata", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, r.Stop())
	})

	cnf := config.EBay{
		BaseURL:          "https://www.ebay.com/sch/i.html",
		ParsedTimeout:    30 * time.Second,
		SoldItemSelector: "li.s-item.s-item__pl-on-bottom",
		PriceSelector:    "span.s-item__price",
		SoldDateSelector: "span.s-item__caption",
	}

	interaction := ebay.NewInteraction(slog.Default(), r.GetDefaultClient(), cnf)

	price, err := interaction.GetPSA10Price(context.Background(), "Nonexistent Card", "Fake Set")
	require.ErrorIs(t, err, ebay.ErrNoSoldListings)
	require.Nil(t, price)
}
