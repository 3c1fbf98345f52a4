package tcgplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"cardgrader/internal/config"
	"cardgrader/internal/model"
)

var (
	// ErrNoResults means no rarity search produced a usable listing.
	ErrNoResults = errors.New("no tcgplayer results")

	// ErrUnsupportedLanguage means the requested language has no rarity list.
	ErrUnsupportedLanguage = errors.New("language needs to be English or Japanese")
)

type Interaction struct {
	logger *slog.Logger
	cnf    config.TCGPlayer
}

// NewInteraction creates a new instance of Interaction with TCGPlayer.
func NewInteraction(logger *slog.Logger, cnf config.TCGPlayer) *Interaction {
	return &Interaction{
		logger: logger.With("component", "tcgplayer"),
		cnf:    cnf,
	}
}

// SearchPrices renders the search-results page for every chase rarity of the
// given language and returns the extracted listings. Each call opens its own
// browser session and closes it on every exit path.
func (that *Interaction) SearchPrices(ctx context.Context, query, setName, language string) ([]Listing, error) {
	log := that.logger.With("method", "SearchPrices", "query", query, "language", language)

	rarities, err := raritiesFor(language)
	if err != nil {
		return nil, err
	}

	var listings []Listing

	for _, rarity := range rarities {
		target := that.searchURL(query, setName, language, rarity)
		log.Debug("rendering search page", "url", target)

		html, err := that.renderPage(ctx, target)
		if err != nil {
			// One rarity failing to load does not abort the others.
			log.Warn("failed to render search page", "rarity", rarity, "error", err)
			continue
		}

		found, err := ParseListings(html, that.cnf, query, language, rarities)
		if err != nil {
			log.Warn("failed to parse search page", "rarity", rarity, "error", err)
			continue
		}

		listings = append(listings, found...)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("%w for %q (%s)", ErrNoResults, query, language)
	}

	return listings, nil
}

func raritiesFor(language string) ([]string, error) {
	switch language {
	case model.LanguageEnglish:
		return EnglishRarities, nil
	case model.LanguageJapanese:
		return JapaneseRarities, nil
	default:
		return nil, fmt.Errorf("%w, got %q", ErrUnsupportedLanguage, language)
	}
}

// searchURL mirrors the marketplace's grid-search URL scheme. The Japanese
// product line lives under a "-japan" suffix with its own quirks.
func (that *Interaction) searchURL(query, setName, language, rarity string) string {
	base := that.cnf.BaseURL
	productLine := "pokemon"
	if language == model.LanguageJapanese {
		base += "-japan"
		productLine = "pokemon-japan"
	}

	q := strings.ReplaceAll(query, " ", "+")
	r := strings.ReplaceAll(rarity, " ", "+")

	if setName == "" {
		return fmt.Sprintf("%s/product?productLineName=%s&q=%s&view=grid&page=1&ProductTypeName=Cards&Rarity=%s", base, productLine, q, r)
	}

	slug := strings.ReplaceAll(strings.ToLower(setName), " ", "-")
	if language == model.LanguageJapanese {
		return fmt.Sprintf("%s/%s?productLineName=%s&q=%s&view=grid&page=1&Rarity=%s&setName=%s", base, slug, productLine, q, r, slug)
	}

	return fmt.Sprintf("%s/%s?productLineName=%s&q=%s&view=grid&page=1&ProductTypeName=Cards&Rarity=%s&setName=%s", base, slug, productLine, q, r, slug)
}

// renderPage opens a headless browser page, waits for the results container to
// appear and returns the rendered markup. The session is released on all exit
// paths, including timeout.
func (that *Interaction) renderPage(ctx context.Context, pageURL string) (string, error) {
	page, cleanup, err := that.openPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer cleanup()

	timedPage := page.Timeout(that.cnf.ParsedPageTimeout)
	if _, err := timedPage.Element(that.cnf.ResultSelector); err != nil {
		return "", fmt.Errorf("wait for search results: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("get page HTML: %w", err)
	}

	return html, nil
}

func (that *Interaction) openPage(ctx context.Context, pageURL string) (*rod.Page, func(), error) {
	l := launcher.New().Headless(that.cnf.Headless).Logger(io.Discard)
	if that.cnf.BrowserBin != "" {
		l = l.Bin(that.cnf.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	cleanup := func() {
		_ = page.Close()
		_ = browser.Close()
		l.Cleanup()
	}

	return page, cleanup, nil
}
