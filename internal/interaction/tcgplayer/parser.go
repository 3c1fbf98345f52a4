package tcgplayer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cardgrader/internal/config"
)

// ParseListings extracts card listings from a rendered search-results page.
// Missing elements become null fields rather than errors; a listing is kept
// only when its title matches the query, it carries a price, and its rarity is
// one of the chase rarities.
func ParseListings(html string, cnf config.TCGPlayer, query, language string, rarities []string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var listings []Listing

	doc.Find(cnf.ResultSelector).Each(func(_ int, card *goquery.Selection) {
		title := textOrEmpty(card, cnf.TitleSelector)
		setName := textOrEmpty(card, cnf.SetNameSelector)

		// First span of the rarity block; the rest is collector-number noise.
		rarity := strings.ReplaceAll(textOrEmpty(card, cnf.RaritySelector), ",", "")

		price := parsePrice(textOrEmpty(card, cnf.PriceSelector))

		if title == "" || price == nil {
			return
		}
		if !strings.Contains(strings.ToLower(title), strings.ToLower(query)) {
			return
		}
		if !slices.Contains(rarities, rarity) {
			return
		}

		listings = append(listings, Listing{
			CardName: title,
			SetName:  setName,
			Language: language,
			Rarity:   rarity,
			Price:    price,
		})
	})

	return listings, nil
}

// textOrEmpty returns the trimmed text of the first match under sel, or "".
func textOrEmpty(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

func parsePrice(text string) *float64 {
	if text == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(text, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}

	return &price
}
