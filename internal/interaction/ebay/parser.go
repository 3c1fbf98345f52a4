package ebay

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"cardgrader/internal/config"
)

var pricePattern = regexp.MustCompile(`\$([\d,]+\.?\d*)`)

// soldDatePattern strips the "Sold" prefix eBay puts on the caption.
var soldDatePattern = regexp.MustCompile(`(?i)^sold\s+`)

// ParseSoldItems extracts completed sales from a search-results page. Items
// without a parsable price are skipped; a missing or unparsable sold date
// leaves SoldAt zero.
func ParseSoldItems(html string, cnf config.EBay) ([]SoldItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var items []SoldItem

	doc.Find(cnf.SoldItemSelector).Each(func(_ int, listing *goquery.Selection) {
		priceText := strings.TrimSpace(listing.Find(cnf.PriceSelector).First().Text())
		match := pricePattern.FindStringSubmatch(priceText)
		if match == nil {
			return
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			return
		}

		item := SoldItem{Price: price}

		dateText := strings.TrimSpace(listing.Find(cnf.SoldDateSelector).First().Text())
		if dateText != "" {
			cleaned := soldDatePattern.ReplaceAllString(dateText, "")
			if soldAt, err := dateparse.ParseAny(cleaned); err == nil {
				item.SoldAt = soldAt
			}
		}

		items = append(items, item)
	})

	return items, nil
}
