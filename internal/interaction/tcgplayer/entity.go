package tcgplayer

// Listing describes one search-result card as extracted from the page.
type Listing struct {
	CardName string   // ex: Charizard ex - 223/197
	SetName  string   // ex: Obsidian Flames
	Language string   // English or Japanese
	Rarity   string   // ex: Special Illustration Rare
	Price    *float64 // market price in USD, nil when the listing carries none
}

// Rarity chase lists per language. Only listings in these rarities are worth
// grading, so everything else is filtered out.
var (
	EnglishRarities = []string{
		"Special Illustration Rare",
		"Illustration Rare",
		"Hyper Rare",
	}

	JapaneseRarities = []string{
		"Art Rare",
		"Super Rare",
		"Special Art Rare",
		"Ultra Rare",
	}
)
