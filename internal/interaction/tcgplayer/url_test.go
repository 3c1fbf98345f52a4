package tcgplayer

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"cardgrader/internal/config"
	"cardgrader/internal/model"
)

func newTestInteraction() *Interaction {
	return NewInteraction(slog.Default(), config.TCGPlayer{BaseURL: "https://www.tcgplayer.com/search/pokemon"})
}

func Test_searchURL(t *testing.T) {
	that := newTestInteraction()

	t.Run("english without set", func(t *testing.T) {
		got := that.searchURL("Charizard ex", "", model.LanguageEnglish, "Hyper Rare")
		require.Equal(t, "https://www.tcgplayer.com/search/pokemon/product?productLineName=pokemon&q=Charizard+ex&view=grid&page=1&ProductTypeName=Cards&Rarity=Hyper+Rare", got)
	})

	t.Run("english with set slug", func(t *testing.T) {
		got := that.searchURL("Charizard ex", "Obsidian Flames", model.LanguageEnglish, "Illustration Rare")
		require.Equal(t, "https://www.tcgplayer.com/search/pokemon/obsidian-flames?productLineName=pokemon&q=Charizard+ex&view=grid&page=1&ProductTypeName=Cards&Rarity=Illustration+Rare&setName=obsidian-flames", got)
	})

	t.Run("japanese product line", func(t *testing.T) {
		got := that.searchURL("Mew ex", "Pokemon Card 151", model.LanguageJapanese, "Art Rare")
		require.Equal(t, "https://www.tcgplayer.com/search/pokemon-japan/pokemon-card-151?productLineName=pokemon-japan&q=Mew+ex&view=grid&page=1&Rarity=Art+Rare&setName=pokemon-card-151", got)
	})
}

func Test_raritiesFor(t *testing.T) {
	rarities, err := raritiesFor(model.LanguageJapanese)
	require.NoError(t, err)
	require.Equal(t, JapaneseRarities, rarities)

	_, err = raritiesFor("Klingon")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}
