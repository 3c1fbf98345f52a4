package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cardgrader/internal/config"
	"cardgrader/internal/model"
	"cardgrader/internal/repository/scrapelogs"
	"cardgrader/internal/usecases"
	"cardgrader/testing/suite"
)

func Test_ScrapeAllSetsUseCase(t *testing.T) {
	knownSets := []config.KnownSet{
		{Name: "Obsidian Flames", Language: model.LanguageEnglish},
		{Name: "Pokemon Card 151", Language: model.LanguageJapanese},
		{Name: "Fake Set", Language: model.LanguageEnglish},
	}

	t.Run("should sweep all sets and record a partial run", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		scrapeLogsRepository := scrapelogs.NewRepository(st.GetDB())

		scraper := &stubCardScraper{perSet: map[string][]*model.Card{
			"Obsidian Flames":  {{CardName: "Charizard ex"}, {CardName: "Pidgeot ex"}},
			"Pokemon Card 151": {{CardName: "Mew ex"}},
		}}

		uc := usecases.NewScrapeAllSetsUseCase(st.Logger, scrapeLogsRepository, scraper, knownSets)

		summary, err := uc.Run(ctx, "tester")
		require.NoError(t, err)

		require.Equal(t, model.ScrapeStatusPartial, summary.Status)
		require.EqualValues(t, 3, summary.SetsAttempted)
		require.EqualValues(t, 3, summary.CardsUpdated)
		require.EqualValues(t, 1, summary.SetsFailed)

		logs, err := scrapeLogsRepository.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Equal(t, model.ScrapeStatusPartial, logs[0].Status)
		require.Equal(t, "tester", logs[0].User)
		require.NotNil(t, logs[0].CompletedAt)
		require.EqualValues(t, 3, logs[0].TotalCardsAttempted)
	})

	t.Run("should record a completed run without failures", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		scrapeLogsRepository := scrapelogs.NewRepository(st.GetDB())

		scraper := &stubCardScraper{perSet: map[string][]*model.Card{
			"Obsidian Flames": {{CardName: "Charizard ex"}},
		}}

		uc := usecases.NewScrapeAllSetsUseCase(st.Logger, scrapeLogsRepository, scraper, knownSets[:1])

		summary, err := uc.Run(ctx, "tester")
		require.NoError(t, err)
		require.Equal(t, model.ScrapeStatusCompleted, summary.Status)
		require.Zero(t, summary.SetsFailed)
	})
}
