package usecases

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/atomic"

	"cardgrader/internal/config"
	"cardgrader/internal/model"
)

// ErrScrapeInProgress means a sweep is already running; the trigger and the
// scheduler share one sweep at a time.
var ErrScrapeInProgress = errors.New("scrape of all sets already in progress")

type ScrapeLogsRepository interface {
	Create(ctx context.Context, log *model.ScrapeLog) error
	Save(ctx context.Context, log *model.ScrapeLog) error
}

type CardScraper interface {
	ScrapeAndSave(ctx context.Context, query, setName, language string) ([]*model.Card, error)
}

// Summary is the outcome of one all-sets sweep.
type Summary struct {
	Status        string `json:"status"`
	SetsAttempted int64  `json:"sets_attempted"`
	CardsUpdated  int64  `json:"cards_updated"`
	SetsFailed    int64  `json:"sets_failed"`
}

type ScrapeAllSetsUseCase struct {
	logger         *slog.Logger
	scrapeLogsRepo ScrapeLogsRepository
	scraper        CardScraper
	knownSets      []config.KnownSet

	running atomic.Bool
}

func NewScrapeAllSetsUseCase(logger *slog.Logger, scrapeLogsRepo ScrapeLogsRepository, scraper CardScraper, knownSets []config.KnownSet) *ScrapeAllSetsUseCase {
	return &ScrapeAllSetsUseCase{
		logger:         logger.With("component", "scrape_all_sets"),
		scrapeLogsRepo: scrapeLogsRepo,
		scraper:        scraper,
		knownSets:      knownSets,
	}
}

// Run sweeps every known set sequentially, one scrape per set. The run is
// recorded as a ScrapeLog; per-set failures do not abort the sweep.
func (that *ScrapeAllSetsUseCase) Run(ctx context.Context, user string) (*Summary, error) {
	log := that.logger.With("method", "Run", "user", user)

	if !that.running.CompareAndSwap(false, true) {
		return nil, ErrScrapeInProgress
	}
	defer that.running.Store(false)

	scrapeLog := &model.ScrapeLog{User: user, Source: model.ScrapeSourceAll, Status: model.ScrapeStatusInProgress}
	if err := that.scrapeLogsRepo.Create(ctx, scrapeLog); err != nil {
		return nil, err
	}

	var attempted, updated, failed int64

	for _, set := range that.knownSets {
		attempted++

		cards, err := that.scraper.ScrapeAndSave(ctx, set.Name, set.Name, set.Language)
		if err != nil {
			log.Warn("failed to scrape set", "set", set.Name, "language", set.Language, "error", err)
			failed++
			continue
		}

		updated += int64(len(cards))
	}

	scrapeLog.Complete(attempted, updated, failed)
	if err := that.scrapeLogsRepo.Save(ctx, scrapeLog); err != nil {
		log.Error("failed to save scrape log", "error", err)
	}

	return &Summary{
		Status:        scrapeLog.Status,
		SetsAttempted: attempted,
		CardsUpdated:  updated,
		SetsFailed:    failed,
	}, nil
}
