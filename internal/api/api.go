package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cardgrader/internal/interaction/tcgplayer"
	"cardgrader/internal/model"
	"cardgrader/internal/repository/cards"
	"cardgrader/internal/usecases"
)

type CardsRepository interface {
	List(ctx context.Context, filter cards.Filter) ([]*model.Card, int64, error)
	GetByID(ctx context.Context, id int64) (*model.Card, error)
	FetchByName(ctx context.Context, cardName string) (*model.Card, error)
}

type ScrapeLogsRepository interface {
	Recent(ctx context.Context, limit int) ([]*model.ScrapeLog, error)
}

type CardScraper interface {
	ScrapeAndSave(ctx context.Context, query, setName, language string) ([]*model.Card, error)
}

type AllSetsScraper interface {
	Run(ctx context.Context, user string) (*usecases.Summary, error)
}

type Handler struct {
	logger         *slog.Logger
	cardsRepo      CardsRepository
	scrapeLogsRepo ScrapeLogsRepository
	scraper        CardScraper
	allSetsScraper AllSetsScraper
}

func SetupRoutes(r *gin.Engine, logger *slog.Logger, cardsRepo CardsRepository, scrapeLogsRepo ScrapeLogsRepository, scraper CardScraper, allSetsScraper AllSetsScraper) *Handler {
	handler := &Handler{
		logger:         logger.With("component", "api"),
		cardsRepo:      cardsRepo,
		scrapeLogsRepo: scrapeLogsRepo,
		scraper:        scraper,
		allSetsScraper: allSetsScraper,
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/cards", handler.ListCards)
		api.GET("/cards/:id", handler.GetCard)
		api.GET("/cards/scrape_and_save", handler.ScrapeAndSave)
		api.GET("/cards/fetch_card", handler.FetchCard)
		api.GET("/cards/scrape_all_sets", handler.ScrapeAllSets)
		api.GET("/cards/export", handler.ExportCards)
		api.GET("/scrape-logs", handler.ListScrapeLogs)
	}

	return handler
}

// ListCards returns stored records, optionally narrowed by the same filters the
// original read API offered.
func (that *Handler) ListCards(c *gin.Context) {
	filter := cards.Filter{
		CardName: c.Query("card_name"),
		SetName:  c.Query("set_name"),
		Language: c.Query("language"),
	}

	filter.TCGPlayerPriceMin = parseFloatQuery(c, "tcgplayer_price_min")
	filter.TCGPlayerPriceMax = parseFloatQuery(c, "tcgplayer_price_max")
	filter.PSA10PriceMin = parseFloatQuery(c, "psa_10_price_min")
	filter.PSA10PriceMax = parseFloatQuery(c, "psa_10_price_max")

	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
		filter.PageSize = 20
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil && pageSize > 0 && pageSize <= 200 {
		filter.PageSize = pageSize
	}

	result, _, err := that.cardsRepo.List(c.Request.Context(), filter)
	if err != nil {
		that.logger.Error("failed to list cards", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cards"})
		return
	}

	if result == nil {
		result = []*model.Card{}
	}
	c.JSON(http.StatusOK, result)
}

func (that *Handler) GetCard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	card, err := that.cardsRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		that.logger.Error("failed to get card", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get card"})
		return
	}

	c.JSON(http.StatusOK, card)
}

// ScrapeAndSave triggers a live scrape for the query and returns the persisted
// records. A total TCGPlayer miss is 404; anything else unexpected is 500.
func (that *Handler) ScrapeAndSave(c *gin.Context) {
	searchQuery := c.Query("searchQuery")
	if searchQuery == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a card or set name in query params"})
		return
	}

	language := c.DefaultQuery("language", model.LanguageEnglish)
	if !model.ValidLanguage(language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language needs to be English or Japanese"})
		return
	}

	log := that.logger.With("method", "ScrapeAndSave", "query", searchQuery, "language", language)
	log.Info("starting scrape")

	saved, err := that.scraper.ScrapeAndSave(c.Request.Context(), searchQuery, searchQuery, language)
	if err != nil {
		if errors.Is(err, tcgplayer.ErrNoResults) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Could not get TCGPlayer data"})
			return
		}
		log.Error("scrape failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scrape failed"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (that *Handler) FetchCard(c *gin.Context) {
	cardName := c.Query("card_name")
	if cardName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a card name"})
		return
	}

	card, err := that.cardsRepo.FetchByName(c.Request.Context(), cardName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		that.logger.Error("failed to fetch card", "card_name", cardName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch card"})
		return
	}

	c.JSON(http.StatusOK, card)
}

func (that *Handler) ScrapeAllSets(c *gin.Context) {
	summary, err := that.allSetsScraper.Run(c.Request.Context(), c.ClientIP())
	if err != nil {
		if errors.Is(err, usecases.ErrScrapeInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		that.logger.Error("scrape all sets failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scrape all sets failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (that *Handler) ListScrapeLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := that.scrapeLogsRepo.Recent(c.Request.Context(), limit)
	if err != nil {
		that.logger.Error("failed to list scrape logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scrape logs"})
		return
	}

	if logs == nil {
		logs = []*model.ScrapeLog{}
	}
	c.JSON(http.StatusOK, logs)
}

func parseFloatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	return &value
}
