package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"cardgrader/internal/api"
	"cardgrader/internal/interaction/ebay"
	"cardgrader/internal/interaction/tcgplayer"
	"cardgrader/internal/interaction/telegram"
	"cardgrader/internal/repository/cards"
	"cardgrader/internal/repository/scrapelogs"
	"cardgrader/internal/scheduler"
	"cardgrader/internal/storage"
	"cardgrader/internal/usecases"
	"cardgrader/locales"
)

var serveCmd = &cobra.Command{
	Use: "serve",
	Run: func(cmd *cobra.Command, _ []string) {
		log := logger.With("package", "cmd")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialize database connection
		postgresConnection := storage.MustNewPostgresConnection(logger, cnf.Database.ConnString(), cnf.Logger.ParsedGORMLevel)
		defer postgresConnection.MustClose()

		postgresConnection.MustMigration()

		// Initialize repositories
		cardsRepository := cards.NewRepository(postgresConnection.DB)
		scrapeLogsRepository := scrapelogs.NewRepository(postgresConnection.DB)

		// Initialize interactions
		tcgInteractor := tcgplayer.NewInteraction(logger, cnf.Scraper.TCGPlayer)

		ebayClient := &http.Client{Timeout: cnf.Scraper.EBay.ParsedTimeout}
		ebayInteractor := ebay.NewInteraction(logger, ebayClient, cnf.Scraper.EBay)

		var notifier usecases.Notifier
		if cnf.Telegram.Enabled() {
			bundle, err := locales.GetBundle("./")
			cobra.CheckErr(err)

			telegramClient := &http.Client{Timeout: time.Minute}
			notifier = telegram.NewInteraction(logger, cnf.Telegram.Token, cnf.Telegram.ChatID, telegramClient, bundle)
		}

		// Initialize usecases
		scrapeCardUC := usecases.NewScrapeCardUseCase(logger, cardsRepository, tcgInteractor, ebayInteractor, notifier, cnf.Telegram.ProfitThreshold, cnf.Scraper.ParsedCacheTTL)
		scrapeAllSetsUC := usecases.NewScrapeAllSetsUseCase(logger, scrapeLogsRepository, scrapeCardUC, cnf.KnownSets)

		// Initialize HTTP API
		router := gin.Default()
		api.SetupRoutes(router, logger, cardsRepository, scrapeLogsRepository, scrapeCardUC, scrapeAllSetsUC)

		// Optional periodic refresh of all known sets
		if cnf.Scheduler.RefreshSpec != "" {
			loc, err := time.LoadLocation(cnf.Scheduler.Timezone)
			cobra.CheckErr(err)

			sched := scheduler.New(ctx, loc)
			sched.Add(cnf.Scheduler.RefreshSpec, func(ctx context.Context) {
				log.Info("running scheduled refresh of all sets")
				if _, err := scrapeAllSetsUC.Run(ctx, "scheduler"); err != nil {
					log.Error("scheduled refresh failed", "error", err)
				}
			})
			sched.StartAsync()
			defer sched.Stop()
		}

		srv := &http.Server{Addr: cnf.Server.Addr(), Handler: router}

		go func() {
			log.Info("starting http server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server failed", "error", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown failed", "error", err)
		}
	},
}
