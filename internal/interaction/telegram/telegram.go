package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telegramBot "github.com/go-telegram/bot"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"cardgrader/internal/model"
)

var ErrWrongNumberOfArguments = fmt.Errorf("wrong number of arguments")

// Interaction sends profit alerts to a single configured chat. It never polls
// for updates.
type Interaction struct {
	logger *slog.Logger
	TgBot  *telegramBot.Bot
	bundle *i18n.Bundle
	chatID int64
}

// NewInteraction creates a new instance of Interaction with Telegram.
func NewInteraction(logger *slog.Logger, token string, chatID int64, client telegramBot.HttpClient, bundle *i18n.Bundle) *Interaction {
	cnt := &Interaction{
		logger: logger.With("component", "telegram"),
		bundle: bundle,
		chatID: chatID,
	}

	opts := []telegramBot.Option{
		telegramBot.WithHTTPClient(time.Minute, client),
		telegramBot.WithSkipGetMe(),
	}

	b, _ := telegramBot.New(token, opts...)
	cnt.TgBot = b
	return cnt
}

// SendProfitAlert notifies the chat about a card whose profit potential
// cleared the configured threshold. The message language follows the card's.
func (that *Interaction) SendProfitAlert(ctx context.Context, card *model.Card) error {
	log := that.logger.With("method", "SendProfitAlert", "card", card.String())

	text, err := that.renderLocaledMessage(languageCode(card.Language), "profitAlertMessage",
		"Card", card.CardName,
		"Set", card.SetName,
		"Rarity", card.Rarity,
		"TCGPrice", formatPrice(card.TCGPlayerPrice),
		"PSAPrice", formatPrice(card.PSA10Price),
		"Profit", formatPercent(card.ProfitPotential),
	)
	if err != nil {
		return fmt.Errorf("render localed message: %w", err)
	}

	_, err = that.TgBot.SendMessage(ctx, &telegramBot.SendMessageParams{
		ChatID:    that.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("send message to telegram chat: %w", err)
	}

	log.Info("sent profit alert")
	return nil
}

// renderLocaledMessage renders a localized message.
func (that *Interaction) renderLocaledMessage(languageCode string, messageID string, args ...string) (string, error) {
	if len(args)%2 != 0 {
		return "", ErrWrongNumberOfArguments
	}

	templateData := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		templateData[args[i]] = args[i+1]
	}

	localizer := i18n.NewLocalizer(that.bundle, languageCode)

	text, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: templateData})
	if err != nil {
		return "", fmt.Errorf("localize message: %w", err)
	}

	return text, nil
}

func languageCode(cardLanguage string) string {
	if cardLanguage == model.LanguageJapanese {
		return "ja"
	}
	return "en"
}

func formatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *price)
}

func formatPercent(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *value)
}
