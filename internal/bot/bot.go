// Package bot wires the lookup pipeline to Telegram: inline queries
// answer with minimal placeholder results, and chosen-result feedback
// drives the two-phase resolution flow.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/config"
	"github.com/exile-tools/poewiki-cli/internal/lookup"
	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/internal/render"
	"github.com/exile-tools/poewiki-cli/internal/resolve"
)

const fallbackThumbURL = "https://www.poewiki.net/w/resources/assets/wiki.png"

// Bot runs the Telegram front end.
type Bot struct {
	api           *tgbotapi.BotAPI
	service       *lookup.Service
	flow          *resolve.Flow
	inlineLimit   int
	updateTimeout int
}

// New creates a Bot from a configured API token.
func New(cfg config.TelegramConfig, service *lookup.Service) (*Bot, error) {
	if cfg.Token == "" {
		return nil, eris.New("bot: telegram token not configured")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, eris.Wrap(err, "bot: create telegram api")
	}

	b := &Bot{
		api:           api,
		service:       service,
		inlineLimit:   cfg.InlineLimit,
		updateTimeout: cfg.UpdateTimeoutSecs,
	}
	b.flow = resolve.NewFlow(service, &messageEditor{api: api})
	return b, nil
}

// Flow exposes the resolution flow, e.g. for the health endpoint.
func (b *Bot) Flow() *resolve.Flow {
	return b.flow
}

// Run polls for updates until the context is cancelled. Each update is
// an independent unit of work and is handled on its own goroutine; the
// pending-resolution store is the only state they share.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout
	u.AllowedUpdates = []string{"message", "inline_query", "chosen_inline_result"}

	updates := b.api.GetUpdatesChan(u)
	zap.L().Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			zap.L().Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.InlineQuery != nil:
		b.handleInlineQuery(ctx, update.InlineQuery)
	case update.ChosenInlineResult != nil:
		b.flow.Chosen(ctx, update.ChosenInlineResult.ResultID, update.ChosenInlineResult.InlineMessageID)
	case update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start":
		b.handleStart(update.Message)
	}
}

// handleInlineQuery answers with minimal placeholder results and
// registers a pending resolution per result. Pipeline failures answer
// with no results rather than an error article.
func (b *Bot) handleInlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) {
	term := q.Query
	if term == "" {
		return
	}

	items, err := b.service.Search(ctx, term, b.inlineLimit, "")
	if err != nil {
		zap.L().Error("inline search failed", zap.String("query", term), zap.Error(err))
		b.answerInline(q.ID, nil)
		return
	}

	// Telegram rejects duplicate result content; keep one result per
	// (name, class, rarity).
	seen := make(map[string]struct{}, len(items))
	var results []interface{}
	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}

		resultID := uuid.NewString()
		article := tgbotapi.NewInlineQueryResultArticleHTML(
			resultID, item.Name, render.TelegramPlaceholder(item))
		article.Description = describeItem(item)
		article.URL = render.WikiURL(item.Name)
		article.ReplyMarkup = wikiKeyboard(item.Name)
		article.ThumbURL = item.ImageURL
		if article.ThumbURL == "" {
			article.ThumbURL = fallbackThumbURL
		}

		b.flow.Selected(resultID, item)
		results = append(results, article)
	}

	zap.L().Info("inline query answered",
		zap.String("query", term),
		zap.Int("results", len(results)),
	)
	b.answerInline(q.ID, results)
}

func (b *Bot) answerInline(queryID string, results []interface{}) {
	_, err := b.api.Request(tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     0,
	})
	if err != nil {
		zap.L().Error("answer inline query failed", zap.Error(err))
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID,
		"I look up Path of Exile wiki items. Type @"+b.api.Self.UserName+" <item name> in any chat.")
	if _, err := b.api.Send(reply); err != nil {
		zap.L().Error("send start reply failed", zap.Error(err))
	}
}

func describeItem(item model.Item) string {
	if item.Class == "" {
		return string(item.Rarity)
	}
	return fmt.Sprintf("%s %s", item.Rarity, item.Class)
}

func wikiKeyboard(name string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("View on Wiki", render.WikiURL(name)),
		),
	)
	return &kb
}

// messageEditor adapts the Telegram API to the resolution flow's Editor.
// The edit re-attaches the wiki keyboard; editing text alone would strip
// the button from the placeholder.
type messageEditor struct {
	api *tgbotapi.BotAPI
}

func (e *messageEditor) EditMessage(_ context.Context, inlineMessageID, html, itemName string) error {
	edit := tgbotapi.EditMessageTextConfig{
		BaseEdit: tgbotapi.BaseEdit{
			InlineMessageID: inlineMessageID,
			ReplyMarkup:     wikiKeyboard(itemName),
		},
		Text:      html,
		ParseMode: tgbotapi.ModeHTML,
	}
	if _, err := e.api.Request(edit); err != nil {
		return eris.Wrap(err, "bot: edit message")
	}
	return nil
}
