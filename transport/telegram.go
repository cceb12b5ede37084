package transport

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// Telegram sends messages through a go-telegram/bot client. The client is
// bound after construction because the bot needs its update handler first.
type Telegram struct {
	b *bot.Bot
}

func NewTelegram() *Telegram {
	return &Telegram{}
}

func (t *Telegram) Bind(b *bot.Bot) {
	t.b = b
}

// Dispatch returns a bot update handler that forwards every event the bot
// acts on to handle.
func (t *Telegram) Dispatch(handle func(ctx context.Context, ev Event)) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if t.b == nil {
			t.b = b
		}
		ev, ok := EventFromUpdate(update)
		if !ok {
			return
		}
		log.Debug().Int64("user", ev.UserID).Stringer("kind", ev.Kind).Msg("update received")
		handle(ctx, ev)
	}
}

func parseMode(m Message) models.ParseMode {
	if m.Markdown {
		return models.ParseModeMarkdownV1
	}
	return ""
}

func (t *Telegram) Send(ctx context.Context, chatID int64, m Message) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        m.Text,
		ParseMode:   parseMode(m),
		ReplyMarkup: Markup(m.Keyboard),
	}
	if m.NoPreview {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: bot.True()}
	}
	if _, err := t.b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

// Edit replaces the text and inline keyboard of a message the bot sent.
func (t *Telegram) Edit(ctx context.Context, chatID int64, messageID int, m Message) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      m.Text,
		ParseMode: parseMode(m),
	}
	if m.Keyboard != nil && len(m.Keyboard.Inline) > 0 {
		params.ReplyMarkup = Markup(m.Keyboard)
	}
	if _, err := t.b.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("error editing message: %w", err)
	}
	return nil
}

// FileLink resolves fileID through getFile and returns its download link.
func (t *Telegram) FileLink(ctx context.Context, fileID string) (string, error) {
	f, err := t.b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("error getting file: %w", err)
	}
	if f.FilePath == "" {
		return "", fmt.Errorf("no file path for file %s", fileID)
	}
	return t.b.FileDownloadLink(f), nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	if _, err := t.b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID}); err != nil {
		return fmt.Errorf("error answering callback: %w", err)
	}
	return nil
}
