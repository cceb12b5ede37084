// Package transport converts Telegram updates into flat events and renders
// outgoing messages and keyboards back into go-telegram/bot calls.
package transport

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

type Kind int

const (
	KindText Kind = iota
	KindLocation
	KindPhoto
	KindContact
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLocation:
		return "location"
	case KindPhoto:
		return "photo"
	case KindContact:
		return "contact"
	case KindCallback:
		return "callback"
	}
	return "unknown"
}

// Event is one inbound user action.
type Event struct {
	Kind   Kind
	UserID int64
	ChatID int64

	Text      string
	Latitude  float64
	Longitude float64
	FileID    string
	Phone     string

	// Callback fields. MessageID is the message carrying the pressed button.
	CallbackID string
	Data       string
	MessageID  int
}

// EventFromUpdate flattens update. Updates the bot does not act on return false.
func EventFromUpdate(update *models.Update) (Event, bool) {
	if q := update.CallbackQuery; q != nil {
		ev := Event{
			Kind:       KindCallback,
			UserID:     q.From.ID,
			ChatID:     q.From.ID,
			CallbackID: q.ID,
			Data:       q.Data,
		}
		if m := q.Message.Message; m != nil {
			ev.ChatID = m.Chat.ID
			ev.MessageID = m.ID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return Event{}, false
	}
	ev := Event{UserID: msg.From.ID, ChatID: msg.Chat.ID}
	switch {
	case msg.Location != nil:
		ev.Kind = KindLocation
		ev.Latitude = msg.Location.Latitude
		ev.Longitude = msg.Location.Longitude
	case len(msg.Photo) > 0:
		// Telegram lists sizes smallest first
		ev.Kind = KindPhoto
		ev.FileID = msg.Photo[len(msg.Photo)-1].FileID
		ev.Text = msg.Caption
	case msg.Contact != nil:
		ev.Kind = KindContact
		ev.Phone = msg.Contact.PhoneNumber
	case msg.Text != "":
		ev.Kind = KindText
		ev.Text = msg.Text
	default:
		return Event{}, false
	}
	return ev, true
}

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// ReplyButton is a button of the reply keyboard under the input field.
type ReplyButton struct {
	Text            string
	RequestLocation bool
	RequestContact  bool
}

// Keyboard describes the markup attached to a message. At most one of Inline,
// Reply and RemoveReply is used.
type Keyboard struct {
	Inline      [][]Button
	Reply       [][]ReplyButton
	RemoveReply bool
	OneTime     bool
}

// Message is an outgoing message.
type Message struct {
	Text      string
	Markdown  bool
	NoPreview bool
	Keyboard  *Keyboard
}

// Markup renders k for the Bot API. A nil keyboard yields nil.
func Markup(k *Keyboard) models.ReplyMarkup {
	switch {
	case k == nil:
		return nil
	case len(k.Inline) > 0:
		rows := make([][]models.InlineKeyboardButton, len(k.Inline))
		for i, row := range k.Inline {
			for _, b := range row {
				rows[i] = append(rows[i], models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
			}
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	case len(k.Reply) > 0:
		rows := make([][]models.KeyboardButton, len(k.Reply))
		for i, row := range k.Reply {
			for _, b := range row {
				rows[i] = append(rows[i], models.KeyboardButton{
					Text:            b.Text,
					RequestLocation: b.RequestLocation,
					RequestContact:  b.RequestContact,
				})
			}
		}
		return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true, OneTimeKeyboard: k.OneTime}
	case k.RemoveReply:
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes user text for the legacy Markdown parse mode.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
