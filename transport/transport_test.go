package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CourierBot/transport"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromUpdate(t *testing.T) {
	from := &models.User{ID: 11}
	chat := models.Chat{ID: 22}

	t.Run("text", func(t *testing.T) {
		ev, ok := transport.EventFromUpdate(&models.Update{Message: &models.Message{From: from, Chat: chat, Text: "/start"}})
		require.True(t, ok)
		assert.Equal(t, transport.KindText, ev.Kind)
		assert.Equal(t, int64(11), ev.UserID)
		assert.Equal(t, int64(22), ev.ChatID)
		assert.Equal(t, "/start", ev.Text)
	})

	t.Run("largest photo wins", func(t *testing.T) {
		ev, ok := transport.EventFromUpdate(&models.Update{Message: &models.Message{
			From: from, Chat: chat,
			Photo: []models.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		}})
		require.True(t, ok)
		assert.Equal(t, transport.KindPhoto, ev.Kind)
		assert.Equal(t, "large", ev.FileID)
	})

	t.Run("location", func(t *testing.T) {
		ev, ok := transport.EventFromUpdate(&models.Update{Message: &models.Message{
			From: from, Chat: chat, Location: &models.Location{Latitude: 41.1, Longitude: 29.2},
		}})
		require.True(t, ok)
		assert.Equal(t, transport.KindLocation, ev.Kind)
		assert.Equal(t, 41.1, ev.Latitude)
		assert.Equal(t, 29.2, ev.Longitude)
	})

	t.Run("contact", func(t *testing.T) {
		ev, ok := transport.EventFromUpdate(&models.Update{Message: &models.Message{
			From: from, Chat: chat, Contact: &models.Contact{PhoneNumber: "+905321234567"},
		}})
		require.True(t, ok)
		assert.Equal(t, transport.KindContact, ev.Kind)
		assert.Equal(t, "+905321234567", ev.Phone)
	})

	t.Run("callback", func(t *testing.T) {
		ev, ok := transport.EventFromUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{
			ID: "cb", From: models.User{ID: 11}, Data: "go_back",
			Message: models.MaybeInaccessibleMessage{Message: &models.Message{ID: 5, Chat: chat}},
		}})
		require.True(t, ok)
		assert.Equal(t, transport.KindCallback, ev.Kind)
		assert.Equal(t, "go_back", ev.Data)
		assert.Equal(t, 5, ev.MessageID)
		assert.Equal(t, int64(22), ev.ChatID)
	})

	t.Run("ignored updates", func(t *testing.T) {
		_, ok := transport.EventFromUpdate(&models.Update{})
		assert.False(t, ok)
		_, ok = transport.EventFromUpdate(&models.Update{Message: &models.Message{From: from, Chat: chat}})
		assert.False(t, ok)
	})
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, transport.Markup(nil))

	inline := transport.Markup(&transport.Keyboard{Inline: [][]transport.Button{{{Text: "Skip", Data: "skip"}}}})
	kb, ok := inline.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "skip", kb.InlineKeyboard[0][0].CallbackData)

	reply := transport.Markup(&transport.Keyboard{Reply: [][]transport.ReplyButton{{{Text: "Share", RequestLocation: true}}}, OneTime: true})
	rk, ok := reply.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, rk.Keyboard[0][0].RequestLocation)
	assert.True(t, rk.OneTimeKeyboard)

	_, ok = transport.Markup(&transport.Keyboard{RemoveReply: true}).(*models.ReplyKeyboardRemove)
	assert.True(t, ok)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\_b \*c\* \[d]`, transport.EscapeMarkdown("a_b *c* [d]"))
}

func TestFileLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/getFile") || r.FormValue("file_id") != "abc" {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: invalid file_id"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{"file_id":"abc","file_unique_id":"u1","file_path":"photos/p.jpg"}}`))
	}))
	defer srv.Close()

	b, err := bot.New("TOKEN", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	tg := transport.NewTelegram()
	tg.Bind(b)

	link, err := tg.FileLink(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, srv.URL), link)
	assert.True(t, strings.HasSuffix(link, "/photos/p.jpg"), link)

	_, err = tg.FileLink(context.Background(), "missing")
	assert.Error(t, err)
}
