// Package handler runs the conversation: it maps every inbound event to the
// login, menu and order intake flows and renders the replies.
package handler

import (
	"context"
	"errors"
	"time"

	"CourierBot/intake"
	"CourierBot/model"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

type Messenger interface {
	Send(ctx context.Context, chatID int64, m transport.Message) error
	Edit(ctx context.Context, chatID int64, messageID int, m transport.Message) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Provider is the delivery provider API.
type Provider interface {
	SendLoginCode(ctx context.Context, phone string) (string, error)
	CheckLoginCode(ctx context.Context, phone, code string) (string, error)
	AddFunds(ctx context.Context, token string, amount int) error
	Balance(ctx context.Context, token string) (string, error)
	QuoteSingle(ctx context.Context, token string, req model.SingleQuoteRequest) (model.Quote, error)
	QuoteGroup(ctx context.Context, token string, req model.GroupQuoteRequest) (model.Quote, error)
	SubmitSingle(ctx context.Context, token string, p model.SinglePayload) error
	SubmitGroup(ctx context.Context, token string, p model.GroupPayload) error
	TimeSlots(ctx context.Context, token string) ([]model.TimeSlot, error)
}

// Extractor reads order details from a photo.
type Extractor interface {
	Extract(ctx context.Context, image []byte, prompt string) (map[string]string, error)
}

type ImageFetcher interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// AccountStore keeps login tokens and submitted orders.
type AccountStore interface {
	Account(ctx context.Context, userID int64) (model.Account, error)
	SaveAccount(ctx context.Context, userID int64, acc model.Account) error
	DeleteAccount(ctx context.Context, userID int64) error
	SaveOrder(ctx context.Context, userID int64, order any) (string, error)
	Orders(ctx context.Context, userID int64) ([]model.StoredOrder, error)
}

type SessionStore interface {
	Get(userID int64) (*model.Session, bool)
	Put(sess *model.Session)
	Delete(userID int64)
	Lock(userID int64) func()
}

type Options struct {
	Vision           intake.VisionPolicy
	FundsTopUpAmount int
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	msg      Messenger
	provider Provider
	accounts AccountStore
	sessions SessionStore
	// extractor and images are nil when picture import is disabled.
	extractor Extractor
	images    ImageFetcher

	vision  intake.VisionPolicy
	topUp   int
	now     func() time.Time
	prompts map[model.Family]func(t *turn, s model.Step)
}

func NewHandler(
	msg Messenger,
	provider Provider,
	accounts AccountStore,
	sessions SessionStore,
	extractor Extractor,
	images ImageFetcher,
	opts Options,
) *Handler {
	h := &Handler{
		msg:       msg,
		provider:  provider,
		accounts:  accounts,
		sessions:  sessions,
		extractor: extractor,
		images:    images,
		vision:    opts.Vision,
		topUp:     opts.FundsTopUpAmount,
		now:       opts.Now,
	}
	if h.vision.MaxCorrectableErrors == 0 {
		h.vision = intake.DefaultVisionPolicy
	}
	if h.topUp == 0 {
		h.topUp = 1000
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.prompts = h.registry()
	return h
}

func (h *Handler) visionEnabled() bool {
	return h.extractor != nil && h.images != nil
}

// turn is the handling of one event. sess is nil once the session has been
// removed or replaced, and unlock always releases the lock currently held.
type turn struct {
	ctx    context.Context
	ev     transport.Event
	sess   *model.Session
	unlock func()
}

// Handle processes one event to completion. Events of one user are handled one
// at a time.
func (h *Handler) Handle(ctx context.Context, ev transport.Event) {
	t := &turn{ctx: ctx, ev: ev, unlock: h.sessions.Lock(ev.UserID)}
	defer func() { t.unlock() }()

	if ev.Kind == transport.KindCallback {
		if err := h.msg.AnswerCallback(ctx, ev.CallbackID); err != nil {
			log.Warn().Err(err).Int64("user", ev.UserID).Msg("error answering callback")
		}
	}

	t.sess, _ = h.sessions.Get(ev.UserID)
	if t.sess != nil && t.sess.Action == model.ActionPending && !resets(ev) {
		h.say(t, "⏳ Please wait, I'm still working on your previous request.", nil)
		return
	}

	h.route(t)

	if t.sess != nil {
		h.sessions.Put(t.sess)
	}
}

// resets reports whether ev discards the session whatever state it is in.
func resets(ev transport.Event) bool {
	if ev.Kind == transport.KindCallback {
		return ev.Data == cbCancel
	}
	return ev.Kind == transport.KindText && (ev.Text == cmdStart || ev.Text == cmdCancel || ev.Text == cmdLogout)
}

func (h *Handler) route(t *turn) {
	switch t.ev.Kind {
	case transport.KindText:
		h.onText(t)
	case transport.KindContact:
		h.onContact(t)
	case transport.KindLocation:
		h.onLocation(t)
	case transport.KindPhoto:
		h.onPhoto(t)
	case transport.KindCallback:
		h.onCallback(t)
	}
}

func (h *Handler) onText(t *turn) {
	if h.command(t) {
		return
	}
	if t.sess == nil {
		h.say(t, "I didn't understand that. Use /start to begin.", nil)
		return
	}
	text := t.ev.Text
	if text == backText && t.sess.InFlow() {
		h.back(t)
		return
	}
	switch t.sess.Action {
	case model.ActionAwaitingPhone:
		h.login(t, text)
	case model.ActionAwaitingOTP:
		h.verifyOTP(t, text)
	case model.ActionAwaitingText:
		h.answer(t, text)
	case model.ActionAwaitingTemplate:
		h.template(t, text)
	case model.ActionAwaitingPhoto:
		if top, ok := t.sess.Step(); ok && isGroupInput(top.Family) {
			h.template(t, text)
			return
		}
		h.say(t, "Please send a picture with the order details.", nil)
	case model.ActionAwaitingCorrection:
		h.correct(t, text)
	case model.ActionAwaitingLocation:
		h.say(t, "Please use the button below to share the location.", nil)
	case model.ActionAwaitingButton:
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "text while waiting for a button"})
	default:
		h.say(t, "I didn't understand that. Use /start to begin.", nil)
	}
}

func (h *Handler) onContact(t *turn) {
	if t.sess == nil || t.sess.Action != model.ActionAwaitingPhone {
		h.fail(t, &model.StateError{Reason: "unexpected contact"})
		return
	}
	h.login(t, t.ev.Phone)
}

func (h *Handler) onLocation(t *turn) {
	if t.sess == nil || t.sess.Action != model.ActionAwaitingLocation {
		h.fail(t, &model.StateError{Reason: "unexpected location"})
		return
	}
	top, _ := t.sess.Step()
	next, err := intake.AnswerLocation(t.sess, top, t.ev.Latitude, t.ev.Longitude)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.show(t, next)
}

func (h *Handler) onPhoto(t *turn) {
	if t.sess == nil || !t.sess.InFlow() {
		h.fail(t, &model.StateError{Reason: "unexpected photo"})
		return
	}
	top, _ := t.sess.Step()
	switch t.sess.Action {
	case model.ActionAwaitingPhoto, model.ActionAwaitingCorrection:
	case model.ActionAwaitingTemplate:
		if !isGroupInput(top.Family) {
			h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "photo while waiting for a template"})
			return
		}
	default:
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "unexpected photo"})
		return
	}
	h.extract(t, top)
}

// await runs call without holding the user's lock. Meanwhile the session is
// marked pending so that other events of the user are turned away. It reports
// false when the session was removed or replaced before the call returned.
func (h *Handler) await(t *turn, call func(ctx context.Context) error) (bool, error) {
	sess := t.sess
	prev := sess.Action
	sess.Action = model.ActionPending
	h.sessions.Put(sess)
	t.unlock()

	err := call(t.ctx)

	t.unlock = h.sessions.Lock(t.ev.UserID)
	if cur, ok := h.sessions.Get(t.ev.UserID); !ok || cur != sess {
		log.Info().Int64("user", t.ev.UserID).Msg("session changed during remote call, result dropped")
		t.sess = nil
		return false, err
	}
	sess.Action = prev
	return true, err
}

// token returns the stored provider token of the user.
func (h *Handler) token(t *turn) (string, error) {
	acc, err := h.accounts.Account(t.ctx, t.ev.UserID)
	if err != nil {
		return "", err
	}
	if acc.Token == "" {
		return "", model.ErrAuthExpired
	}
	return acc.Token, nil
}

// expire forgets the user's token and session after the provider rejected it.
func (h *Handler) expire(t *turn) {
	if err := h.accounts.DeleteAccount(t.ctx, t.ev.UserID); err != nil {
		log.Error().Err(err).Int64("user", t.ev.UserID).Msg("error deleting account")
	}
	h.drop(t)
	h.say(t, "Your login has expired. Please send /start to log in again.", &transport.Keyboard{RemoveReply: true})
}

// drop removes the session of the turn.
func (h *Handler) drop(t *turn) {
	h.sessions.Delete(t.ev.UserID)
	t.sess = nil
}

func (h *Handler) say(t *turn, text string, kb *transport.Keyboard) {
	h.send(t, transport.Message{Text: text, Keyboard: kb})
}

func (h *Handler) send(t *turn, m transport.Message) {
	if err := h.msg.Send(t.ctx, t.ev.ChatID, m); err != nil {
		log.Error().Err(err).Int64("user", t.ev.UserID).Msg("error sending message")
	}
}

// ack replaces the text of the message whose button was pressed and drops its
// buttons.
func (h *Handler) ack(t *turn, text string) {
	if t.ev.Kind != transport.KindCallback || t.ev.MessageID == 0 {
		return
	}
	if err := h.msg.Edit(t.ctx, t.ev.ChatID, t.ev.MessageID, transport.Message{Text: text}); err != nil {
		log.Warn().Err(err).Int64("user", t.ev.UserID).Msg("error editing message")
	}
}

// fail turns err into a reply. Errors never travel past the handler.
func (h *Handler) fail(t *turn, err error) {
	var (
		verr  *model.ValidationError
		perr  *model.ParseError
		ext   *model.ExternalServiceError
		state *model.StateError
	)
	switch {
	case errors.Is(err, model.ErrAuthExpired):
		h.expire(t)
	case errors.Is(err, model.ErrAtBeginning):
		h.say(t, "You're at the beginning. You can /start over to cancel.", nil)
	case errors.Is(err, model.ErrVisionDisabled):
		h.say(t, "Importing from a picture is not available right now. Please enter the details manually.", nil)
	case errors.As(err, &verr):
		h.say(t, "❌ "+joinLines(verr.Lines())+"\nPlease try again.", nil)
	case errors.As(err, &perr):
		h.say(t, "❌ "+perr.Reason, nil)
	case errors.As(err, &ext):
		h.say(t, "❌ "+ext.Message, nil)
	case errors.As(err, &state):
		log.Debug().Int64("user", t.ev.UserID).Str("reason", state.Reason).Msg("unexpected input")
		h.say(t, "Please use the provided buttons, or send /start to start over.", nil)
	default:
		log.Error().Err(err).Int64("user", t.ev.UserID).Msg("error handling event")
		h.say(t, "Something went wrong. Please try again.", nil)
	}
}
