package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"CourierBot/intake"
	"CourierBot/model"
	"CourierBot/repo"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

const slotsPerRow = 3

// askTimeSlot fetches today's slots and offers them as buttons.
func (h *Handler) askTimeSlot(t *turn, _ model.Step) {
	token, err := h.token(t)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.say(t, "Fetching available time slots...", nil)

	var slots []model.TimeSlot
	ok, err := h.await(t, func(ctx context.Context) error {
		s, err := h.provider.TimeSlots(ctx, token)
		slots = s
		return err
	})
	if !ok {
		return
	}
	if err == nil && len(slots) == 0 {
		err = model.NewExternalServiceError("provider", "sameDay-activeTimes", "No available time slots with valid drop-off times were found.", nil)
	}
	if err != nil {
		if errors.Is(err, model.ErrAuthExpired) {
			h.expire(t)
			return
		}
		h.say(t, "Sorry, I couldn't fetch the time slots: "+userMessage(err), inline([]transport.Button{backButton}))
		return
	}

	t.sess.AvailableSlots = slots
	var b strings.Builder
	b.WriteString("*Please choose an available time slot:*\n\n")
	var rows [][]transport.Button
	var row []transport.Button
	for i, s := range slots {
		fmt.Fprintf(&b, "*Slot %d:*\n  - Pickup: %s\n  - Drop-off: %s\n\n", i+1, formatDateTime(s.PickupStartTime), formatDateTime(s.DropOffStartTime))
		row = append(row, transport.Button{Text: fmt.Sprintf("Slot %d", i+1), Data: cbSlotPrefix + strconv.Itoa(i)})
		if len(row) == slotsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []transport.Button{backButton})
	h.send(t, transport.Message{Text: b.String(), Markdown: true, Keyboard: inline(rows...)})
}

// askConfirm prices the order and shows the summary with the confirm buttons.
func (h *Handler) askConfirm(t *turn, _ model.Step) {
	token, err := h.token(t)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.say(t, "Please wait, calculating your order price...", &transport.Keyboard{RemoveReply: true})

	sess := t.sess
	sess.Quoted = false
	group := sess.OrderType == model.OrderTypeGroup
	singleReq, groupReq := intake.SingleQuote(sess.Order), intake.GroupQuote(sess.Order)
	var quote model.Quote
	ok, err := h.await(t, func(ctx context.Context) error {
		var err error
		if group {
			quote, err = h.provider.QuoteGroup(ctx, token, groupReq)
		} else {
			quote, err = h.provider.QuoteSingle(ctx, token, singleReq)
		}
		return err
	})
	if !ok {
		return
	}
	if err != nil {
		if errors.Is(err, model.ErrAuthExpired) {
			h.expire(t)
			return
		}
		h.say(t, "❌ An error occurred while calculating the price: "+userMessage(err), inline([]transport.Button{backButton}))
		return
	}
	sess.Quoted = true

	summary := singleSummary(sess.Order, quote)
	confirm := "✅ Confirm Order"
	if group {
		summary = groupSummary(sess.Order, quote)
		confirm = "✅ Confirm Group Order"
	}
	h.send(t, transport.Message{Text: summary, Markdown: true, NoPreview: true})
	h.say(t, "Confirm to submit?", inline(
		[]transport.Button{{Text: confirm, Data: cbConfirm}},
		[]transport.Button{backButton, {Text: "❌ Cancel", Data: cbCancel}},
	))
}

// submit sends the order. The payload is built on the first attempt and reused
// by every retry.
func (h *Handler) submit(t *turn) {
	if top, _ := t.sess.Step(); top.Family != model.FamilyFinalize {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "nothing to confirm"})
		return
	}
	if !t.sess.Quoted {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "order was not priced"})
		return
	}
	token, err := h.token(t)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.ack(t, "Submitting your order...")

	sub := intake.Submission(t.sess, h.now())
	var order any = sub.Single
	if sub.Group != nil {
		order = sub.Group
	}
	ok, err := h.await(t, func(ctx context.Context) error {
		if sub.Group != nil {
			return h.provider.SubmitGroup(ctx, token, *sub.Group)
		}
		return h.provider.SubmitSingle(ctx, token, *sub.Single)
	})
	if err != nil {
		if !ok {
			return
		}
		h.submitFailed(t, err)
		return
	}

	// the provider accepted the order, so it is recorded even if the session
	// was cancelled meanwhile
	if id, err := h.accounts.SaveOrder(t.ctx, t.ev.UserID, order); err != nil {
		log.Error().Err(err).Int64("user", t.ev.UserID).Msg("error saving order")
	} else {
		log.Info().Int64("user", t.ev.UserID).Str("order", id).Msg("order submitted")
	}
	if ok {
		h.drop(t)
	}
	text := "✅ Your order has been successfully submitted! Thank you."
	if sub.Group != nil {
		text = "✅ Your group order has been successfully submitted! Thank you."
	}
	h.say(t, text, mainMenu)
}

func (h *Handler) submitFailed(t *turn, err error) {
	if errors.Is(err, model.ErrAuthExpired) {
		h.expire(t)
		return
	}
	kb := inline(
		[]transport.Button{{Text: "🔁 Retry", Data: cbRetry}},
		[]transport.Button{backButton, {Text: "❌ Cancel", Data: cbCancel}},
	)
	msg := userMessage(err)
	if repo.IsFundsError(err) {
		h.say(t, "💰 "+msg+"\n\nYou can add funds using the 'Add Funds' button in the main menu.", kb)
		return
	}
	h.send(t, transport.Message{
		Text:     "❌ An error occurred while submitting your order:\n\n*Server message:*\n_" + transport.EscapeMarkdown(msg) + "_",
		Markdown: true,
		Keyboard: kb,
	})
}

// choose applies a parcel size, parcel content or delivery type button.
func (h *Handler) choose(t *turn, f model.Family, value, ack string) {
	top, _ := t.sess.Step()
	if top.Family != f {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "stale " + string(f) + " button"})
		return
	}
	next, err := intake.Answer(t.sess, top, value)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.ack(t, ack)
	h.show(t, next)
}

func (h *Handler) chooseSlot(t *turn, raw string) {
	top, _ := t.sess.Step()
	i, err := strconv.Atoi(raw)
	if top.Family != model.FamilyTimeSlot || err != nil {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "stale time slot button"})
		return
	}
	next, err := intake.ChooseSlot(t.sess, i)
	if err != nil {
		h.say(t, "Sorry, that was an invalid slot. Please try again.", nil)
		return
	}
	h.ack(t, "Time slot selected.")
	h.show(t, next)
}
