package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CourierBot/model"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

const (
	cmdStart  = "/start"
	cmdCancel = "/cancel"
	cmdLogout = "/logout"
	cmdHelp   = "/help"
	cmdOrders = "/orders"

	menuNewOrder = "Submit New Order"
	menuAddFunds = "Add Funds"
	menuBalance  = "Check Balance"

	backText = "⬅️ Back"
)

var mainMenu = &transport.Keyboard{Reply: [][]transport.ReplyButton{
	{{Text: menuNewOrder}},
	{{Text: menuAddFunds}, {Text: menuBalance}},
}}

const helpText = `Commands:
/start – Log in or show the main menu.
/cancel – Cancel the order you are creating.
/orders – List the orders you have submitted.
/logout – Forget your login on this device.
/help – Show this message.

Use "Submit New Order" to create a single or group delivery.`

// command handles slash commands and main menu buttons. It reports false when
// text is neither.
func (h *Handler) command(t *turn) bool {
	switch strings.TrimSpace(t.ev.Text) {
	case cmdStart:
		h.start(t)
	case cmdCancel:
		h.cancel(t)
	case cmdLogout:
		h.logout(t)
	case cmdHelp:
		h.say(t, helpText, nil)
	case cmdOrders:
		h.orders(t)
	case menuNewOrder:
		h.newOrder(t)
	case menuAddFunds:
		h.funds(t, true)
	case menuBalance:
		h.funds(t, false)
	default:
		return false
	}
	return true
}

func (h *Handler) start(t *turn) {
	h.drop(t)
	if _, err := h.token(t); err == nil {
		h.say(t, "Welcome back! You are already logged in.", mainMenu)
		return
	}
	t.sess = model.NewSession(t.ev.UserID)
	t.sess.Action = model.ActionAwaitingPhone
	h.say(t, "Welcome! Please provide your Turkish phone number to log in (e.g., 05321234567), or use the button below.",
		&transport.Keyboard{Reply: [][]transport.ReplyButton{{{Text: "Send Phone Number", RequestContact: true}}}, OneTime: true})
}

func (h *Handler) cancel(t *turn) {
	h.drop(t)
	var kb *transport.Keyboard
	if _, err := h.token(t); err == nil {
		kb = mainMenu
	}
	h.ack(t, "Order cancelled.")
	h.say(t, "Your order has been cancelled.", kb)
}

func (h *Handler) logout(t *turn) {
	h.drop(t)
	if err := h.accounts.DeleteAccount(t.ctx, t.ev.UserID); err != nil {
		h.fail(t, fmt.Errorf("error deleting account: %w", err))
		return
	}
	h.say(t, "You have been logged out. Send /start to log in again.", &transport.Keyboard{RemoveReply: true})
}

func (h *Handler) newOrder(t *turn) {
	if _, err := h.token(t); err != nil {
		h.say(t, "You need to be logged in to submit an order. Please send /start to begin.", nil)
		return
	}
	t.sess = model.NewSession(t.ev.UserID)
	t.sess.Action = model.ActionAwaitingButton
	h.say(t, "What type of order would you like to create?", inline(
		[]transport.Button{{Text: "Single Order", Data: cbOrderSingle}},
		[]transport.Button{{Text: "Group Order", Data: cbOrderGroup}},
	))
}

// recentOrders is how many order ids /orders lists.
const recentOrders = 5

func (h *Handler) orders(t *turn) {
	if _, err := h.token(t); err != nil {
		h.say(t, "You need to be logged in. Please send /start.", nil)
		return
	}
	orders, err := h.accounts.Orders(t.ctx, t.ev.UserID)
	if err != nil {
		h.fail(t, fmt.Errorf("error listing orders: %w", err))
		return
	}
	if len(orders) == 0 {
		h.say(t, "You haven't submitted any orders yet.", nil)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have submitted %d order(s). Most recent:", len(orders))
	for i := len(orders) - 1; i >= 0 && i >= len(orders)-recentOrders; i-- {
		fmt.Fprintf(&b, "\n- %s", orders[i].OrderID)
	}
	h.say(t, b.String(), nil)
}

// funds adds the configured top-up amount, or reports the balance.
func (h *Handler) funds(t *turn, add bool) {
	token, err := h.token(t)
	if err != nil {
		h.say(t, "You need to be logged in. Please send /start.", nil)
		return
	}
	if t.sess == nil {
		t.sess = model.NewSession(t.ev.UserID)
	}
	verb := "checking balance"
	if add {
		verb = "adding funds"
	}
	h.say(t, "Please wait while "+verb+"...", nil)

	var balance string
	ok, err := h.await(t, func(ctx context.Context) error {
		if add {
			return h.provider.AddFunds(ctx, token, h.topUp)
		}
		b, err := h.provider.Balance(ctx, token)
		balance = b
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("user", t.ev.UserID).Str("op", verb).Msg("funds request failed")
		h.fundsFailed(t, err)
		return
	}
	if !ok {
		return
	}
	if add {
		h.say(t, "✅ Successfully added funds! You can check your new balance.", nil)
		return
	}
	h.send(t, transport.Message{Text: "Your current balance is: *" + transport.EscapeMarkdown(balance) + "*", Markdown: true})
}

func (h *Handler) fundsFailed(t *turn, err error) {
	var ext *model.ExternalServiceError
	switch {
	case errors.Is(err, model.ErrAuthExpired):
		h.expire(t)
	case errors.As(err, &ext):
		h.say(t, "❌ Failed to complete request: "+ext.Message, nil)
	default:
		h.fail(t, err)
	}
}

func inline(rows ...[]transport.Button) *transport.Keyboard {
	return &transport.Keyboard{Inline: rows}
}
