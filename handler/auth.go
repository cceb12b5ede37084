package handler

import (
	"context"
	"errors"
	"strings"

	"CourierBot/model"
	"CourierBot/transport"
	"CourierBot/validate"

	"github.com/rs/zerolog/log"
)

// login validates the phone number and asks the provider to send a code.
func (h *Handler) login(t *turn, raw string) {
	digits, c := validate.NormalizePhone(raw)
	if !c.Valid {
		h.say(t, "❌ "+c.Message+"\nPlease send your number again, e.g. 05321234567.", nil)
		return
	}
	phone := "0" + digits
	h.say(t, "Sending OTP...", &transport.Keyboard{RemoveReply: true})

	var code string
	ok, err := h.await(t, func(ctx context.Context) error {
		c, err := h.provider.SendLoginCode(ctx, phone)
		code = c
		return err
	})
	if !ok {
		return
	}
	if err != nil {
		h.say(t, "An error occurred while sending the OTP: "+userMessage(err), nil)
		return
	}
	log.Info().Int64("user", t.ev.UserID).Msg("login code sent")
	t.sess.Phone = phone
	t.sess.Action = model.ActionAwaitingOTP
	h.say(t, "An OTP has been sent. For testing, the code is: "+code+"\n\nPlease enter the OTP.", nil)
}

func (h *Handler) verifyOTP(t *turn, code string) {
	code = strings.TrimSpace(code)
	phone := t.sess.Phone
	h.say(t, "Verifying OTP...", nil)

	var token string
	ok, err := h.await(t, func(ctx context.Context) error {
		tok, err := h.provider.CheckLoginCode(ctx, phone, code)
		token = tok
		return err
	})
	if !ok {
		return
	}
	if err != nil {
		h.say(t, "An error occurred while verifying the OTP: "+userMessage(err)+"\nPlease try again.", nil)
		return
	}
	if err := h.accounts.SaveAccount(t.ctx, t.ev.UserID, model.Account{Token: token, Phone: phone}); err != nil {
		h.fail(t, err)
		return
	}
	log.Info().Int64("user", t.ev.UserID).Msg("user logged in")
	h.drop(t)
	h.say(t, "You have been successfully authenticated!", mainMenu)
}

// userMessage returns the part of err that can be shown to the user.
func userMessage(err error) string {
	var ext *model.ExternalServiceError
	if errors.As(err, &ext) {
		return ext.Message
	}
	return "Please try again."
}
