package handler

import (
	"fmt"

	"CourierBot/intake"
	"CourierBot/model"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

const groupPickupTemplate = `*Step 1: Pickup Details*
Please copy this template, fill in the pickup details, and send it back.

Sender Name:
Sender Phone:
Full Address:
Building No:
Floor:
Unit:
Postal Code (optional):
Note (optional):`

const dropoffTemplate = `*Details for Order #%d*
Please provide the details for this drop-off.

Recipient Name:
Recipient Phone:
Full Address:
Building No:
Floor:
Unit:
Postal Code (optional):
Note (optional):
Weight (grams):
Value (optional):`

func (h *Handler) startGroup(t *turn) {
	first := intake.FirstStep(model.OrderTypeGroup)
	intake.Start(t.sess, model.OrderTypeGroup, first)
	log.Info().Int64("user", t.ev.UserID).Msg("group order started")
	h.show(t, first)
}

// inputKeyboard offers picture import next to the template of a group input
// step.
func (h *Handler) inputKeyboard(t *turn, label string) *transport.Keyboard {
	var rows [][]transport.Button
	if h.visionEnabled() {
		rows = append(rows, []transport.Button{{Text: label, Data: cbImportPicture}})
	}
	if row := navRow(t.sess); row != nil {
		rows = append(rows, row)
	}
	rows = append(rows, []transport.Button{cancelButton})
	return inline(rows...)
}

func (h *Handler) askGroupPickup(t *turn, _ model.Step) {
	h.send(t, transport.Message{
		Text:     groupPickupTemplate,
		Markdown: true,
		Keyboard: h.inputKeyboard(t, "Import Pickup from Picture"),
	})
}

func (h *Handler) askDropoff(t *turn, s model.Step) {
	intake.EnsureItem(t.sess.Order, s.Index)
	h.send(t, transport.Message{
		Text:     fmt.Sprintf(dropoffTemplate, s.Index+1),
		Markdown: true,
		Keyboard: h.inputKeyboard(t, "Import Drop-off from Picture"),
	})
}

// importPicture switches a group input step to picture input.
func (h *Handler) importPicture(t *turn) {
	top, _ := t.sess.Step()
	if !isGroupInput(top.Family) {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "picture import at " + top.String()})
		return
	}
	if !h.visionEnabled() {
		h.fail(t, model.ErrVisionDisabled)
		return
	}
	t.sess.Action = model.ActionAwaitingPhoto
	text := "Please send a picture containing the PICKUP details (Name, Phone, Address, etc.)."
	if top.Family == model.FamilyDropoffInput {
		text = fmt.Sprintf("Please send a picture containing the details for Drop-off #%d.", top.Index+1)
	}
	h.say(t, text, inline([]transport.Button{{Text: "Enter Details Manually", Data: cbManual}}))
}

func (h *Handler) addAnother(t *turn) {
	h.show(t, intake.AddAnother(t.sess))
}

func (h *Handler) finishItems(t *turn) {
	h.show(t, intake.FinishItems(t.sess))
}

func isGroupInput(f model.Family) bool {
	return f == model.FamilyGroupPickupInput || f == model.FamilyDropoffInput
}
