package handler

import (
	"strings"

	"CourierBot/intake"
	"CourierBot/model"

	"github.com/rs/zerolog/log"
)

func (h *Handler) onCallback(t *turn) {
	data := t.ev.Data
	if data == cbCancel {
		h.cancel(t)
		return
	}
	if t.sess == nil {
		h.fail(t, &model.StateError{Reason: "button pressed without a session"})
		return
	}

	switch data {
	case cbOrderSingle:
		if !h.loggedIn(t) {
			return
		}
		h.ack(t, "Single order selected.")
		h.askInputMode(t)
		return
	case cbOrderGroup:
		if !h.loggedIn(t) {
			return
		}
		h.ack(t, "Group order selected.")
		h.startGroup(t)
		return
	case cbModeStepwise, cbModeTemplate, cbModePicture:
		if t.sess.InFlow() {
			h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "input mode already chosen"})
			return
		}
		h.startSingle(t, data)
		return
	}

	if !t.sess.InFlow() {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "button " + data + " outside an order"})
		return
	}
	switch {
	case data == cbBack:
		h.back(t)
	case data == cbConfirm, data == cbRetry:
		h.submit(t)
	case data == cbAddAnother:
		h.branch(t, h.addAnother)
	case data == cbFinishGroup:
		h.branch(t, h.finishItems)
	case data == cbImportPicture:
		h.importPicture(t)
	case data == cbNewPicture:
		t.sess.Correction = nil
		t.sess.Action = model.ActionAwaitingPhoto
		h.say(t, "Please send a new picture.", nil)
	case data == cbManual:
		h.manual(t)
	case strings.HasPrefix(data, cbSkipPrefix):
		h.skip(t, model.Family(strings.TrimPrefix(data, cbSkipPrefix)))
	case strings.HasPrefix(data, cbSizePrefix):
		h.choose(t, model.FamilyParcelSize, strings.TrimPrefix(data, cbSizePrefix), "Parcel size selected.")
	case strings.HasPrefix(data, cbContentPrefix):
		h.choose(t, model.FamilyParcelContent, strings.TrimPrefix(data, cbContentPrefix), "Parcel content selected.")
	case strings.HasPrefix(data, cbDeliveryPrefix):
		value := strings.TrimPrefix(data, cbDeliveryPrefix)
		h.choose(t, model.FamilyDeliveryType, value, "Delivery type: "+value)
	case strings.HasPrefix(data, cbSlotPrefix):
		h.chooseSlot(t, strings.TrimPrefix(data, cbSlotPrefix))
	default:
		log.Warn().Int64("user", t.ev.UserID).Str("data", data).Msg("unknown callback")
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "unknown button " + data})
	}
}

func (h *Handler) loggedIn(t *turn) bool {
	if _, err := h.token(t); err != nil {
		h.fail(t, err)
		return false
	}
	return true
}

// branch runs an add-another-or-finish choice, which is only valid while that
// question is displayed.
func (h *Handler) branch(t *turn, next func(t *turn)) {
	if top, _ := t.sess.Step(); top.Family != model.FamilyAddAnother {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "stale add-another button"})
		return
	}
	h.ack(t, "✅ Noted.")
	next(t)
}

func (h *Handler) skip(t *turn, f model.Family) {
	top, _ := t.sess.Step()
	if top.Family != f {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "stale skip button"})
		return
	}
	next, err := intake.Skip(t.sess, top)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.show(t, next)
}

// back undoes the current step and displays the previous one again.
func (h *Handler) back(t *turn) {
	if t.sess == nil || !t.sess.InFlow() {
		h.fail(t, &model.StateError{Reason: "back outside an order"})
		return
	}
	from, _ := t.sess.Step()
	target, err := intake.Back(t.sess)
	if err != nil {
		h.fail(t, err)
		return
	}
	log.Info().Int64("user", t.ev.UserID).Stringer("from", from).Stringer("to", target).Msg("back")
	h.show(t, target)
}
