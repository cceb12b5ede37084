package handler

import (
	"fmt"
	"strconv"

	"CourierBot/intake"
	"CourierBot/model"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

// Callback data of inline buttons.
const (
	cbOrderSingle   = "order_type_single"
	cbOrderGroup    = "order_type_group"
	cbModeStepwise  = "input_mode_stepwise"
	cbModeTemplate  = "input_mode_template"
	cbModePicture   = "input_mode_picture"
	cbBack          = "go_back"
	cbCancel        = "cancel_order"
	cbConfirm       = "confirm_order"
	cbRetry         = "retry_submit"
	cbAddAnother    = "add_another_order"
	cbFinishGroup   = "finalize_group_order"
	cbImportPicture = "import_picture"
	cbNewPicture    = "upload_new_picture"
	cbManual        = "enter_manually"

	cbSkipPrefix     = "skip_step_"
	cbSizePrefix     = "parcel_size_"
	cbContentPrefix  = "parcel_content_"
	cbDeliveryPrefix = "delivery_type_"
	cbSlotPrefix     = "choose_slot_"
)

var (
	backButton   = transport.Button{Text: backText, Data: cbBack}
	cancelButton = transport.Button{Text: "❌ Cancel Order", Data: cbCancel}
)

var questions = map[model.Family]string{
	model.FamilyPickupFullName:    "*Pickup Details*\nWhat is the sender's full name?",
	model.FamilyPickupPhoneNumber: "What is the sender's phone number?",
	model.FamilyPickupFullAddress: "What is the full pickup address?",
	model.FamilyPickupLocation:    "Please share the pickup location.",
	model.FamilyPickupBuildingNo:  "Building/Apartment Number?",
	model.FamilyPickupFloor:       "Floor?",
	model.FamilyPickupUnit:        "Unit?",
	model.FamilyPickupPostalCode:  "Postal Code? (optional)",
	model.FamilyPickupNote:        "Any notes for the driver? (optional)",
	model.FamilyDropFullName:      "*Drop-off Details*\nWhat is the recipient's full name?",
	model.FamilyDropPhoneNumber:   "What is the recipient's phone number?",
	model.FamilyDropFullAddress:   "What is the full drop-off address?",
	model.FamilyDropLocation:      "Please share the drop-off location.",
	model.FamilyDropBuildingNo:    "Building/Apartment Number?",
	model.FamilyDropFloor:         "Floor?",
	model.FamilyDropUnit:          "Unit?",
	model.FamilyDropPostalCode:    "Postal Code? (optional)",
	model.FamilyDropNote:          "Any notes for the driver? (optional)",
	model.FamilyParcelWeight:      "*Parcel Details*\nWhat is the parcel weight (in grams)?",
	model.FamilyParcelValue:       "What is the estimated value of the parcel? (optional)",
}

// registry maps every step family to the prompt that displays it.
func (h *Handler) registry() map[model.Family]func(t *turn, s model.Step) {
	r := map[model.Family]func(t *turn, s model.Step){
		model.FamilyParcelSize:       h.askSize,
		model.FamilyParcelContent:    h.askContent,
		model.FamilyDeliveryType:     h.askDeliveryType,
		model.FamilyTimeSlot:         h.askTimeSlot,
		model.FamilyFinalize:         h.askConfirm,
		model.FamilySingleTemplate:   h.askSingleTemplate,
		model.FamilySingleVision:     h.askSinglePicture,
		model.FamilyGroupPickupInput: h.askGroupPickup,
		model.FamilyDropoffInput:     h.askDropoff,
		model.FamilyAddAnother:       h.askAddAnother,
		model.FamilyPickupLocation:   h.askLocation,
		model.FamilyDropLocation:     h.askLocation,
	}
	for f := range questions {
		if _, ok := r[f]; !ok {
			r[f] = h.askText
		}
	}
	return r
}

// show makes s the current step and displays its prompt.
func (h *Handler) show(t *turn, s model.Step) {
	sess := t.sess
	intake.Push(sess, s)
	if sess.OrderType == model.OrderTypeGroup && (s.Family == model.FamilyDropoffInput || s.Family == model.FamilyAddAnother) {
		sess.CurrentDropIndex = s.Index
	}
	switch intake.KindOf(s.Family) {
	case intake.KindText:
		sess.Action = model.ActionAwaitingText
	case intake.KindLocation:
		sess.Action = model.ActionAwaitingLocation
	case intake.KindTemplate:
		sess.Action = model.ActionAwaitingTemplate
	case intake.KindPhoto:
		sess.Action = model.ActionAwaitingPhoto
	default:
		sess.Action = model.ActionAwaitingButton
	}
	log.Info().Int64("user", sess.UserID).Stringer("step", s).Stringer("action", sess.Action).Msg("step")

	prompt, ok := h.prompts[s.Family]
	if !ok {
		h.fail(t, fmt.Errorf("no prompt for step %s", s))
		return
	}
	prompt(t, s)
}

// navRow is the back button, shown once there is a step to go back to.
func navRow(sess *model.Session) []transport.Button {
	if len(sess.History) > 1 {
		return []transport.Button{backButton}
	}
	return nil
}

func (h *Handler) askText(t *turn, s model.Step) {
	var rows [][]transport.Button
	if row := navRow(t.sess); row != nil {
		rows = append(rows, row)
	}
	if intake.Skippable(s.Family) {
		rows = append(rows, []transport.Button{{Text: "➡️ Skip", Data: cbSkipPrefix + string(s.Family)}})
	}
	m := transport.Message{Text: questions[s.Family], Markdown: true}
	if len(rows) > 0 {
		m.Keyboard = inline(rows...)
	}
	h.send(t, m)
}

func (h *Handler) askLocation(t *turn, s model.Step) {
	text, button := questions[s.Family], "Share Pickup Location"
	if s.Family == model.FamilyDropLocation {
		button = "Share Drop-off Location"
		if t.sess.OrderType == model.OrderTypeGroup {
			text = fmt.Sprintf("*Location for Order #%d*", s.Index+1)
			button = fmt.Sprintf("Share Drop-off #%d Location", s.Index+1)
		}
	} else if t.sess.OrderType == model.OrderTypeGroup {
		text = "*Step 2: Pickup Location*"
	}
	h.send(t, transport.Message{Text: text, Markdown: true, Keyboard: &transport.Keyboard{
		Reply:   [][]transport.ReplyButton{{{Text: button, RequestLocation: true}}, {{Text: backText}}},
		OneTime: true,
	}})
}

func itemTitle(sess *model.Session, single string, s model.Step, group string) string {
	if sess.OrderType == model.OrderTypeGroup {
		return fmt.Sprintf("*%s for Order #%d*", group, s.Index+1)
	}
	return single
}

func (h *Handler) askSize(t *turn, s model.Step) {
	var rows [][]transport.Button
	for i := 1; i <= len(model.ParcelSizes); i += 2 {
		rows = append(rows, []transport.Button{
			{Text: model.ParcelSizes[i], Data: cbSizePrefix + strconv.Itoa(i)},
			{Text: model.ParcelSizes[i+1], Data: cbSizePrefix + strconv.Itoa(i+1)},
		})
	}
	rows = append(rows, []transport.Button{backButton})
	h.send(t, transport.Message{
		Text:     itemTitle(t.sess, "What is the parcel size?", s, "Parcel Size"),
		Markdown: true,
		Keyboard: inline(rows...),
	})
}

func (h *Handler) askContent(t *turn, s model.Step) {
	var rows [][]transport.Button
	for i := 0; i < len(model.ParcelContents); i += 2 {
		row := []transport.Button{{Text: model.ParcelContents[i], Data: cbContentPrefix + model.ParcelContents[i]}}
		if i+1 < len(model.ParcelContents) {
			row = append(row, transport.Button{Text: model.ParcelContents[i+1], Data: cbContentPrefix + model.ParcelContents[i+1]})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []transport.Button{backButton})
	h.send(t, transport.Message{
		Text:     itemTitle(t.sess, "What are the contents of the parcel?", s, "Parcel Content"),
		Markdown: true,
		Keyboard: inline(rows...),
	})
}

func (h *Handler) askDeliveryType(t *turn, _ model.Step) {
	h.say(t, "Choose the delivery type:", inline(
		[]transport.Button{{Text: "On Demand", Data: cbDeliveryPrefix + string(model.DeliveryOnDemand)}},
		[]transport.Button{{Text: "SlotTime", Data: cbDeliveryPrefix + string(model.DeliverySlotTime)}},
		[]transport.Button{backButton},
	))
}

func (h *Handler) askAddAnother(t *turn, s model.Step) {
	h.say(t, fmt.Sprintf("✅ Order #%d is complete. What would you like to do next?", s.Index+1), inline(
		[]transport.Button{{Text: "➕ Add Another Drop-off", Data: cbAddAnother}},
		[]transport.Button{{Text: "✅ Finish & See Price", Data: cbFinishGroup}},
		[]transport.Button{backButton},
	))
}

// askInputMode runs before a flow exists, so it is not a step.
func (h *Handler) askInputMode(t *turn) {
	rows := [][]transport.Button{
		{{Text: "Step-by-Step (Guided)", Data: cbModeStepwise}},
		{{Text: "All at Once (Template)", Data: cbModeTemplate}},
	}
	if h.visionEnabled() {
		rows = append(rows, []transport.Button{{Text: "Import from Picture", Data: cbModePicture}})
	}
	t.sess.Action = model.ActionAwaitingButton
	h.say(t, "How would you like to provide the order details?", inline(rows...))
}
