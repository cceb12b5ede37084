package intake

import (
	"slices"
	"strconv"
	"strings"

	"CourierBot/model"
	"CourierBot/validate"
)

// Answer validates one typed or chosen value for step s, writes it into the
// draft and returns the step to show next. On a validation error the draft is
// left unchanged.
func Answer(sess *model.Session, s model.Step, value string) (model.Step, error) {
	value = strings.TrimSpace(value)
	info, ok := steps[s.Family]
	if !ok || info.kind == KindLocation || info.kind == KindTemplate || info.kind == KindPhoto || info.kind == KindBranch {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "step " + s.String() + " does not take a typed answer"}
	}
	if s.Family == model.FamilyTimeSlot {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "time slots are chosen with ChooseSlot"}
	}
	if err := check(sess, s, value); err != nil {
		return model.Step{}, err
	}

	switch info.target {
	case targetPickup, targetDrop:
		address(sess, s).Set(info.addr, value)
	case targetParcel:
		parcel(sess, s).Set(info.parcel, value)
	case targetDeliveryType:
		sess.Order.OrderDeliveryType = model.DeliveryType(value)
		sess.Order.ClearSchedule()
		Push(sess, s)
		if sess.Order.OrderDeliveryType == model.DeliverySlotTime {
			return model.StepOf(model.FamilyTimeSlot), nil
		}
		return finalize, nil
	}
	Push(sess, s)
	return NextStep(sess, s), nil
}

// Skip records the skip sentinel for an optional step.
func Skip(sess *model.Session, s model.Step) (model.Step, error) {
	if !Skippable(s.Family) {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "step " + s.String() + " is required"}
	}
	return Answer(sess, s, model.SkipValue)
}

// AnswerLocation stores a shared location for a location step.
func AnswerLocation(sess *model.Session, s model.Step, lat, lng float64) (model.Step, error) {
	info := steps[s.Family]
	if info.kind != KindLocation {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "step " + s.String() + " does not take a location"}
	}
	a := address(sess, s)
	if a == nil {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "no drop-off item at " + s.String()}
	}
	a.SetLocation(lat, lng)
	Push(sess, s)
	return NextStep(sess, s), nil
}

// ChooseSlot applies the i-th cached time slot. Group orders are switched to
// SlotTime delivery since slots are their only scheduling mode.
func ChooseSlot(sess *model.Session, i int) (model.Step, error) {
	if i < 0 || i >= len(sess.AvailableSlots) {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "selected time slot is no longer available"}
	}
	slot := sess.AvailableSlots[i]
	sess.Order.PickupDateTime = slot.PickupStartTime
	sess.Order.DropOffDateTime = slot.DropOffStartTime
	if sess.OrderType == model.OrderTypeGroup {
		sess.Order.OrderDeliveryType = model.DeliverySlotTime
	}
	sess.AvailableSlots = nil
	Push(sess, model.StepOf(model.FamilyTimeSlot))
	return finalize, nil
}

// AddAnother opens the next group item and returns its input step.
func AddAnother(sess *model.Session) model.Step {
	Push(sess, model.At(model.FamilyAddAnother, sess.CurrentDropIndex))
	sess.CurrentDropIndex++
	EnsureItem(sess.Order, sess.CurrentDropIndex)
	return model.At(model.FamilyDropoffInput, sess.CurrentDropIndex)
}

// FinishItems closes the item cycle and moves on to scheduling.
func FinishItems(sess *model.Session) model.Step {
	Push(sess, model.At(model.FamilyAddAnother, sess.CurrentDropIndex))
	return model.StepOf(model.FamilyTimeSlot)
}

// EnsureItem grows the group item list so that index i exists.
func EnsureItem(o *model.Order, i int) *model.OrderItem {
	for len(o.Orders) <= i {
		o.Orders = append(o.Orders, model.OrderItem{})
	}
	return &o.Orders[i]
}

func check(sess *model.Session, s model.Step, value string) error {
	info := steps[s.Family]
	var c validate.Check
	switch info.target {
	case targetPickup:
		c = validate.AddressField("Sender", info.addr, value)
	case targetDrop:
		if address(sess, s) == nil {
			return &model.StateError{Action: sess.Action, Reason: "no drop-off item at " + s.String()}
		}
		c = validate.AddressField("Recipient", info.addr, value)
	case targetParcel:
		if parcel(sess, s) == nil {
			return &model.StateError{Action: sess.Action, Reason: "no drop-off item at " + s.String()}
		}
		c = parcelChoice(info.parcel, value)
	case targetDeliveryType:
		c = deliveryChoice(value)
	}
	if !c.Valid {
		return model.NewValidationError([]model.FieldError{{Field: fieldName(info), Message: c.Message}})
	}
	return nil
}

func parcelChoice(f model.ParcelField, value string) validate.Check {
	switch f {
	case model.FieldSize:
		n, err := strconv.Atoi(value)
		if _, ok := model.ParcelSizes[n]; err != nil || !ok {
			return validate.Check{Message: "Please choose one of the offered parcel sizes."}
		}
	case model.FieldContent:
		if !slices.Contains(model.ParcelContents, value) {
			return validate.Check{Message: "Please choose one of the offered parcel contents."}
		}
	default:
		return validate.ParcelField(f, value)
	}
	return validate.Check{Valid: true}
}

func deliveryChoice(value string) validate.Check {
	switch model.DeliveryType(value) {
	case model.DeliveryOnDemand, model.DeliverySlotTime:
		return validate.Check{Valid: true}
	}
	return validate.Check{Message: "Please choose a delivery type."}
}

func fieldName(info stepInfo) string {
	switch info.target {
	case targetPickup, targetDrop:
		return string(info.addr)
	case targetParcel:
		return string(info.parcel)
	}
	return "orderDeliveryType"
}
