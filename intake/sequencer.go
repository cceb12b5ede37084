package intake

import (
	"slices"

	"CourierBot/model"
)

// SingleSteps is the canonical question order of a single order.
var SingleSteps = []model.Family{
	model.FamilyPickupFullName,
	model.FamilyPickupPhoneNumber,
	model.FamilyPickupFullAddress,
	model.FamilyPickupLocation,
	model.FamilyPickupBuildingNo,
	model.FamilyPickupFloor,
	model.FamilyPickupUnit,
	model.FamilyPickupPostalCode,
	model.FamilyPickupNote,
	model.FamilyDropFullName,
	model.FamilyDropPhoneNumber,
	model.FamilyDropFullAddress,
	model.FamilyDropLocation,
	model.FamilyDropBuildingNo,
	model.FamilyDropFloor,
	model.FamilyDropUnit,
	model.FamilyDropPostalCode,
	model.FamilyDropNote,
	model.FamilyParcelWeight,
	model.FamilyParcelSize,
	model.FamilyParcelContent,
	model.FamilyParcelValue,
	model.FamilyDeliveryType,
	model.FamilyFinalize,
}

// GroupPickupSteps run once per group order.
var GroupPickupSteps = []model.Family{
	model.FamilyGroupPickupInput,
	model.FamilyPickupLocation,
}

// GroupItemSteps repeat once per drop-off item.
var GroupItemSteps = []model.Family{
	model.FamilyDropoffInput,
	model.FamilyDropLocation,
	model.FamilyParcelSize,
	model.FamilyParcelContent,
	model.FamilyAddAnother,
}

var finalize = model.StepOf(model.FamilyFinalize)

// NextStep returns the first unanswered step after current in the session's
// canonical order. A step missing from the order yields finalize.
func NextStep(sess *model.Session, current model.Step) model.Step {
	if sess.OrderType == model.OrderTypeGroup {
		return nextGroupStep(sess, current)
	}
	return nextSingleStep(sess, current)
}

func nextSingleStep(sess *model.Session, current model.Step) model.Step {
	start := slices.Index(SingleSteps, current.Family)
	switch {
	case current.Family == model.FamilySingleTemplate || current.Family == model.FamilySingleVision:
		// whole-order input modes sit before the first question
		start = -1
	case start == -1:
		return finalize
	}
	for _, f := range SingleSteps[start+1:] {
		s := model.StepOf(f)
		if !answered(sess, s) {
			return s
		}
	}
	return finalize
}

// nextGroupStep scans the pickup steps followed by the item cycle of the
// active drop index.
func nextGroupStep(sess *model.Session, current model.Step) model.Step {
	i := sess.CurrentDropIndex
	order := make([]model.Step, 0, len(GroupPickupSteps)+len(GroupItemSteps))
	for _, f := range GroupPickupSteps {
		order = append(order, model.StepOf(f))
	}
	for _, f := range GroupItemSteps {
		order = append(order, model.At(f, i))
	}
	start := slices.Index(order, current)
	if start == -1 {
		return finalize
	}
	for _, s := range order[start+1:] {
		if !answered(sess, s) {
			return s
		}
	}
	return finalize
}

// FirstStep returns the entry step of a stepwise single flow or a group flow.
func FirstStep(t model.OrderType) model.Step {
	if t == model.OrderTypeGroup {
		return model.StepOf(model.FamilyGroupPickupInput)
	}
	return model.StepOf(model.FamilyPickupFullName)
}
