package intake

import "CourierBot/model"

// Push records s as the step now on display. A step already on top is not
// pushed twice.
func Push(sess *model.Session, s model.Step) {
	if top, ok := sess.Step(); ok && top == s {
		return
	}
	sess.History = append(sess.History, s)
}

// Start resets the session into a fresh flow of type t whose first displayed
// step is first.
func Start(sess *model.Session, t model.OrderType, first model.Step) {
	sess.OrderType = t
	sess.Order = &model.Order{IsDraft: true}
	sess.History = nil
	sess.CurrentDropIndex = 0
	sess.AvailableSlots = nil
	sess.Correction = nil
	sess.Submission = nil
	sess.Quoted = false
	Push(sess, first)
}

// Back pops the current step and undoes the answer that led to it, returning
// the step to display again. At the first step it returns ErrAtBeginning and
// leaves the session unchanged.
func Back(sess *model.Session) (model.Step, error) {
	if len(sess.History) <= 1 {
		return model.Step{}, model.ErrAtBeginning
	}
	left := sess.History[len(sess.History)-1]
	sess.History = sess.History[:len(sess.History)-1]
	target := sess.History[len(sess.History)-1]

	clearAnswer(sess, target)
	leave(sess, left)

	sess.Submission = nil
	sess.Quoted = false
	sess.Correction = nil
	return target, nil
}

// clearAnswer unsets every field the user committed while s was displayed.
func clearAnswer(sess *model.Session, s model.Step) {
	o := sess.Order
	info := steps[s.Family]
	switch s.Family {
	case model.FamilySingleTemplate, model.FamilySingleVision:
		o.PickupAddress.ClearText()
		o.DropAddress.ClearText()
		o.Parcel.Unset(model.FieldWeight)
		o.Parcel.Unset(model.FieldValue)
		return
	case model.FamilyGroupPickupInput:
		o.PickupAddress.ClearText()
		return
	case model.FamilyDropoffInput:
		if item := o.Item(s.Index); item != nil {
			item.DropAddress.ClearText()
			item.Parcel.Unset(model.FieldWeight)
			item.Parcel.Unset(model.FieldValue)
		}
		return
	case model.FamilyDeliveryType:
		o.OrderDeliveryType = ""
		o.ClearSchedule()
		sess.AvailableSlots = nil
		return
	case model.FamilyTimeSlot:
		o.ClearSchedule()
		sess.AvailableSlots = nil
		if sess.OrderType == model.OrderTypeGroup {
			o.OrderDeliveryType = ""
		}
		return
	}
	switch info.target {
	case targetPickup, targetDrop:
		if a := address(sess, s); a != nil {
			a.Unset(info.addr)
		}
	case targetParcel:
		if p := parcel(sess, s); p != nil {
			p.Unset(info.parcel)
		}
	}
}

// leave undoes the side effects of having entered s.
func leave(sess *model.Session, s model.Step) {
	switch s.Family {
	case model.FamilyDropoffInput:
		if len(sess.Order.Orders) > s.Index {
			sess.Order.Orders = sess.Order.Orders[:s.Index]
		}
		sess.CurrentDropIndex = max(0, s.Index-1)
	case model.FamilyTimeSlot, model.FamilyFinalize:
		sess.AvailableSlots = nil
	}
}
