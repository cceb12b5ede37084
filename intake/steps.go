// Package intake turns user answers into a validated draft order. It owns the
// canonical step order of both flows, the history stack used for undo, the three
// input adapters and the assembly of the provider payloads.
package intake

import "CourierBot/model"

type target int

const (
	targetNone target = iota
	targetPickup
	targetDrop
	targetParcel
	targetDeliveryType
)

// Kind tells the orchestrator what sort of input a step expects.
type Kind int

const (
	KindText Kind = iota
	KindLocation
	KindChoice
	KindTemplate
	KindPhoto
	KindBranch
)

type stepInfo struct {
	target    target
	addr      model.AddressField
	parcel    model.ParcelField
	kind      Kind
	skippable bool
}

var steps = map[model.Family]stepInfo{
	model.FamilyPickupFullName:    {target: targetPickup, addr: model.FieldFullName},
	model.FamilyPickupPhoneNumber: {target: targetPickup, addr: model.FieldPhoneNumber},
	model.FamilyPickupFullAddress: {target: targetPickup, addr: model.FieldFullAddress},
	model.FamilyPickupLocation:    {target: targetPickup, addr: model.FieldLocation, kind: KindLocation},
	model.FamilyPickupBuildingNo:  {target: targetPickup, addr: model.FieldBuildingNo},
	model.FamilyPickupFloor:       {target: targetPickup, addr: model.FieldFloor},
	model.FamilyPickupUnit:        {target: targetPickup, addr: model.FieldUnit},
	model.FamilyPickupPostalCode:  {target: targetPickup, addr: model.FieldPostalCode, skippable: true},
	model.FamilyPickupNote:        {target: targetPickup, addr: model.FieldNote, skippable: true},
	model.FamilyDropFullName:      {target: targetDrop, addr: model.FieldFullName},
	model.FamilyDropPhoneNumber:   {target: targetDrop, addr: model.FieldPhoneNumber},
	model.FamilyDropFullAddress:   {target: targetDrop, addr: model.FieldFullAddress},
	model.FamilyDropLocation:      {target: targetDrop, addr: model.FieldLocation, kind: KindLocation},
	model.FamilyDropBuildingNo:    {target: targetDrop, addr: model.FieldBuildingNo},
	model.FamilyDropFloor:         {target: targetDrop, addr: model.FieldFloor},
	model.FamilyDropUnit:          {target: targetDrop, addr: model.FieldUnit},
	model.FamilyDropPostalCode:    {target: targetDrop, addr: model.FieldPostalCode, skippable: true},
	model.FamilyDropNote:          {target: targetDrop, addr: model.FieldNote, skippable: true},
	model.FamilyParcelWeight:      {target: targetParcel, parcel: model.FieldWeight},
	model.FamilyParcelSize:        {target: targetParcel, parcel: model.FieldSize, kind: KindChoice},
	model.FamilyParcelContent:     {target: targetParcel, parcel: model.FieldContent, kind: KindChoice},
	model.FamilyParcelValue:       {target: targetParcel, parcel: model.FieldValue, skippable: true},
	model.FamilyDeliveryType:      {target: targetDeliveryType, kind: KindChoice},
	model.FamilyTimeSlot:          {kind: KindChoice},
	model.FamilyFinalize:          {kind: KindBranch},
	model.FamilySingleTemplate:    {kind: KindTemplate},
	model.FamilySingleVision:      {kind: KindPhoto},
	model.FamilyGroupPickupInput:  {kind: KindTemplate},
	model.FamilyDropoffInput:      {kind: KindTemplate},
	model.FamilyAddAnother:        {kind: KindBranch},
}

// KindOf returns the input kind of family f.
func KindOf(f model.Family) Kind {
	return steps[f].kind
}

// Skippable reports whether f accepts the skip sentinel.
func Skippable(f model.Family) bool {
	return steps[f].skippable
}

// address resolves the address a step writes to. Drop-off steps of a group
// order resolve to the item at the step's index.
func address(sess *model.Session, s model.Step) *model.Address {
	o := sess.Order
	switch steps[s.Family].target {
	case targetPickup:
		return &o.PickupAddress
	case targetDrop:
		if sess.OrderType == model.OrderTypeGroup {
			if item := o.Item(s.Index); item != nil {
				return &item.DropAddress
			}
			return nil
		}
		return &o.DropAddress
	}
	return nil
}

func parcel(sess *model.Session, s model.Step) *model.Parcel {
	if steps[s.Family].target != targetParcel {
		return nil
	}
	o := sess.Order
	if sess.OrderType == model.OrderTypeGroup {
		if item := o.Item(s.Index); item != nil {
			return &item.Parcel
		}
		return nil
	}
	return &o.Parcel
}

// answered reports whether the draft field a step represents is defined.
func answered(sess *model.Session, s model.Step) bool {
	o := sess.Order
	info := steps[s.Family]
	switch s.Family {
	case model.FamilyGroupPickupInput:
		return o.PickupAddress.Has(model.FieldFullName)
	case model.FamilyDropoffInput:
		item := o.Item(s.Index)
		return item != nil && item.DropAddress.Has(model.FieldFullName)
	}
	switch info.target {
	case targetPickup, targetDrop:
		a := address(sess, s)
		return a != nil && a.Has(info.addr)
	case targetParcel:
		p := parcel(sess, s)
		return p != nil && p.Has(info.parcel)
	case targetDeliveryType:
		return o.OrderDeliveryType != ""
	}
	return false
}
