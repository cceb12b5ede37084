package model

import "fmt"

// Family identifies one logical question or branch point of an intake flow.
type Family string

const (
	// Single order, one question per field.
	FamilyPickupFullName    Family = "pickup_fullName"
	FamilyPickupPhoneNumber Family = "pickup_phoneNumber"
	FamilyPickupFullAddress Family = "pickup_fullAddress"
	FamilyPickupLocation    Family = "pickup_location"
	FamilyPickupBuildingNo  Family = "pickup_buildingNo"
	FamilyPickupFloor       Family = "pickup_floor"
	FamilyPickupUnit        Family = "pickup_unit"
	FamilyPickupPostalCode  Family = "pickup_postalCode"
	FamilyPickupNote        Family = "pickup_note"
	FamilyDropFullName      Family = "drop_fullName"
	FamilyDropPhoneNumber   Family = "drop_phoneNumber"
	FamilyDropFullAddress   Family = "drop_fullAddress"
	FamilyDropLocation      Family = "drop_location"
	FamilyDropBuildingNo    Family = "drop_buildingNo"
	FamilyDropFloor         Family = "drop_floor"
	FamilyDropUnit          Family = "drop_unit"
	FamilyDropPostalCode    Family = "drop_postalCode"
	FamilyDropNote          Family = "drop_note"
	FamilyParcelWeight      Family = "parcel_weight"
	FamilyParcelSize        Family = "parcel_size"
	FamilyParcelContent     Family = "parcel_content"
	FamilyParcelValue       Family = "parcel_value"
	FamilyDeliveryType      Family = "delivery_type"
	FamilyTimeSlot          Family = "time_slot"
	FamilyFinalize          Family = "finalize"

	// Single order, whole-order input modes.
	FamilySingleTemplate Family = "single_template"
	FamilySingleVision   Family = "single_vision"

	// Group order. Drop-off families are indexed by item position; parcel size
	// and content, drop location, time slot and finalize are shared with the
	// single flow.
	FamilyGroupPickupInput Family = "group_pickup_input"
	FamilyDropoffInput     Family = "dropoff_input"
	FamilyAddAnother       Family = "add_another"
)

// Step is a tagged step descriptor. Index is the item position for steps that
// repeat per group item and zero otherwise.
type Step struct {
	Family Family `json:"family"`
	Index  int    `json:"index"`
}

// At returns the step of family f for item i.
func At(f Family, i int) Step {
	return Step{Family: f, Index: i}
}

// StepOf returns the unindexed step of family f.
func StepOf(f Family) Step {
	return Step{Family: f}
}

func (s Step) String() string {
	return fmt.Sprintf("%s#%d", s.Family, s.Index)
}
