package validate

import (
	"fmt"

	"CourierBot/model"
)

const (
	SectionPickup = "Pickup Details"
	SectionDrop   = "Drop-off Details"
	SectionParcel = "Parcel Details"
)

// ItemSection labels errors of the group item at index i.
func ItemSection(i int) string {
	return fmt.Sprintf("Order #%d", i+1)
}

// Address runs every address rule and labels failures with section.
func Address(section, role string, a *model.Address) []model.FieldError {
	var errs []model.FieldError
	for _, f := range model.AddressTextFields {
		if c := AddressField(role, f, a.Text(f)); !c.Valid {
			errs = append(errs, model.FieldError{Section: section, Field: string(f), Message: c.Message})
		}
	}
	return errs
}

// Parcel runs the weight and value rules.
func Parcel(section string, p *model.Parcel) []model.FieldError {
	var errs []model.FieldError
	for _, f := range []model.ParcelField{model.FieldWeight, model.FieldValue} {
		if c := ParcelField(f, p.Text(f)); !c.Valid {
			errs = append(errs, model.FieldError{Section: section, Field: string(f), Message: c.Message})
		}
	}
	return errs
}

// Single validates the text fields of a single order.
func Single(o *model.Order) error {
	var errs []model.FieldError
	errs = append(errs, Address(SectionPickup, "Sender", &o.PickupAddress)...)
	errs = append(errs, Address(SectionDrop, "Recipient", &o.DropAddress)...)
	errs = append(errs, Parcel(SectionParcel, &o.Parcel)...)
	return model.NewValidationError(errs)
}

// GroupPickup validates the shared pickup address of a group order.
func GroupPickup(a *model.Address) error {
	return model.NewValidationError(Address(SectionPickup, "Sender", a))
}

// GroupItem validates the drop-off and parcel of item i.
func GroupItem(i int, item *model.OrderItem) error {
	section := ItemSection(i)
	errs := Address(section, "Recipient", &item.DropAddress)
	errs = append(errs, Parcel(section, &item.Parcel)...)
	return model.NewValidationError(errs)
}

// Group validates the pickup address and every item.
func Group(o *model.Order) error {
	errs := Address(SectionPickup, "Sender", &o.PickupAddress)
	for i := range o.Orders {
		section := ItemSection(i)
		errs = append(errs, Address(section, "Recipient", &o.Orders[i].DropAddress)...)
		errs = append(errs, Parcel(section, &o.Orders[i].Parcel)...)
	}
	return model.NewValidationError(errs)
}
