package model

import "strconv"

// OrderType selects which of the two intake flows a session runs.
type OrderType string

const (
	OrderTypeSingle OrderType = "single"
	OrderTypeGroup  OrderType = "group"
)

// DeliveryType is the delivery option sent to the provider.
type DeliveryType string

const (
	DeliveryOnDemand DeliveryType = "OnDemand"
	DeliverySlotTime DeliveryType = "SlotTime"
)

// SkipValue is the sentinel recorded when the user intentionally leaves an
// optional field blank.
const SkipValue = "skip"

// Parcel sizes offered to the user, keyed by the provider's size code.
var ParcelSizes = map[int]string{1: "Small", 2: "Medium", 3: "Large", 4: "Extra Large"}

// ParcelContents are the content labels offered as buttons.
var ParcelContents = []string{"Food", "Gifts", "Documents", "Flower", "Personal", "Others"}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressField names one field of an Address.
type AddressField string

const (
	FieldFullName    AddressField = "fullName"
	FieldPhoneNumber AddressField = "phoneNumber"
	FieldFullAddress AddressField = "fullAddress"
	FieldBuildingNo  AddressField = "buildingNo"
	FieldFloor       AddressField = "floor"
	FieldUnit        AddressField = "unit"
	FieldPostalCode  AddressField = "postalCode"
	FieldNote        AddressField = "note"
	FieldLocation    AddressField = "location"
)

// AddressTextFields lists the address fields entered as text, in prompt order.
var AddressTextFields = []AddressField{
	FieldFullName,
	FieldPhoneNumber,
	FieldFullAddress,
	FieldBuildingNo,
	FieldFloor,
	FieldUnit,
	FieldPostalCode,
	FieldNote,
}

// Address is a partially filled pickup or drop-off address. A nil field has not
// been answered yet; an empty string has.
type Address struct {
	FullName    *string   `json:"fullName,omitempty"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	FullAddress *string   `json:"fullAddress,omitempty"`
	BuildingNo  *string   `json:"buildingNo,omitempty"`
	Floor       *string   `json:"floor,omitempty"`
	Unit        *string   `json:"unit,omitempty"`
	PostalCode  *string   `json:"postalCode,omitempty"`
	Note        *string   `json:"note,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

func (a *Address) text(f AddressField) **string {
	switch f {
	case FieldFullName:
		return &a.FullName
	case FieldPhoneNumber:
		return &a.PhoneNumber
	case FieldFullAddress:
		return &a.FullAddress
	case FieldBuildingNo:
		return &a.BuildingNo
	case FieldFloor:
		return &a.Floor
	case FieldUnit:
		return &a.Unit
	case FieldPostalCode:
		return &a.PostalCode
	case FieldNote:
		return &a.Note
	}
	return nil
}

// Has reports whether f has been answered.
func (a *Address) Has(f AddressField) bool {
	if f == FieldLocation {
		return a.Location != nil
	}
	p := a.text(f)
	return p != nil && *p != nil
}

// Get returns the text value of f and whether it is set.
func (a *Address) Get(f AddressField) (string, bool) {
	p := a.text(f)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Text returns the text value of f, or "" when unset.
func (a *Address) Text(f AddressField) string {
	v, _ := a.Get(f)
	return v
}

// Set stores a text value for f. Location is set with SetLocation.
func (a *Address) Set(f AddressField, v string) {
	if p := a.text(f); p != nil {
		*p = &v
	}
}

func (a *Address) SetLocation(lat, lng float64) {
	a.Location = &Location{Latitude: lat, Longitude: lng}
}

// Unset clears f so that it counts as unanswered again.
func (a *Address) Unset(f AddressField) {
	if f == FieldLocation {
		a.Location = nil
		return
	}
	if p := a.text(f); p != nil {
		*p = nil
	}
}

// ClearText unsets every text field and keeps the location.
func (a *Address) ClearText() {
	for _, f := range AddressTextFields {
		a.Unset(f)
	}
}

// ParcelField names one field of a Parcel.
type ParcelField string

const (
	FieldWeight  ParcelField = "weight"
	FieldSize    ParcelField = "size"
	FieldContent ParcelField = "content"
	FieldValue   ParcelField = "value"
)

// Parcel is a partially filled parcel description. Weight and Value are kept as
// entered; coercion happens when the payload is assembled.
type Parcel struct {
	Weight  *string `json:"weight,omitempty"`
	Size    *int    `json:"size,omitempty"`
	Content *string `json:"content,omitempty"`
	Value   *string `json:"value,omitempty"`
}

func (p *Parcel) Has(f ParcelField) bool {
	switch f {
	case FieldWeight:
		return p.Weight != nil
	case FieldSize:
		return p.Size != nil
	case FieldContent:
		return p.Content != nil
	case FieldValue:
		return p.Value != nil
	}
	return false
}

// Get returns the value of f as text and whether it is set.
func (p *Parcel) Get(f ParcelField) (string, bool) {
	switch f {
	case FieldWeight:
		return deref(p.Weight)
	case FieldContent:
		return deref(p.Content)
	case FieldValue:
		return deref(p.Value)
	case FieldSize:
		if p.Size == nil {
			return "", false
		}
		return strconv.Itoa(*p.Size), true
	}
	return "", false
}

func (p *Parcel) Text(f ParcelField) string {
	v, _ := p.Get(f)
	return v
}

// Set stores v for f. A size that is not an integer is ignored.
func (p *Parcel) Set(f ParcelField, v string) {
	switch f {
	case FieldWeight:
		p.Weight = &v
	case FieldContent:
		p.Content = &v
	case FieldValue:
		p.Value = &v
	case FieldSize:
		if n, err := strconv.Atoi(v); err == nil {
			p.Size = &n
		}
	}
}

func (p *Parcel) Unset(f ParcelField) {
	switch f {
	case FieldWeight:
		p.Weight = nil
	case FieldSize:
		p.Size = nil
	case FieldContent:
		p.Content = nil
	case FieldValue:
		p.Value = nil
	}
}

// OrderItem is one drop-off of a group order.
type OrderItem struct {
	DropAddress Address `json:"dropAddress"`
	Parcel      Parcel  `json:"parcel"`
}

// Order is the draft being filled in by a session. Single orders use
// DropAddress and Parcel, group orders use Orders. IsDraft stays set on the
// draft; assembled payloads are never drafts.
type Order struct {
	IsDraft           bool         `json:"isDraft"`
	PickupAddress     Address      `json:"pickupAddress"`
	DropAddress       Address      `json:"dropAddress"`
	Parcel            Parcel       `json:"parcel"`
	Orders            []OrderItem  `json:"orders,omitempty"`
	OrderDeliveryType DeliveryType `json:"orderDeliveryType,omitempty"`
	PickupDateTime    string       `json:"pickupDateTime,omitempty"`
	DropOffDateTime   string       `json:"dropOffDateTime,omitempty"`
}

// Item returns the group item at i, or nil when i is out of range.
func (o *Order) Item(i int) *OrderItem {
	if i < 0 || i >= len(o.Orders) {
		return nil
	}
	return &o.Orders[i]
}

// ClearSchedule removes the pickup and drop-off times.
func (o *Order) ClearSchedule() {
	o.PickupDateTime = ""
	o.DropOffDateTime = ""
}

// TimeSlot is a pickup/drop-off window offered by the provider.
type TimeSlot struct {
	PickupStartTime  string `json:"pickupStartTime"`
	DropOffStartTime string `json:"dropOffStartTime"`
}

// Quote is the provider's price answer. Missing amounts stay nil.
type Quote struct {
	PickupPrice   *float64 `json:"pickupPrice"`
	DeliveryPrice *float64 `json:"deliveryPrice"`
	Total         *float64 `json:"total"`
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
