package model

// AddressPayload is the address shape accepted by the provider.
type AddressPayload struct {
	FullName    string   `json:"fullName"`
	PhoneNumber string   `json:"phoneNumber"`
	FullAddress string   `json:"fullAddress"`
	BuildingNo  string   `json:"buildingNo"`
	Floor       string   `json:"floor"`
	Unit        string   `json:"unit"`
	PostalCode  string   `json:"postalCode"`
	Note        string   `json:"note"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type ParcelPayload struct {
	Weight       int      `json:"weight"`
	Size         int      `json:"size"`
	OrderContent string   `json:"orderContent"`
	Value        *float64 `json:"value"`
}

type SinglePayload struct {
	PickupDateTime    string         `json:"pickupDateTime"`
	DropOffDateTime   string         `json:"dropOffDateTime"`
	OrderDeliveryType DeliveryType   `json:"orderDeliveryType"`
	IsDraft           bool           `json:"isDraft"`
	PickupAddress     AddressPayload `json:"pickupAddress"`
	DropAddress       AddressPayload `json:"dropAddress"`
	Parcel            ParcelPayload  `json:"parcel"`
}

type OrderItemPayload struct {
	DropAddress AddressPayload `json:"dropAddress"`
	Parcel      ParcelPayload  `json:"parcel"`
}

type GroupPayload struct {
	PickupDateTime    string             `json:"pickupDateTime"`
	DropOffDateTime   string             `json:"dropOffDateTime"`
	OrderDeliveryType DeliveryType       `json:"orderDeliveryType"`
	IsDraft           bool               `json:"isDraft"`
	PickupAddress     AddressPayload     `json:"pickupAddress"`
	Orders            []OrderItemPayload `json:"orders"`
}

// SingleQuoteRequest is the body of the single-order pricing call.
type SingleQuoteRequest struct {
	SourceLatitude       float64      `json:"sourceLatitude"`
	SourceLongitude      float64      `json:"sourceLongitude"`
	DestinationLatitude  float64      `json:"destinationLatitude"`
	DestinationLongitude float64      `json:"destinationLongitude"`
	Size                 int          `json:"size"`
	DeliveryType         DeliveryType `json:"deliveryType"`
	Weight               int          `json:"weight"`
}

type GroupQuoteParcel struct {
	Weight               int      `json:"weight"`
	Size                 int      `json:"size"`
	Value                *float64 `json:"value"`
	DestinationLatitude  float64  `json:"destinationLatitude"`
	DestinationLongitude float64  `json:"destinationLongitude"`
}

// GroupQuoteRequest is the body of the group pricing call.
type GroupQuoteRequest struct {
	SourceLatitude  float64            `json:"sourceLatitude"`
	SourceLongitude float64            `json:"sourceLongitude"`
	Parcels         []GroupQuoteParcel `json:"parcels"`
}

// StoredOrder is one persisted submission.
type StoredOrder struct {
	OrderID string `json:"orderId"`
	Order   any    `json:"order"`
}

// Account is the credential kept for a logged-in user.
type Account struct {
	Token string `json:"token"`
	Phone string `json:"phone"`
}
