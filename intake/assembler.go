package intake

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"CourierBot/model"
	"CourierBot/validate"
)

// TimestampLayout is the provider's timestamp format.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC in the provider's format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var leadingInt = regexp.MustCompile(`^[-+]?\d+`)

// Weight coerces an entered weight to whole grams. Anything that does not
// start with a number is 0.
func Weight(v string) int {
	m := leadingInt.FindString(strings.TrimSpace(v))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// Value coerces an entered declared value. Blank, skipped, non-numeric and
// non-finite values are nil.
func Value(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" || validate.IsSkip(v) {
		return nil
	}
	f, ok := validate.Number(v)
	if !ok {
		return nil
	}
	return &f
}

func addressPayload(a *model.Address) model.AddressPayload {
	p := model.AddressPayload{
		FullName:    a.Text(model.FieldFullName),
		PhoneNumber: a.Text(model.FieldPhoneNumber),
		FullAddress: a.Text(model.FieldFullAddress),
		BuildingNo:  a.Text(model.FieldBuildingNo),
		Floor:       a.Text(model.FieldFloor),
		Unit:        a.Text(model.FieldUnit),
		PostalCode:  a.Text(model.FieldPostalCode),
		Note:        a.Text(model.FieldNote),
	}
	if a.Location != nil {
		lat, lng := a.Location.Latitude, a.Location.Longitude
		p.Latitude, p.Longitude = &lat, &lng
	}
	return p
}

func parcelPayload(p *model.Parcel) model.ParcelPayload {
	out := model.ParcelPayload{
		Weight:       Weight(p.Text(model.FieldWeight)),
		OrderContent: p.Text(model.FieldContent),
		Value:        Value(p.Text(model.FieldValue)),
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	return out
}

// schedule returns the delivery type and times to submit. On-demand orders
// are stamped with now without touching the draft.
func schedule(o *model.Order, now time.Time) (model.DeliveryType, string, string) {
	dt := o.OrderDeliveryType
	if dt == "" {
		dt = model.DeliveryOnDemand
	}
	if dt == model.DeliveryOnDemand {
		ts := FormatTimestamp(now)
		return dt, ts, ts
	}
	drop := o.DropOffDateTime
	if drop == "" {
		drop = o.PickupDateTime
	}
	return dt, o.PickupDateTime, drop
}

// BuildSingle assembles the provider payload of a single order.
func BuildSingle(o *model.Order, now time.Time) model.SinglePayload {
	dt, pickup, drop := schedule(o, now)
	return model.SinglePayload{
		PickupDateTime:    pickup,
		DropOffDateTime:   drop,
		OrderDeliveryType: dt,
		IsDraft:           false,
		PickupAddress:     addressPayload(&o.PickupAddress),
		DropAddress:       addressPayload(&o.DropAddress),
		Parcel:            parcelPayload(&o.Parcel),
	}
}

// BuildGroup assembles the provider payload of a group order, one entry per
// drop-off item.
func BuildGroup(o *model.Order, now time.Time) model.GroupPayload {
	dt, pickup, drop := schedule(o, now)
	items := make([]model.OrderItemPayload, len(o.Orders))
	for i := range o.Orders {
		items[i] = model.OrderItemPayload{
			DropAddress: addressPayload(&o.Orders[i].DropAddress),
			Parcel:      parcelPayload(&o.Orders[i].Parcel),
		}
	}
	return model.GroupPayload{
		PickupDateTime:    pickup,
		DropOffDateTime:   drop,
		OrderDeliveryType: dt,
		IsDraft:           false,
		PickupAddress:     addressPayload(&o.PickupAddress),
		Orders:            items,
	}
}

func coords(a *model.Address) (float64, float64) {
	if a.Location == nil {
		return 0, 0
	}
	return a.Location.Latitude, a.Location.Longitude
}

// SingleQuote builds the price request of a single order. Size defaults to 1
// and delivery type to on-demand.
func SingleQuote(o *model.Order) model.SingleQuoteRequest {
	req := model.SingleQuoteRequest{
		Size:         1,
		DeliveryType: model.DeliveryOnDemand,
		Weight:       Weight(o.Parcel.Text(model.FieldWeight)),
	}
	req.SourceLatitude, req.SourceLongitude = coords(&o.PickupAddress)
	req.DestinationLatitude, req.DestinationLongitude = coords(&o.DropAddress)
	if o.Parcel.Size != nil {
		req.Size = *o.Parcel.Size
	}
	if o.OrderDeliveryType != "" {
		req.DeliveryType = o.OrderDeliveryType
	}
	return req
}

// GroupQuote builds the price request of a group order.
func GroupQuote(o *model.Order) model.GroupQuoteRequest {
	var req model.GroupQuoteRequest
	req.SourceLatitude, req.SourceLongitude = coords(&o.PickupAddress)
	for i := range o.Orders {
		item := &o.Orders[i]
		size := 1
		if item.Parcel.Size != nil {
			size = *item.Parcel.Size
		}
		p := model.GroupQuoteParcel{
			Size:   size,
			Weight: Weight(item.Parcel.Text(model.FieldWeight)),
			Value:  Value(item.Parcel.Text(model.FieldValue)),
		}
		p.DestinationLatitude, p.DestinationLongitude = coords(&item.DropAddress)
		req.Parcels = append(req.Parcels, p)
	}
	return req
}

// Submission builds the payload for the session's order once and keeps it on
// the session, so a retry resends exactly the same payload.
func Submission(sess *model.Session, now time.Time) *model.Submission {
	if sess.Submission != nil {
		return sess.Submission
	}
	sub := &model.Submission{}
	if sess.OrderType == model.OrderTypeGroup {
		p := BuildGroup(sess.Order, now)
		sub.Group = &p
	} else {
		p := BuildSingle(sess.Order, now)
		sub.Single = &p
	}
	sess.Submission = sub
	return sub
}
