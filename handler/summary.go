package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"CourierBot/model"
	"CourierBot/transport"
)

const notAvailable = "N/A"

// formatDateTime renders a provider timestamp as dd/mm/yyyy, HH:MM.
func formatDateTime(v string) string {
	if v == "" {
		return notAvailable
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.Format("02/01/2006, 15:04")
		}
	}
	return v
}

func formatAmount(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// orNA escapes a draft value for Markdown, or returns N/A when it is blank.
func orNA(v string) string {
	if v == "" {
		return notAvailable
	}
	return transport.EscapeMarkdown(v)
}

func writeAddress(b *strings.Builder, title string, a *model.Address) {
	fmt.Fprintf(b, "*%s*\n- Name: %s\n- Phone: %s\n- Address: %s\n", title,
		orNA(a.Text(model.FieldFullName)), orNA(a.Text(model.FieldPhoneNumber)), orNA(a.Text(model.FieldFullAddress)))
	if loc := a.Location; loc != nil {
		fmt.Fprintf(b, "- Location: [View on Map](https://www.google.com/maps?q=%s,%s)\n",
			strconv.FormatFloat(loc.Latitude, 'f', -1, 64), strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	}
	fmt.Fprintf(b, "- Building/Floor/Unit: %s / %s / %s\n- Postal Code: %s\n- Note: %s\n\n",
		orNA(a.Text(model.FieldBuildingNo)), orNA(a.Text(model.FieldFloor)), orNA(a.Text(model.FieldUnit)),
		orNA(a.Text(model.FieldPostalCode)), orNA(a.Text(model.FieldNote)))
}

func sizeName(p *model.Parcel) string {
	if p.Size == nil {
		return notAvailable
	}
	if name, ok := model.ParcelSizes[*p.Size]; ok {
		return name
	}
	return notAvailable
}

func writeParcel(b *strings.Builder, title string, p *model.Parcel) {
	fmt.Fprintf(b, "*%s*\n- Content: %s\n- Weight: %sg\n- Size: %s\n- Value: %s\n\n", title,
		orNA(p.Text(model.FieldContent)), orNA(p.Text(model.FieldWeight)), sizeName(p), orNA(p.Text(model.FieldValue)))
}

func singleSummary(o *model.Order, q model.Quote) string {
	var b strings.Builder
	b.WriteString("*Please confirm your order details:*\n\n")
	writeAddress(&b, "Pickup Details", &o.PickupAddress)
	writeAddress(&b, "Drop-off Details", &o.DropAddress)
	writeParcel(&b, "Parcel Details", &o.Parcel)
	fmt.Fprintf(&b, "*Delivery Details*\n- Type: %s\n", orNA(string(o.OrderDeliveryType)))
	if o.OrderDeliveryType == model.DeliverySlotTime {
		fmt.Fprintf(&b, "- Pickup Time: %s\n- Drop-off Time: %s\n", formatDateTime(o.PickupDateTime), formatDateTime(o.DropOffDateTime))
	}
	fmt.Fprintf(&b, "\n*Price Summary:*\n- Delivery Cost: %s\n------------------\n*Total: %s*",
		formatAmount(q.DeliveryPrice), formatAmount(q.Total))
	return b.String()
}

func groupSummary(o *model.Order, q model.Quote) string {
	var b strings.Builder
	b.WriteString("*Please confirm your group order:*\n\n")
	writeAddress(&b, "Pickup Details", &o.PickupAddress)
	fmt.Fprintf(&b, "*Delivery Schedule*\n- Pickup Time: %s\n- Delivery Time: %s\n\n",
		formatDateTime(o.PickupDateTime), formatDateTime(o.DropOffDateTime))
	for i := range o.Orders {
		item := &o.Orders[i]
		writeAddress(&b, fmt.Sprintf("--- Drop-off Details #%d ---", i+1), &item.DropAddress)
		writeParcel(&b, fmt.Sprintf("Parcel Details #%d", i+1), &item.Parcel)
	}
	fmt.Fprintf(&b, "\n*Price Summary:*\n- Pickup: %s\n- Delivery: %s\n------------------\n*Total: %s*",
		formatAmount(q.PickupPrice), formatAmount(q.DeliveryPrice), formatAmount(q.Total))
	return b.String()
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}

func joinComma(keys []string) string {
	return strings.Join(keys, ", ")
}
