package intake

import (
	"strings"

	"CourierBot/model"
	"CourierBot/validate"
)

// ParseTemplate reads "Label: value" lines into a map keyed by the cleaned,
// lower-cased label. A label is kept when its value is not empty or when the
// label was marked "(optional)".
func ParseTemplate(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, optional, ok := splitLine(line)
		if !ok {
			continue
		}
		if value != "" || optional {
			out[key] = value
		}
	}
	return out
}

func splitLine(line string) (key, value string, optional, ok bool) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false, false
	}
	raw := line[:i]
	optional = strings.Contains(strings.ToLower(raw), "(optional)")
	key = cleanLabel(raw)
	if key == "" {
		return "", "", false, false
	}
	return key, strings.TrimSpace(line[i+1:]), optional, true
}

func cleanLabel(s string) string {
	s = strings.NewReplacer("*", "", "_", "").Replace(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "(optional)", "")
	return strings.Join(strings.Fields(s), " ")
}

type addressLabel struct {
	label string
	field model.AddressField
}

type parcelLabel struct {
	label string
	field model.ParcelField
}

// Accepted labels per field. The first present label wins.
var (
	senderLabels = []addressLabel{
		{"sender name", model.FieldFullName},
		{"full name", model.FieldFullName},
		{"name", model.FieldFullName},
		{"sender phone", model.FieldPhoneNumber},
		{"phone number", model.FieldPhoneNumber},
		{"phone", model.FieldPhoneNumber},
		{"full address", model.FieldFullAddress},
		{"address", model.FieldFullAddress},
		{"building no", model.FieldBuildingNo},
		{"floor", model.FieldFloor},
		{"unit", model.FieldUnit},
		{"postal code", model.FieldPostalCode},
		{"note", model.FieldNote},
	}
	recipientLabels = []addressLabel{
		{"recipient name", model.FieldFullName},
		{"full name", model.FieldFullName},
		{"name", model.FieldFullName},
		{"recipient phone", model.FieldPhoneNumber},
		{"phone number", model.FieldPhoneNumber},
		{"phone", model.FieldPhoneNumber},
		{"full address", model.FieldFullAddress},
		{"address", model.FieldFullAddress},
		{"building no", model.FieldBuildingNo},
		{"floor", model.FieldFloor},
		{"unit", model.FieldUnit},
		{"postal code", model.FieldPostalCode},
		{"note", model.FieldNote},
	}
	parcelLabels = []parcelLabel{
		{"weight (grams)", model.FieldWeight},
		{"weight", model.FieldWeight},
		{"value", model.FieldValue},
	}
)

// applyAddress sets every text field of a from data. Fields without a matching
// label are set to the empty string so that validation reports them.
func applyAddress(a *model.Address, data map[string]string, labels []addressLabel) {
	for _, f := range model.AddressTextFields {
		a.Set(f, lookup(data, f, labels))
	}
}

func lookup(data map[string]string, f model.AddressField, labels []addressLabel) string {
	for _, l := range labels {
		if l.field != f {
			continue
		}
		if v, ok := data[l.label]; ok {
			return v
		}
	}
	return ""
}

func applyParcel(p *model.Parcel, data map[string]string) {
	for _, f := range []model.ParcelField{model.FieldWeight, model.FieldValue} {
		v := ""
		for _, l := range parcelLabels {
			if l.field != f {
				continue
			}
			if got, ok := data[l.label]; ok {
				v = got
				break
			}
		}
		p.Set(f, v)
	}
}

func anyLabel(data map[string]string, labels []addressLabel) bool {
	for _, l := range labels {
		if _, ok := data[l.label]; ok {
			return true
		}
	}
	return false
}

const (
	headerPickup = "pickup details"
	headerDrop   = "drop-off details"
	headerParcel = "parcel details"
)

var errTemplateShape = &model.ParseError{Reason: "Template format not recognized. Please use the provided template with 'Pickup Details', 'Drop-off Details', and 'Parcel Details' sections."}

// splitSections groups lines under the section header they follow. A header is
// a line whose label names the section and carries no value.
func splitSections(text string) map[string]string {
	sections := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(text, "\n") {
		if h, ok := sectionHeader(line); ok {
			current = h
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	out := make(map[string]string, len(sections))
	for h, lines := range sections {
		out[h] = strings.Join(lines, "\n")
	}
	return out
}

func sectionHeader(line string) (string, bool) {
	label := line
	if i := strings.Index(line, ":"); i >= 0 {
		if strings.TrimSpace(line[i+1:]) != "" {
			return "", false
		}
		label = line[:i]
	}
	label = cleanLabel(label)
	for _, h := range []string{headerPickup, headerDrop, headerParcel} {
		if strings.Contains(label, h) {
			return h, true
		}
	}
	return "", false
}

// ApplySingleTemplate fills the pickup, drop-off and parcel text fields of a
// single order from a filled template and validates them.
func ApplySingleTemplate(sess *model.Session, text string) (model.Step, error) {
	sections := splitSections(text)
	for _, h := range []string{headerPickup, headerDrop, headerParcel} {
		if _, ok := sections[h]; !ok {
			return model.Step{}, errTemplateShape
		}
	}
	o := sess.Order
	applyAddress(&o.PickupAddress, ParseTemplate(sections[headerPickup]), senderLabels)
	applyAddress(&o.DropAddress, ParseTemplate(sections[headerDrop]), recipientLabels)
	applyParcel(&o.Parcel, ParseTemplate(sections[headerParcel]))
	if err := validate.Single(o); err != nil {
		return model.Step{}, err
	}
	s := model.StepOf(model.FamilySingleTemplate)
	Push(sess, s)
	return NextStep(sess, s), nil
}

// ApplyGroupPickupTemplate fills the shared pickup address of a group order.
func ApplyGroupPickupTemplate(sess *model.Session, text string) (model.Step, error) {
	data := ParseTemplate(text)
	if !anyLabel(data, senderLabels) {
		return model.Step{}, &model.ParseError{Reason: "Template format not recognized. Please fill in the pickup template."}
	}
	applyAddress(&sess.Order.PickupAddress, data, senderLabels)
	if err := validate.GroupPickup(&sess.Order.PickupAddress); err != nil {
		return model.Step{}, err
	}
	s := model.StepOf(model.FamilyGroupPickupInput)
	Push(sess, s)
	return NextStep(sess, s), nil
}

// ApplyDropoffTemplate fills the drop-off address and parcel weight and value
// of group item i.
func ApplyDropoffTemplate(sess *model.Session, i int, text string) (model.Step, error) {
	data := ParseTemplate(text)
	if !anyLabel(data, recipientLabels) {
		return model.Step{}, &model.ParseError{Reason: "Template format not recognized. Please fill in the drop-off template."}
	}
	item := EnsureItem(sess.Order, i)
	applyAddress(&item.DropAddress, data, recipientLabels)
	applyParcel(&item.Parcel, data)
	if err := validate.GroupItem(i, item); err != nil {
		return model.Step{}, err
	}
	s := model.At(model.FamilyDropoffInput, i)
	Push(sess, s)
	return NextStep(sess, s), nil
}
