package intake

import (
	"errors"
	"strings"

	"CourierBot/model"
	"CourierBot/validate"
)

// VisionPolicy decides when a photo that failed validation may be patched by
// text instead of retaken.
type VisionPolicy struct {
	MaxCorrectableErrors int
}

// DefaultVisionPolicy allows text correction of up to three fields.
var DefaultVisionPolicy = VisionPolicy{MaxCorrectableErrors: 3}

// Correctable reports whether n failed fields may be corrected by text.
func (p VisionPolicy) Correctable(n int) bool {
	return n > 0 && n <= p.MaxCorrectableErrors
}

type visionKey struct {
	key    string
	target target
	addr   model.AddressField
	parcel model.ParcelField
}

// Schema describes the flat key set one extraction prompt asks for and where
// each key lands in the draft.
type Schema struct {
	Name   string
	Prompt string
	step   model.Family
	group  bool
	keys   []visionKey
}

func addressKeys(prefix string, t target) []visionKey {
	name := func(s string) string {
		if prefix == "" {
			return s
		}
		return prefix + strings.ToUpper(s[:1]) + s[1:]
	}
	keys := []visionKey{
		{key: name("fullName"), target: t, addr: model.FieldFullName},
		{key: name("phoneNumber"), target: t, addr: model.FieldPhoneNumber},
		{key: name("fullAddress"), target: t, addr: model.FieldFullAddress},
		{key: name("buildingNo"), target: t, addr: model.FieldBuildingNo},
		{key: name("floor"), target: t, addr: model.FieldFloor},
		{key: name("unit"), target: t, addr: model.FieldUnit},
		{key: name("postalCode"), target: t, addr: model.FieldPostalCode},
		{key: name("note"), target: t, addr: model.FieldNote},
	}
	if prefix != "" {
		keys[0].key = prefix + "Name"
		keys[1].key = prefix + "Phone"
	}
	return keys
}

var parcelKeys = []visionKey{
	{key: "parcelWeight", target: targetParcel, parcel: model.FieldWeight},
	{key: "parcelValue", target: targetParcel, parcel: model.FieldValue},
}

const promptTail = "Return a single JSON object. If a field isn't found, its value must be an empty string."

var (
	SingleSchema = Schema{
		Name:  "single",
		step:  model.FamilySingleVision,
		keys:  append(append(addressKeys("sender", targetPickup), addressKeys("recipient", targetDrop)...), parcelKeys...),
		Prompt: "You are an expert data extraction assistant for a courier service. Analyze the image, which contains the details of a single delivery order, " +
			"and extract the pickup (sender) details, the drop-off (recipient) details and the parcel details. " +
			"Extract the following fields: senderName, senderPhone, senderFullAddress, senderBuildingNo, senderFloor, senderUnit, senderPostalCode, senderNote, " +
			"recipientName, recipientPhone, recipientFullAddress, recipientBuildingNo, recipientFloor, recipientUnit, recipientPostalCode, recipientNote, " +
			"parcelWeight (in grams, digits only), parcelValue (digits only). " + promptTail,
	}
	GroupPickupSchema = Schema{
		Name:  "group_pickup",
		step:  model.FamilyGroupPickupInput,
		group: true,
		keys:  addressKeys("", targetPickup),
		Prompt: "You are an expert data extraction assistant for a courier service. Analyze the image and extract the pickup address details. " +
			"Extract the following fields: fullName, phoneNumber, fullAddress, buildingNo, floor, unit, postalCode, note. " + promptTail,
	}
	DropoffSchema = Schema{
		Name:  "dropoff",
		step:  model.FamilyDropoffInput,
		group: true,
		keys:  append(addressKeys("recipient", targetDrop), parcelKeys...),
		Prompt: "You are an expert data extraction assistant for a courier service. Analyze the image and extract the drop-off (recipient) details and the parcel details. " +
			"Extract the following fields: recipientName, recipientPhone, recipientFullAddress, recipientBuildingNo, recipientFloor, recipientUnit, recipientPostalCode, recipientNote, " +
			"parcelWeight (in grams, digits only), parcelValue (digits only). " + promptTail,
	}
)

// Keys returns the extraction keys of the schema in prompt order.
func (sc Schema) Keys() []string {
	out := make([]string, len(sc.keys))
	for i, k := range sc.keys {
		out[i] = k.key
	}
	return out
}

// ApplyExtraction maps an extracted key map into the draft and validates the
// result. Keys are matched case-insensitively; missing keys become empty
// strings. On a validation error the extracted values stay in the draft so a
// correction can patch them.
func (sc Schema) ApplyExtraction(sess *model.Session, index int, data map[string]string) (model.Step, error) {
	if data == nil {
		return model.Step{}, &model.ParseError{Reason: "The image could not be read. Please try another picture."}
	}
	lower := make(map[string]string, len(data))
	for k, v := range data {
		lower[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	if sc.group && sc.step == model.FamilyDropoffInput {
		EnsureItem(sess.Order, index)
	}
	for _, k := range sc.keys {
		sc.set(sess, index, k, lower[strings.ToLower(k.key)])
	}
	return sc.finish(sess, index)
}

// ApplyCorrection patches the fields listed in the session's pending correction
// from "key: value" lines and validates again. Lines naming other keys are
// ignored.
func (sc Schema) ApplyCorrection(sess *model.Session, index int, text string) (model.Step, error) {
	if sess.Correction == nil {
		return model.Step{}, &model.StateError{Action: sess.Action, Reason: "no correction pending"}
	}
	data := ParseTemplate(text)
	matched := false
	for _, allowed := range sess.Correction.Keys {
		v, ok := data[allowed]
		if !ok {
			continue
		}
		for _, k := range sc.keys {
			if strings.ToLower(k.key) == allowed {
				sc.set(sess, index, k, v)
				matched = true
			}
		}
	}
	if !matched {
		return model.Step{}, &model.ParseError{Reason: "No correctable fields found. Please reply with the listed keys, one per line."}
	}
	return sc.finish(sess, index)
}

// CorrectionKeys returns the lower-cased extraction keys of the fields that
// failed validation.
func (sc Schema) CorrectionKeys(index int, verr *model.ValidationError) []string {
	var out []string
	for _, fe := range verr.Fields {
		for _, k := range sc.keys {
			if sc.section(index, k.target) != fe.Section || k.fieldName() != fe.Field {
				continue
			}
			out = append(out, strings.ToLower(k.key))
		}
	}
	return out
}

// Offer decides what to do after a failed extraction: with a correctable
// validation error it stores the correction keys on the session and returns
// true.
func (sc Schema) Offer(sess *model.Session, index int, err error, policy VisionPolicy) bool {
	var verr *model.ValidationError
	if !errors.As(err, &verr) || !policy.Correctable(len(verr.Fields)) {
		sess.Correction = nil
		return false
	}
	keys := sc.CorrectionKeys(index, verr)
	if len(keys) == 0 {
		sess.Correction = nil
		return false
	}
	sess.Correction = &model.Correction{Keys: keys}
	return true
}

func (k visionKey) fieldName() string {
	if k.target == targetParcel {
		return string(k.parcel)
	}
	return string(k.addr)
}

func (sc Schema) section(index int, t target) string {
	switch {
	case t == targetPickup:
		return validate.SectionPickup
	case sc.group:
		return validate.ItemSection(index)
	case t == targetDrop:
		return validate.SectionDrop
	}
	return validate.SectionParcel
}

func (sc Schema) set(sess *model.Session, index int, k visionKey, v string) {
	o := sess.Order
	switch k.target {
	case targetPickup:
		o.PickupAddress.Set(k.addr, v)
	case targetDrop:
		if sc.group {
			o.Orders[index].DropAddress.Set(k.addr, v)
		} else {
			o.DropAddress.Set(k.addr, v)
		}
	case targetParcel:
		if sc.group {
			o.Orders[index].Parcel.Set(k.parcel, v)
		} else {
			o.Parcel.Set(k.parcel, v)
		}
	}
}

func (sc Schema) finish(sess *model.Session, index int) (model.Step, error) {
	var err error
	var s model.Step
	switch sc.step {
	case model.FamilySingleVision:
		err = validate.Single(sess.Order)
		s = model.StepOf(model.FamilySingleVision)
	case model.FamilyGroupPickupInput:
		err = validate.GroupPickup(&sess.Order.PickupAddress)
		s = model.StepOf(model.FamilyGroupPickupInput)
	default:
		err = validate.GroupItem(index, &sess.Order.Orders[index])
		s = model.At(model.FamilyDropoffInput, index)
	}
	if err != nil {
		return model.Step{}, err
	}
	sess.Correction = nil
	Push(sess, s)
	return NextStep(sess, s), nil
}
