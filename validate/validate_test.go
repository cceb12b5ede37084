package validate_test

import (
	"errors"
	"testing"

	"CourierBot/model"
	"CourierBot/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	t.Run("accepts local and international forms", func(t *testing.T) {
		for _, in := range []string{"05321234567", "+905321234567", "5321234567", "0532 123 45 67", "+90 532 123 4567"} {
			n, c := validate.NormalizePhone(in)
			assert.True(t, c.Valid, in)
			assert.Equal(t, "5321234567", n, in)
		}
	})

	t.Run("rejects numbers outside the mobile range", func(t *testing.T) {
		c := validate.Phone("1234567890")
		assert.False(t, c.Valid)
		assert.Contains(t, c.Message, "valid Turkish mobile number")
	})

	t.Run("rejects forbidden characters", func(t *testing.T) {
		c := validate.Phone("0532-123-4567")
		assert.False(t, c.Valid)
		assert.Contains(t, c.Message, "invalid characters")
	})

	t.Run("rejects plus sign after the first character", func(t *testing.T) {
		c := validate.Phone("90+5321234567")
		assert.False(t, c.Valid)
		assert.Contains(t, c.Message, "'+' symbol")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		c := validate.Phone("  ")
		assert.False(t, c.Valid)
		assert.Equal(t, "Phone number cannot be empty.", c.Message)
	})

	t.Run("rejects unknown operator prefix", func(t *testing.T) {
		assert.False(t, validate.Phone("05121234567").Valid)
	})
}

func TestWeight(t *testing.T) {
	for _, in := range []string{"0", "-5", "abc", "", "NaN", "nan", "Inf", "+Inf", "Infinity", "-Inf"} {
		assert.False(t, validate.Weight(in).Valid, in)
	}
	assert.Equal(t, "Weight must be a number.", validate.Weight("NaN").Message)
	assert.True(t, validate.Weight("500").Valid)
	assert.True(t, validate.Weight("0.5").Valid)
	assert.Equal(t, "Weight must be a positive number.", validate.Weight("-5").Message)
	assert.Equal(t, "Weight must be a number.", validate.Weight("abc").Message)
}

func TestShortNumber(t *testing.T) {
	assert.True(t, validate.ShortNumber("Floor", "3").Valid)
	assert.True(t, validate.ShortNumber("Floor", "1234").Valid)
	assert.False(t, validate.ShortNumber("Floor", "12345").Valid)
	assert.False(t, validate.ShortNumber("Floor", "").Valid)
	assert.False(t, validate.ShortNumber("Floor", "3a").Valid)
	assert.Equal(t, "'Floor' must be a number with 4 digits or less.", validate.ShortNumber("Floor", "x").Message)
}

func TestOptionalFields(t *testing.T) {
	t.Run("postal code", func(t *testing.T) {
		assert.True(t, validate.PostalCode("").Valid)
		assert.True(t, validate.PostalCode("skip").Valid)
		assert.True(t, validate.PostalCode("SKIP").Valid)
		assert.True(t, validate.PostalCode("34000").Valid)
		assert.False(t, validate.PostalCode("34A00").Valid)
	})

	t.Run("value", func(t *testing.T) {
		assert.True(t, validate.Value("").Valid)
		assert.True(t, validate.Value("skip").Valid)
		assert.True(t, validate.Value("12.5").Valid)
		assert.False(t, validate.Value("a lot").Valid)
		for _, in := range []string{"NaN", "Inf", "-Infinity"} {
			assert.False(t, validate.Value(in).Valid, in)
		}
	})

	t.Run("parcel with a non-finite value", func(t *testing.T) {
		p := &model.Parcel{}
		p.Set(model.FieldWeight, "500")
		p.Set(model.FieldSize, "1")
		p.Set(model.FieldContent, "Food")
		p.Set(model.FieldValue, "NaN")
		errs := validate.Parcel(validate.SectionParcel, p)
		require.Len(t, errs, 1)
		assert.Equal(t, string(model.FieldValue), errs[0].Field)
	})
}

func TestSingle(t *testing.T) {
	t.Run("labels errors by section", func(t *testing.T) {
		o := &model.Order{}
		o.PickupAddress.Set(model.FieldFullName, "Jane")
		o.PickupAddress.Set(model.FieldPhoneNumber, "05321234567")
		o.PickupAddress.Set(model.FieldFullAddress, "X Street 1")
		o.PickupAddress.Set(model.FieldBuildingNo, "12")
		o.PickupAddress.Set(model.FieldFloor, "3")
		o.PickupAddress.Set(model.FieldUnit, "4")
		o.Parcel.Set(model.FieldWeight, "0")

		err := validate.Single(o)

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		lines := verr.Lines()
		assert.Contains(t, lines, "Drop-off Details: 'Recipient Name' is required.")
		assert.Contains(t, lines, "Parcel Details: Weight must be a positive number.")
		for _, l := range lines {
			assert.NotContains(t, l, "Pickup Details")
		}
	})

	t.Run("group item errors carry the item number", func(t *testing.T) {
		item := &model.OrderItem{}
		item.Parcel.Set(model.FieldWeight, "abc")

		err := validate.GroupItem(1, item)

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		for _, l := range verr.Lines() {
			assert.Contains(t, l, "Order #2: ")
		}
	})

	t.Run("nil when valid", func(t *testing.T) {
		a := &model.Address{}
		a.Set(model.FieldFullName, "Jane")
		a.Set(model.FieldPhoneNumber, "+905321234567")
		a.Set(model.FieldFullAddress, "X Street 1")
		a.Set(model.FieldBuildingNo, "1")
		a.Set(model.FieldFloor, "0")
		a.Set(model.FieldUnit, "9")
		a.Set(model.FieldPostalCode, "skip")

		assert.NoError(t, validate.GroupPickup(a))
	})
}
