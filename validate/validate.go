// Package validate holds the field rules shared by every input mode. Each rule
// reports pass or fail with a message that can be shown to the user as is.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"CourierBot/model"
)

// Check is the outcome of one rule.
type Check struct {
	Valid   bool
	Message string
}

var pass = Check{Valid: true, Message: "Valid"}

func fail(msg string) Check {
	return Check{Message: msg}
}

var (
	forbiddenPhoneChars = regexp.MustCompile(`[^\d\s+]`)
	nonDigits           = regexp.MustCompile(`\D`)
	mobileNumber        = regexp.MustCompile(`^5[0345]\d{8}$`)
	shortNumber         = regexp.MustCompile(`^\d{1,4}$`)
	allDigits           = regexp.MustCompile(`^\d+$`)
)

// IsSkip reports whether v is the skip sentinel.
func IsSkip(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), model.SkipValue)
}

// Required passes when v is not blank.
func Required(label, v string) Check {
	if strings.TrimSpace(v) == "" {
		return fail("'" + label + "' is required.")
	}
	return pass
}

// NormalizePhone strips separators and the 90 or 0 national prefix and returns
// the ten-digit mobile number.
func NormalizePhone(v string) (string, Check) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fail("Phone number cannot be empty.")
	}
	if forbiddenPhoneChars.MatchString(v) {
		return "", fail("Phone number contains invalid characters. Only digits, spaces, and '+' are allowed.")
	}
	if strings.LastIndex(v, "+") > 0 {
		return "", fail("The '+' symbol can only be at the beginning of the phone number.")
	}
	digits := nonDigits.ReplaceAllString(v, "")
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if !mobileNumber.MatchString(digits) {
		return "", fail("This does not appear to be a valid Turkish mobile number format.")
	}
	return digits, pass
}

// Phone accepts local and +90 mobile numbers.
func Phone(v string) Check {
	_, c := NormalizePhone(v)
	return c
}

// ShortNumber accepts a 1-4 digit numeric string, as used for building number,
// floor and unit.
func ShortNumber(label, v string) Check {
	if !shortNumber.MatchString(strings.TrimSpace(v)) {
		return fail("'" + label + "' must be a number with 4 digits or less.")
	}
	return pass
}

// PostalCode is optional; when present and not skipped it must be all digits.
func PostalCode(v string) Check {
	v = strings.TrimSpace(v)
	if v == "" || IsSkip(v) {
		return pass
	}
	if !allDigits.MatchString(v) {
		return fail("'Postal Code' must only contain numbers.")
	}
	return pass
}

// Number parses v as a finite decimal number. NaN and infinities are not
// numbers here.
func Number(v string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Weight must be a strictly positive number of grams.
func Weight(v string) Check {
	v = strings.TrimSpace(v)
	if v == "" {
		return fail("Weight cannot be empty.")
	}
	n, ok := Number(v)
	if !ok {
		return fail("Weight must be a number.")
	}
	if n <= 0 {
		return fail("Weight must be a positive number.")
	}
	return pass
}

// Value is optional; when present and not skipped it must be numeric.
func Value(v string) Check {
	v = strings.TrimSpace(v)
	if v == "" || IsSkip(v) {
		return pass
	}
	if _, ok := Number(v); !ok {
		return fail("'Value' must be a valid number.")
	}
	return pass
}

// AddressField applies the rule for one address field. role is "Sender" or
// "Recipient" and only affects the name label.
func AddressField(role string, f model.AddressField, v string) Check {
	switch f {
	case model.FieldFullName:
		return Required(role+" Name", v)
	case model.FieldPhoneNumber:
		return Phone(v)
	case model.FieldFullAddress:
		return Required("Full Address", v)
	case model.FieldBuildingNo:
		return ShortNumber("Building No", v)
	case model.FieldFloor:
		return ShortNumber("Floor", v)
	case model.FieldUnit:
		return ShortNumber("Unit", v)
	case model.FieldPostalCode:
		return PostalCode(v)
	}
	return pass
}

// ParcelField applies the rule for one text parcel field.
func ParcelField(f model.ParcelField, v string) Check {
	switch f {
	case model.FieldWeight:
		return Weight(v)
	case model.FieldValue:
		return Value(v)
	}
	return pass
}
