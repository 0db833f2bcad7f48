package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ]{6,18}$`)

// Required fails when value is empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLen fails when value is longer than max runes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// MinLen fails when value is shorter than min runes.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters long", min)},
	}
}

// OneOf fails when value is not among allowed.
func OneOf[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", allowed)},
	}
}

// Between fails when value is outside [min, max].
func Between[T ~int | ~int64 | ~float64](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool { return value >= min && value <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be between %v and %v", min, max)},
	}
}

// NonNegative fails for decimal amounts below zero.
func NonNegative(field string, value decimal.Decimal) Rule {
	return Rule{
		Check: func() bool { return !value.IsNegative() },
		Error: ValidationError{Field: field, Message: "must not be negative"},
	}
}

// NotBefore fails when value is strictly before start.
func NotBefore(field string, value, start time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.Before(start) },
		Error: ValidationError{Field: field, Message: "must not be before " + start.Format(time.DateOnly)},
	}
}

// NotEqual fails when value equals other. Used for self references.
func NotEqual[T comparable](field string, value, other T, message string) Rule {
	return Rule{
		Check: func() bool { return value != other },
		Error: ValidationError{Field: field, Message: message},
	}
}

// Email fails unless value is a bare address with a dotted domain.
func Email(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return strings.Contains(domain, ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// Phone accepts digits and spaces with an optional leading plus.
func Phone(field, value string) Rule {
	return Rule{
		Check: func() bool { return phoneRegex.MatchString(strings.TrimSpace(value)) },
		Error: ValidationError{Field: field, Message: "must be a valid phone number"},
	}
}

// Latitude fails outside [-90, 90].
func Latitude(field string, value float64) Rule {
	return Rule{
		Check: func() bool { return value >= -90 && value <= 90 },
		Error: ValidationError{Field: field, Message: "must be a latitude between -90 and 90"},
	}
}

// Longitude fails outside [-180, 180].
func Longitude(field string, value float64) Rule {
	return Rule{
		Check: func() bool { return value >= -180 && value <= 180 },
		Error: ValidationError{Field: field, Message: "must be a longitude between -180 and 180"},
	}
}
