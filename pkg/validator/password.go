package validator

import "unicode"

// PasswordPolicy describes what a new password must contain.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireDigit     bool
}

// DefaultPasswordPolicy is the registration policy: eight characters, at least
// one upper-case letter and one digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, RequireUppercase: true, RequireDigit: true}
}

// Password returns one rule per policy requirement so each failure is
// reported separately.
func Password(field, value string, p PasswordPolicy) []Rule {
	rules := []Rule{MinLen(field, value, p.MinLength)}
	if p.RequireUppercase {
		rules = append(rules, Rule{
			Check: func() bool { return containsFunc(value, unicode.IsUpper) },
			Error: ValidationError{Field: field, Message: "must contain at least one uppercase letter"},
		})
	}
	if p.RequireDigit {
		rules = append(rules, Rule{
			Check: func() bool { return containsFunc(value, unicode.IsDigit) },
			Error: ValidationError{Field: field, Message: "must contain at least one digit"},
		})
	}
	return rules
}

// PasswordConfirmation fails when the two entries differ.
func PasswordConfirmation(field, password, confirmation string) Rule {
	return Rule{
		Check: func() bool { return password == confirmation },
		Error: ValidationError{Field: field, Message: "passwords do not match"},
	}
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}
