package validator

import (
	"errors"
	"regexp"
	"strings"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits and an optional leading +")

	// ErrInvalidLength indicates the digit count is outside what any numbering plan allows
	ErrInvalidLength = errors.New("phone number must have between 7 and 15 digits")
)

var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

// separators that people commonly type between digit groups
var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "/", "")

// PhoneValidator normalizes and validates user supplied phone numbers
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate returns the normalized form of phone: digits only, keeping a
// leading + when one was given.
// Accepts formats like +94 77 123 4567, 077-123-4567 or (077) 123 4567.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)
	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	digits := strings.TrimPrefix(sanitized, "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize strips separators. A 00 international prefix becomes +.
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = phoneSeparators.Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(phone, "00") && len(phone) > 2 {
		phone = "+" + phone[2:]
	}
	return phone
}
