package app

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

const minPasswordLength = 6

var (
	nameRegex  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// validateContactInput checks a contact's required fields in order and
// returns the first violation's message, or "" when everything passes.
func validateContactInput(firstName, lastName string, phones []string) string {
	if !nameRegex.MatchString(firstName) {
		return ErrInvalidFirstName
	}
	if !nameRegex.MatchString(lastName) {
		return ErrInvalidLastName
	}
	if len(phones) == 0 {
		return ErrPhoneListEmpty
	}
	return validatePhoneNumbers(phones)
}

// validatePhoneNumbers enforces the 10-digit pattern and rejects
// duplicates within a single request.
func validatePhoneNumbers(phones []string) string {
	seen := make(map[string]bool, len(phones))
	for _, phone := range phones {
		if !phoneRegex.MatchString(phone) {
			return invalidPhoneMsg(phone)
		}
		if seen[phone] {
			return duplicatePhoneMsg(phone)
		}
		seen[phone] = true
	}
	return ""
}

type registerInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	DateOfBirth     string
	Gender          string
	Address         string
	PhoneNumbers    []string
}

func validateRegisterInput(in registerInput) string {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" ||
		in.ConfirmPassword == "" || in.DateOfBirth == "" || in.Gender == "" || in.Address == "" {
		return ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !emailRegex.MatchString(in.Email) {
		return ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if !nameRegex.MatchString(in.FirstName) {
		return ErrInvalidFirstName
	}
	if !nameRegex.MatchString(in.LastName) {
		return ErrInvalidLastName
	}
	if len(in.PhoneNumbers) == 0 {
		return ErrPhonesRequired
	}
	return validatePhoneNumbers(in.PhoneNumbers)
}

// formPhoneNumbers reads phone numbers from a form that may send them as
// repeated fields (phoneNumbers / phoneNumbers[]) or as one JSON-encoded
// array. The second return reports whether the field was submitted at
// all, which update handlers need to tell "unchanged" from "emptied".
func formPhoneNumbers(c *gin.Context) ([]string, bool) {
	if values := c.PostFormArray("phoneNumbers[]"); len(values) > 0 {
		return trimAll(values), true
	}

	values, submitted := c.GetPostFormArray("phoneNumbers")
	if !submitted {
		return nil, false
	}

	// A single value may be a JSON array string.
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(values[0]), &decoded); err == nil {
			return trimAll(decoded), true
		}
	}

	return trimAll(values), true
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// optionalFormField returns a pointer for optional text fields; absent or
// blank values come back nil.
func optionalFormField(c *gin.Context, key string) (*string, bool) {
	v, submitted := c.GetPostForm(key)
	if !submitted {
		return nil, false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, true
	}
	return &v, true
}
