package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error messages mirror the SPA contract: responses carry the message
// under an "error" key and the status comes from errorStatusMap.
const (
	ErrUnmarshal          = "Invalid request body"
	ErrMissingFields      = "Please enter all the required fields"
	ErrInvalidEmail       = "Please enter a valid email address"
	ErrPasswordTooShort   = "Password must be at least 6 characters long"
	ErrPasswordMismatch   = "Passwords do not match"
	ErrPhonesRequired     = "Phone numbers are required"
	ErrInvalidFirstName   = "First name can only contain letters and spaces."
	ErrInvalidLastName    = "Last name can only contain letters and spaces."
	ErrPhoneListEmpty     = "At least one phone number is required."
	ErrOnlyImageFiles     = "Only image files are allowed!"
	ErrNoChanges          = "No changes detected"
	ErrInvalidID          = "Please enter a valid ID"
	ErrInvalidCredentials = "Invalid email or password"
	ErrUnauthorized       = "Unauthorized!"
	ErrUserNotFound       = "User not found"
	ErrForbidden          = "Forbidden"
	ErrEditNotOwner       = "You are not authorized to edit this contact"
	ErrDeleteNotOwner     = "You are not authorized to delete this contact"
	ErrContactNotFound    = "Contact not found"
	ErrFileNotFound       = "File not found"
	ErrServer             = "Server error"
)

var errorStatusMap = map[string]int{
	ErrUnmarshal:          http.StatusBadRequest,
	ErrMissingFields:      http.StatusBadRequest,
	ErrInvalidEmail:       http.StatusBadRequest,
	ErrPasswordTooShort:   http.StatusBadRequest,
	ErrPasswordMismatch:   http.StatusBadRequest,
	ErrPhonesRequired:     http.StatusBadRequest,
	ErrInvalidFirstName:   http.StatusBadRequest,
	ErrInvalidLastName:    http.StatusBadRequest,
	ErrPhoneListEmpty:     http.StatusBadRequest,
	ErrOnlyImageFiles:     http.StatusBadRequest,
	ErrNoChanges:          http.StatusBadRequest,
	ErrInvalidID:          http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusBadRequest,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrUserNotFound:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrEditNotOwner:       http.StatusUnauthorized,
	ErrDeleteNotOwner:     http.StatusUnauthorized,
	ErrContactNotFound:    http.StatusNotFound,
	ErrFileNotFound:       http.StatusNotFound,
	ErrServer:             http.StatusInternalServerError,
}

func statusForError(msg string) int {
	if status, ok := errorStatusMap[msg]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, msg string, details map[string]string) {
	c.JSON(statusForError(msg), ErrorResponse{Error: msg, Details: details})
}

// writeBadRequest is for messages built at runtime (phone conflicts and
// the like) that have no entry in errorStatusMap.
func writeBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func phoneExistsMsg(phone string) string {
	return fmt.Sprintf("Phone number %s already exists", phone)
}

func invalidPhoneMsg(phone string) string {
	return fmt.Sprintf("Invalid phone number: %s", phone)
}

func duplicatePhoneMsg(phone string) string {
	return fmt.Sprintf("Duplicate phone number: %s", phone)
}

func emailExistsMsg(email string) string {
	return fmt.Sprintf("A user with that email [%s] already exists. Please try another one", email)
}
