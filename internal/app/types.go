package app

import "github.com/akash-tk/contactflix/internal/sdk/models"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login: a signed identity
// token plus the user it belongs to (digest omitted).
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// ContactPageResponse is one page of the caller's contacts together
// with the pre-pagination totals.
type ContactPageResponse struct {
	Contacts      []models.Contact `json:"contacts"`
	TotalContacts int              `json:"totalContacts"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}
