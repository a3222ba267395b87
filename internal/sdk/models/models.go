// Package models defines data models for the contacts service.
package models

import "time"

// User represents a registered account. The password digest never leaves
// the server; it is excluded from JSON serialization.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Password       []byte    `json:"-"`
	DateOfBirth    string    `json:"dateOfBirth"`
	Gender         string    `json:"gender"`
	PhoneNumbers   []string  `json:"phoneNumbers"`
	Address        string    `json:"address"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type NewUser struct {
	FirstName      string
	LastName       string
	Email          string
	Password       []byte
	DateOfBirth    string
	Gender         string
	PhoneNumbers   []string
	Address        string
	ProfilePicture *string
}

// Contact is an address-book entry owned by a single user. The owner is
// set at creation and never changes.
type Contact struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Address        *string   `json:"address,omitempty"`
	Company        *string   `json:"company,omitempty"`
	PhoneNumbers   []string  `json:"phoneNumbers"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type NewContact struct {
	UserID         string
	FirstName      string
	LastName       string
	Address        *string
	Company        *string
	PhoneNumbers   []string
	ProfilePicture *string
}

// ContactQuery describes a paginated, optionally filtered listing of one
// owner's contacts. Page is 1-based.
type ContactQuery struct {
	Search string
	Page   int
	Limit  int
}
