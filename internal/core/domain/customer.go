package domain

import (
	"net/mail"
	"strings"
	"time"
)

// CustomerStatus is free-form: any status may follow any other.
type CustomerStatus string

const (
	CustomerLead     CustomerStatus = "lead"
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerArchived CustomerStatus = "archived"
)

// Valid reports whether s is one of the known customer statuses.
func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerLead, CustomerActive, CustomerInactive, CustomerArchived:
		return true
	}
	return false
}

// Customer owns assets and service orders. CustomerID is assigned by staff.
type Customer struct {
	CustomerID string         `json:"customer_id"`
	Name       string         `json:"name"`
	Status     CustomerStatus `json:"status"`
	Email      string         `json:"email,omitempty"`
	Phone      string         `json:"phone,omitempty"`
	Street     string         `json:"street,omitempty"`
	City       string         `json:"city,omitempty"`
	StateCode  string         `json:"state_code,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	CreatedBy  string         `json:"created_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Validate checks the fields a customer needs before it reaches the store.
func (c *Customer) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(c.CustomerID) == "" {
		v.Add("customer_id", "is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		v.Add("name", "is required")
	}
	if c.Status != "" && !c.Status.Valid() {
		v.Add("status", "must be one of: lead active inactive archived")
	}
	if c.Email != "" && !validEmail(c.Email) {
		v.Add("email", "must be a valid email")
	}
	return v.OrNil()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
