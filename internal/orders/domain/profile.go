package domain

import (
	"errors"
	"strings"
	"time"
)

// Address is the delivery address collected field by field.
type Address struct {
	HouseNo  string `json:"house_no"`
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	Township string `json:"township"`
	City     string `json:"city"`
}

// String joins the address fields in collection order.
func (a Address) String() string {
	return strings.Join([]string{a.HouseNo, a.Street, a.Ward, a.Township, a.City}, ", ")
}

// Complete reports whether every field has a value.
func (a Address) Complete() bool {
	for _, field := range []string{a.HouseNo, a.Street, a.Ward, a.Township, a.City} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// CustomerProfile is the contact data collected during one conversation.
type CustomerProfile struct {
	Name    string  `json:"user_name"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// Validate checks presence only; the values are free text.
func (p CustomerProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return errors.New("phone is required")
	}
	if !p.Address.Complete() {
		return errors.New("address is incomplete")
	}
	return nil
}

// Profile is the lightweight customer record kept by the store.
type Profile struct {
	CustomerID int64     `json:"telegram_user_id"`
	Username   string    `json:"username"`
	Phone      string    `json:"phone"`
	Banned     bool      `json:"is_banned"`
	CreatedAt  time.Time `json:"created_at"`
}
