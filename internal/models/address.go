package models

import "time"

// AddressType distinguishes shipping from billing addresses.
type AddressType string

const (
	AddressTypeShipping AddressType = "SHIPPING"
	AddressTypeBilling  AddressType = "BILLING"
)

// DefaultCountry is applied when a submitted address omits the country.
const DefaultCountry = "Tunisia"

// Address is a postal address snapshot. Once attached to an order it is
// never mutated or deleted.
type Address struct {
	ID           string      `db:"id" json:"id"`
	UserID       *string     `db:"user_id" json:"userId,omitempty"`
	Type         AddressType `db:"type" json:"type"`
	FirstName    string      `db:"first_name" json:"firstName"`
	LastName     string      `db:"last_name" json:"lastName"`
	Company      *string     `db:"company" json:"company,omitempty"`
	AddressLine1 string      `db:"address_line1" json:"addressLine1"`
	AddressLine2 *string     `db:"address_line2" json:"addressLine2,omitempty"`
	City         string      `db:"city" json:"city"`
	State        *string     `db:"state" json:"state,omitempty"`
	PostalCode   string      `db:"postal_code" json:"postalCode"`
	Country      string      `db:"country" json:"country"`
	Phone        *string     `db:"phone" json:"phone,omitempty"`
	IsDefault    bool        `db:"is_default" json:"isDefault"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}

// AddressInput is the submitted form of an address.
type AddressInput struct {
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Company      *string `json:"company,omitempty"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        *string `json:"state,omitempty"`
	PostalCode   string  `json:"postalCode"`
	Country      string  `json:"country,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

// NewAddress builds an address record from submitted input, applying the
// country default.
func NewAddress(t AddressType, userID *string, in AddressInput) *Address {
	country := in.Country
	if country == "" {
		country = DefaultCountry
	}

	return &Address{
		ID:           GenerateID("adr"),
		UserID:       userID,
		Type:         t,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Company:      in.Company,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      country,
		Phone:        in.Phone,
		CreatedAt:    Now(),
	}
}
