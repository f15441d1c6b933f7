package models

import (
	"strings"

	"github.com/google/uuid"
)

// UserHome is a property a homeowner has registered for cleanings.
type UserHome struct {
	BaseUUIDModel
	UserID             uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	User               *User      `gorm:"foreignKey:UserID"        json:"user,omitempty"`
	Street             string     `gorm:"type:text"                json:"street"`
	Unit               *string    `gorm:"type:text"                json:"unit,omitempty"`
	City               string     `gorm:"type:text"                json:"city"`
	State              string     `gorm:"type:text"                json:"state"`
	Zipcode            string     `gorm:"type:text"                json:"zipcode"`
	Beds               int        `gorm:"type:int;default:1"       json:"beds"`
	Baths              int        `gorm:"type:int;default:1"       json:"baths"`
	Latitude           *float64   `gorm:"type:double precision"    json:"latitude,omitempty"`
	Longitude          *float64   `gorm:"type:double precision"    json:"longitude,omitempty"`
	PreferredCleanerID *uuid.UUID `gorm:"type:uuid;index"          json:"preferredCleanerId,omitempty"`
	IsSetupComplete    bool       `gorm:"type:bool;default:false"  json:"isSetupComplete"`
	Notes              *string    `gorm:"type:text"                json:"notes,omitempty"`
}

// Address is the structured form carried on invitations and merged with
// the invitee's corrections at acceptance time.
type Address struct {
	Street  string `json:"street"`
	Unit    string `json:"unit,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// Merge overlays non-empty fields of the correction onto the address.
func (a Address) Merge(corrections *Address) Address {
	if corrections == nil {
		return a
	}
	merged := a
	if corrections.Street != "" {
		merged.Street = corrections.Street
	}
	if corrections.Unit != "" {
		merged.Unit = corrections.Unit
	}
	if corrections.City != "" {
		merged.City = corrections.City
	}
	if corrections.State != "" {
		merged.State = corrections.State
	}
	if corrections.Zipcode != "" {
		merged.Zipcode = corrections.Zipcode
	}
	return merged
}

// Usable reports whether the address has enough content to seed a home
// record. A bare street with no city or zip is not considered deliverable.
func (a Address) Usable() bool {
	return strings.TrimSpace(a.Street) != "" &&
		(strings.TrimSpace(a.City) != "" || strings.TrimSpace(a.Zipcode) != "")
}
