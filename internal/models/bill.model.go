package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserBill tracks a client's outstanding balance. Created at zero when an
// invited client accepts, and reduced when future appointments are
// cancelled during relationship deactivation.
type UserBill struct {
	BaseUUIDModel
	UserID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"           json:"userId"`
	User    *User           `gorm:"foreignKey:UserID"                        json:"user,omitempty"`
	Balance decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"    json:"balance"`
}
