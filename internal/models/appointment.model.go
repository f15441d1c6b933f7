package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringSchedule generates appointments for an active cleaner-client
// relationship. Deactivating the relationship deactivates its schedules.
type RecurringSchedule struct {
	BaseUUIDModel
	CleanerClientID uuid.UUID        `gorm:"type:uuid;index;not null" json:"cleanerClientId"`
	CleanerClient   *CleanerClient   `gorm:"foreignKey:CleanerClientID" json:"cleanerClient,omitempty"`
	HomeID          uuid.UUID        `gorm:"type:uuid;index;not null" json:"homeId"`
	Frequency       string           `gorm:"type:text;not null"       json:"frequency"`
	TimeWindow      *string          `gorm:"type:text"                json:"timeWindow,omitempty"`
	Price           decimal.Decimal  `gorm:"type:numeric(10,2)"       json:"price"`
	IsActive        bool             `gorm:"type:bool;default:true;index" json:"isActive"`
}

// UserAppointment is one scheduled visit, usually generated from a
// recurring schedule. Future, not-yet-occurred appointments are removed
// when the relationship is deactivated.
type UserAppointment struct {
	BaseUUIDModel
	UserID              uuid.UUID          `gorm:"type:uuid;index;not null" json:"userId"`
	HomeID              uuid.UUID          `gorm:"type:uuid;index;not null" json:"homeId"`
	RecurringScheduleID *uuid.UUID         `gorm:"type:uuid;index"          json:"recurringScheduleId,omitempty"`
	RecurringSchedule   *RecurringSchedule `gorm:"foreignKey:RecurringScheduleID" json:"recurringSchedule,omitempty"`
	Date                time.Time          `gorm:"type:timestamp;index;not null" json:"date"`
	Price               decimal.Decimal    `gorm:"type:numeric(10,2)"       json:"price"`
	HasBeenAssigned     bool               `gorm:"type:bool;default:false"  json:"hasBeenAssigned"`
	Completed           bool               `gorm:"type:bool;default:false"  json:"completed"`
}

// Payout is a cleaner's earnings row for one appointment. Deleted along
// with its appointment when future work is cancelled.
type Payout struct {
	BaseUUIDModel
	AppointmentID uuid.UUID        `gorm:"type:uuid;index;not null" json:"appointmentId"`
	Appointment   *UserAppointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	EmployeeID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"employeeId"`
	Amount        decimal.Decimal  `gorm:"type:numeric(10,2)"       json:"amount"`
	Paid          bool             `gorm:"type:bool;default:false"  json:"paid"`
}
