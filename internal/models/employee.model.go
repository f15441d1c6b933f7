package models

import (
	"time"

	"github.com/google/uuid"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee is a cleaner working for the business, possibly the business
// owner themselves (self-assignment).
type Employee struct {
	BaseUUIDModel
	UserID          uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User            *User          `gorm:"foreignKey:UserID"              json:"user,omitempty"`
	Status          EmployeeStatus `gorm:"type:text;index;not null;default:active" json:"status"`
	IsBusinessOwner bool           `gorm:"type:bool;default:false"        json:"isBusinessOwner"`
}

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// EmployeeJobAssignment ties an employee to an appointment. It also
// carries the guest-not-left flag state mutated by report creation and
// clearing.
type EmployeeJobAssignment struct {
	BaseUUIDModel
	EmployeeID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"employeeId"`
	Employee      *Employee        `gorm:"foreignKey:EmployeeID"    json:"employee,omitempty"`
	AppointmentID uuid.UUID        `gorm:"type:uuid;index;not null" json:"appointmentId"`
	Appointment   *UserAppointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Status        AssignmentStatus `gorm:"type:text;index;not null;default:assigned" json:"status"`

	GuestNotLeftReported    bool       `gorm:"type:bool;default:false;index" json:"guestNotLeftReported"`
	GuestNotLeftReportCount int        `gorm:"type:int;default:0"            json:"guestNotLeftReportCount"`
	LastGuestNotLeftAt      *time.Time `gorm:"type:timestamp"                json:"lastGuestNotLeftAt,omitempty"`
}
