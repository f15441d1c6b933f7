package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportResolution string

const (
	ResolutionJobCompleted ReportResolution = "job_completed"
	ResolutionExpired      ReportResolution = "expired"
)

// GuestNotLeftReport is one "tenant still present" observation from a
// cleaner in the field. Many may accumulate against one assignment before
// the job proceeds or the appointment window lapses.
type GuestNotLeftReport struct {
	BaseUUIDModel
	EmployeeJobAssignmentID uuid.UUID              `gorm:"type:uuid;index;not null" json:"employeeJobAssignmentId"`
	EmployeeJobAssignment   *EmployeeJobAssignment `gorm:"foreignKey:EmployeeJobAssignmentID" json:"employeeJobAssignment,omitempty"`
	AppointmentID           uuid.UUID              `gorm:"type:uuid;index;not null" json:"appointmentId"`
	ReportedBy              uuid.UUID              `gorm:"type:uuid;not null"       json:"reportedBy"`

	ReportedAt       time.Time `gorm:"type:timestamp;not null" json:"reportedAt"`
	CleanerLatitude  *float64  `gorm:"type:double precision"   json:"cleanerLatitude,omitempty"`
	CleanerLongitude *float64  `gorm:"type:double precision"   json:"cleanerLongitude,omitempty"`
	DistanceFromHome *float64  `gorm:"type:double precision"   json:"distanceFromHome,omitempty"`
	Notes            *string   `gorm:"type:text"               json:"notes,omitempty"`

	Resolved   bool              `gorm:"type:bool;default:false;index" json:"resolved"`
	ResolvedAt *time.Time        `gorm:"type:timestamp"                json:"resolvedAt,omitempty"`
	Resolution *ReportResolution `gorm:"type:text"                     json:"resolution,omitempty"`
}
