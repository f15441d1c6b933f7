package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ErrInvalidTransition rejects status changes the state machine does not
// allow. Writers check CanTransitionTo before touching the row.
var ErrInvalidTransition = errors.New("invalid status transition")

// InviteTokenLength is the exact length of every invitation token.
// Validation rejects any other length before touching storage.
const InviteTokenLength = 32

type CleanerClientStatus string

const (
	StatusPendingInvite CleanerClientStatus = "pending_invite"
	StatusActive        CleanerClientStatus = "active"
	StatusInactive      CleanerClientStatus = "inactive"
	StatusDeclined      CleanerClientStatus = "declined"
	StatusCancelled     CleanerClientStatus = "cancelled"
)

func (s CleanerClientStatus) Valid() bool {
	switch s {
	case StatusPendingInvite, StatusActive, StatusInactive, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enumerates the invitation state machine. Cancelled
// invitations stay cancelled even when their token is later redeemed;
// acceptance of a cancelled invite only stamps AcceptedAt.
func (s CleanerClientStatus) CanTransitionTo(next CleanerClientStatus) bool {
	switch s {
	case StatusPendingInvite:
		return next == StatusActive || next == StatusDeclined || next == StatusCancelled
	case StatusActive:
		return next == StatusInactive
	case StatusInactive, StatusDeclined, StatusCancelled:
		return false
	}
	return false
}

// CleanerClient is one cleaner→client relationship, beginning life as an
// emailed invitation and, on acceptance, linking the new homeowner and
// their home back to the inviting cleaner.
type CleanerClient struct {
	BaseUUIDModel
	CleanerID uuid.UUID  `gorm:"type:uuid;index;not null" json:"cleanerId"`
	Cleaner   *User      `gorm:"foreignKey:CleanerID"     json:"cleaner,omitempty"`
	ClientID  *uuid.UUID `gorm:"type:uuid;index"          json:"clientId,omitempty"`
	Client    *User      `gorm:"foreignKey:ClientID"      json:"client,omitempty"`
	HomeID    *uuid.UUID `gorm:"type:uuid"                json:"homeId,omitempty"`
	Home      *UserHome  `gorm:"foreignKey:HomeID"        json:"home,omitempty"`

	Status CleanerClientStatus `gorm:"type:text;index;not null;default:pending_invite" json:"status"`

	// Invitation snapshot, captured at creation and immutable afterwards.
	InviteToken    string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"-"`
	InvitedEmail   string         `gorm:"type:text;index;not null"              json:"invitedEmail"`
	InvitedName    string         `gorm:"type:text"                             json:"invitedName"`
	InvitedPhone   *string        `gorm:"type:text"                             json:"invitedPhone,omitempty"`
	InvitedAddress datatypes.JSON `gorm:"type:jsonb"                            json:"invitedAddress,omitempty"`
	InvitedBeds    *int           `gorm:"type:int"                              json:"invitedBeds,omitempty"`
	InvitedBaths   *int           `gorm:"type:int"                              json:"invitedBaths,omitempty"`
	InvitedNotes   *string        `gorm:"type:text"                             json:"invitedNotes,omitempty"`

	InvitedAt            time.Time  `gorm:"type:timestamp;not null" json:"invitedAt"`
	AcceptedAt           *time.Time `gorm:"type:timestamp"          json:"acceptedAt,omitempty"`
	LastInviteReminderAt *time.Time `gorm:"type:timestamp"          json:"lastInviteReminderAt,omitempty"`

	// Defaults applied to schedules created under this relationship.
	DefaultFrequency  *string          `gorm:"type:text"          json:"defaultFrequency,omitempty"`
	DefaultPrice      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"defaultPrice,omitempty"`
	DefaultTimeWindow *string          `gorm:"type:text"          json:"defaultTimeWindow,omitempty"`

	AutoPayEnabled      bool `gorm:"type:bool;default:true" json:"autoPayEnabled"`
	AutoScheduleEnabled bool `gorm:"type:bool;default:true" json:"autoScheduleEnabled"`
}

// TokenValidation is the answer to a token lookup: the invitation plus
// annotations describing why it may no longer be acceptable.
type TokenValidation struct {
	CleanerClient     *CleanerClient `json:"cleanerClient"`
	IsCancelled       bool           `json:"isCancelled,omitempty"`
	IsAlreadyAccepted bool           `json:"isAlreadyAccepted,omitempty"`
	IsExpired         bool           `json:"isExpired,omitempty"`
}
