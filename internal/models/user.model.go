package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type AccountType string

const (
	AccountTypeHomeowner AccountType = "homeowner"
	AccountTypeCleaner   AccountType = "cleaner"
	AccountTypeOwner     AccountType = "owner"
)

func (a AccountType) Valid() bool {
	switch a {
	case AccountTypeHomeowner, AccountTypeCleaner, AccountTypeOwner:
		return true
	}
	return false
}

// User is a platform account. The same email may exist once per account
// type, which is what forces the multi-account sign-in resolution flow.
type User struct {
	BaseUUIDModel
	FirstName    string      `gorm:"type:text"                                         json:"firstName"`
	LastName     string      `gorm:"type:text"                                         json:"lastName"`
	FullName     string      `gorm:"type:text"                                         json:"fullName"`
	Email        string      `gorm:"type:text;uniqueIndex:idx_users_email_account_type" json:"email"`
	AccountType  AccountType `gorm:"type:text;uniqueIndex:idx_users_email_account_type" json:"accountType"`
	PasswordHash string      `gorm:"type:text"                                         json:"-"`
	Phone        *string     `gorm:"type:text"                                         json:"phone,omitempty"`
	IsActive     bool        `gorm:"type:bool;default:true"                            json:"isActive"`
	LastLoginAt  *time.Time  `gorm:"type:timestamp"                                    json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	return nil
}

// NormalizeEmail lower-cases and trims an email so lookups and the
// per-account-type uniqueness constraint behave case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LoginRequest struct {
	Login       string      `json:"login"`
	Password    string      `json:"password"`
	AccountType AccountType `json:"accountType,omitempty"`
}

// UserProfile is the public projection of a User.
type UserProfile struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	AccountType AccountType `json:"accountType"`
	Phone       *string     `json:"phone,omitempty"`
	IsActive    bool        `json:"isActive"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName,
		Email:       u.Email,
		AccountType: u.AccountType,
		Phone:       u.Phone,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

// SplitFullName breaks an invited display name into first/last. The first
// whitespace-delimited token is the first name; the remainder is the last
// name, falling back to the first name when there is no remainder.
func SplitFullName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	first := fields[0]
	if len(fields) == 1 {
		return first, first
	}
	return first, strings.Join(fields[1:], " ")
}
