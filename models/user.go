package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultRole is assigned when a user is created without an explicit role set.
const DefaultRole = "USER"

// User represents a registered account. Passwords are stored as bcrypt hashes
// only. Roles are persisted as comma-joined text and parsed once at the
// directory boundary; nothing else reads the raw column.
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email         string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash  string     `gorm:"size:255;not null" json:"-"`
	Roles         string     `gorm:"size:255;not null;default:USER" json:"-"`
	StreakDays    int        `gorm:"not null;default:0" json:"streak_days"`
	LastCheckInAt *time.Time `json:"last_checkin_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps and the default role are set even when
// the caller left them empty.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Roles == "" {
		u.Roles = DefaultRole
	}
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
