package models

import (
	"time"

	"gorm.io/gorm"
)

// OTP is a short-lived email verification code. The unique index on email
// gives upsert semantics: at most one active code per address, a new request
// overwrites the old one.
type OTP struct {
	gorm.Model
	Email     string    `gorm:"column:email;uniqueIndex"`
	Code      string    `gorm:"column:code"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
}
