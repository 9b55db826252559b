package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;not null"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	Password     string `gorm:"column:password"` // bcrypt digest, empty for federated-only accounts
	AuthProvider string `gorm:"column:auth_provider;default:local"`
	Role         string `gorm:"column:role;default:user"`
	IsVerified   bool   `gorm:"column:is_verified;default:false"`

	// OAuth2 / Social Login. Pointer so unlinked accounts store NULL and
	// the unique index only applies to linked ones.
	GoogleID   *string `gorm:"column:google_id;uniqueIndex"`
	PictureURL string  `gorm:"column:picture_url"`

	// Locally uploaded profile picture, raw bytes plus mime type.
	ProfilePicture     []byte `gorm:"column:profile_picture"`
	ProfilePictureType string `gorm:"column:profile_picture_type"`

	// Multi-Factor Authentication
	TwoFAEnabled bool   `gorm:"column:two_fa_enabled;default:false"`
	TwoFASecret  string `gorm:"column:two_fa_secret;default:null"`
}

// SetPassword replaces the stored digest with a bcrypt hash of the plaintext.
// Every write path that touches the password goes through here; plaintext is
// never persisted.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 10)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares a candidate against the stored digest. Returns false
// for federated-only accounts that have no password at all.
func (u *User) CheckPassword(candidate string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// Projection is the minimal view of a user handed to clients and stored in
// the server-side session.
type Projection struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	Role       string `json:"role"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

func (u *User) Project() Projection {
	return Projection{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		Role:       u.Role,
		PictureURL: u.PictureURL,
	}
}
