package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shivang-26/techCommunity-website/internals/models"
)

var (
	// ErrInvalid means no code matching both email and value exists.
	ErrInvalid = errors.New("invalid OTP")
	// ErrExpired means the code matched but its expiry has passed. The stale
	// row is left in place; a reissue overwrites it and the janitor reaps it.
	ErrExpired = errors.New("OTP expired")
)

// Validity is how long an issued code can be redeemed.
const Validity = 5 * time.Minute

// Store issues and verifies one-time passcodes keyed by email.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Issue generates a fresh 6-digit code for the email with a 5 minute expiry.
// Any previous code for the same address is overwritten, so only the latest
// code verifies.
func (s *Store) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	record := models.OTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(Validity),
	}

	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify redeems a code. The record must match both email and code exactly;
// a successful redemption deletes it so codes are single-use.
func (s *Store) Verify(email, code string) error {
	record, err := s.lookup(email, code)
	if err != nil {
		return err
	}
	return s.DB.Unscoped().Delete(record).Error
}

// Check validates a code without consuming it. The password-reset flow
// checks the code once for early feedback and redeems it on the actual
// reset.
func (s *Store) Check(email, code string) error {
	_, err := s.lookup(email, code)
	return err
}

func (s *Store) lookup(email, code string) (*models.OTP, error) {
	var record models.OTP
	if err := s.DB.Where("email = ? AND code = ?", email, code).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalid
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrExpired
	}
	return &record, nil
}

// generateCode uses crypto/rand for better security. Codes are uniform over
// [100000, 999999] so they are always 6 digits.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
