package models

import (
	"time"

	"github.com/focusaint/focusaint/internal/crypto"
	"gorm.io/gorm"
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Must be called before any database operations involving AuthIdentity.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// AuthIdentity links a user to an OAuth provider account. Tokens are stored
// encrypted; the GORM hooks below handle the round trip transparently.
type AuthIdentity struct {
	gorm.Model
	UserID         uint   `gorm:"not null;index"`
	Provider       string `gorm:"not null"` // e.g., "google"
	ProviderUserID string `gorm:"not null;uniqueIndex:idx_auth_identities_provider_user,where:deleted_at IS NULL"`
	AccessToken    string `gorm:"type:text"` // stored encrypted
	RefreshToken   string `gorm:"type:text"` // stored encrypted
	TokenExpiry    *time.Time
}

// BeforeSave encrypts tokens before writing. Non-empty tokens are always
// re-encrypted (GCM output differs each time due to the random nonce).
func (a *AuthIdentity) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		// Encryption not configured (e.g., tests); store as-is.
		return nil
	}

	if a.AccessToken != "" {
		encrypted, err := encryptor.Encrypt(a.AccessToken)
		if err != nil {
			return err
		}
		a.AccessToken = encrypted
	}

	if a.RefreshToken != "" {
		encrypted, err := encryptor.Encrypt(a.RefreshToken)
		if err != nil {
			return err
		}
		a.RefreshToken = encrypted
	}

	return nil
}

// AfterFind decrypts tokens after loading from the database.
func (a *AuthIdentity) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}

	if a.AccessToken != "" {
		decrypted, err := encryptor.Decrypt(a.AccessToken)
		if err != nil {
			return err
		}
		a.AccessToken = decrypted
	}

	if a.RefreshToken != "" {
		decrypted, err := encryptor.Decrypt(a.RefreshToken)
		if err != nil {
			return err
		}
		a.RefreshToken = decrypted
	}

	return nil
}
