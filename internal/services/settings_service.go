package services

import (
	"errors"
	"log"

	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/crypto"
	"gorm.io/gorm"
)

// ErrSettingsNotConfigured is returned when no provider settings row exists.
var ErrSettingsNotConfigured = errors.New("provider settings not configured")

// SettingsService stores provider settings with the secret field encrypted
// at rest. One row per provider type: the first write creates it, every
// later write updates it in place.
type SettingsService struct {
	db      *gorm.DB
	secrets *crypto.Secrets
}

func NewSettingsService(db *gorm.DB, secrets *crypto.Secrets) *SettingsService {
	return &SettingsService{db: db, secrets: secrets}
}

// GetSmsSettings returns the SMS settings with the password decrypted.
func (s *SettingsService) GetSmsSettings() (*models.SmsSettings, error) {
	var settings models.SmsSettings
	if err := s.db.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotConfigured
		}
		return nil, err
	}
	settings.Password = s.decrypt(settings.Password, "sms")
	return &settings, nil
}

// UpsertSmsSettings creates the single SMS settings row or updates it in
// place. The password is encrypted before it is stored.
func (s *SettingsService) UpsertSmsSettings(input *models.SmsSettings) (*models.SmsSettings, error) {
	if input.Username == "" || input.APIUrl == "" {
		return nil, errors.New("sms provider username and API URL are required")
	}

	encrypted, err := s.encrypt(input.Password)
	if err != nil {
		return nil, err
	}

	var existing models.SmsSettings
	err = s.db.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		input.Password = encrypted
		if err := s.db.Create(input).Error; err != nil {
			return nil, err
		}
		return input, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Username = input.Username
	existing.Sender = input.Sender
	existing.APIUrl = input.APIUrl
	existing.IsActive = input.IsActive
	if input.Password != "" {
		existing.Password = encrypted
	}
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetMailSettings returns the mail settings with the password decrypted.
func (s *SettingsService) GetMailSettings() (*models.MailSettings, error) {
	var settings models.MailSettings
	if err := s.db.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotConfigured
		}
		return nil, err
	}
	settings.Password = s.decrypt(settings.Password, "mail")
	return &settings, nil
}

// UpsertMailSettings creates the single mail settings row or updates it in
// place. The password is encrypted before it is stored.
func (s *SettingsService) UpsertMailSettings(input *models.MailSettings) (*models.MailSettings, error) {
	if input.Host == "" || input.Port == 0 || input.FromAddress == "" {
		return nil, errors.New("mail host, port and from address are required")
	}
	switch input.SecurityType {
	case models.MailSecurityNone, models.MailSecuritySSL, models.MailSecurityTLS:
	default:
		return nil, errors.New("security type must be None, SSL or TLS")
	}

	encrypted, err := s.encrypt(input.Password)
	if err != nil {
		return nil, err
	}

	var existing models.MailSettings
	err = s.db.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		input.Password = encrypted
		if err := s.db.Create(input).Error; err != nil {
			return nil, err
		}
		return input, nil
	}
	if err != nil {
		return nil, err
	}

	existing.Host = input.Host
	existing.Port = input.Port
	existing.Username = input.Username
	existing.FromAddress = input.FromAddress
	existing.FromName = input.FromName
	existing.SecurityType = input.SecurityType
	existing.IsActive = input.IsActive
	if input.Password != "" {
		existing.Password = encrypted
	}
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *SettingsService) encrypt(plaintext string) (string, error) {
	if s.secrets == nil || plaintext == "" {
		return plaintext, nil
	}
	return s.secrets.Encrypt(plaintext)
}

// decrypt recovers a stored secret. A value that fails to decrypt is treated
// as already-plaintext so outbound calls keep working, but the condition is
// logged for operators: it usually means the encryption key changed.
func (s *SettingsService) decrypt(stored, provider string) string {
	if s.secrets == nil || stored == "" {
		return stored
	}
	plaintext, err := s.secrets.Decrypt(stored)
	if err != nil {
		log.Printf("WARN: Could not decrypt stored %s password, using stored value as-is: %v", provider, err)
		return stored
	}
	return plaintext
}
