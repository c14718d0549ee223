package services

import (
	"testing"

	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsFixture(t *testing.T) *SettingsService {
	secrets, err := crypto.NewSecrets("test-encryption-key")
	require.NoError(t, err)
	return NewSettingsService(newTestDB(t), secrets)
}

func TestSmsSettings_NotConfigured(t *testing.T) {
	svc := newSettingsFixture(t)

	_, err := svc.GetSmsSettings()
	assert.ErrorIs(t, err, ErrSettingsNotConfigured)
}

func TestSmsSettings_UpsertKeepsSingleRow(t *testing.T) {
	svc := newSettingsFixture(t)
	db := svc.db

	first, err := svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme",
		Password: "secret1",
		Sender:   "SITE",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	})
	require.NoError(t, err)

	second, err := svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme2",
		Password: "secret2",
		Sender:   "SITE",
		APIUrl:   "https://sms.example.com/api/v2",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.SmsSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := svc.GetSmsSettings()
	require.NoError(t, err)
	assert.Equal(t, "acme2", stored.Username)
	assert.Equal(t, "secret2", stored.Password)
}

func TestSmsSettings_PasswordEncryptedAtRest(t *testing.T) {
	svc := newSettingsFixture(t)
	db := svc.db

	_, err := svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme",
		Password: "plain-secret",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	})
	require.NoError(t, err)

	var raw models.SmsSettings
	require.NoError(t, db.First(&raw).Error)
	assert.NotEqual(t, "plain-secret", raw.Password)

	stored, err := svc.GetSmsSettings()
	require.NoError(t, err)
	assert.Equal(t, "plain-secret", stored.Password)
}

func TestSmsSettings_EmptyPasswordKeepsStored(t *testing.T) {
	svc := newSettingsFixture(t)

	_, err := svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme",
		Password: "keep-me",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	})
	require.NoError(t, err)

	// An update without a password does not wipe the stored one
	_, err = svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme",
		Password: "",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	})
	require.NoError(t, err)

	stored, err := svc.GetSmsSettings()
	require.NoError(t, err)
	assert.Equal(t, "keep-me", stored.Password)
}

func TestSmsSettings_PlaintextFallback(t *testing.T) {
	svc := newSettingsFixture(t)
	db := svc.db

	// A row written before encryption was enabled holds a bare password
	require.NoError(t, db.Create(&models.SmsSettings{
		Username: "acme",
		Password: "legacy-plain",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	}).Error)

	stored, err := svc.GetSmsSettings()
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain", stored.Password)
}

func TestMailSettings_Upsert(t *testing.T) {
	svc := newSettingsFixture(t)

	_, err := svc.UpsertMailSettings(&models.MailSettings{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "mailer",
		Password:     "mail-secret",
		FromAddress:  "noreply@example.com",
		FromName:     "Site Yönetimi",
		SecurityType: models.MailSecurityTLS,
		IsActive:     true,
	})
	require.NoError(t, err)

	stored, err := svc.GetMailSettings()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", stored.Host)
	assert.Equal(t, "mail-secret", stored.Password)
}

func TestMailSettings_RejectsUnknownSecurityType(t *testing.T) {
	svc := newSettingsFixture(t)

	_, err := svc.UpsertMailSettings(&models.MailSettings{
		Host:         "smtp.example.com",
		Port:         587,
		FromAddress:  "noreply@example.com",
		SecurityType: "STARTTLS",
	})
	assert.Error(t, err)
}

func TestSettings_NilSecretsStoresPlaintext(t *testing.T) {
	svc := NewSettingsService(newTestDB(t), nil)

	_, err := svc.UpsertSmsSettings(&models.SmsSettings{
		Username: "acme",
		Password: "plain",
		APIUrl:   "https://sms.example.com/api",
		IsActive: true,
	})
	require.NoError(t, err)

	stored, err := svc.GetSmsSettings()
	require.NoError(t, err)
	assert.Equal(t, "plain", stored.Password)
}
