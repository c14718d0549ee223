package services

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newNotificationFixture(t *testing.T, apiURL string) (*NotificationService, *gorm.DB) {
	db := newTestDB(t)
	secrets, err := crypto.NewSecrets("test-encryption-key")
	require.NoError(t, err)

	settings := NewSettingsService(db, secrets)
	if apiURL != "" {
		_, err := settings.UpsertSmsSettings(&models.SmsSettings{
			Username: "acme",
			Password: "secret",
			Sender:   "SITE",
			APIUrl:   apiURL,
			IsActive: true,
		})
		require.NoError(t, err)
	}

	return NewNotificationService(db, settings, NewSMSService(), NewEmailService()), db
}

func TestDispatchSMS_SuccessLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("$msg-1#10"))
	}))
	defer server.Close()

	svc, db := newNotificationFixture(t, server.URL)

	require.NoError(t, svc.DispatchSMS("05551234567", "test mesajı"))

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.NotificationChannelSMS, entry.Channel)
	assert.Equal(t, "05551234567", entry.Recipient)
	assert.True(t, entry.Success)
	assert.Empty(t, entry.Error)
}

func TestDispatchSMS_RejectionLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("20"))
	}))
	defer server.Close()

	svc, db := newNotificationFixture(t, server.URL)

	err := svc.DispatchSMS("05551234567", "test mesajı")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Yetersiz kredi")

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry).Error)
	assert.False(t, entry.Success)
	assert.Equal(t, "Yetersiz kredi", entry.Error)
}

func TestDispatchSMS_NotConfigured(t *testing.T) {
	svc, _ := newNotificationFixture(t, "")

	err := svc.DispatchSMS("05551234567", "test")
	assert.ErrorIs(t, err, ErrSettingsNotConfigured)
}

func TestDispatchSMS_ProviderDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("disabled provider must not be called")
	}))
	defer server.Close()

	svc, db := newNotificationFixture(t, server.URL)
	require.NoError(t, db.Model(&models.SmsSettings{}).Where("1 = 1").
		Update("is_active", false).Error)

	err := svc.DispatchSMS("05551234567", "test")
	assert.Error(t, err)
}

func TestNotifyVisitorArrival_MessageBody(t *testing.T) {
	var received smsOrderXML
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, xml.Unmarshal(body, &received))
		_, _ = w.Write([]byte("$msg-1#10"))
	}))
	defer server.Close()

	svc, _ := newNotificationFixture(t, server.URL)

	require.NoError(t, svc.NotifyVisitorArrival(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
		ResidentPhone:   "05551234567",
	}))

	assert.Equal(t, "Ziyaretçiniz Ahmet Yılmaz giriş yaptı. Daire: A-12", received.Text)
	assert.Equal(t, []string{"05551234567"}, received.ReceiverNumber)
}

func TestNotifyVisitorArrival_NoPhoneIsNoOp(t *testing.T) {
	svc, db := newNotificationFixture(t, "")

	require.NoError(t, svc.NotifyVisitorArrival(&models.Visitor{FullName: "Ahmet"}))

	var count int64
	require.NoError(t, db.Model(&models.NotificationLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListNotificationLogs_FilterByChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("$msg-1#10"))
	}))
	defer server.Close()

	svc, _ := newNotificationFixture(t, server.URL)

	require.NoError(t, svc.DispatchSMS("05551234567", "bir"))
	require.NoError(t, svc.DispatchSMS("05559876543", "iki"))

	logs, total, err := svc.ListLogs(1, 10, models.NotificationChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	_, total, err = svc.ListLogs(1, 10, models.NotificationChannelMail)
	require.NoError(t, err)
	assert.Zero(t, total)
}
