package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/siteguard/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationService routes outbound notifications through the configured
// providers and records every attempt in the notification log. Dispatch
// errors are returned so callers can log them, but callers in business flows
// treat delivery as best-effort.
type NotificationService struct {
	db       *gorm.DB
	settings *SettingsService
	sms      *SMSService
	email    *EmailService
}

func NewNotificationService(db *gorm.DB, settings *SettingsService, sms *SMSService, email *EmailService) *NotificationService {
	return &NotificationService{
		db:       db,
		settings: settings,
		sms:      sms,
		email:    email,
	}
}

// DispatchSMS sends a message through the SMS provider and logs the outcome.
func (n *NotificationService) DispatchSMS(to, body string) error {
	settings, err := n.settings.GetSmsSettings()
	if err != nil {
		n.logAttempt(models.NotificationChannelSMS, to, "", body, false, err.Error())
		return err
	}
	if !settings.IsActive {
		err := errors.New("sms provider is disabled")
		n.logAttempt(models.NotificationChannelSMS, to, "", body, false, err.Error())
		return err
	}

	result, err := n.sms.Send(settings, to, body)
	if err != nil {
		n.logAttempt(models.NotificationChannelSMS, to, "", body, false, err.Error())
		return err
	}
	if !result.Success {
		n.logAttempt(models.NotificationChannelSMS, to, "", body, false, result.Message)
		return fmt.Errorf("sms provider rejected message: %s", result.Message)
	}

	n.logAttempt(models.NotificationChannelSMS, to, "", body, true, "")
	return nil
}

// DispatchMail sends an HTML email and logs the outcome.
func (n *NotificationService) DispatchMail(to, subject, htmlBody string) error {
	settings, err := n.settings.GetMailSettings()
	if err != nil {
		n.logAttempt(models.NotificationChannelMail, to, subject, htmlBody, false, err.Error())
		return err
	}
	if !settings.IsActive {
		err := errors.New("mail provider is disabled")
		n.logAttempt(models.NotificationChannelMail, to, subject, htmlBody, false, err.Error())
		return err
	}

	if err := n.email.SendMail(settings, to, subject, htmlBody); err != nil {
		n.logAttempt(models.NotificationChannelMail, to, subject, htmlBody, false, err.Error())
		return err
	}

	n.logAttempt(models.NotificationChannelMail, to, subject, htmlBody, true, "")
	return nil
}

// DispatchTestMail sends the templated settings-check email.
func (n *NotificationService) DispatchTestMail(to string) error {
	settings, err := n.settings.GetMailSettings()
	if err != nil {
		return err
	}
	if err := n.email.SendTestMessage(settings, to); err != nil {
		n.logAttempt(models.NotificationChannelMail, to, "SMTP ayarları testi", "", false, err.Error())
		return err
	}
	n.logAttempt(models.NotificationChannelMail, to, "SMTP ayarları testi", "", true, "")
	return nil
}

// NotifyVisitorArrival tells the resident a visitor has arrived at the gate.
func (n *NotificationService) NotifyVisitorArrival(v *models.Visitor) error {
	if v.ResidentPhone == "" {
		return nil
	}
	body := fmt.Sprintf("Ziyaretçiniz %s giriş yaptı. Daire: %s", v.FullName, v.ApartmentNumber)
	return n.DispatchSMS(v.ResidentPhone, body)
}

// ListLogs returns recent notification attempts, newest first.
func (n *NotificationService) ListLogs(page, limit int, channel string) ([]*models.NotificationLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := n.db.Model(&models.NotificationLog{})
	if channel != "" {
		query = query.Where("channel = ?", channel)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*models.NotificationLog
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (n *NotificationService) logAttempt(channel, recipient, subject, body string, success bool, errMsg string) {
	entry := &models.NotificationLog{
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Success:   success,
		Error:     errMsg,
	}
	if err := n.db.Create(entry).Error; err != nil {
		log.Printf("WARN: Failed to write notification log: %v", err)
	}
}
