package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/internal/services"
	"github.com/siteguard/backend/pkg/validation"
)

type SettingsHandler struct {
	settingsService     *services.SettingsService
	notificationService *services.NotificationService
}

func NewSettingsHandler(settingsService *services.SettingsService, notificationService *services.NotificationService) *SettingsHandler {
	return &SettingsHandler{
		settingsService:     settingsService,
		notificationService: notificationService,
	}
}

// GetSmsSettings returns the SMS provider settings without the secret
func (h *SettingsHandler) GetSmsSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSmsSettings()
	if err != nil {
		if errors.Is(err, services.ErrSettingsNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "SMS settings not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load SMS settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpsertSmsSettings creates or updates the single SMS settings row
func (h *SettingsHandler) UpsertSmsSettings(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password"`
		Sender   string `json:"sender"`
		APIUrl   string `json:"api_url" binding:"required"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	settings, err := h.settingsService.UpsertSmsSettings(&models.SmsSettings{
		Username: req.Username,
		Password: req.Password,
		Sender:   req.Sender,
		APIUrl:   req.APIUrl,
		IsActive: isActive,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// TestSms sends a test SMS using the stored settings
func (h *SettingsHandler) TestSms(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validation.ValidatePhone(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	if err := h.notificationService.DispatchSMS(validation.NormalizePhone(req.Phone), "SMS ayarları test mesajı"); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMailSettings returns the mail settings without the secret
func (h *SettingsHandler) GetMailSettings(c *gin.Context) {
	settings, err := h.settingsService.GetMailSettings()
	if err != nil {
		if errors.Is(err, services.ErrSettingsNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Mail settings not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mail settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpsertMailSettings creates or updates the single mail settings row
func (h *SettingsHandler) UpsertMailSettings(c *gin.Context) {
	var req struct {
		Host         string `json:"host" binding:"required"`
		Port         int    `json:"port" binding:"required"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		FromAddress  string `json:"from_address" binding:"required,email"`
		FromName     string `json:"from_name"`
		SecurityType string `json:"security_type" binding:"required"`
		IsActive     *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	settings, err := h.settingsService.UpsertMailSettings(&models.MailSettings{
		Host:         req.Host,
		Port:         req.Port,
		Username:     req.Username,
		Password:     req.Password,
		FromAddress:  req.FromAddress,
		FromName:     req.FromName,
		SecurityType: req.SecurityType,
		IsActive:     isActive,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// TestMail sends the templated test email using the stored settings
func (h *SettingsHandler) TestMail(c *gin.Context) {
	var req struct {
		To string `json:"to" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notificationService.DispatchTestMail(req.To); err != nil {
		if errors.Is(err, services.ErrSettingsNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Mail settings not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
