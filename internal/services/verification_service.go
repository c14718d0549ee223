package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siteguard/backend/internal/config"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/validation"
	"gorm.io/gorm"
)

// ErrRateLimited is returned when a code was requested again within the
// resend window for the same phone number.
var ErrRateLimited = errors.New("verification code already sent, please wait before requesting a new one")

// smsDispatcher delivers a verification SMS. Satisfied by NotificationService.
type smsDispatcher interface {
	DispatchSMS(to, body string) error
}

// VerificationService issues and validates short-lived numeric codes per
// phone number. All operations key on the normalized phone form, so callers
// may pass formatted or country-prefixed numbers interchangeably.
type VerificationService struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
	sms   smsDispatcher
}

func NewVerificationService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, sms smsDispatcher) *VerificationService {
	return &VerificationService{
		db:    db,
		redis: redisClient,
		cfg:   cfg,
		sms:   sms,
	}
}

// SendCode issues a new code for the phone number and dispatches it via SMS.
// A failed dispatch does not fail the operation; the code's authority lives
// in the store, and the code is returned to the caller for display either way.
func (s *VerificationService) SendCode(phone string) (string, error) {
	normalized := validation.NormalizePhone(phone)
	if normalized == "" {
		return "", errors.New("phone number is required")
	}

	// Serialize concurrent requests for the same phone so two codes cannot
	// race past the resend-window check. If Redis is down we degrade to the
	// unlocked path rather than refusing service.
	if s.redis != nil {
		ctx := context.Background()
		lockKey := fmt.Sprintf("sms_lock:%s", normalized)
		acquired, err := s.redis.SetNX(ctx, lockKey, 1, 2*time.Second).Result()
		if err != nil {
			log.Printf("WARN: Redis unavailable for send-code lock: %v", err)
		} else if !acquired {
			return "", ErrRateLimited
		} else {
			defer s.redis.Del(ctx, lockKey)
		}
	}

	var last models.SmsVerification
	err := s.db.Where("phone_number = ?", normalized).
		Order("created_at DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if err == nil && time.Since(last.CreatedAt) < s.cfg.VerificationResendWindow {
		return "", ErrRateLimited
	}

	// A new code supersedes any unused predecessor for the same phone.
	if err := s.db.Model(&models.SmsVerification{}).
		Where("phone_number = ? AND is_used = ?", normalized, false).
		Update("is_used", true).Error; err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	verification := &models.SmsVerification{
		PhoneNumber: normalized,
		Code:        code,
		ExpiresAt:   time.Now().Add(s.cfg.VerificationCodeTTL),
	}
	if err := s.db.Create(verification).Error; err != nil {
		return "", err
	}

	if s.sms != nil {
		body := fmt.Sprintf("Dogrulama kodunuz: %s", code)
		if err := s.sms.DispatchSMS(normalized, body); err != nil {
			log.Printf("WARN: Failed to send verification SMS to %s: %v", normalized, err)
		}
	}

	return code, nil
}

// VerifyCode redeems a code. It returns true exactly once per issued code;
// mismatches, expired codes and unknown phones all return false without error.
func (s *VerificationService) VerifyCode(phone, code string) (bool, error) {
	normalized := validation.NormalizePhone(phone)

	var verification models.SmsVerification
	err := s.db.Where("phone_number = ? AND is_used = ? AND expires_at > ?", normalized, false, time.Now()).
		Order("created_at DESC").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if verification.Code != code {
		return false, nil
	}

	if err := s.db.Model(&verification).Update("is_used", true).Error; err != nil {
		return false, err
	}

	return true, nil
}

// CleanupExpired deletes all codes past their expiry regardless of use state.
// Driven by a periodic sweep from main.
func (s *VerificationService) CleanupExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&models.SmsVerification{})
	return result.RowsAffected, result.Error
}

// generateCode draws a 3-digit code uniformly from [100, 999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100), nil
}
