package services

import (
	"testing"
	"time"

	"github.com/siteguard/backend/internal/config"
	"github.com/siteguard/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Visitor{},
		&models.VisitorLog{},
		&models.Resident{},
		&models.ResidentContact{},
		&models.ResidentVehicle{},
		&models.SmsVerification{},
		&models.SmsSettings{},
		&models.MailSettings{},
		&models.NotificationLog{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		VerificationCodeTTL:      5 * time.Minute,
		VerificationResendWindow: 1 * time.Minute,
		BcryptCost:               4,
		AdminUsername:            "admin",
		AdminPassword:            "Admin1234",
		AdminFullName:            "Site Yöneticisi",
	}
}

// backdateVerification rewrites the stored timestamps of the newest code for a
// phone so tests can simulate elapsed time without a clock dependency.
func backdateVerification(t *testing.T, db *gorm.DB, phone string, createdAt, expiresAt time.Time) {
	t.Helper()

	var v models.SmsVerification
	require.NoError(t, db.Where("phone_number = ?", phone).Order("created_at DESC").First(&v).Error)
	require.NoError(t, db.Model(&models.SmsVerification{}).Where("id = ?", v.ID).
		Updates(map[string]interface{}{
			"created_at": createdAt,
			"expires_at": expiresAt,
		}).Error)
}
