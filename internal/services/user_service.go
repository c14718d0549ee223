package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/config"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/crypto"
	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// CreateUser creates a front-desk account. Usernames are unique.
func (s *UserService) CreateUser(username, password, fullName, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleOperator {
		return nil, errors.New("role must be admin or operator")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("username already taken")
	}

	hashedPassword, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hashedPassword,
		FullName: fullName,
		Role:     role,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDefaultAdmin creates the bootstrap admin account if it doesn't exist
func (s *UserService) CreateDefaultAdmin() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", s.cfg.AdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := s.CreateUser(s.cfg.AdminUsername, s.cfg.AdminPassword, s.cfg.AdminFullName, models.RoleAdmin)
	return err
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetAllUsers retrieves all users with pagination
func (s *UserService) GetAllUsers(offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := s.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUserActive sets is_active
func (s *UserService) UpdateUserActive(userID uuid.UUID, isActive bool) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_active", isActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// ResetPassword replaces the user's password with a new hash
func (s *UserService) ResetPassword(userID uuid.UUID, newPassword string) error {
	hashedPassword, err := crypto.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}
