package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/validation"
	"gorm.io/gorm"
)

// ErrVisitorNotFound is returned when the visitor does not exist.
var ErrVisitorNotFound = errors.New("visitor not found")

// visitorNotifier delivers the arrival notification to the resident.
// Satisfied by NotificationService.
type visitorNotifier interface {
	NotifyVisitorArrival(v *models.Visitor) error
}

// VisitorService owns the visitor lifecycle: check-in opens a visit,
// check-out closes it, and a closed visit is terminal.
type VisitorService struct {
	db       *gorm.DB
	notifier visitorNotifier
}

func NewVisitorService(db *gorm.DB, notifier visitorNotifier) *VisitorService {
	return &VisitorService{db: db, notifier: notifier}
}

// CheckIn creates an active visitor record. Lifecycle fields are always set
// here regardless of what the caller supplied, and the arrival notification
// to the resident is best-effort.
func (s *VisitorService) CheckIn(visitor *models.Visitor, performedBy string) (*models.Visitor, error) {
	if visitor.FullName == "" {
		return nil, errors.New("visitor name is required")
	}
	if visitor.ApartmentNumber == "" {
		return nil, errors.New("apartment number is required")
	}

	now := time.Now()
	visitor.ID = uuid.Nil
	visitor.CheckInTime = now
	visitor.CheckOutTime = nil
	visitor.IsActive = true
	visitor.CreatedBy = performedBy
	visitor.CreatedAt = now
	if visitor.ResidentPhone != "" {
		visitor.ResidentPhone = validation.NormalizePhone(visitor.ResidentPhone)
	}
	if visitor.VisitorPhone != "" {
		visitor.VisitorPhone = validation.NormalizePhone(visitor.VisitorPhone)
	}

	if err := s.db.Create(visitor).Error; err != nil {
		return nil, err
	}

	s.appendLog(visitor.ID, models.VisitorActionCheckIn, performedBy,
		fmt.Sprintf("Check-in for apartment %s", visitor.ApartmentNumber))

	if visitor.ResidentPhone != "" && s.notifier != nil {
		if err := s.notifier.NotifyVisitorArrival(visitor); err != nil {
			log.Printf("WARN: Failed to notify resident %s about visitor %s: %v",
				visitor.ResidentPhone, visitor.ID, err)
		}
	}

	return visitor, nil
}

// CheckOut closes a visit. It returns false, without error, when the visitor
// does not exist or is already checked out; calling it twice is a no-op.
func (s *VisitorService) CheckOut(id uuid.UUID, performedBy string) (bool, error) {
	var visitor models.Visitor
	if err := s.db.First(&visitor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if visitor.IsCheckedOut() {
		return false, nil
	}

	now := time.Now()
	if err := s.db.Model(&visitor).Updates(map[string]interface{}{
		"check_out_time": now,
		"is_active":      false,
	}).Error; err != nil {
		return false, err
	}

	s.appendLog(visitor.ID, models.VisitorActionCheckOut, performedBy, "")

	return true, nil
}

// Update edits identity and contact fields. Lifecycle fields (check-in and
// check-out times, active flag, creator, creation time) are always preserved
// from the stored record, so an edit can never resurrect a closed visit.
func (s *VisitorService) Update(id uuid.UUID, input *models.Visitor, performedBy string) (*models.Visitor, error) {
	var existing models.Visitor
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, err
	}

	existing.FullName = input.FullName
	existing.ApartmentNumber = input.ApartmentNumber
	existing.LicensePlate = input.LicensePlate
	existing.IDNumber = input.IDNumber
	existing.ResidentName = input.ResidentName
	existing.Notes = input.Notes
	if input.ResidentPhone != "" {
		existing.ResidentPhone = validation.NormalizePhone(input.ResidentPhone)
	} else {
		existing.ResidentPhone = ""
	}
	if input.VisitorPhone != "" {
		existing.VisitorPhone = validation.NormalizePhone(input.VisitorPhone)
	} else {
		existing.VisitorPhone = ""
	}
	if input.PhotoPath != "" {
		existing.PhotoPath = input.PhotoPath
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}

	s.appendLog(existing.ID, models.VisitorActionUpdate, performedBy, "")

	return &existing, nil
}

// GetByID retrieves a single visitor.
func (s *VisitorService) GetByID(id uuid.UUID) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := s.db.First(&visitor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, err
	}
	return &visitor, nil
}

// GetActive returns open visits, oldest check-in first.
func (s *VisitorService) GetActive() ([]*models.Visitor, error) {
	var visitors []*models.Visitor
	err := s.db.Where("is_active = ? AND check_out_time IS NULL", true).
		Order("check_in_time ASC").
		Find(&visitors).Error
	return visitors, err
}

// GetByDateRange returns visits that touched the window: checked in within
// it, checked out within it, or still active regardless of check-in date.
// An ongoing visit never disappears from a report window.
func (s *VisitorService) GetByDateRange(from, to time.Time) ([]*models.Visitor, error) {
	var visitors []*models.Visitor
	err := s.db.Where(
		"(check_in_time BETWEEN ? AND ?) OR (is_active = ? AND check_out_time IS NULL) OR (check_out_time BETWEEN ? AND ?)",
		from, to, true, from, to,
	).Order("check_in_time ASC").Find(&visitors).Error
	return visitors, err
}

// List returns a page of visitors, newest first. A non-empty query term is
// matched with Turkish diacritic folding as an in-memory post-filter over a
// broader store result, independent of the store's collation.
func (s *VisitorService) List(page, limit int, query string) ([]*models.Visitor, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	if query == "" {
		var visitors []*models.Visitor
		var total int64
		if err := s.db.Model(&models.Visitor{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
		offset := (page - 1) * limit
		if err := s.db.Order("check_in_time DESC").Offset(offset).Limit(limit).Find(&visitors).Error; err != nil {
			return nil, 0, err
		}
		return visitors, total, nil
	}

	var all []*models.Visitor
	if err := s.db.Order("check_in_time DESC").Find(&all).Error; err != nil {
		return nil, 0, err
	}

	filtered := make([]*models.Visitor, 0, len(all))
	for _, v := range all {
		if validation.MatchesFolded(v.FullName, query) ||
			validation.MatchesFolded(v.ApartmentNumber, query) ||
			validation.MatchesFolded(v.LicensePlate, query) ||
			validation.MatchesFolded(v.ResidentName, query) {
			filtered = append(filtered, v)
		}
	}

	total := int64(len(filtered))
	start := (page - 1) * limit
	if start >= len(filtered) {
		return []*models.Visitor{}, total, nil
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// ListLogs returns the visitor audit trail, newest first.
func (s *VisitorService) ListLogs(page, limit int, action string) ([]*models.VisitorLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var logs []*models.VisitorLog
	var total int64

	query := s.db.Model(&models.VisitorLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Visitor").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// appendLog writes an audit entry; audit failures are logged, not propagated.
func (s *VisitorService) appendLog(visitorID uuid.UUID, action, performedBy, details string) {
	entry := &models.VisitorLog{
		VisitorID:   visitorID,
		Action:      action,
		PerformedBy: performedBy,
		Details:     details,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("WARN: Failed to write visitor log (%s, %s): %v", action, visitorID, err)
	}
}
