package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/pkg/validation"
	"gorm.io/gorm"
)

// ErrResidentNotFound is returned when the resident does not exist or was
// soft-deleted and the operation requires an active row.
var ErrResidentNotFound = errors.New("resident not found")

// ApartmentConflictError reports an apartment number collision. Uniqueness is
// checked case-insensitively against all rows including soft-deleted ones;
// the message distinguishes an active duplicate from a retired one.
type ApartmentConflictError struct {
	ApartmentNumber string
	ExistingName    string
	ExistingActive  bool
}

func (e *ApartmentConflictError) Error() string {
	if e.ExistingActive {
		return fmt.Sprintf("apartment %s is already registered to %s", e.ApartmentNumber, e.ExistingName)
	}
	return fmt.Sprintf("apartment %s was previously used by %s (now inactive)", e.ApartmentNumber, e.ExistingName)
}

// ResidentService is CRUD over residents and their owned contacts and
// vehicles. Deletion is soft and cascades to both collections.
type ResidentService struct {
	db *gorm.DB
}

func NewResidentService(db *gorm.DB) *ResidentService {
	return &ResidentService{db: db}
}

// Create persists a resident together with any nested contacts and vehicles.
func (s *ResidentService) Create(resident *models.Resident) (*models.Resident, error) {
	if resident.FullName == "" {
		return nil, errors.New("resident name is required")
	}
	if resident.ApartmentNumber == "" {
		return nil, errors.New("apartment number is required")
	}

	if err := s.checkApartmentNumber(resident.ApartmentNumber, uuid.Nil); err != nil {
		return nil, err
	}

	resident.IsActive = true
	normalizeContacts(resident.Contacts)

	if err := s.db.Create(resident).Error; err != nil {
		return nil, err
	}
	return resident, nil
}

// Update edits the resident's own fields. Contacts and vehicles are managed
// through their own operations.
func (s *ResidentService) Update(id uuid.UUID, input *models.Resident) (*models.Resident, error) {
	var existing models.Resident
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}

	if input.ApartmentNumber != "" && input.ApartmentNumber != existing.ApartmentNumber {
		if err := s.checkApartmentNumber(input.ApartmentNumber, id); err != nil {
			return nil, err
		}
		existing.ApartmentNumber = input.ApartmentNumber
	}
	if input.FullName != "" {
		existing.FullName = input.FullName
	}
	existing.Block = input.Block
	existing.SubBlock = input.SubBlock
	existing.DoorNumber = input.DoorNumber
	existing.Notes = input.Notes

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Deactivate soft-deletes a resident and cascades to contacts and vehicles.
func (s *ResidentService) Deactivate(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Resident{}).Where("id = ?", id).Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrResidentNotFound
		}
		if err := tx.Model(&models.ResidentContact{}).Where("resident_id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.ResidentVehicle{}).Where("resident_id = ?", id).
			Update("is_active", false).Error
	})
}

// GetByID retrieves a resident with contacts (priority order) and vehicles.
func (s *ResidentService) GetByID(id uuid.UUID) (*models.Resident, error) {
	var resident models.Resident
	err := s.db.
		Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC, created_at ASC")
		}).
		Preload("Vehicles").
		First(&resident, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

// GetByApartment finds the active resident of an apartment (exact match
// after case folding), used by the front desk during check-in.
func (s *ResidentService) GetByApartment(apartmentNumber string) (*models.Resident, error) {
	var resident models.Resident
	err := s.db.
		Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("priority ASC, created_at ASC")
		}).
		Where("LOWER(apartment_number) = LOWER(?) AND is_active = ?", apartmentNumber, true).
		First(&resident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

// List returns a page of residents. A non-empty query is matched with
// Turkish diacritic folding over name, apartment, block and plate fields.
func (s *ResidentService) List(page, limit int, query string, includeInactive bool) ([]*models.Resident, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	base := s.db.Model(&models.Resident{})
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}

	if query == "" {
		var residents []*models.Resident
		var total int64
		if err := base.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		offset := (page - 1) * limit
		if err := base.Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC")
		}).Preload("Vehicles").
			Order("apartment_number ASC").Offset(offset).Limit(limit).
			Find(&residents).Error; err != nil {
			return nil, 0, err
		}
		return residents, total, nil
	}

	var all []*models.Resident
	if err := base.Preload("Contacts", func(db *gorm.DB) *gorm.DB {
		return db.Order("priority ASC")
	}).Preload("Vehicles").
		Order("apartment_number ASC").Find(&all).Error; err != nil {
		return nil, 0, err
	}

	filtered := make([]*models.Resident, 0, len(all))
	for _, r := range all {
		if s.matchesQuery(r, query) {
			filtered = append(filtered, r)
		}
	}

	total := int64(len(filtered))
	start := (page - 1) * limit
	if start >= len(filtered) {
		return []*models.Resident{}, total, nil
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (s *ResidentService) matchesQuery(r *models.Resident, query string) bool {
	if validation.MatchesFolded(r.FullName, query) ||
		validation.MatchesFolded(r.ApartmentNumber, query) ||
		validation.MatchesFolded(r.Block, query) {
		return true
	}
	for _, v := range r.Vehicles {
		if validation.MatchesFolded(v.LicensePlate, query) {
			return true
		}
	}
	return false
}

// AddContact attaches a contact to an active resident.
func (s *ResidentService) AddContact(residentID uuid.UUID, contact *models.ResidentContact) (*models.ResidentContact, error) {
	if err := s.requireActiveResident(residentID); err != nil {
		return nil, err
	}
	if contact.ContactType != models.ContactTypePhone && contact.ContactType != models.ContactTypeEmail {
		return nil, errors.New("contact type must be Phone or Email")
	}
	if contact.ContactValue == "" {
		return nil, errors.New("contact value is required")
	}
	if contact.Priority < 1 || contact.Priority > 3 {
		contact.Priority = 3
	}
	if contact.ContactType == models.ContactTypePhone {
		contact.ContactValue = validation.NormalizePhone(contact.ContactValue)
	}
	contact.ResidentID = residentID
	contact.IsActive = true

	if err := s.db.Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// RemoveContact soft-deletes a contact.
func (s *ResidentService) RemoveContact(residentID, contactID uuid.UUID) error {
	result := s.db.Model(&models.ResidentContact{}).
		Where("id = ? AND resident_id = ? AND is_active = ?", contactID, residentID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("contact not found")
	}
	return nil
}

// PrimaryContact returns the highest-priority active contact of the given
// type: priority 1 before 2 before 3.
func (s *ResidentService) PrimaryContact(residentID uuid.UUID, contactType string) (*models.ResidentContact, error) {
	var contact models.ResidentContact
	err := s.db.Where("resident_id = ? AND contact_type = ? AND is_active = ?", residentID, contactType, true).
		Order("priority ASC, created_at ASC").
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("no active contact of that type")
		}
		return nil, err
	}
	return &contact, nil
}

// AddVehicle attaches a vehicle to an active resident.
func (s *ResidentService) AddVehicle(residentID uuid.UUID, vehicle *models.ResidentVehicle) (*models.ResidentVehicle, error) {
	if err := s.requireActiveResident(residentID); err != nil {
		return nil, err
	}
	if vehicle.LicensePlate == "" {
		return nil, errors.New("license plate is required")
	}
	vehicle.ResidentID = residentID
	vehicle.IsActive = true

	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// RemoveVehicle soft-deletes a vehicle.
func (s *ResidentService) RemoveVehicle(residentID, vehicleID uuid.UUID) error {
	result := s.db.Model(&models.ResidentVehicle{}).
		Where("id = ? AND resident_id = ? AND is_active = ?", vehicleID, residentID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("vehicle not found")
	}
	return nil
}

// checkApartmentNumber enforces apartment uniqueness case-insensitively
// against every row, soft-deleted included. excludeID skips the resident
// being edited.
func (s *ResidentService) checkApartmentNumber(apartmentNumber string, excludeID uuid.UUID) error {
	var existing models.Resident
	query := s.db.Where("LOWER(apartment_number) = LOWER(?)", apartmentNumber)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return &ApartmentConflictError{
		ApartmentNumber: apartmentNumber,
		ExistingName:    existing.FullName,
		ExistingActive:  existing.IsActive,
	}
}

func (s *ResidentService) requireActiveResident(id uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Resident{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrResidentNotFound
	}
	return nil
}

func normalizeContacts(contacts []models.ResidentContact) {
	for i := range contacts {
		if contacts[i].ContactType == models.ContactTypePhone {
			contacts[i].ContactValue = validation.NormalizePhone(contacts[i].ContactValue)
		}
		if contacts[i].Priority < 1 || contacts[i].Priority > 3 {
			contacts[i].Priority = 3
		}
		contacts[i].IsActive = true
	}
}
