package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/internal/services"
	"github.com/siteguard/backend/pkg/validation"
)

type ResidentHandler struct {
	residentService *services.ResidentService
}

func NewResidentHandler(residentService *services.ResidentService) *ResidentHandler {
	return &ResidentHandler{residentService: residentService}
}

type residentRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	ApartmentNumber string `json:"apartment_number" binding:"required"`
	Block           string `json:"block"`
	SubBlock        string `json:"sub_block"`
	DoorNumber      string `json:"door_number"`
	Notes           string `json:"notes"`
	Contacts        []struct {
		ContactType  string `json:"contact_type" binding:"required"`
		ContactValue string `json:"contact_value" binding:"required"`
		Label        string `json:"label"`
		Priority     int    `json:"priority"`
	} `json:"contacts"`
	Vehicles []struct {
		LicensePlate string `json:"license_plate" binding:"required"`
		Brand        string `json:"brand"`
		Model        string `json:"model"`
		Color        string `json:"color"`
		Year         int    `json:"year"`
		VehicleType  string `json:"vehicle_type"`
		Notes        string `json:"notes"`
	} `json:"vehicles"`
}

// Create registers a resident with optional nested contacts and vehicles
func (h *ResidentHandler) Create(c *gin.Context) {
	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resident := &models.Resident{
		FullName:        req.FullName,
		ApartmentNumber: req.ApartmentNumber,
		Block:           req.Block,
		SubBlock:        req.SubBlock,
		DoorNumber:      req.DoorNumber,
		Notes:           req.Notes,
	}
	for _, contact := range req.Contacts {
		resident.Contacts = append(resident.Contacts, models.ResidentContact{
			ContactType:  contact.ContactType,
			ContactValue: contact.ContactValue,
			Label:        contact.Label,
			Priority:     contact.Priority,
		})
	}
	for _, vehicle := range req.Vehicles {
		resident.Vehicles = append(resident.Vehicles, models.ResidentVehicle{
			LicensePlate: vehicle.LicensePlate,
			Brand:        vehicle.Brand,
			Model:        vehicle.Model,
			Color:        vehicle.Color,
			Year:         vehicle.Year,
			VehicleType:  vehicle.VehicleType,
			Notes:        vehicle.Notes,
			IsActive:     true,
		})
	}

	created, err := h.residentService.Create(resident)
	if err != nil {
		var conflict *services.ApartmentConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update edits the resident's own fields
func (h *ResidentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}

	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resident, err := h.residentService.Update(id, &models.Resident{
		FullName:        req.FullName,
		ApartmentNumber: req.ApartmentNumber,
		Block:           req.Block,
		SubBlock:        req.SubBlock,
		DoorNumber:      req.DoorNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		var conflict *services.ApartmentConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
			return
		}
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resident"})
		return
	}

	c.JSON(http.StatusOK, resident)
}

// Deactivate soft-deletes a resident and its contacts and vehicles
func (h *ResidentHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}

	if err := h.residentService.Deactivate(id); err != nil {
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate resident"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resident deactivated"})
}

// GetByID returns a resident with contacts and vehicles
func (h *ResidentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}

	resident, err := h.residentService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load resident"})
		return
	}

	c.JSON(http.StatusOK, resident)
}

// GetByApartment looks up the active resident of an apartment for check-in
func (h *ResidentHandler) GetByApartment(c *gin.Context) {
	apartment := c.Query("apartment")
	if apartment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apartment query parameter is required"})
		return
	}

	resident, err := h.residentService.GetByApartment(apartment)
	if err != nil {
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load resident"})
		return
	}

	c.JSON(http.StatusOK, resident)
}

// List returns a page of residents with optional folded search
func (h *ResidentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	query := c.Query("q")
	includeInactive := c.Query("include_inactive") == "true"

	residents, total, err := h.residentService.List(page, limit, query, includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load residents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"residents": residents,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// AddContact attaches a contact to a resident
func (h *ResidentHandler) AddContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}

	var req struct {
		ContactType  string `json:"contact_type" binding:"required"`
		ContactValue string `json:"contact_value" binding:"required"`
		Label        string `json:"label"`
		Priority     int    `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ContactType == models.ContactTypeEmail && !validation.ValidateEmail(req.ContactValue) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}
	if req.ContactType == models.ContactTypePhone && !validation.ValidatePhone(req.ContactValue) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	contact, err := h.residentService.AddContact(id, &models.ResidentContact{
		ContactType:  req.ContactType,
		ContactValue: req.ContactValue,
		Label:        req.Label,
		Priority:     req.Priority,
	})
	if err != nil {
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// RemoveContact soft-deletes a contact
func (h *ResidentHandler) RemoveContact(c *gin.Context) {
	residentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}
	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact id"})
		return
	}

	if err := h.residentService.RemoveContact(residentID, contactID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact removed"})
}

// AddVehicle attaches a vehicle to a resident
func (h *ResidentHandler) AddVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}

	var req struct {
		LicensePlate string `json:"license_plate" binding:"required"`
		Brand        string `json:"brand"`
		Model        string `json:"model"`
		Color        string `json:"color"`
		Year         int    `json:"year"`
		VehicleType  string `json:"vehicle_type"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.residentService.AddVehicle(id, &models.ResidentVehicle{
		LicensePlate: req.LicensePlate,
		Brand:        req.Brand,
		Model:        req.Model,
		Color:        req.Color,
		Year:         req.Year,
		VehicleType:  req.VehicleType,
		Notes:        req.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// RemoveVehicle soft-deletes a vehicle
func (h *ResidentHandler) RemoveVehicle(c *gin.Context) {
	residentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident id"})
		return
	}
	vehicleID, err := uuid.Parse(c.Param("vehicleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id"})
		return
	}

	if err := h.residentService.RemoveVehicle(residentID, vehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle removed"})
}
