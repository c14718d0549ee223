package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/internal/services"
)

type VisitorHandler struct {
	visitorService *services.VisitorService
	passService    *services.PassService
}

func NewVisitorHandler(visitorService *services.VisitorService, passService *services.PassService) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		passService:    passService,
	}
}

type visitorRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	ApartmentNumber string `json:"apartment_number" binding:"required"`
	LicensePlate    string `json:"license_plate"`
	IDNumber        string `json:"id_number"`
	PhotoPath       string `json:"photo_path"`
	ResidentName    string `json:"resident_name"`
	ResidentPhone   string `json:"resident_phone"`
	VisitorPhone    string `json:"visitor_phone"`
	Notes           string `json:"notes"`
}

func (r *visitorRequest) toModel() *models.Visitor {
	return &models.Visitor{
		FullName:        r.FullName,
		ApartmentNumber: r.ApartmentNumber,
		LicensePlate:    r.LicensePlate,
		IDNumber:        r.IDNumber,
		PhotoPath:       r.PhotoPath,
		ResidentName:    r.ResidentName,
		ResidentPhone:   r.ResidentPhone,
		VisitorPhone:    r.VisitorPhone,
		Notes:           r.Notes,
	}
}

// CheckIn registers a new visitor at the gate
func (h *VisitorHandler) CheckIn(c *gin.Context) {
	var req visitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.visitorService.CheckIn(req.toModel(), currentUsername(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, visitor)
}

// CheckOut closes a visit. Repeated calls report a no-op, not an error.
func (h *VisitorHandler) CheckOut(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visitor id"})
		return
	}

	done, err := h.visitorService.CheckOut(id, currentUsername(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check out visitor"})
		return
	}
	if !done {
		c.JSON(http.StatusOK, gin.H{"checked_out": false, "message": "Visitor not found or already checked out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checked_out": true})
}

// Update edits a visitor's identity and contact fields
func (h *VisitorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visitor id"})
		return
	}

	var req visitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.visitorService.Update(id, req.toModel(), currentUsername(c))
	if err != nil {
		if errors.Is(err, services.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update visitor"})
		return
	}

	c.JSON(http.StatusOK, visitor)
}

// GetByID returns a single visitor
func (h *VisitorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visitor id"})
		return
	}

	visitor, err := h.visitorService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitor"})
		return
	}

	c.JSON(http.StatusOK, visitor)
}

// GetActive lists open visits, oldest check-in first
func (h *VisitorHandler) GetActive(c *gin.Context) {
	visitors, err := h.visitorService.GetActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load active visitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitors": visitors, "count": len(visitors)})
}

// List returns a page of visitors with optional search and date range
func (h *VisitorHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	query := c.Query("q")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp"})
			return
		}
		visitors, err := h.visitorService.GetByDateRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": visitors, "total": len(visitors)})
		return
	}

	visitors, total, err := h.visitorService.List(page, limit, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visitors": visitors,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// PassPDF streams the printable gate pass for a visitor
func (h *VisitorHandler) PassPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visitor id"})
		return
	}

	visitor, err := h.visitorService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitor"})
		return
	}

	pdf, err := h.passService.GenerateVisitorPassPDF(visitor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate pass"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="visitor_pass.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
