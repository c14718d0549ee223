package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	exportService   *services.ExportService
	visitorService  *services.VisitorService
	residentService *services.ResidentService
}

func NewReportHandler(exportService *services.ExportService, visitorService *services.VisitorService, residentService *services.ResidentService) *ReportHandler {
	return &ReportHandler{
		exportService:   exportService,
		visitorService:  visitorService,
		residentService: residentService,
	}
}

// ExportVisitorsXLSX streams the visitor report for a date range
func (h *ReportHandler) ExportVisitorsXLSX(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitors, err := h.visitorService.GetByDateRange(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	data, err := h.exportService.VisitorsXLSX(visitors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate export"})
		return
	}

	serveAttachment(c, services.ExportFilename("visitors", "xlsx"), xlsxContentType, data)
}

// ExportVisitorsCSV streams the visitor report as CSV
func (h *ReportHandler) ExportVisitorsCSV(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitors, err := h.visitorService.GetByDateRange(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	data, err := h.exportService.VisitorsCSV(visitors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate export"})
		return
	}

	serveAttachment(c, services.ExportFilename("visitors", "csv"), "text/csv", data)
}

// ExportResidentsXLSX streams the resident directory
func (h *ReportHandler) ExportResidentsXLSX(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	var residents []*models.Resident
	for page := 1; ; page++ {
		batch, _, err := h.residentService.List(page, 200, "", includeInactive)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load residents"})
			return
		}
		residents = append(residents, batch...)
		if len(batch) < 200 {
			break
		}
	}

	data, err := h.exportService.ResidentsXLSX(residents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate export"})
		return
	}

	serveAttachment(c, services.ExportFilename("residents", "xlsx"), xlsxContentType, data)
}

// ResidentImportTemplate streams the empty import workbook
func (h *ReportHandler) ResidentImportTemplate(c *gin.Context) {
	data, err := h.exportService.ResidentImportTemplate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}

	serveAttachment(c, "residents_template.xlsx", xlsxContentType, data)
}

// ImportResidents parses an uploaded workbook and creates residents
func (h *ReportHandler) ImportResidents(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	report, err := h.exportService.ImportResidents(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		// Default to the current day
		now := time.Now()
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, from.Add(24 * time.Hour), nil
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' date, expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' date, expected YYYY-MM-DD")
	}
	return from, to.Add(24 * time.Hour), nil
}

func serveAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
