package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/siteguard/backend/internal/models"
	"github.com/xuri/excelize/v2"
)

var visitorExportHeader = []string{
	"Full Name",
	"Apartment",
	"License Plate",
	"ID Number",
	"Check-In Time",
	"Check-Out Time",
	"Resident",
	"Resident Phone",
	"Visitor Phone",
	"Status",
	"Registered By",
	"Notes",
}

var residentExportHeader = []string{
	"Full Name",
	"Apartment",
	"Block",
	"Sub Block",
	"Door",
	"Primary Phone",
	"Primary Email",
	"Vehicle Plates",
	"Active",
	"Notes",
}

// ResidentImportHeader is the expected header row of the import template.
var ResidentImportHeader = []string{
	"Full Name",
	"Apartment",
	"Block",
	"Sub Block",
	"Door",
	"Phone",
	"Email",
	"Notes",
}

// ImportRowError is a single rejected row in a resident import.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes a resident import run.
type ImportReport struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ExportService renders visitor and resident data as spreadsheets and parses
// resident imports. Formatting only; it never mutates domain state except
// through ResidentService during import.
type ExportService struct {
	residents *ResidentService
}

func NewExportService(residents *ResidentService) *ExportService {
	return &ExportService{residents: residents}
}

// VisitorsXLSX renders visitors into a styled worksheet.
func (s *ExportService) VisitorsXLSX(visitors []*models.Visitor) ([]byte, error) {
	rows := make([][]interface{}, 0, len(visitors))
	for _, v := range visitors {
		status := "Checked out"
		checkOut := ""
		if v.CheckOutTime == nil {
			status = "Active"
		} else {
			checkOut = v.CheckOutTime.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []interface{}{
			v.FullName,
			v.ApartmentNumber,
			v.LicensePlate,
			v.IDNumber,
			v.CheckInTime.Format("2006-01-02 15:04:05"),
			checkOut,
			v.ResidentName,
			v.ResidentPhone,
			v.VisitorPhone,
			status,
			v.CreatedBy,
			v.Notes,
		})
	}
	return generateSheet("Visitors", visitorExportHeader, rows)
}

// VisitorsCSV renders visitors as CSV for systems that cannot read XLSX.
func (s *ExportService) VisitorsCSV(visitors []*models.Visitor) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(visitorExportHeader); err != nil {
		return nil, err
	}
	for _, v := range visitors {
		status := "Checked out"
		checkOut := ""
		if v.CheckOutTime == nil {
			status = "Active"
		} else {
			checkOut = v.CheckOutTime.Format("2006-01-02 15:04:05")
		}
		record := []string{
			v.FullName, v.ApartmentNumber, v.LicensePlate, v.IDNumber,
			v.CheckInTime.Format("2006-01-02 15:04:05"), checkOut,
			v.ResidentName, v.ResidentPhone, v.VisitorPhone, status, v.CreatedBy, v.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResidentsXLSX renders residents with contact and vehicle summary columns.
func (s *ExportService) ResidentsXLSX(residents []*models.Resident) ([]byte, error) {
	rows := make([][]interface{}, 0, len(residents))
	for _, r := range residents {
		active := "Yes"
		if !r.IsActive {
			active = "No"
		}
		rows = append(rows, []interface{}{
			r.FullName,
			r.ApartmentNumber,
			r.Block,
			r.SubBlock,
			r.DoorNumber,
			firstContact(r.Contacts, models.ContactTypePhone),
			firstContact(r.Contacts, models.ContactTypeEmail),
			joinPlates(r.Vehicles),
			active,
			r.Notes,
		})
	}
	return generateSheet("Residents", residentExportHeader, rows)
}

// ResidentImportTemplate produces the empty import workbook.
func (s *ExportService) ResidentImportTemplate() ([]byte, error) {
	return generateSheet("Residents", ResidentImportHeader, nil)
}

// ImportResidents parses an uploaded workbook and creates residents row by
// row. Rejected rows (missing fields, apartment conflicts) are reported per
// row and do not abort the rest of the import.
func (s *ExportService) ImportResidents(r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}

	report := &ImportReport{}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header row

		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		resident := &models.Resident{
			FullName:        get(0),
			ApartmentNumber: get(1),
			Block:           get(2),
			SubBlock:        get(3),
			DoorNumber:      get(4),
			Notes:           get(7),
		}
		if resident.FullName == "" && resident.ApartmentNumber == "" {
			continue // blank row
		}
		if phone := get(5); phone != "" {
			resident.Contacts = append(resident.Contacts, models.ResidentContact{
				ContactType:  models.ContactTypePhone,
				ContactValue: phone,
				Priority:     1,
			})
		}
		if email := get(6); email != "" {
			resident.Contacts = append(resident.Contacts, models.ResidentContact{
				ContactType:  models.ContactTypeEmail,
				ContactValue: email,
				Priority:     1,
			})
		}

		if _, err := s.residents.Create(resident); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		report.Imported++
	}

	return report, nil
}

// generateSheet builds a single-sheet workbook with a styled, frozen header.
func generateSheet(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, 20); err != nil {
			f.Close()
			return nil, err
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstContact(contacts []models.ResidentContact, contactType string) string {
	for _, c := range contacts {
		if c.ContactType == contactType && c.IsActive {
			return c.ContactValue
		}
	}
	return ""
}

func joinPlates(vehicles []models.ResidentVehicle) string {
	plates := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		if v.IsActive {
			plates = append(plates, v.LicensePlate)
		}
	}
	return strings.Join(plates, ", ")
}

// ExportFilename builds a timestamped attachment name.
func ExportFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}
