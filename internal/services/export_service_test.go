package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/siteguard/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFixture(t *testing.T) (*ExportService, *ResidentService) {
	residents := NewResidentService(newTestDB(t))
	return NewExportService(residents), residents
}

func TestVisitorsXLSX_HeaderAndRows(t *testing.T) {
	svc, _ := newExportFixture(t)

	out := time.Now()
	data, err := svc.VisitorsXLSX([]*models.Visitor{
		{FullName: "Ahmet Yılmaz", ApartmentNumber: "A-12", CheckInTime: time.Now(), IsActive: true},
		{FullName: "Ayşe Kaya", ApartmentNumber: "B-3", CheckInTime: time.Now(), CheckOutTime: &out},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Visitors")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, visitorExportHeader, rows[0][:len(visitorExportHeader)])
	assert.Equal(t, "Ahmet Yılmaz", rows[1][0])
	assert.Equal(t, "Active", rows[1][9])
	assert.Equal(t, "Checked out", rows[2][9])
}

func TestVisitorsCSV(t *testing.T) {
	svc, _ := newExportFixture(t)

	data, err := svc.VisitorsCSV([]*models.Visitor{
		{FullName: "Ahmet Yılmaz", ApartmentNumber: "A-12", CheckInTime: time.Now(), IsActive: true},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Full Name")
	assert.Contains(t, lines[1], "Ahmet Yılmaz")
	assert.Contains(t, lines[1], "Active")
}

func TestResidentsXLSX_ContactAndPlateColumns(t *testing.T) {
	svc, _ := newExportFixture(t)

	data, err := svc.ResidentsXLSX([]*models.Resident{
		{
			FullName:        "Ayşe Kaya",
			ApartmentNumber: "A-12",
			IsActive:        true,
			Contacts: []models.ResidentContact{
				{ContactType: models.ContactTypePhone, ContactValue: "05551234567", IsActive: true},
				{ContactType: models.ContactTypeEmail, ContactValue: "ayse@example.com", IsActive: true},
			},
			Vehicles: []models.ResidentVehicle{
				{LicensePlate: "34 ABC 123", IsActive: true},
				{LicensePlate: "34 XYZ 789", IsActive: false},
			},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Residents")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "05551234567", rows[1][5])
	assert.Equal(t, "ayse@example.com", rows[1][6])
	// Inactive vehicles are left out of the plate summary
	assert.Equal(t, "34 ABC 123", rows[1][7])
}

func TestImportResidents_RoundTrip(t *testing.T) {
	svc, residents := newExportFixture(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, header := range ResidentImportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"Ayşe Kaya", "A-12", "A", "", "12", "0555 123 45 67", "ayse@example.com", "yeni taşındı",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"", "A-13", "", "", "", "", "", "", // name missing
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{
		"Mehmet Demir", "a-12", "", "", "", "", "", "", // apartment conflict
	}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	report, err := svc.ImportResidents(&buf)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Equal(t, 4, report.Errors[1].Row)

	imported, err := residents.GetByApartment("A-12")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Kaya", imported.FullName)
	require.Len(t, imported.Contacts, 2)
	values := []string{imported.Contacts[0].ContactValue, imported.Contacts[1].ContactValue}
	assert.ElementsMatch(t, []string{"05551234567", "ayse@example.com"}, values)
}

func TestResidentImportTemplate_HasHeaderOnly(t *testing.T) {
	svc, _ := newExportFixture(t)

	data, err := svc.ResidentImportTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Residents")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ResidentImportHeader, rows[0][:len(ResidentImportHeader)])
}

func TestExportFilename(t *testing.T) {
	name := ExportFilename("visitors", "xlsx")
	assert.True(t, strings.HasPrefix(name, "visitors_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}
