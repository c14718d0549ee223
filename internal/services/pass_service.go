package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/siteguard/backend/internal/config"
	"github.com/siteguard/backend/internal/models"
	qrcode "github.com/skip2/go-qrcode"
)

type PassService struct {
	cfg *config.Config
}

func NewPassService(cfg *config.Config) *PassService { return &PassService{cfg: cfg} }

// GenerateVisitorPassPDF generates a printable A4 gate pass with a QR code
// carrying the visitor ID, for handing to the visitor at check-in.
func (s *PassService) GenerateVisitorPassPDF(visitor *models.Visitor) ([]byte, error) {
	passURL := fmt.Sprintf("%s/visitors/%s", s.cfg.APIUrl, visitor.ID)

	png, err := qrcode.Encode(passURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Visitor Pass")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	details := fmt.Sprintf("Name: %s\nApartment: %s\nCheck-in: %s\nRegistered by: %s",
		visitor.FullName,
		visitor.ApartmentNumber,
		visitor.CheckInTime.Format("2006-01-02 15:04"),
		visitor.CreatedBy,
	)
	if visitor.LicensePlate != "" {
		details += fmt.Sprintf("\nPlate: %s", visitor.LicensePlate)
	}
	pdf.MultiCell(0, 6, details, "", "L", false)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))

	// Center QR on the page (A4 width 210mm, QR size 100mm)
	x := (210.0 - 100.0) / 2.0
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
