package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVisitorPassPDF(t *testing.T) {
	cfg := testConfig()
	cfg.APIUrl = "http://localhost:8080"
	svc := NewPassService(cfg)

	data, err := svc.GenerateVisitorPassPDF(&models.Visitor{
		ID:              uuid.New(),
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
		LicensePlate:    "34 ABC 123",
		CheckInTime:     time.Now(),
		CreatedBy:       "operator1",
	})
	require.NoError(t, err)

	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
