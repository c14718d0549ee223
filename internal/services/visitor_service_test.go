package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siteguard/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) NotifyVisitorArrival(v *models.Visitor) error {
	f.notified = append(f.notified, v.ResidentPhone)
	return f.err
}

func newVisitorFixture(t *testing.T) (*VisitorService, *fakeNotifier) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	return NewVisitorService(db, notifier), notifier
}

func TestCheckIn_ForcesLifecycleFields(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	stale := time.Now().Add(-48 * time.Hour)
	visitor, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
		CheckInTime:     stale,
		CheckOutTime:    &stale,
		IsActive:        false,
	}, "operator1")
	require.NoError(t, err)

	assert.True(t, visitor.IsActive)
	assert.Nil(t, visitor.CheckOutTime)
	assert.WithinDuration(t, time.Now(), visitor.CheckInTime, 5*time.Second)
	assert.Equal(t, "operator1", visitor.CreatedBy)
}

func TestCheckIn_NotifiesResident(t *testing.T) {
	svc, notifier := newVisitorFixture(t)

	_, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
		ResidentPhone:   "0555 123 45 67",
	}, "operator1")
	require.NoError(t, err)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "05551234567", notifier.notified[0])
}

func TestCheckIn_RequiresNameAndApartment(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	_, err := svc.CheckIn(&models.Visitor{ApartmentNumber: "A-12"}, "operator1")
	assert.Error(t, err)

	_, err = svc.CheckIn(&models.Visitor{FullName: "Ahmet Yılmaz"}, "operator1")
	assert.Error(t, err)
}

func TestCheckIn_WritesAuditLog(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	visitor, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
	}, "operator1")
	require.NoError(t, err)

	logs, total, err := svc.ListLogs(1, 10, models.VisitorActionCheckIn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, visitor.ID, logs[0].VisitorID)
	assert.Equal(t, "operator1", logs[0].PerformedBy)
}

func TestCheckOut_ClosesVisit(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	visitor, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
	}, "operator1")
	require.NoError(t, err)

	done, err := svc.CheckOut(visitor.ID, "operator2")
	require.NoError(t, err)
	assert.True(t, done)

	stored, err := svc.GetByID(visitor.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.CheckOutTime)
}

func TestCheckOut_SecondCallIsNoOp(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	visitor, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
	}, "operator1")
	require.NoError(t, err)

	done, err := svc.CheckOut(visitor.ID, "operator1")
	require.NoError(t, err)
	require.True(t, done)

	first, err := svc.GetByID(visitor.ID)
	require.NoError(t, err)
	firstCheckout := *first.CheckOutTime

	done, err = svc.CheckOut(visitor.ID, "operator1")
	require.NoError(t, err)
	assert.False(t, done)

	// The original check-out time is untouched
	second, err := svc.GetByID(visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, firstCheckout, *second.CheckOutTime)
}

func TestCheckOut_UnknownVisitor(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	done, err := svc.CheckOut(uuid.New(), "operator1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestUpdate_PreservesLifecycleFields(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	visitor, err := svc.CheckIn(&models.Visitor{
		FullName:        "Ahmet Yılmaz",
		ApartmentNumber: "A-12",
	}, "operator1")
	require.NoError(t, err)

	done, err := svc.CheckOut(visitor.ID, "operator1")
	require.NoError(t, err)
	require.True(t, done)

	updated, err := svc.Update(visitor.ID, &models.Visitor{
		FullName:        "Ahmet Yilmaz",
		ApartmentNumber: "A-12",
		Notes:           "misafir",
	}, "operator2")
	require.NoError(t, err)

	// An edit can never resurrect a closed visit
	assert.Equal(t, "Ahmet Yilmaz", updated.FullName)
	assert.False(t, updated.IsActive)
	assert.NotNil(t, updated.CheckOutTime)
	assert.Equal(t, "operator1", updated.CreatedBy)
}

func TestUpdate_UnknownVisitor(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	_, err := svc.Update(uuid.New(), &models.Visitor{FullName: "X"}, "operator1")
	assert.ErrorIs(t, err, ErrVisitorNotFound)
}

func TestGetActive_OldestFirst(t *testing.T) {
	svc, _ := newVisitorFixture(t)
	db := svc.db

	first, err := svc.CheckIn(&models.Visitor{FullName: "Birinci", ApartmentNumber: "A-1"}, "op")
	require.NoError(t, err)
	second, err := svc.CheckIn(&models.Visitor{FullName: "İkinci", ApartmentNumber: "A-2"}, "op")
	require.NoError(t, err)
	closed, err := svc.CheckIn(&models.Visitor{FullName: "Üçüncü", ApartmentNumber: "A-3"}, "op")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Visitor{}).Where("id = ?", first.ID).
		Update("check_in_time", time.Now().Add(-2*time.Hour)).Error)
	require.NoError(t, db.Model(&models.Visitor{}).Where("id = ?", second.ID).
		Update("check_in_time", time.Now().Add(-1*time.Hour)).Error)

	done, err := svc.CheckOut(closed.ID, "op")
	require.NoError(t, err)
	require.True(t, done)

	active, err := svc.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)
}

func TestGetByDateRange_IncludesOngoingVisits(t *testing.T) {
	svc, _ := newVisitorFixture(t)
	db := svc.db

	// Checked in last week, never checked out
	ongoing, err := svc.CheckIn(&models.Visitor{FullName: "Uzun Misafir", ApartmentNumber: "B-4"}, "op")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Visitor{}).Where("id = ?", ongoing.ID).
		Update("check_in_time", time.Now().Add(-7*24*time.Hour)).Error)

	today, err := svc.CheckIn(&models.Visitor{FullName: "Bugünkü", ApartmentNumber: "B-5"}, "op")
	require.NoError(t, err)

	from := time.Now().Add(-1 * time.Hour)
	to := time.Now().Add(1 * time.Hour)

	visitors, err := svc.GetByDateRange(from, to)
	require.NoError(t, err)
	require.Len(t, visitors, 2)

	ids := []uuid.UUID{visitors[0].ID, visitors[1].ID}
	assert.Contains(t, ids, ongoing.ID)
	assert.Contains(t, ids, today.ID)
}

func TestGetByDateRange_ExcludesClosedVisitsOutsideWindow(t *testing.T) {
	svc, _ := newVisitorFixture(t)
	db := svc.db

	old, err := svc.CheckIn(&models.Visitor{FullName: "Eski Misafir", ApartmentNumber: "C-1"}, "op")
	require.NoError(t, err)
	done, err := svc.CheckOut(old.ID, "op")
	require.NoError(t, err)
	require.True(t, done)
	require.NoError(t, db.Model(&models.Visitor{}).Where("id = ?", old.ID).
		Updates(map[string]interface{}{
			"check_in_time":  time.Now().Add(-7 * 24 * time.Hour),
			"check_out_time": time.Now().Add(-6 * 24 * time.Hour),
		}).Error)

	visitors, err := svc.GetByDateRange(time.Now().Add(-1*time.Hour), time.Now().Add(1*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, visitors)
}

func TestList_FoldedSearch(t *testing.T) {
	svc, _ := newVisitorFixture(t)

	_, err := svc.CheckIn(&models.Visitor{FullName: "Çağrı Şahin", ApartmentNumber: "D-7"}, "op")
	require.NoError(t, err)
	_, err = svc.CheckIn(&models.Visitor{FullName: "Mehmet Demir", ApartmentNumber: "D-8"}, "op")
	require.NoError(t, err)

	// ASCII query matches the diacritic name
	visitors, total, err := svc.List(1, 10, "cagri")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visitors, 1)
	assert.Equal(t, "Çağrı Şahin", visitors[0].FullName)

	// Diacritic query matches too
	_, total, err = svc.List(1, 10, "ŞAHİN")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
