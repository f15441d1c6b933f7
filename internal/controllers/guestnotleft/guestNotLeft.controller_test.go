package guestNotLeftController

import (
	"context"
	"testing"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGuestNotLeftRepo struct {
	employees   map[uuid.UUID]*models.Employee // keyed by user ID
	assignments map[uuid.UUID]*models.EmployeeJobAssignment
	homes       map[uuid.UUID]*models.UserHome
	reports     []*models.GuestNotLeftReport
	owner       *models.Employee
}

func newFakeRepo() *fakeGuestNotLeftRepo {
	return &fakeGuestNotLeftRepo{
		employees:   map[uuid.UUID]*models.Employee{},
		assignments: map[uuid.UUID]*models.EmployeeJobAssignment{},
		homes:       map[uuid.UUID]*models.UserHome{},
	}
}

func (f *fakeGuestNotLeftRepo) GetActiveEmployeeByUser(_ context.Context, userID uuid.UUID) (*models.Employee, error) {
	employee, ok := f.employees[userID]
	if !ok || employee.Status != models.EmployeeActive {
		return nil, gorm.ErrRecordNotFound
	}
	return employee, nil
}

func (f *fakeGuestNotLeftRepo) GetAssignment(_ context.Context, id uuid.UUID) (*models.EmployeeJobAssignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeGuestNotLeftRepo) SaveAssignment(_ context.Context, assignment *models.EmployeeJobAssignment) error {
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeGuestNotLeftRepo) CreateReport(_ context.Context, report *models.GuestNotLeftReport) error {
	report.ID = uuid.New()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeGuestNotLeftRepo) ResolveReports(_ context.Context, assignmentID uuid.UUID, resolution models.ReportResolution, at time.Time) (int64, error) {
	var resolved int64
	for _, report := range f.reports {
		if report.EmployeeJobAssignmentID == assignmentID && !report.Resolved {
			report.Resolved = true
			report.ResolvedAt = &at
			r := resolution
			report.Resolution = &r
			resolved++
		}
	}
	return resolved, nil
}

func (f *fakeGuestNotLeftRepo) ListExpiredFlagged(_ context.Context, now time.Time) ([]models.EmployeeJobAssignment, error) {
	var out []models.EmployeeJobAssignment
	for _, assignment := range f.assignments {
		if assignment.GuestNotLeftReported &&
			assignment.Status == models.AssignmentAssigned &&
			assignment.Appointment != nil &&
			assignment.Appointment.Date.Before(now) {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (f *fakeGuestNotLeftRepo) GetBusinessOwner(_ context.Context) (*models.Employee, error) {
	if f.owner == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.owner, nil
}

func (f *fakeGuestNotLeftRepo) GetHome(_ context.Context, id uuid.UUID) (*models.UserHome, error) {
	home, ok := f.homes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return home, nil
}

type recordingSender struct {
	sent []services.Notification
}

func (s *recordingSender) Send(_ context.Context, notification services.Notification) error {
	s.sent = append(s.sent, notification)
	return nil
}

type gnlFixture struct {
	controller *GuestNotLeftController
	repo       *fakeGuestNotLeftRepo
	sender     *recordingSender

	employeeUserID uuid.UUID
	homeownerID    uuid.UUID
	assignment     *models.EmployeeJobAssignment
}

func newGNLFixture() *gnlFixture {
	repo := newFakeRepo()
	sender := &recordingSender{}

	employeeUserID := uuid.New()
	employee := &models.Employee{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		UserID:        employeeUserID,
		Status:        models.EmployeeActive,
	}
	repo.employees[employeeUserID] = employee

	ownerUserID := uuid.New()
	repo.owner = &models.Employee{
		BaseUUIDModel:   models.BaseUUIDModel{ID: uuid.New()},
		UserID:          ownerUserID,
		Status:          models.EmployeeActive,
		IsBusinessOwner: true,
	}

	homeownerID := uuid.New()
	homeLat, homeLng := 42.3601, -71.0589
	home := &models.UserHome{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		UserID:        homeownerID,
		Latitude:      &homeLat,
		Longitude:     &homeLng,
	}
	repo.homes[home.ID] = home

	appointment := &models.UserAppointment{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		UserID:        homeownerID,
		HomeID:        home.ID,
		Date:          time.Now().UTC().Add(2 * time.Hour),
	}

	assignment := &models.EmployeeJobAssignment{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		EmployeeID:    employee.ID,
		Employee:      employee,
		AppointmentID: appointment.ID,
		Appointment:   appointment,
		Status:        models.AssignmentAssigned,
	}
	repo.assignments[assignment.ID] = assignment

	return &gnlFixture{
		controller:     New(repo, services.NewNotificationService(sender)),
		repo:           repo,
		sender:         sender,
		employeeUserID: employeeUserID,
		homeownerID:    homeownerID,
		assignment:     assignment,
	}
}

func TestReportGuestNotLeft(t *testing.T) {
	ctx := context.Background()

	t.Run("records the report and notifies the homeowner", func(t *testing.T) {
		f := newGNLFixture()
		lat, lng := 42.3602, -71.0590
		notes := "guest answered the door"

		result, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID,
			Location{Latitude: &lat, Longitude: &lng},
			&notes,
		)
		require.NoError(t, err)

		assert.Equal(t, 1, result.ReportCount)
		assert.True(t, result.HomeownerNotified)
		require.NotNil(t, result.Report.DistanceFromHome)
		assert.Less(t, *result.Report.DistanceFromHome, 50.0)

		assert.True(t, f.assignment.GuestNotLeftReported)
		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, f.homeownerID, f.sender.sent[0].UserID)
		assert.False(t, f.sender.sent[0].ActionRequired)
	})

	t.Run("no location means no distance", func(t *testing.T) {
		f := newGNLFixture()

		result, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
		)
		require.NoError(t, err)
		assert.Nil(t, result.Report.DistanceFromHome)
	})

	t.Run("third report escalates to the business owner exactly once", func(t *testing.T) {
		f := newGNLFixture()

		for i := 1; i <= EscalationThreshold; i++ {
			result, err := f.controller.ReportGuestNotLeft(
				ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
			)
			require.NoError(t, err)
			assert.Equal(t, i, result.ReportCount)
		}

		// three homeowner notifications plus one owner escalation
		require.Len(t, f.sender.sent, EscalationThreshold+1)

		escalation := f.sender.sent[len(f.sender.sent)-1]
		assert.Equal(t, f.repo.owner.UserID, escalation.UserID)
		assert.True(t, escalation.ActionRequired)
		assert.True(t, escalation.SendEmail)
	})

	t.Run("missing employee record", func(t *testing.T) {
		f := newGNLFixture()
		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, uuid.New(), Location{}, nil,
		)
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})

	t.Run("job already started", func(t *testing.T) {
		f := newGNLFixture()
		f.assignment.Status = models.AssignmentInProgress

		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
		)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	t.Run("reporter not assigned to the job", func(t *testing.T) {
		f := newGNLFixture()
		otherUserID := uuid.New()
		f.repo.employees[otherUserID] = &models.Employee{
			BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
			UserID:        otherUserID,
			Status:        models.EmployeeActive,
		}

		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, otherUserID, Location{}, nil,
		)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("business owner may report on a self-assigned job", func(t *testing.T) {
		f := newGNLFixture()
		f.assignment.EmployeeID = f.repo.owner.ID
		f.assignment.Employee = f.repo.owner
		f.repo.employees[f.repo.owner.UserID] = f.repo.owner

		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.repo.owner.UserID, Location{}, nil,
		)
		assert.NoError(t, err)
	})
}

func TestClearGuestNotLeftFlag(t *testing.T) {
	ctx := context.Background()

	t.Run("noop when the flag is already down", func(t *testing.T) {
		f := newGNLFixture()

		require.NoError(t, f.controller.ClearGuestNotLeftFlag(ctx, f.assignment.ID))
		assert.Empty(t, f.repo.reports)
	})

	t.Run("clears the flag and resolves reports, count preserved", func(t *testing.T) {
		f := newGNLFixture()
		for range 2 {
			_, err := f.controller.ReportGuestNotLeft(
				ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
			)
			require.NoError(t, err)
		}

		require.NoError(t, f.controller.ClearGuestNotLeftFlag(ctx, f.assignment.ID))

		assert.False(t, f.assignment.GuestNotLeftReported)
		assert.Equal(t, 2, f.assignment.GuestNotLeftReportCount)
		for _, report := range f.repo.reports {
			assert.True(t, report.Resolved)
			require.NotNil(t, report.Resolution)
			assert.Equal(t, models.ResolutionJobCompleted, *report.Resolution)
		}
	})

	t.Run("unknown assignment", func(t *testing.T) {
		f := newGNLFixture()
		err := f.controller.ClearGuestNotLeftFlag(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})
}

func TestHandleExpiredJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves expired flagged assignments and notifies the owner", func(t *testing.T) {
		f := newGNLFixture()
		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
		)
		require.NoError(t, err)
		f.sender.sent = nil

		// push the appointment into the past
		f.assignment.Appointment.Date = time.Now().UTC().Add(-time.Hour)

		handled, err := f.controller.HandleExpiredJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, handled)

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, f.repo.owner.UserID, f.sender.sent[0].UserID)
		assert.True(t, f.sender.sent[0].HighPriority)
		assert.True(t, f.sender.sent[0].SendEmail)

		for _, report := range f.repo.reports {
			assert.True(t, report.Resolved)
			require.NotNil(t, report.Resolution)
			assert.Equal(t, models.ResolutionExpired, *report.Resolution)
		}
	})

	t.Run("second run finds nothing", func(t *testing.T) {
		f := newGNLFixture()
		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
		)
		require.NoError(t, err)
		f.assignment.Appointment.Date = time.Now().UTC().Add(-time.Hour)

		handled, err := f.controller.HandleExpiredJobs(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, handled)

		handled, err = f.controller.HandleExpiredJobs(ctx)
		require.NoError(t, err)
		assert.Zero(t, handled)
	})

	t.Run("future flagged assignments are untouched", func(t *testing.T) {
		f := newGNLFixture()
		_, err := f.controller.ReportGuestNotLeft(
			ctx, f.assignment.ID, f.employeeUserID, Location{}, nil,
		)
		require.NoError(t, err)

		handled, err := f.controller.HandleExpiredJobs(ctx)
		require.NoError(t, err)
		assert.Zero(t, handled)
		assert.True(t, f.assignment.GuestNotLeftReported)
	})
}
