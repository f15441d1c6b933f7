package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GuestNotLeftRepository interface {
	GetActiveEmployeeByUser(ctx context.Context, userID uuid.UUID) (*models.Employee, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.EmployeeJobAssignment, error)
	SaveAssignment(ctx context.Context, assignment *models.EmployeeJobAssignment) error
	CreateReport(ctx context.Context, report *models.GuestNotLeftReport) error
	ResolveReports(ctx context.Context, assignmentID uuid.UUID, resolution models.ReportResolution, at time.Time) (int64, error)
	ListExpiredFlagged(ctx context.Context, now time.Time) ([]models.EmployeeJobAssignment, error)
	GetBusinessOwner(ctx context.Context) (*models.Employee, error)
	GetHome(ctx context.Context, id uuid.UUID) (*models.UserHome, error)
}

type guestNotLeftRepository struct {
	db  database.DB
	log logger.Logger
}

func NewGuestNotLeftRepository(db database.DB) GuestNotLeftRepository {
	return &guestNotLeftRepository{
		db:  db,
		log: logger.New("guestNotLeftRepository"),
	}
}

func (r *guestNotLeftRepository) GetActiveEmployeeByUser(
	ctx context.Context,
	userID uuid.UUID,
) (*models.Employee, error) {
	log := r.log.Function("GetActiveEmployeeByUser")

	var employee models.Employee
	err := r.db.SQLWithContext(ctx).
		First(&employee, "user_id = ? AND status = ?", userID, models.EmployeeActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get active employee", err, "userID", userID)
	}

	return &employee, nil
}

func (r *guestNotLeftRepository) GetAssignment(
	ctx context.Context,
	id uuid.UUID,
) (*models.EmployeeJobAssignment, error) {
	log := r.log.Function("GetAssignment")

	var assignment models.EmployeeJobAssignment
	err := r.db.SQLWithContext(ctx).
		Preload("Employee").
		Preload("Appointment").
		First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get assignment", err, "id", id)
	}

	return &assignment, nil
}

func (r *guestNotLeftRepository) SaveAssignment(
	ctx context.Context,
	assignment *models.EmployeeJobAssignment,
) error {
	log := r.log.Function("SaveAssignment")

	if err := r.db.SQLWithContext(ctx).Save(assignment).Error; err != nil {
		return log.Err("failed to save assignment", err, "id", assignment.ID)
	}

	return nil
}

func (r *guestNotLeftRepository) CreateReport(
	ctx context.Context,
	report *models.GuestNotLeftReport,
) error {
	log := r.log.Function("CreateReport")

	if err := r.db.SQLWithContext(ctx).Create(report).Error; err != nil {
		return log.Err("failed to create report", err, "assignmentID", report.EmployeeJobAssignmentID)
	}

	return nil
}

// ResolveReports marks all unresolved reports for the assignment with the
// given resolution and returns how many rows were touched.
func (r *guestNotLeftRepository) ResolveReports(
	ctx context.Context,
	assignmentID uuid.UUID,
	resolution models.ReportResolution,
	at time.Time,
) (int64, error) {
	log := r.log.Function("ResolveReports")

	result := r.db.SQLWithContext(ctx).
		Model(&models.GuestNotLeftReport{}).
		Where("employee_job_assignment_id = ? AND resolved = ?", assignmentID, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": at,
			"resolution":  resolution,
		})
	if result.Error != nil {
		return 0, log.Err("failed to resolve reports", result.Error, "assignmentID", assignmentID)
	}

	return result.RowsAffected, nil
}

// ListExpiredFlagged finds still-flagged assignments whose appointment
// date has already passed without the job starting.
func (r *guestNotLeftRepository) ListExpiredFlagged(
	ctx context.Context,
	now time.Time,
) ([]models.EmployeeJobAssignment, error) {
	log := r.log.Function("ListExpiredFlagged")

	var assignments []models.EmployeeJobAssignment
	err := r.db.SQLWithContext(ctx).
		Preload("Appointment").
		Joins("JOIN user_appointments ON user_appointments.id = employee_job_assignments.appointment_id").
		Where("employee_job_assignments.guest_not_left_reported = ?", true).
		Where("employee_job_assignments.status = ?", models.AssignmentAssigned).
		Where("user_appointments.date < ?", now).
		Find(&assignments).Error
	if err != nil {
		return nil, log.Err("failed to list expired flagged assignments", err)
	}

	return assignments, nil
}

func (r *guestNotLeftRepository) GetBusinessOwner(ctx context.Context) (*models.Employee, error) {
	log := r.log.Function("GetBusinessOwner")

	var owner models.Employee
	err := r.db.SQLWithContext(ctx).
		Preload("User").
		First(&owner, "is_business_owner = ? AND status = ?", true, models.EmployeeActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get business owner", err)
	}

	return &owner, nil
}

func (r *guestNotLeftRepository) GetHome(
	ctx context.Context,
	id uuid.UUID,
) (*models.UserHome, error) {
	log := r.log.Function("GetHome")

	var home models.UserHome
	if err := r.db.SQLWithContext(ctx).First(&home, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get home", err, "id", id)
	}

	return &home, nil
}
