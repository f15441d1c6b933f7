package repositories

import (
	"context"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	DeactivateSchedules(ctx context.Context, tx *gorm.DB, cleanerClientID uuid.UUID) (int64, error)
	ListFutureAppointments(ctx context.Context, tx *gorm.DB, cleanerClientID uuid.UUID, now time.Time) ([]models.UserAppointment, error)
	DeleteAppointmentsCascade(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type appointmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAppointmentRepository(db database.DB) AppointmentRepository {
	return &appointmentRepository{
		db:  db,
		log: logger.New("appointmentRepository"),
	}
}

func (r *appointmentRepository) DeactivateSchedules(
	ctx context.Context,
	tx *gorm.DB,
	cleanerClientID uuid.UUID,
) (int64, error) {
	log := r.log.Function("DeactivateSchedules")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	result := db.Model(&models.RecurringSchedule{}).
		Where("cleaner_client_id = ? AND is_active = ?", cleanerClientID, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, log.Err("failed to deactivate schedules", result.Error, "cleanerClientID", cleanerClientID)
	}

	return result.RowsAffected, nil
}

// ListFutureAppointments returns not-yet-occurred appointments generated
// from any of the relationship's recurring schedules.
func (r *appointmentRepository) ListFutureAppointments(
	ctx context.Context,
	tx *gorm.DB,
	cleanerClientID uuid.UUID,
	now time.Time,
) ([]models.UserAppointment, error) {
	log := r.log.Function("ListFutureAppointments")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	var appointments []models.UserAppointment
	err := db.
		Joins("JOIN recurring_schedules ON recurring_schedules.id = user_appointments.recurring_schedule_id").
		Where("recurring_schedules.cleaner_client_id = ?", cleanerClientID).
		Where("user_appointments.date > ? AND user_appointments.completed = ?", now, false).
		Find(&appointments).Error
	if err != nil {
		return nil, log.Err("failed to list future appointments", err, "cleanerClientID", cleanerClientID)
	}

	return appointments, nil
}

// DeleteAppointmentsCascade removes appointments along with their payout
// and assignment rows.
func (r *appointmentRepository) DeleteAppointmentsCascade(
	ctx context.Context,
	tx *gorm.DB,
	ids []uuid.UUID,
) error {
	log := r.log.Function("DeleteAppointmentsCascade")

	if len(ids) == 0 {
		return nil
	}

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	if err := db.Where("appointment_id IN ?", ids).Delete(&models.Payout{}).Error; err != nil {
		return log.Err("failed to delete payouts", err)
	}

	if err := db.Where("appointment_id IN ?", ids).Delete(&models.EmployeeJobAssignment{}).Error; err != nil {
		return log.Err("failed to delete job assignments", err)
	}

	if err := db.Where("id IN ?", ids).Delete(&models.UserAppointment{}).Error; err != nil {
		return log.Err("failed to delete appointments", err)
	}

	return nil
}
