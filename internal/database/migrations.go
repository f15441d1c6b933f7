package database

import (
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.UserHome{},
		&models.UserBill{},
		&models.CleanerClient{},
		&models.RecurringSchedule{},
		&models.UserAppointment{},
		&models.Payout{},
		&models.Employee{},
		&models.EmployeeJobAssignment{},
		&models.GuestNotLeftReport{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		// Only one live (pending or active) invitation per cleaner/email pair
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cleaner_clients_live_invite ON cleaner_clients(cleaner_id, invited_email) WHERE status IN ('pending_invite', 'active') AND deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_guest_not_left_reports_open ON guest_not_left_reports(employee_job_assignment_id) WHERE resolved = false",
		"CREATE INDEX IF NOT EXISTS idx_user_appointments_future ON user_appointments(recurring_schedule_id, date) WHERE completed = false",
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			log.Error("Failed to create index", "sql", index, "error", err)
			return err
		}
	}

	log.Info("Database indexes created successfully")
	return nil
}
