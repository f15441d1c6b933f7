package initialize

import (
	"github.com/Gkimbo/cleaningCompany-sub025/config"
	. "github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeEmployees(db, log); err != nil {
		return log.Err("failed to initialize employees", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeEmployees backfills an Employee row for every cleaner and
// owner account so job assignment has someone to assign to. Owner
// accounts get the business-owner flag, which is what self-assignment
// and escalation routing key off.
func initializeEmployees(db *gorm.DB, log logger.Logger) error {
	log.Info("Backfilling employee records")

	var users []User
	if err := db.Where("account_type IN ?", []AccountType{AccountTypeCleaner, AccountTypeOwner}).
		Find(&users).Error; err != nil {
		return log.Err("failed to list cleaner and owner accounts", err)
	}

	created := 0
	for _, user := range users {
		var existing Employee
		if err := db.First(&existing, "user_id = ?", user.ID).Error; err == nil {
			continue
		}

		employee := Employee{
			UserID:          user.ID,
			Status:          EmployeeActive,
			IsBusinessOwner: user.AccountType == AccountTypeOwner,
		}
		if err := db.Create(&employee).Error; err != nil {
			return log.Err("failed to create employee", err, "userID", user.ID)
		}
		created++
	}

	log.Info("Employee records backfilled", "created", created)
	return nil
}
