package seed

import (
	"encoding/json"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/config"
	authController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/auth"
	. "github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

// Seed loads a small demo dataset: a business owner, a cleaner, two
// homeowners (one sharing an email with the cleaner to exercise the
// multi-account sign-in flow), an active relationship with a schedule and
// upcoming appointments, and a still-pending invitation.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	password, err := authController.HashPassword("password")
	if err != nil {
		return log.Err("failed to hash seed password", err)
	}

	owner := User{
		FirstName:    "Olive",
		LastName:     "Owner",
		Email:        "owner@example.com",
		AccountType:  AccountTypeOwner,
		PasswordHash: password,
	}
	cleaner := User{
		FirstName:    "Casey",
		LastName:     "Cleaner",
		Email:        "casey@example.com",
		AccountType:  AccountTypeCleaner,
		PasswordHash: password,
	}
	homeowner := User{
		FirstName:    "Harper",
		LastName:     "Homeowner",
		Email:        "harper@example.com",
		AccountType:  AccountTypeHomeowner,
		PasswordHash: password,
	}
	// Same email as the cleaner, different account type. Signing in with
	// casey@example.com and no accountType triggers account selection.
	caseyHome := User{
		FirstName:    "Casey",
		LastName:     "Cleaner",
		Email:        "casey@example.com",
		AccountType:  AccountTypeHomeowner,
		PasswordHash: password,
	}

	for _, user := range []*User{&owner, &cleaner, &homeowner, &caseyHome} {
		var existing User
		err := db.First(&existing, "email = ? AND account_type = ?", NormalizeEmail(user.Email), user.AccountType).Error
		if err == nil {
			*user = existing
			continue
		}
		log.Info("Seeding user", "email", user.Email, "accountType", user.AccountType)
		if err := db.Create(user).Error; err != nil {
			return log.Err("failed to create user", err, "email", user.Email)
		}
	}

	employees := []Employee{
		{UserID: owner.ID, Status: EmployeeActive, IsBusinessOwner: true},
		{UserID: cleaner.ID, Status: EmployeeActive},
	}
	for i := range employees {
		var existing Employee
		if err := db.First(&existing, "user_id = ?", employees[i].UserID).Error; err == nil {
			employees[i] = existing
			continue
		}
		if err := db.Create(&employees[i]).Error; err != nil {
			return log.Err("failed to create employee", err, "userID", employees[i].UserID)
		}
	}

	lat, lng := 42.3601, -71.0589
	home := UserHome{
		UserID:             homeowner.ID,
		Street:             "12 Beacon St",
		City:               "Boston",
		State:              "MA",
		Zipcode:            "02108",
		Beds:               3,
		Baths:              2,
		Latitude:           &lat,
		Longitude:          &lng,
		PreferredCleanerID: &cleaner.ID,
		IsSetupComplete:    true,
	}
	if err := db.FirstOrCreate(&home, UserHome{UserID: homeowner.ID, Street: home.Street}).Error; err != nil {
		return log.Err("failed to create home", err)
	}

	bill := UserBill{UserID: homeowner.ID, Balance: decimal.NewFromInt(240)}
	if err := db.FirstOrCreate(&bill, UserBill{UserID: homeowner.ID}).Error; err != nil {
		return log.Err("failed to create bill", err)
	}

	now := time.Now().UTC()
	accepted := now.Add(-30 * 24 * time.Hour)
	active := CleanerClient{
		CleanerID:           cleaner.ID,
		ClientID:            &homeowner.ID,
		HomeID:              &home.ID,
		Status:              StatusActive,
		InviteToken:         "9f3cbb0a4ed04aa2b6c1de58a7f10c33",
		InvitedEmail:        homeowner.Email,
		InvitedName:         "Harper Homeowner",
		InvitedAt:           accepted.Add(-48 * time.Hour),
		AcceptedAt:          &accepted,
		AutoPayEnabled:      true,
		AutoScheduleEnabled: true,
	}
	if err := db.FirstOrCreate(&active, CleanerClient{InviteToken: active.InviteToken}).Error; err != nil {
		return log.Err("failed to create active cleaner client", err)
	}

	window := "morning"
	schedule := RecurringSchedule{
		CleanerClientID: active.ID,
		HomeID:          home.ID,
		Frequency:       "biweekly",
		TimeWindow:      &window,
		Price:           decimal.NewFromInt(120),
		IsActive:        true,
	}
	if err := db.FirstOrCreate(&schedule, RecurringSchedule{CleanerClientID: active.ID}).Error; err != nil {
		return log.Err("failed to create recurring schedule", err)
	}

	for week := 1; week <= 2; week++ {
		scheduleID := schedule.ID
		appointment := UserAppointment{
			UserID:              homeowner.ID,
			HomeID:              home.ID,
			RecurringScheduleID: &scheduleID,
			Date:                now.Add(time.Duration(week) * 14 * 24 * time.Hour),
			Price:               schedule.Price,
		}
		var existing UserAppointment
		err := db.First(
			&existing,
			"recurring_schedule_id = ? AND date = ?",
			scheduleID, appointment.Date,
		).Error
		if err == nil {
			continue
		}
		if err := db.Create(&appointment).Error; err != nil {
			return log.Err("failed to create appointment", err)
		}

		assignment := EmployeeJobAssignment{
			EmployeeID:    employees[1].ID,
			AppointmentID: appointment.ID,
			Status:        AssignmentAssigned,
		}
		if err := db.Create(&assignment).Error; err != nil {
			return log.Err("failed to create assignment", err)
		}
	}

	address, err := json.Marshal(Address{
		Street:  "45 Milk St",
		City:    "Boston",
		State:   "MA",
		Zipcode: "02109",
	})
	if err != nil {
		return log.Err("failed to marshal invited address", err)
	}

	beds, baths := 2, 1
	pending := CleanerClient{
		CleanerID:           cleaner.ID,
		Status:              StatusPendingInvite,
		InviteToken:         "0e5a2c77b9d34f6aa18e4bc2d073fa91",
		InvitedEmail:        "newclient@example.com",
		InvitedName:         "Noa Newclient",
		InvitedPhone:        stringPtr("555-0142"),
		InvitedAddress:      datatypes.JSON(address),
		InvitedBeds:         &beds,
		InvitedBaths:        &baths,
		InvitedAt:           now.Add(-24 * time.Hour),
		AutoPayEnabled:      true,
		AutoScheduleEnabled: true,
	}
	if err := db.FirstOrCreate(&pending, CleanerClient{InviteToken: pending.InviteToken}).Error; err != nil {
		return log.Err("failed to create pending invitation", err)
	}

	log.Info("Seed complete")
	return nil
}
