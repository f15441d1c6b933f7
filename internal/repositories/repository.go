package repositories

import (
	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
)

type Repository struct {
	User          UserRepository
	CleanerClient CleanerClientRepository
	Home          HomeRepository
	Appointment   AppointmentRepository
	GuestNotLeft  GuestNotLeftRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:          NewUserRepository(db), // user repo caches profiles for auth lookups
		CleanerClient: NewCleanerClientRepository(db),
		Home:          NewHomeRepository(db),
		Appointment:   NewAppointmentRepository(db),
		GuestNotLeft:  NewGuestNotLeftRepository(db),
	}
}
