package jobs

import (
	"context"

	guestNotLeftController "github.com/Gkimbo/cleaningCompany-sub025/internal/controllers/guestnotleft"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// GuestNotLeftExpiryJob sweeps flagged assignments whose appointment date
// passed without the job starting.
type GuestNotLeftExpiryJob struct {
	controller *guestNotLeftController.GuestNotLeftController
	log        logger.Logger
	schedule   services.Schedule
}

func NewGuestNotLeftExpiryJob(
	controller *guestNotLeftController.GuestNotLeftController,
	schedule services.Schedule,
) *GuestNotLeftExpiryJob {
	log := logger.New("guestNotLeftExpiryJob")
	log.Info("Creating new guest-not-left expiry job", "schedule", schedule)

	return &GuestNotLeftExpiryJob{
		controller: controller,
		log:        log,
		schedule:   schedule,
	}
}

func (j *GuestNotLeftExpiryJob) Name() string {
	return "GuestNotLeftExpiry"
}

func (j *GuestNotLeftExpiryJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	handled, err := j.controller.HandleExpiredJobs(ctx)
	if err != nil {
		return log.Err("expiry sweep failed", err)
	}

	if handled > 0 {
		log.Info("expiry sweep completed", "handled", handled)
	}
	return nil
}

func (j *GuestNotLeftExpiryJob) Schedule() services.Schedule {
	return j.schedule
}
