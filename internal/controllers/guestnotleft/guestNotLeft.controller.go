package guestNotLeftController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/repositories"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound   = errors.New("employee record not found")
	ErrAssignmentNotFound = errors.New("assignment not found or job already started")
	ErrNotAssigned        = errors.New("not assigned to this job")
)

// EscalationThreshold is the cumulative report count at which the
// business owner is pulled in. Fixed, not configurable.
const EscalationThreshold = 3

type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type ReportResult struct {
	Report            *models.GuestNotLeftReport `json:"report"`
	ReportCount       int                        `json:"reportCount"`
	HomeownerNotified bool                       `json:"homeownerNotified"`
	Message           string                     `json:"message"`
}

type GuestNotLeftController struct {
	repo          repositories.GuestNotLeftRepository
	notifications *services.NotificationService
	log           logger.Logger
}

func New(
	repo repositories.GuestNotLeftRepository,
	notifications *services.NotificationService,
) *GuestNotLeftController {
	return &GuestNotLeftController{
		repo:          repo,
		notifications: notifications,
		log:           logger.New("guestNotLeftController"),
	}
}

// ReportGuestNotLeft records a "tenant still present" observation against
// an assignment that has not started yet, notifies the homeowner, and
// escalates to the business owner once the report count reaches the
// threshold. Notification delivery never rolls back the report.
func (c *GuestNotLeftController) ReportGuestNotLeft(
	ctx context.Context,
	assignmentID, employeeUserID uuid.UUID,
	location Location,
	notes *string,
) (*ReportResult, error) {
	log := c.log.Function("ReportGuestNotLeft")

	employee, err := c.repo.GetActiveEmployeeByUser(ctx, employeeUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	assignment, err := c.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if assignment.Status != models.AssignmentAssigned {
		return nil, ErrAssignmentNotFound
	}

	if !c.isReporterAssigned(assignment, employee) {
		return nil, ErrNotAssigned
	}

	now := time.Now().UTC()
	report := &models.GuestNotLeftReport{
		EmployeeJobAssignmentID: assignment.ID,
		AppointmentID:           assignment.AppointmentID,
		ReportedBy:              employeeUserID,
		ReportedAt:              now,
		CleanerLatitude:         location.Latitude,
		CleanerLongitude:        location.Longitude,
		DistanceFromHome:        c.distanceFromHome(ctx, assignment, location),
		Notes:                   notes,
	}

	if err := c.repo.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	assignment.GuestNotLeftReported = true
	assignment.GuestNotLeftReportCount++
	assignment.LastGuestNotLeftAt = &now
	if err := c.repo.SaveAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	reportCount := assignment.GuestNotLeftReportCount
	homeownerNotified := c.notifyHomeowner(ctx, assignment, reportCount)

	if reportCount >= EscalationThreshold {
		c.notifyBusinessOwner(ctx, assignment, reportCount)
	}

	message := "Report recorded, the homeowner has been notified"
	if reportCount >= EscalationThreshold {
		message = "Report recorded, the homeowner and business owner have been notified"
	}

	log.Info(
		"guest-not-left report recorded",
		"assignmentID", assignment.ID,
		"reportCount", reportCount,
	)

	return &ReportResult{
		Report:            report,
		ReportCount:       reportCount,
		HomeownerNotified: homeownerNotified,
		Message:           message,
	}, nil
}

// ClearGuestNotLeftFlag is a no-op when the flag is already down.
// Otherwise the flag drops (the count stays, it is history) and every
// unresolved report resolves as job_completed.
func (c *GuestNotLeftController) ClearGuestNotLeftFlag(
	ctx context.Context,
	assignmentID uuid.UUID,
) error {
	log := c.log.Function("ClearGuestNotLeftFlag")

	assignment, err := c.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if !assignment.GuestNotLeftReported {
		return nil
	}

	now := time.Now().UTC()
	resolved, err := c.repo.ResolveReports(ctx, assignment.ID, models.ResolutionJobCompleted, now)
	if err != nil {
		return err
	}

	assignment.GuestNotLeftReported = false
	if err := c.repo.SaveAssignment(ctx, assignment); err != nil {
		return err
	}

	log.Info(
		"guest-not-left flag cleared",
		"assignmentID", assignment.ID,
		"resolvedReports", resolved,
	)
	return nil
}

// HandleExpiredJobs resolves reports on flagged assignments whose
// appointment date passed without the job starting. Idempotent: once the
// flags are cleared a re-run finds nothing.
func (c *GuestNotLeftController) HandleExpiredJobs(ctx context.Context) (int, error) {
	log := c.log.Function("HandleExpiredJobs")

	now := time.Now().UTC()
	assignments, err := c.repo.ListExpiredFlagged(ctx, now)
	if err != nil {
		return 0, err
	}

	for i := range assignments {
		assignment := &assignments[i]

		if _, err := c.repo.ResolveReports(ctx, assignment.ID, models.ResolutionExpired, now); err != nil {
			log.Warn("failed to resolve reports for expired assignment", "assignmentID", assignment.ID, "error", err)
			continue
		}

		assignment.GuestNotLeftReported = false
		if err := c.repo.SaveAssignment(ctx, assignment); err != nil {
			log.Warn("failed to clear flag on expired assignment", "assignmentID", assignment.ID, "error", err)
			continue
		}

		c.notifyOwnerExpired(ctx, assignment)
	}

	if len(assignments) > 0 {
		log.Info("expired guest-not-left jobs handled", "count", len(assignments))
	}
	return len(assignments), nil
}

func (c *GuestNotLeftController) isReporterAssigned(
	assignment *models.EmployeeJobAssignment,
	employee *models.Employee,
) bool {
	if assignment.EmployeeID == employee.ID {
		return true
	}
	// business owners may report against their own self-assigned jobs
	if employee.IsBusinessOwner && assignment.Employee != nil &&
		assignment.Employee.UserID == employee.UserID {
		return true
	}
	return false
}

func (c *GuestNotLeftController) distanceFromHome(
	ctx context.Context,
	assignment *models.EmployeeJobAssignment,
	location Location,
) *float64 {
	if location.Latitude == nil || location.Longitude == nil {
		return nil
	}
	if assignment.Appointment == nil {
		return nil
	}

	home, err := c.repo.GetHome(ctx, assignment.Appointment.HomeID)
	if err != nil || home.Latitude == nil || home.Longitude == nil {
		return nil
	}

	distance := utils.CalculateDistance(
		*location.Latitude, *location.Longitude,
		*home.Latitude, *home.Longitude,
	)
	return &distance
}

func (c *GuestNotLeftController) notifyHomeowner(
	ctx context.Context,
	assignment *models.EmployeeJobAssignment,
	reportCount int,
) bool {
	if assignment.Appointment == nil {
		return false
	}

	body := "Your cleaner has arrived but a guest appears to still be at the property. Please check in."
	if reportCount > 1 {
		body = fmt.Sprintf(
			"Your cleaner is still unable to start: a guest remains at the property (report %d). Please resolve this so the cleaning can proceed.",
			reportCount,
		)
	}

	c.notifications.Notify(ctx, services.Notification{
		UserID: assignment.Appointment.UserID,
		Title:  "Cleaner waiting at your property",
		Body:   body,
		Data: map[string]any{
			"assignmentId": assignment.ID.String(),
			"reportCount":  reportCount,
		},
	})
	return true
}

func (c *GuestNotLeftController) notifyBusinessOwner(
	ctx context.Context,
	assignment *models.EmployeeJobAssignment,
	reportCount int,
) {
	log := c.log.Function("notifyBusinessOwner")

	owner, err := c.repo.GetBusinessOwner(ctx)
	if err != nil {
		log.Warn("no business owner to escalate to", "assignmentID", assignment.ID, "error", err)
		return
	}

	c.notifications.Notify(ctx, services.Notification{
		UserID:         owner.UserID,
		Title:          "Guest-not-left escalation",
		Body:           fmt.Sprintf("A job has accumulated %d guest-not-left reports and needs intervention.", reportCount),
		ActionRequired: true,
		SendEmail:      true,
		Data: map[string]any{
			"assignmentId": assignment.ID.String(),
			"reportCount":  reportCount,
		},
	})
}

func (c *GuestNotLeftController) notifyOwnerExpired(
	ctx context.Context,
	assignment *models.EmployeeJobAssignment,
) {
	log := c.log.Function("notifyOwnerExpired")

	owner, err := c.repo.GetBusinessOwner(ctx)
	if err != nil {
		log.Warn("no business owner to notify", "assignmentID", assignment.ID, "error", err)
		return
	}

	c.notifications.Notify(ctx, services.Notification{
		UserID:       owner.UserID,
		Title:        "Job expired with guest still present",
		Body:         "A flagged job's appointment window passed without the cleaning starting.",
		SendEmail:    true,
		HighPriority: true,
		Data: map[string]any{
			"assignmentId": assignment.ID.String(),
		},
	})
}
