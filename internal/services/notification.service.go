package services

import (
	"context"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

// Notification is one push (and optionally email) message to a user.
type Notification struct {
	UserID         uuid.UUID      `json:"userId"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	ActionRequired bool           `json:"actionRequired"`
	SendEmail      bool           `json:"sendEmail"`
	HighPriority   bool           `json:"highPriority"`
	Data           map[string]any `json:"data,omitempty"`
}

// NotificationSender delivers a notification through a concrete channel
// (push provider, SMTP). Delivery is best-effort everywhere in this
// codebase: a send failure never rolls back the state change that
// triggered it.
type NotificationSender interface {
	Send(ctx context.Context, notification Notification) error
}

type NotificationService struct {
	sender NotificationSender
	log    logger.Logger
}

func NewNotificationService(sender NotificationSender) *NotificationService {
	return &NotificationService{
		sender: sender,
		log:    logger.New("notificationService"),
	}
}

// Notify dispatches the notification and swallows delivery errors.
func (s *NotificationService) Notify(ctx context.Context, notification Notification) {
	log := s.log.Function("Notify")

	if err := s.sender.Send(ctx, notification); err != nil {
		log.Warn(
			"notification delivery failed",
			"userID", notification.UserID,
			"title", notification.Title,
			"error", err,
		)
		return
	}

	log.Info(
		"notification sent",
		"userID", notification.UserID,
		"title", notification.Title,
		"actionRequired", notification.ActionRequired,
	)
}

// LogSender is the default sender used until a real push/email provider
// is configured. It records the notification and reports success.
type LogSender struct {
	log logger.Logger
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.New("logSender")}
}

func (s *LogSender) Send(ctx context.Context, notification Notification) error {
	s.log.Info(
		"delivering notification",
		"userID", notification.UserID,
		"title", notification.Title,
		"body", notification.Body,
		"email", notification.SendEmail,
		"highPriority", notification.HighPriority,
	)
	return nil
}
