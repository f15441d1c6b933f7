package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type failingSender struct {
	calls int
}

func (s *failingSender) Send(_ context.Context, _ Notification) error {
	s.calls++
	return errors.New("provider unavailable")
}

func TestNotify_SwallowsDeliveryErrors(t *testing.T) {
	sender := &failingSender{}
	service := NewNotificationService(sender)

	assert.NotPanics(t, func() {
		service.Notify(context.Background(), Notification{
			UserID: uuid.New(),
			Title:  "Cleaner waiting at your property",
		})
	})
	assert.Equal(t, 1, sender.calls)
}
