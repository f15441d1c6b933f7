package jobs

import (
	"testing"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestGuestNotLeftExpiryJob_Name(t *testing.T) {
	job := &GuestNotLeftExpiryJob{}
	assert.Equal(t, "GuestNotLeftExpiry", job.Name())
}

func TestGuestNotLeftExpiryJob_Schedule(t *testing.T) {
	job := NewGuestNotLeftExpiryJob(nil, services.EveryFewMinutes)
	assert.Equal(t, services.EveryFewMinutes, job.Schedule())
}
