package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_Extend(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	active := &Subscription{Status: StatusActive, StartedAt: now.Add(-10 * 24 * time.Hour), ExpiresAt: now.Add(5 * 24 * time.Hour)}
	active.Extend(now, DefaultPeriod)
	assert.Equal(t, now.Add(35*24*time.Hour), active.ExpiresAt)
	assert.Equal(t, now.Add(-10*24*time.Hour), active.StartedAt)

	lapsed := &Subscription{Status: StatusExpired, ExpiresAt: now.Add(-time.Hour)}
	lapsed.Extend(now, DefaultPeriod)
	assert.Equal(t, StatusActive, lapsed.Status)
	assert.Equal(t, now, lapsed.StartedAt)
	assert.Equal(t, now.Add(DefaultPeriod), lapsed.ExpiresAt)
}

func TestSubscription_IsActiveAt(t *testing.T) {
	now := time.Now()
	s := &Subscription{Status: StatusActive, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, s.IsActiveAt(now))
	assert.False(t, s.IsActiveAt(now.Add(time.Minute)))

	s.Status = StatusCancelled
	assert.True(t, s.IsActiveAt(now))

	s.Status = StatusExpired
	assert.False(t, s.IsActiveAt(now))
}

func TestAuthorTier_Accepting(t *testing.T) {
	assert.True(t, (&AuthorTier{Role: "author", Price: 50}).Accepting())
	assert.False(t, (&AuthorTier{Role: "author", Price: 0}).Accepting())
	assert.False(t, (&AuthorTier{Role: "user", Price: 50}).Accepting())
}
