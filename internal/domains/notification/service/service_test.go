package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/notification/model"
)

type fakeRepo struct {
	items     []*model.Notification
	followers map[uuid.UUID][]uuid.UUID
	cutoff    time.Time
}

func (f *fakeRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.items = append(f.items, n)
	return nil
}

func (f *fakeRepo) CreateForNovelFollowers(ctx context.Context, novelID, exclude uuid.UUID, in model.CreateInput) (int64, error) {
	var n int64
	for _, pid := range f.followers[novelID] {
		if pid == exclude {
			continue
		}
		_ = f.Create(ctx, &model.Notification{ProfileID: pid, Type: in.Type, Title: in.Title, Body: in.Body, Link: in.Link})
		n++
	}
	return n, nil
}

func (f *fakeRepo) List(_ context.Context, profileID uuid.UUID, unreadOnly bool, limit, offset int) ([]model.Notification, int, error) {
	var out []model.Notification
	for _, n := range f.items {
		if n.ProfileID == profileID && (!unreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	total := len(out)
	if offset < total {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRepo) CountUnread(_ context.Context, profileID uuid.UUID) (int, error) {
	c := 0
	for _, n := range f.items {
		if n.ProfileID == profileID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, profileID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var c int64
	for _, n := range f.items {
		for _, id := range ids {
			if n.ID == id && n.ProfileID == profileID && !n.IsRead {
				n.IsRead = true
				c++
			}
		}
	}
	return c, nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context, profileID uuid.UUID) (int64, error) {
	var c int64
	for _, n := range f.items {
		if n.ProfileID == profileID && !n.IsRead {
			n.IsRead = true
			c++
		}
	}
	return c, nil
}

func (f *fakeRepo) Delete(_ context.Context, profileID, id uuid.UUID) error {
	for i, n := range f.items {
		if n.ID == id && n.ProfileID == profileID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return model.ErrNotificationNotFound
}

func (f *fakeRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return 0, nil
}

func TestNotify_NormalizesInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo)
	pid := uuid.New()

	err := svc.Notify(context.Background(), model.CreateInput{
		ProfileID: pid,
		Title:     "  " + strings.Repeat("á", 250) + " ",
	})
	require.NoError(t, err)
	require.Len(t, repo.items, 1)
	assert.Equal(t, model.TypeSystem, repo.items[0].Type)
	assert.Equal(t, maxTitleLen, utf8.RuneCountInString(repo.items[0].Title))

	assert.Error(t, svc.Notify(context.Background(), model.CreateInput{Title: "x"}))
}

func TestListAndMarkRead(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo)
	ctx := context.Background()
	pid, other := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, model.CreateInput{ProfileID: pid, Type: model.TypeDonation, Title: "hi"}))
	}
	require.NoError(t, svc.Notify(ctx, model.CreateInput{ProfileID: other, Title: "other"}))

	resp, err := svc.List(ctx, pid, model.ListRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 3, resp.Unread)
	assert.Len(t, resp.Notifications, 2)

	n, err := svc.MarkRead(ctx, pid, model.MarkReadRequest{IDs: []uuid.UUID{repo.items[0].ID, repo.items[3].ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n) // item của profile khác không bị đụng

	unread, err := svc.UnreadCount(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	_, err = svc.MarkRead(ctx, pid, model.MarkReadRequest{})
	assert.Error(t, err)

	n, err = svc.MarkAllRead(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteAndFanOut(t *testing.T) {
	novelID := uuid.New()
	author, a, b := uuid.New(), uuid.New(), uuid.New()
	repo := &fakeRepo{followers: map[uuid.UUID][]uuid.UUID{novelID: {a, b, author}}}
	svc := NewNotificationService(repo)
	ctx := context.Background()

	count, err := svc.NotifyNovelFollowers(ctx, novelID, author, model.CreateInput{Type: model.TypeNewChapter, Title: "Chapter 2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	err = svc.Delete(ctx, a, repo.items[1].ID) // item của b
	var nErr *model.NotificationError
	require.ErrorAs(t, err, &nErr)
	assert.Equal(t, model.ErrCodeNotificationNotFound, nErr.Code)

	assert.NoError(t, svc.Delete(ctx, a, repo.items[0].ID))
}

func TestCleanupOldReadNotifications(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo).(*notificationService)
	fixed := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.CleanupOldReadNotifications(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), repo.cutoff)
}
