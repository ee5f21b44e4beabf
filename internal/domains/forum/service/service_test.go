package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/forum/model"
	forumrepo "novelhub-backend/internal/domains/forum/repository"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/infrastructure/markdown"
	"novelhub-backend/internal/infrastructure/storage"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/database"
)

type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(q database.DBTX) error) error {
	return fn(nil)
}

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return "http://minio/novelhub/" + key, nil
}

type voteKey struct {
	profile uuid.UUID
	target  model.TargetType
	id      uuid.UUID
}

// fakeRepo in-memory; method không override sẽ panic qua interface nil
type fakeRepo struct {
	forumrepo.ForumRepository
	categories map[uuid.UUID]*model.Category
	threads    map[uuid.UUID]*model.Thread
	messages   map[uuid.UUID]*model.Message
	votes      map[voteKey]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: map[uuid.UUID]*model.Category{},
		threads:    map[uuid.UUID]*model.Thread{},
		messages:   map[uuid.UUID]*model.Message{},
		votes:      map[voteKey]int{},
	}
}

func (f *fakeRepo) CategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.categories[id]
	return ok, nil
}

func (f *fakeRepo) GetThreadBySlug(_ context.Context, slug string) (*model.Thread, error) {
	for _, t := range f.threads {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, model.ErrThreadNotFound
}

func (f *fakeRepo) GetThreadByID(_ context.Context, id uuid.UUID) (*model.Thread, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, model.ErrThreadNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) CreateThread(_ context.Context, t *model.Thread) error {
	cp := *t
	f.threads[t.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateThread(_ context.Context, t *model.Thread) error {
	cp := *t
	f.threads[t.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteThread(_ context.Context, id uuid.UUID) error {
	delete(f.threads, id)
	return nil
}

func (f *fakeRepo) SetModeration(_ context.Context, id uuid.UUID, pinned, locked bool) error {
	f.threads[id].IsPinned, f.threads[id].IsLocked = pinned, locked
	return nil
}

func (f *fakeRepo) GetMessage(_ context.Context, id uuid.UUID) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) CreateMessage(_ context.Context, _ database.DBTX, m *model.Message) error {
	cp := *m
	f.messages[m.ID] = &cp
	return nil
}

func (f *fakeRepo) TouchThread(_ context.Context, _ database.DBTX, id uuid.UUID, at time.Time) error {
	f.threads[id].MessageCount++
	f.threads[id].LastActivityAt = at
	return nil
}

func (f *fakeRepo) UpdateMessage(_ context.Context, m *model.Message) error {
	cp := *m
	f.messages[m.ID] = &cp
	return nil
}

func (f *fakeRepo) score(target model.TargetType, id uuid.UUID) (*int, bool) {
	if target == model.TargetThread {
		if t, ok := f.threads[id]; ok {
			return &t.Score, true
		}
		return nil, false
	}
	if m, ok := f.messages[id]; ok {
		return &m.Score, true
	}
	return nil, false
}

func (f *fakeRepo) LockTarget(_ context.Context, _ database.DBTX, target model.TargetType, id uuid.UUID) (int, error) {
	s, ok := f.score(target, id)
	if !ok {
		return 0, model.ErrTargetNotFound
	}
	return *s, nil
}

func (f *fakeRepo) GetVote(_ context.Context, _ database.DBTX, p uuid.UUID, target model.TargetType, id uuid.UUID) (int, error) {
	return f.votes[voteKey{p, target, id}], nil
}

func (f *fakeRepo) SaveVote(_ context.Context, _ database.DBTX, v model.Vote) error {
	f.votes[voteKey{v.ProfileID, v.TargetType, v.TargetID}] = v.Value
	return nil
}

func (f *fakeRepo) DeleteVote(_ context.Context, _ database.DBTX, p uuid.UUID, target model.TargetType, id uuid.UUID) error {
	delete(f.votes, voteKey{p, target, id})
	return nil
}

func (f *fakeRepo) AdjustScore(_ context.Context, _ database.DBTX, target model.TargetType, id uuid.UUID, delta int) (int, error) {
	s, ok := f.score(target, id)
	if !ok {
		return 0, model.ErrTargetNotFound
	}
	*s += delta
	return *s, nil
}

func (f *fakeRepo) UserVotes(_ context.Context, p uuid.UUID, target model.TargetType, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, id := range ids {
		if v, ok := f.votes[voteKey{p, target, id}]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sent []notifmodel.CreateInput
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, in notifmodel.CreateInput) error {
	f.sent = append(f.sent, in)
	return f.err
}

// =====================================================

type fixture struct {
	svc      *forumService
	repo     *fakeRepo
	notifier *fakeNotifier
	store    *memStore
	category uuid.UUID
	op       shared.Actor
}

func newFixture() *fixture {
	repo := newFakeRepo()
	cat := &model.Category{ID: uuid.New(), Name: "General", Slug: "general"}
	repo.categories[cat.ID] = cat
	notifier := &fakeNotifier{}
	store := &memStore{objects: map[string][]byte{}}
	svc := NewForumService(repo, fakeTx{}, markdown.NewRenderer(), notifier, store, storage.NewImageProcessor()).(*forumService)
	return &fixture{
		svc:      svc,
		repo:     repo,
		notifier: notifier,
		store:    store,
		category: cat.ID,
		op:       shared.Actor{ID: uuid.New(), Role: "user"},
	}
}

func (f *fixture) thread(t *testing.T) *model.ThreadResponse {
	t.Helper()
	resp, err := f.svc.CreateThread(context.Background(), f.op, model.CreateThreadRequest{
		CategoryID: f.category,
		Title:      "Theories about <b>volume 3</b>",
		Body:       "**What** do you think?",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateThread(t *testing.T) {
	f := newFixture()
	resp := f.thread(t)

	assert.Equal(t, "Theories about volume 3", resp.Title)
	assert.Regexp(t, `^theories-about-volume-3-[0-9a-f]{8}$`, resp.Slug)
	assert.Contains(t, resp.BodyHTML, "<strong>What</strong>")

	_, err := f.svc.CreateThread(context.Background(), f.op, model.CreateThreadRequest{
		CategoryID: uuid.New(), Title: "Lost thread", Body: "x",
	})
	var fErr *model.ForumError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, model.ErrCodeCategoryNotFound, fErr.Code)
}

func TestVote_Flow(t *testing.T) {
	f := newFixture()
	thread := f.thread(t)
	voter := shared.Actor{ID: uuid.New()}
	ctx := context.Background()
	up := model.VoteRequest{TargetType: model.TargetThread, TargetID: thread.ID, Value: 1}
	down := model.VoteRequest{TargetType: model.TargetThread, TargetID: thread.ID, Value: -1}

	resp, err := f.svc.Vote(ctx, voter, up)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 1, resp.UserVote)

	// đổi chiều: score += 2v
	resp, err = f.svc.Vote(ctx, voter, down)
	require.NoError(t, err)
	assert.Equal(t, -1, resp.Score)
	assert.Equal(t, -1, resp.UserVote)

	// vote cùng chiều lần nữa thì bỏ vote
	resp, err = f.svc.Vote(ctx, voter, down)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, 0, resp.UserVote)
	assert.Empty(t, f.repo.votes)
}

func TestVote_TwiceRemoves(t *testing.T) {
	f := newFixture()
	thread := f.thread(t)
	ctx := context.Background()

	msg, err := f.svc.CreateMessage(ctx, f.op, thread.Slug, model.CreateMessageRequest{Body: "first"})
	require.NoError(t, err)

	voter := shared.Actor{ID: uuid.New()}
	req := model.VoteRequest{TargetType: model.TargetMessage, TargetID: msg.ID, Value: 1}
	_, err = f.svc.Vote(ctx, voter, req)
	require.NoError(t, err)
	resp, err := f.svc.Vote(ctx, voter, req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Zero(t, f.repo.messages[msg.ID].Score)
}

func TestVote_UnknownTarget(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Vote(context.Background(), f.op, model.VoteRequest{TargetType: model.TargetMessage, TargetID: uuid.New(), Value: 1})
	var fErr *model.ForumError
	require.ErrorAs(t, err, &fErr)
	assert.ErrorIs(t, err, model.ErrTargetNotFound)
}

func TestCreateMessage_LockedAndNotifications(t *testing.T) {
	f := newFixture()
	thread := f.thread(t)
	ctx := context.Background()
	replier := shared.Actor{ID: uuid.New()}
	third := shared.Actor{ID: uuid.New()}

	// chủ thread tự reply thì không có notification
	_, err := f.svc.CreateMessage(ctx, f.op, thread.Slug, model.CreateMessageRequest{Body: "bump"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)

	parent, err := f.svc.CreateMessage(ctx, replier, thread.Slug, model.CreateMessageRequest{Body: "I disagree"})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.op.ID, f.notifier.sent[0].ProfileID)
	assert.Equal(t, notifmodel.TypeForumReply, f.notifier.sent[0].Type)

	// lỗi notify không làm hỏng request
	f.notifier.err = errors.New("db down")
	_, err = f.svc.CreateMessage(ctx, third, thread.Slug, model.CreateMessageRequest{ParentID: &parent.ID, Body: "me too"})
	require.NoError(t, err)
	assert.Len(t, f.notifier.sent, 3)
	assert.Equal(t, 3, f.repo.threads[thread.ID].MessageCount)

	// lock
	locked := true
	_, err = f.svc.ModerateThread(ctx, thread.Slug, model.ModerateRequest{Locked: &locked})
	require.NoError(t, err)
	_, err = f.svc.CreateMessage(ctx, replier, thread.Slug, model.CreateMessageRequest{Body: "late"})
	var fErr *model.ForumError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, model.ErrCodeThreadLocked, fErr.Code)
}

func TestCreateMessage_ParentMustBeInThread(t *testing.T) {
	f := newFixture()
	a := f.thread(t)
	b := f.thread(t)
	ctx := context.Background()

	m, err := f.svc.CreateMessage(ctx, f.op, a.Slug, model.CreateMessageRequest{Body: "in a"})
	require.NoError(t, err)

	_, err = f.svc.CreateMessage(ctx, f.op, b.Slug, model.CreateMessageRequest{ParentID: &m.ID, Body: "wrong"})
	var fErr *model.ForumError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, model.ErrCodeInvalidParent, fErr.Code)
}

func TestDeleteMessage_Soft(t *testing.T) {
	f := newFixture()
	thread := f.thread(t)
	ctx := context.Background()
	other := shared.Actor{ID: uuid.New(), Role: "user"}

	m, err := f.svc.CreateMessage(ctx, f.op, thread.Slug, model.CreateMessageRequest{Body: "oops"})
	require.NoError(t, err)

	var fErr *model.ForumError
	require.ErrorAs(t, f.svc.DeleteMessage(ctx, other, m.ID), &fErr)
	assert.Equal(t, model.ErrCodeForbidden, fErr.Code)

	require.NoError(t, f.svc.DeleteMessage(ctx, f.op, m.ID))
	stored := f.repo.messages[m.ID]
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, model.DeletedBody, stored.Body)

	_, err = f.svc.UpdateMessage(ctx, f.op, m.ID, model.UpdateMessageRequest{Body: "revive"})
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, model.ErrCodeMessageNotFound, fErr.Code)
}

func TestThreadOwnership(t *testing.T) {
	f := newFixture()
	thread := f.thread(t)
	ctx := context.Background()
	admin := shared.Actor{ID: uuid.New(), Role: "admin"}

	title := "Edited title"
	_, err := f.svc.UpdateThread(ctx, admin, thread.Slug, model.UpdateThreadRequest{Title: &title})
	var fErr *model.ForumError
	require.ErrorAs(t, err, &fErr)

	updated, err := f.svc.UpdateThread(ctx, f.op, thread.Slug, model.UpdateThreadRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	require.NoError(t, f.svc.DeleteThread(ctx, admin, thread.Slug))
	assert.Empty(t, f.repo.threads)
}

func TestUploadAttachment(t *testing.T) {
	f := newFixture()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	resp, err := f.svc.UploadAttachment(context.Background(), f.op, buf.Bytes())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.URL, "http://minio/novelhub/forum/"+f.op.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(resp.URL, ".png"))
	assert.Equal(t, "![]("+resp.URL+")", resp.Markdown)
	assert.Len(t, f.store.objects, 1)

	_, err = f.svc.UploadAttachment(context.Background(), f.op, []byte("definitely not an image"))
	var fe *model.ForumError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, model.ErrCodeInvalidUpload, fe.Code)
	assert.Len(t, f.store.objects, 1)
}
