package service

import (
	"context"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/comment/model"
	"novelhub-backend/internal/infrastructure/markdown"
	"novelhub-backend/internal/shared"
)

type fakeRepo struct {
	comments map[uuid.UUID]*model.Comment
	chapters map[uuid.UUID]bool
}

func (f *fakeRepo) Create(_ context.Context, c *model.Comment) error {
	if !f.chapters[c.ChapterID] {
		return model.ErrChapterNotFound
	}
	cp := *c
	cp.Username = "reader"
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) UpdateBody(_ context.Context, id uuid.UUID, body string) error {
	f.comments[id].Body = body
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, chapterID uuid.UUID, paragraphID *string, _, _ int) ([]model.Comment, int, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.ChapterID != chapterID {
			continue
		}
		if paragraphID != nil && (c.ParagraphID == nil || *c.ParagraphID != *paragraphID) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) CountsByParagraph(context.Context, uuid.UUID) ([]model.ParagraphCount, error) {
	return nil, nil
}

func setup() (*commentService, *fakeRepo, uuid.UUID) {
	chapterID := uuid.New()
	repo := &fakeRepo{comments: map[uuid.UUID]*model.Comment{}, chapters: map[uuid.UUID]bool{chapterID: true}}
	svc := NewCommentService(repo, markdown.NewRenderer()).(*commentService)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo, chapterID
}

func ptr(s string) *string { return &s }

func TestCreate_SanitizesBody(t *testing.T) {
	svc, _, chapterID := setup()
	reader := shared.Actor{ID: uuid.New(), Role: "user"}

	resp, err := svc.Create(context.Background(), reader, chapterID, model.CreateCommentRequest{
		ParagraphID: ptr("p-3"),
		Body:        `nice <script>alert(1)</script><b>twist</b>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.Body, "<")
	assert.Contains(t, resp.Body, "twist")
	assert.Equal(t, "p-3", *resp.ParagraphID)

	_, err = svc.Create(context.Background(), reader, chapterID, model.CreateCommentRequest{Body: "<p></p>"})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)
}

func TestCreate_RejectsBadParagraphAndChapter(t *testing.T) {
	svc, _, chapterID := setup()
	reader := shared.Actor{ID: uuid.New()}

	_, err := svc.Create(context.Background(), reader, chapterID, model.CreateCommentRequest{ParagraphID: ptr("intro"), Body: "x"})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Create(context.Background(), reader, uuid.New(), model.CreateCommentRequest{Body: "x"})
	var cErr *model.CommentError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, model.ErrCodeChapterNotFound, cErr.Code)
}

func TestCreate_RepliesFlattenToRoot(t *testing.T) {
	svc, _, chapterID := setup()
	reader := shared.Actor{ID: uuid.New()}
	ctx := context.Background()

	root, err := svc.Create(ctx, reader, chapterID, model.CreateCommentRequest{ParagraphID: ptr("p-1"), Body: "root"})
	require.NoError(t, err)
	reply, err := svc.Create(ctx, reader, chapterID, model.CreateCommentRequest{ParentID: &root.ID, Body: "reply"})
	require.NoError(t, err)
	nested, err := svc.Create(ctx, reader, chapterID, model.CreateCommentRequest{ParentID: &reply.ID, Body: "nested"})
	require.NoError(t, err)

	assert.Equal(t, root.ID, *nested.ParentID)
	assert.Equal(t, "p-1", *nested.ParagraphID)

	other := uuid.New()
	svc.repo.(*fakeRepo).chapters[other] = true
	_, err = svc.Create(ctx, reader, other, model.CreateCommentRequest{ParentID: &root.ID, Body: "wrong chapter"})
	var cErr *model.CommentError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, model.ErrCodeInvalidParent, cErr.Code)
}

func TestUpdateDelete_Ownership(t *testing.T) {
	svc, repo, chapterID := setup()
	owner := shared.Actor{ID: uuid.New(), Role: "user"}
	other := shared.Actor{ID: uuid.New(), Role: "user"}
	admin := shared.Actor{ID: uuid.New(), Role: "admin"}
	ctx := context.Background()

	c, err := svc.Create(ctx, owner, chapterID, model.CreateCommentRequest{Body: "first"})
	require.NoError(t, err)

	var cErr *model.CommentError
	_, err = svc.Update(ctx, other, c.ID, model.UpdateCommentRequest{Body: "hijack"})
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, model.ErrCodeForbidden, cErr.Code)

	_, err = svc.Update(ctx, admin, c.ID, model.UpdateCommentRequest{Body: "admin edit"})
	require.ErrorAs(t, err, &cErr)

	updated, err := svc.Update(ctx, owner, c.ID, model.UpdateCommentRequest{Body: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)

	require.ErrorAs(t, svc.Delete(ctx, other, c.ID), &cErr)
	require.NoError(t, svc.Delete(ctx, admin, c.ID))
	assert.Empty(t, repo.comments)

	require.ErrorAs(t, svc.Delete(ctx, owner, c.ID), &cErr)
	assert.Equal(t, model.ErrCodeCommentNotFound, cErr.Code)
}

func TestList_FiltersByParagraph(t *testing.T) {
	svc, _, chapterID := setup()
	reader := shared.Actor{ID: uuid.New()}
	ctx := context.Background()

	for _, p := range []string{"p-1", "p-1", "p-2"} {
		_, err := svc.Create(ctx, reader, chapterID, model.CreateCommentRequest{ParagraphID: ptr(p), Body: "hi"})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, chapterID, model.ListRequest{ParagraphID: ptr("p-1")})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = svc.List(ctx, chapterID, model.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
}
