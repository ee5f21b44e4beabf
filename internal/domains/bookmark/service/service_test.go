package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/bookmark/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/database"
)

// fakeTx rollback count khi fn lỗi
type fakeTx struct{ repo *fakeRepo }

func (f fakeTx) WithinTx(_ context.Context, fn func(q database.DBTX) error) error {
	counts := map[uuid.UUID]int{}
	for k, v := range f.repo.counts {
		counts[k] = v
	}
	if err := fn(nil); err != nil {
		f.repo.counts = counts
		return err
	}
	return nil
}

type bmKey struct{ profile, novel uuid.UUID }

type fakeRepo struct {
	rows   map[bmKey]*model.Bookmark
	counts map[uuid.UUID]int
}

func (f *fakeRepo) Insert(_ context.Context, _ database.DBTX, p, n uuid.UUID) error {
	if _, ok := f.rows[bmKey{p, n}]; ok {
		return model.ErrAlreadyBookmarked
	}
	f.rows[bmKey{p, n}] = &model.Bookmark{ProfileID: p, NovelID: n}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _ database.DBTX, p, n uuid.UUID) error {
	if _, ok := f.rows[bmKey{p, n}]; !ok {
		return model.ErrBookmarkNotFound
	}
	delete(f.rows, bmKey{p, n})
	return nil
}

func (f *fakeRepo) AdjustNovelCount(_ context.Context, _ database.DBTX, n uuid.UUID, delta int) error {
	f.counts[n] += delta
	return nil
}

func (f *fakeRepo) List(_ context.Context, p uuid.UUID, _, _ int) ([]model.Bookmark, int, error) {
	out := []model.Bookmark{}
	for k, b := range f.rows {
		if k.profile == p {
			out = append(out, *b)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Exists(_ context.Context, p, n uuid.UUID) (bool, error) {
	_, ok := f.rows[bmKey{p, n}]
	return ok, nil
}

func (f *fakeRepo) UpdateProgress(_ context.Context, p, n, chapterID uuid.UUID, number int) (bool, error) {
	b, ok := f.rows[bmKey{p, n}]
	if !ok {
		return false, nil
	}
	b.LastChapterID, b.LastChapterNumber = &chapterID, &number
	return true, nil
}

type fakeNovels map[uuid.UUID]*novelmodel.Novel

func (f fakeNovels) FindByID(_ context.Context, id uuid.UUID) (*novelmodel.Novel, error) {
	n, ok := f[id]
	if !ok {
		return nil, novelmodel.ErrNovelNotFound
	}
	return n, nil
}

func setup() (*bookmarkService, *fakeRepo, *novelmodel.Novel) {
	repo := &fakeRepo{rows: map[bmKey]*model.Bookmark{}, counts: map[uuid.UUID]int{}}
	novel := &novelmodel.Novel{ID: uuid.New(), AuthorID: uuid.New(), Status: novelmodel.StatusOngoing, ChapterCount: 10}
	svc := NewBookmarkService(repo, fakeTx{repo: repo}, fakeNovels{novel.ID: novel}).(*bookmarkService)
	return svc, repo, novel
}

func TestAddRemove_MaintainsCount(t *testing.T) {
	svc, repo, novel := setup()
	reader := shared.Actor{ID: uuid.New(), Role: "user"}
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, reader, novel.ID))
	assert.Equal(t, 1, repo.counts[novel.ID])

	err := svc.Add(ctx, reader, novel.ID)
	var bErr *model.BookmarkError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, model.ErrCodeAlreadyBookmarked, bErr.Code)
	assert.Equal(t, 1, repo.counts[novel.ID])

	ok, err := svc.IsBookmarked(ctx, reader.ID, novel.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, reader.ID, novel.ID))
	assert.Equal(t, 0, repo.counts[novel.ID])

	err = svc.Remove(ctx, reader.ID, novel.ID)
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, model.ErrCodeBookmarkNotFound, bErr.Code)
}

func TestAdd_UnknownOrDraftNovel(t *testing.T) {
	svc, _, novel := setup()
	reader := shared.Actor{ID: uuid.New(), Role: "user"}
	ctx := context.Background()

	var bErr *model.BookmarkError
	require.ErrorAs(t, svc.Add(ctx, reader, uuid.New()), &bErr)
	assert.Equal(t, model.ErrCodeNovelNotFound, bErr.Code)

	novel.Status = novelmodel.StatusDraft
	require.ErrorAs(t, svc.Add(ctx, reader, novel.ID), &bErr)
	assert.NoError(t, svc.Add(ctx, shared.Actor{ID: novel.AuthorID, Role: "author"}, novel.ID))
}

func TestUpdateProgress_OnlyExistingBookmarks(t *testing.T) {
	svc, repo, novel := setup()
	reader := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.UpdateProgress(ctx, reader, novel.ID, uuid.New(), 3))
	assert.Empty(t, repo.rows)

	require.NoError(t, svc.Add(ctx, shared.Actor{ID: reader}, novel.ID))
	require.NoError(t, svc.UpdateProgress(ctx, reader, novel.ID, uuid.New(), 3))

	resp, err := svc.List(ctx, reader, 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Bookmarks, 1)
	assert.Equal(t, 3, *resp.Bookmarks[0].LastChapterNumber)
	assert.Equal(t, 20, resp.Limit)
}

func TestUnreadChapters(t *testing.T) {
	read := 4
	b := model.Bookmark{NovelChapterCount: 10, LastChapterNumber: &read}
	assert.Equal(t, 6, b.UnreadChapters())

	read = 12
	assert.Equal(t, 0, b.UnreadChapters())
	assert.Equal(t, 10, (&model.Bookmark{NovelChapterCount: 10}).UnreadChapters())
}
