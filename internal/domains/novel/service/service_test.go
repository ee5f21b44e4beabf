package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/cache"
	"novelhub-backend/pkg/database"
)

type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(q database.DBTX) error) error {
	return fn(nil)
}

type fakeRepo struct {
	mu        sync.Mutex
	novels    map[uuid.UUID]*model.Novel
	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{novels: map[uuid.UUID]*model.Novel{}}
}

func (f *fakeRepo) Create(_ context.Context, _ database.DBTX, n *model.Novel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.novels {
		if other.Slug == n.Slug {
			return model.ErrSlugExists
		}
	}
	cp := *n
	f.novels[n.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, _ database.DBTX, n *model.Novel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.novels[n.ID]
	if !ok {
		return model.ErrNovelNotFound
	}
	tags := cur.Tags
	cp := *n
	cp.Tags = tags
	f.novels[n.ID] = &cp
	return nil
}

func (f *fakeRepo) ReplaceTags(_ context.Context, _ database.DBTX, id uuid.UUID, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.novels[id].Tags = append([]string(nil), tags...)
	sort.Strings(f.novels[id].Tags)
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.novels[id]; !ok {
		return model.ErrNovelNotFound
	}
	delete(f.novels, id)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Novel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.novels[id]
	if !ok {
		return nil, model.ErrNovelNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (*model.Novel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.novels {
		if n.Slug == slug {
			cp := *n
			return &cp, nil
		}
	}
	return nil, model.ErrNovelNotFound
}

func (f *fakeRepo) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, n := range f.novels {
		if n.Slug == slug && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) List(_ context.Context, filter model.ListFilter) ([]model.Novel, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []model.Novel
	for _, n := range f.novels {
		if !filter.IncludeDrafts && n.Status == model.StatusDraft {
			continue
		}
		if filter.AuthorID != nil && n.AuthorID != *filter.AuthorID {
			continue
		}
		out = append(out, *n)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListTags(context.Context) ([]model.Tag, error) { return nil, nil }

func (f *fakeRepo) SetFeatured(_ context.Context, id uuid.UUID, featured bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.novels[id]
	if !ok {
		return model.ErrNovelNotFound
	}
	n.IsFeatured = featured
	return nil
}

func (f *fakeRepo) SetCoverURL(_ context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.novels[id].CoverURL = &url
	return nil
}

type fakeStorage struct{ keys []string }

func (f *fakeStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "http://minio/novelhub/" + key, nil
}

type fakeImages struct{ err error }

func (f fakeImages) ValidateImage([]byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "image/png", nil
}

type fakeQueue struct{ tasks []string }

func (f *fakeQueue) Enqueue(_ context.Context, taskType string, _ interface{}) error {
	f.tasks = append(f.tasks, taskType)
	return nil
}

type fixture struct {
	svc     ServiceInterface
	repo    *fakeRepo
	cache   *cache.MemoryCache
	storage *fakeStorage
	queue   *fakeQueue
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newFakeRepo(),
		cache:   cache.NewMemoryCache(),
		storage: &fakeStorage{},
		queue:   &fakeQueue{},
	}
	f.svc = NewNovelService(f.repo, fakeTx{}, f.cache, f.storage, fakeImages{}, f.queue)
	return f
}

func author() shared.Actor {
	return shared.Actor{ID: uuid.New(), Role: "author"}
}

func TestCreate_DerivesSlugFromTitle(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), author(), model.CreateNovelRequest{
		Title: "Tôi Là Kiếm Sĩ", Tags: []string{"Fantasy", "Action"},
	})
	require.NoError(t, err)
	assert.Equal(t, "toi-la-kiem-si", resp.Slug)
	assert.Equal(t, model.StatusOngoing, resp.Status)
	assert.Equal(t, []string{"Action", "Fantasy"}, resp.Tags)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	f := newFixture()
	a := author()

	_, err := f.svc.Create(context.Background(), a, model.CreateNovelRequest{Title: "Sword Saga"})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), author(), model.CreateNovelRequest{Title: "Another", Slug: "Sword Saga"})
	var nerr *model.NovelError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, model.ErrCodeSlugExists, nerr.Code)
	assert.ErrorIs(t, err, model.ErrSlugExists)
}

func TestCreate_SlugRaceMapsToSlugExists(t *testing.T) {
	f := newFixture()
	existing := &model.Novel{ID: uuid.New(), Slug: "taken", Status: model.StatusOngoing}
	f.repo.novels[existing.ID] = existing

	// SlugExists trả false nhưng insert vẫn đụng unique index
	svc := f.svc.(*novelService)
	svc.repo = &raceRepo{fakeRepo: f.repo}

	_, err := svc.Create(context.Background(), author(), model.CreateNovelRequest{Title: "Taken"})
	var nerr *model.NovelError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, model.ErrCodeSlugExists, nerr.Code)
}

type raceRepo struct{ *fakeRepo }

func (r *raceRepo) SlugExists(context.Context, string, uuid.UUID) (bool, error) { return false, nil }

func TestCreate_InvalidSlug(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), author(), model.CreateNovelRequest{Title: "!!!"})
	assert.ErrorIs(t, err, model.ErrInvalidSlug)
}

func TestUpdate_OwnershipAndSlugChange(t *testing.T) {
	f := newFixture()
	owner := author()
	n1, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "First"})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Second"})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = f.svc.Update(context.Background(), author(), n1.ID, model.UpdateNovelRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrForbidden)

	clash := "second"
	_, err = f.svc.Update(context.Background(), owner, n1.ID, model.UpdateNovelRequest{Slug: &clash})
	assert.ErrorIs(t, err, model.ErrSlugExists)

	admin := shared.Actor{ID: uuid.New(), Role: "admin"}
	newSlug := "first-renamed"
	updated, err := f.svc.Update(context.Background(), admin, n1.ID, model.UpdateNovelRequest{Slug: &newSlug, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "first-renamed", updated.Slug)
	assert.Equal(t, "Hijacked", updated.Title)
}

func TestGetBySlug_CountsViewsAndHidesDrafts(t *testing.T) {
	f := newFixture()
	owner := author()
	pub, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Public"})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Secret", Status: model.StatusDraft})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.svc.GetBySlug(context.Background(), "public", nil)
		require.NoError(t, err)
	}
	counters, err := f.cache.GetAndDeleteCounters(context.Background(), model.ViewCounterPrefix+"*")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counters[model.ViewCounterPrefix+pub.ID.String()])

	_, err = f.svc.GetBySlug(context.Background(), "secret", nil)
	assert.ErrorIs(t, err, model.ErrNovelNotFound)

	_, err = f.svc.GetBySlug(context.Background(), "secret", &owner)
	assert.NoError(t, err)
}

func TestList_CachesAnonymousAndInvalidatesOnWrite(t *testing.T) {
	f := newFixture()
	owner := author()
	_, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "One"})
	require.NoError(t, err)

	req := model.ListNovelsRequest{Page: 1, Limit: 10}
	first, err := f.svc.List(context.Background(), req, nil)
	require.NoError(t, err)
	_, err = f.svc.List(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.listCalls)
	assert.Equal(t, 1, first.Total)

	// logged-in requests đi thẳng DB
	_, err = f.svc.List(context.Background(), req, &owner)
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.listCalls)

	_, err = f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Two"})
	require.NoError(t, err)
	second, err := f.svc.List(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Total)
}

func TestListByAuthor_DraftsOnlyForOwner(t *testing.T) {
	f := newFixture()
	owner := author()
	_, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Out"})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Draft", Status: model.StatusDraft})
	require.NoError(t, err)

	public, err := f.svc.ListByAuthor(context.Background(), owner.ID, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, public.Total)

	mine, err := f.svc.ListByAuthor(context.Background(), owner.ID, &owner, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Total)
}

func TestUploadCover(t *testing.T) {
	f := newFixture()
	owner := author()
	n, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Covered"})
	require.NoError(t, err)

	resp, err := f.svc.UploadCover(context.Background(), owner, "covered", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://minio/novelhub/covers/"+n.ID.String()+"/original.png", resp.CoverURL)
	assert.Equal(t, []string{shared.TypeProcessCover}, f.queue.tasks)

	_, err = f.svc.UploadCover(context.Background(), author(), "covered", []byte("png"))
	assert.ErrorIs(t, err, model.ErrForbidden)

	svc := f.svc.(*novelService)
	svc.images = fakeImages{err: errors.New("gif not allowed")}
	_, err = f.svc.UploadCover(context.Background(), owner, "covered", []byte("gif"))
	var nerr *model.NovelError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, model.ErrCodeInvalidImage, nerr.Code)
}

func TestDelete_EnqueuesAssetCleanup(t *testing.T) {
	f := newFixture()
	owner := author()
	n, err := f.svc.Create(context.Background(), owner, model.CreateNovelRequest{Title: "Gone"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), author(), n.ID), model.ErrForbidden)
	require.NoError(t, f.svc.Delete(context.Background(), owner, n.ID))
	assert.Equal(t, []string{shared.TypeDeleteNovelAssets}, f.queue.tasks)

	_, err = f.svc.FindByID(context.Background(), n.ID)
	assert.ErrorIs(t, err, model.ErrNovelNotFound)
}
