package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/chapter/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/cache"
	"novelhub-backend/pkg/database"
)

// =====================================================
// FAKES
// =====================================================

type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(q database.DBTX) error) error {
	return fn(nil)
}

type fakeRepo struct {
	chapters     map[uuid.UUID]*model.Chapter
	statsRefresh int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{chapters: map[uuid.UUID]*model.Chapter{}}
}

func samePart(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeRepo) Create(_ context.Context, _ database.DBTX, c *model.Chapter) error {
	for _, ex := range f.chapters {
		if ex.NovelID == c.NovelID && ex.ChapterNumber == c.ChapterNumber && samePart(ex.PartNumber, c.PartNumber) {
			return model.ErrNumberExists
		}
	}
	cp := *c
	f.chapters[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, _ database.DBTX, c *model.Chapter) error {
	cp := *c
	f.chapters[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _ database.DBTX, id uuid.UUID) error {
	if _, ok := f.chapters[id]; !ok {
		return model.ErrChapterNotFound
	}
	delete(f.chapters, id)
	return nil
}

func (f *fakeRepo) RefreshNovelStats(context.Context, database.DBTX, uuid.UUID, time.Time) error {
	f.statsRefresh++
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Chapter, error) {
	c, ok := f.chapters[id]
	if !ok {
		return nil, model.ErrChapterNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, novelID uuid.UUID, number int, part *int) (*model.Chapter, error) {
	for _, c := range f.chapters {
		if c.NovelID == novelID && c.ChapterNumber == number && samePart(c.PartNumber, part) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, model.ErrChapterNotFound
}

func (f *fakeRepo) ListByNovel(_ context.Context, novelID uuid.UUID, before *time.Time) ([]model.Chapter, error) {
	out := []model.Chapter{}
	for _, c := range f.chapters {
		if c.NovelID != novelID || (before != nil && !c.IsPublishedAt(*before)) {
			continue
		}
		cp := *c
		cp.Content = ""
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeRepo) Neighbors(context.Context, *model.Chapter, *time.Time) (*model.ChapterRef, *model.ChapterRef, error) {
	return nil, nil, nil
}

func (f *fakeRepo) MaxNumber(_ context.Context, novelID uuid.UUID) (int, error) {
	highest := 0
	for _, c := range f.chapters {
		if c.NovelID == novelID && c.ChapterNumber > highest {
			highest = c.ChapterNumber
		}
	}
	return highest, nil
}

type fakeNovels struct{ novel *novelmodel.Novel }

func (f fakeNovels) FindBySlug(_ context.Context, slug string) (*novelmodel.Novel, error) {
	if f.novel == nil || f.novel.Slug != slug {
		return nil, novelmodel.ErrNovelNotFound
	}
	return f.novel, nil
}

func (f fakeNovels) FindByID(_ context.Context, id uuid.UUID) (*novelmodel.Novel, error) {
	if f.novel == nil || f.novel.ID != id {
		return nil, novelmodel.ErrNovelNotFound
	}
	return f.novel, nil
}

type fakePurchases struct{ owned map[uuid.UUID]bool }

func (f fakePurchases) HasPurchased(_ context.Context, _, chapterID uuid.UUID) (bool, error) {
	return f.owned[chapterID], nil
}

func (f fakePurchases) PurchasedChapterIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, id := range ids {
		if f.owned[id] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeSubs struct{ active bool }

func (f fakeSubs) HasActive(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.active, nil
}

type fakeProgress struct{ calls int }

func (f *fakeProgress) UpdateProgress(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, int) error {
	f.calls++
	return errors.New("bookmark missing")
}

type fakeNotifier struct{ inputs []notifmodel.CreateInput }

func (f *fakeNotifier) NotifyNovelFollowers(_ context.Context, _, _ uuid.UUID, in notifmodel.CreateInput) (int64, error) {
	f.inputs = append(f.inputs, in)
	return 3, nil
}

type plainRenderer struct{}

func (plainRenderer) RenderChapter(md string) (string, error) { return "<p>" + md + "</p>", nil }

type queued struct {
	taskType string
	at       *time.Time
}

type fakeQueue struct{ tasks []queued }

func (f *fakeQueue) Enqueue(_ context.Context, taskType string, _ interface{}) error {
	f.tasks = append(f.tasks, queued{taskType: taskType})
	return nil
}

func (f *fakeQueue) EnqueueAt(_ context.Context, taskType string, _ interface{}, at time.Time) error {
	f.tasks = append(f.tasks, queued{taskType: taskType, at: &at})
	return nil
}

// =====================================================
// FIXTURE
// =====================================================

type fixture struct {
	svc      *chapterService
	repo     *fakeRepo
	novel    *novelmodel.Novel
	author   shared.Actor
	reader   shared.Actor
	progress *fakeProgress
	notifier *fakeNotifier
	queue    *fakeQueue
	cache    *cache.MemoryCache
	now      time.Time
}

func newFixture(purchased map[uuid.UUID]bool, subscribed bool) *fixture {
	author := shared.Actor{ID: uuid.New(), Role: "author"}
	novel := &novelmodel.Novel{ID: uuid.New(), AuthorID: author.ID, Title: "Sword Saint", Slug: "sword-saint", Status: novelmodel.StatusOngoing}
	f := &fixture{
		repo:     newFakeRepo(),
		novel:    novel,
		author:   author,
		reader:   shared.Actor{ID: uuid.New(), Role: "user"},
		progress: &fakeProgress{},
		notifier: &fakeNotifier{},
		queue:    &fakeQueue{},
		cache:    cache.NewMemoryCache(),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if purchased == nil {
		purchased = map[uuid.UUID]bool{}
	}
	f.svc = NewChapterService(f.repo, fakeTx{}, Deps{
		Novels:        fakeNovels{novel: novel},
		Purchases:     fakePurchases{owned: purchased},
		Subscriptions: fakeSubs{active: subscribed},
		Progress:      f.progress,
		Notifier:      f.notifier,
		Renderer:      plainRenderer{},
		Queue:         f.queue,
		Cache:         f.cache,
	}, 500).(*chapterService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addChapter(number int, coins int64, publishAt *time.Time) *model.Chapter {
	c := &model.Chapter{
		ID: uuid.New(), NovelID: f.novel.ID, ChapterNumber: number,
		Title: "Ch", Content: "secret text", Coins: coins, PublishAt: publishAt,
	}
	f.repo.chapters[c.ID] = c
	return c
}

// =====================================================
// TESTS
// =====================================================

func TestCreate_PublishedNow(t *testing.T) {
	f := newFixture(nil, false)
	require.NoError(t, f.cache.Set(context.Background(), "novels:list:p1", []string{"x"}, 0))

	resp, err := f.svc.Create(context.Background(), f.author, "sword-saint", model.CreateChapterRequest{
		ChapterNumber: 1, Title: "The Beginning", Content: "one two three",
	})
	require.NoError(t, err)
	assert.Equal(t, "the-beginning", resp.Slug)
	assert.Equal(t, 3, resp.WordCount)
	assert.Equal(t, 1, f.repo.statsRefresh)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, shared.TypeNotifyNewChapter, f.queue.tasks[0].taskType)
	assert.Nil(t, f.queue.tasks[0].at)

	exists, _ := f.cache.Exists(context.Background(), "novels:list:p1")
	assert.False(t, exists)
}

func TestCreate_ScheduledUsesEnqueueAt(t *testing.T) {
	f := newFixture(nil, false)
	later := f.now.Add(48 * time.Hour)

	_, err := f.svc.Create(context.Background(), f.author, "sword-saint", model.CreateChapterRequest{
		ChapterNumber: 1, Title: "Later", Content: "x", PublishAt: &later,
	})
	require.NoError(t, err)
	require.Len(t, f.queue.tasks, 1)
	require.NotNil(t, f.queue.tasks[0].at)
	assert.True(t, later.Equal(*f.queue.tasks[0].at))
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(nil, false)
	f.addChapter(1, 0, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author, "sword-saint", model.CreateChapterRequest{ChapterNumber: 1, Title: "Dup", Content: "x"})
	var chErr *model.ChapterError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeNumberExists, chErr.Code)

	_, err = f.svc.Create(ctx, f.reader, "sword-saint", model.CreateChapterRequest{ChapterNumber: 2, Title: "Nope", Content: "x"})
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeForbidden, chErr.Code)

	_, err = f.svc.Create(ctx, f.author, "sword-saint", model.CreateChapterRequest{ChapterNumber: 2, Title: "Pricey", Content: "x", Coins: 501})
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeInvalidCost, chErr.Code)

	_, err = f.svc.Create(ctx, f.author, "missing", model.CreateChapterRequest{ChapterNumber: 2, Title: "Lost", Content: "x"})
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeNovelNotFound, chErr.Code)
}

func TestCreate_PartNumbersShareChapterNumber(t *testing.T) {
	f := newFixture(nil, false)
	one, two := 1, 2
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author, "sword-saint", model.CreateChapterRequest{ChapterNumber: 5, PartNumber: &one, Title: "A", Content: "x"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.author, "sword-saint", model.CreateChapterRequest{ChapterNumber: 5, PartNumber: &two, Title: "B", Content: "x"})
	require.NoError(t, err)
}

func TestRead_AccessRules(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous sees free chapter", func(t *testing.T) {
		f := newFixture(nil, false)
		f.addChapter(1, 0, nil)
		view, err := f.svc.Read(ctx, "sword-saint", 1, nil, nil)
		require.NoError(t, err)
		assert.False(t, view.IsLocked)
		assert.Equal(t, "<p>secret text</p>", view.Content)
	})

	t.Run("paid chapter locked without purchase", func(t *testing.T) {
		f := newFixture(nil, false)
		f.addChapter(2, 10, nil)
		view, err := f.svc.Read(ctx, "sword-saint", 2, nil, &f.reader)
		require.NoError(t, err)
		assert.True(t, view.IsLocked)
		assert.Empty(t, view.Content)
		assert.Zero(t, f.progress.calls)
	})

	t.Run("purchase unlocks", func(t *testing.T) {
		f := newFixture(nil, false)
		c := f.addChapter(2, 10, nil)
		f.svc.deps.Purchases = fakePurchases{owned: map[uuid.UUID]bool{c.ID: true}}
		view, err := f.svc.Read(ctx, "sword-saint", 2, nil, &f.reader)
		require.NoError(t, err)
		assert.False(t, view.IsLocked)
		assert.True(t, view.IsUnlocked)
		// lỗi progress không làm hỏng request
		assert.Equal(t, 1, f.progress.calls)
	})

	t.Run("subscriber unlocks", func(t *testing.T) {
		f := newFixture(nil, true)
		f.addChapter(2, 10, nil)
		view, err := f.svc.Read(ctx, "sword-saint", 2, nil, &f.reader)
		require.NoError(t, err)
		assert.False(t, view.IsLocked)
	})

	t.Run("author reads own paid chapter", func(t *testing.T) {
		f := newFixture(nil, false)
		f.addChapter(2, 10, nil)
		view, err := f.svc.Read(ctx, "sword-saint", 2, nil, &f.author)
		require.NoError(t, err)
		assert.False(t, view.IsLocked)
	})
}

func TestRead_ScheduledChapterHiddenFromReaders(t *testing.T) {
	f := newFixture(nil, false)
	later := f.now.Add(time.Hour)
	f.addChapter(3, 0, &later)
	ctx := context.Background()

	_, err := f.svc.Read(ctx, "sword-saint", 3, nil, &f.reader)
	var chErr *model.ChapterError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeChapterNotFound, chErr.Code)

	_, err = f.svc.Read(ctx, "sword-saint", 3, nil, &f.author)
	assert.NoError(t, err)
}

func TestRead_DraftNovelHidden(t *testing.T) {
	f := newFixture(nil, false)
	f.novel.Status = novelmodel.StatusDraft
	f.addChapter(1, 0, nil)

	_, err := f.svc.Read(context.Background(), "sword-saint", 1, nil, nil)
	var chErr *model.ChapterError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeNovelNotFound, chErr.Code)
}

func TestList_UnlockFlags(t *testing.T) {
	f := newFixture(nil, false)
	free := f.addChapter(1, 0, nil)
	bought := f.addChapter(2, 10, nil)
	f.addChapter(3, 10, nil)
	later := f.now.Add(time.Hour)
	f.addChapter(4, 0, &later)
	f.svc.deps.Purchases = fakePurchases{owned: map[uuid.UUID]bool{bought.ID: true}}

	list, err := f.svc.List(context.Background(), "sword-saint", &f.reader)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byID := map[uuid.UUID]model.ChapterSummary{}
	for _, s := range list {
		byID[s.ID] = s
	}
	assert.False(t, byID[free.ID].IsLocked)
	assert.True(t, byID[bought.ID].IsUnlocked)

	authorList, err := f.svc.List(context.Background(), "sword-saint", &f.author)
	require.NoError(t, err)
	assert.Len(t, authorList, 4)
}

func TestPublishNotice(t *testing.T) {
	f := newFixture(nil, false)
	part := 2
	c := f.addChapter(7, 0, nil)
	c.PartNumber = &part

	require.NoError(t, f.svc.PublishNotice(context.Background(), c.ID))
	require.Len(t, f.notifier.inputs, 1)
	assert.Equal(t, notifmodel.TypeNewChapter, f.notifier.inputs[0].Type)
	assert.Equal(t, "/novels/sword-saint/chapters/7?part=2", f.notifier.inputs[0].Link)
	assert.Equal(t, 1, f.repo.statsRefresh)
}

func TestPublishNotice_SkipsMovedOrDeleted(t *testing.T) {
	f := newFixture(nil, false)
	later := f.now.Add(time.Hour)
	c := f.addChapter(1, 0, &later)

	require.NoError(t, f.svc.PublishNotice(context.Background(), c.ID))
	require.NoError(t, f.svc.PublishNotice(context.Background(), uuid.New()))
	assert.Empty(t, f.notifier.inputs)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(nil, false)
	c := f.addChapter(1, 0, nil)
	ctx := context.Background()

	title := "Renamed"
	coins := int64(20)
	resp, err := f.svc.Update(ctx, f.author, c.ID, model.UpdateChapterRequest{Title: &title, Coins: &coins})
	require.NoError(t, err)
	assert.Equal(t, "renamed", resp.Slug)
	assert.Equal(t, int64(20), resp.Coins)

	err = f.svc.Delete(ctx, f.reader, c.ID)
	var chErr *model.ChapterError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, model.ErrCodeForbidden, chErr.Code)

	admin := shared.Actor{ID: uuid.New(), Role: "admin"}
	require.NoError(t, f.svc.Delete(ctx, admin, c.ID))
	assert.Empty(t, f.repo.chapters)

	next, err := f.svc.NextNumber(ctx, f.novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}
