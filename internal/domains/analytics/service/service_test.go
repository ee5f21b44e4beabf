package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/analytics/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/pkg/cache"
)

type fakeRepo struct {
	mu       sync.Mutex
	seconds  map[uuid.UUID]int64
	novels   []model.NovelStats
	earnings []model.EarningsByType
	income   []model.TransactionRow
	views    map[uuid.UUID]int64
	failWith error
	lastFrom time.Time
	lastTo   time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{seconds: map[uuid.UUID]int64{}, views: map[uuid.UUID]int64{}}
}

func (f *fakeRepo) CreateReadingTime(_ context.Context, id uuid.UUID) error {
	if _, ok := f.seconds[id]; !ok {
		f.seconds[id] = 0
	}
	return nil
}

func (f *fakeRepo) AddReadingTime(_ context.Context, id uuid.UUID, s int64) (*model.ReadingTime, error) {
	f.seconds[id] += s
	return &model.ReadingTime{ProfileID: id, Seconds: f.seconds[id]}, nil
}

func (f *fakeRepo) GetReadingTime(_ context.Context, id uuid.UUID) (*model.ReadingTime, error) {
	return &model.ReadingTime{ProfileID: id, Seconds: f.seconds[id]}, nil
}

func (f *fakeRepo) AuthorNovels(context.Context, uuid.UUID) ([]model.NovelStats, error) {
	return f.novels, f.failWith
}

func (f *fakeRepo) AuthorEarnings(context.Context, uuid.UUID) ([]model.EarningsByType, error) {
	return f.earnings, nil
}

func (f *fakeRepo) ActiveSubscribers(context.Context, uuid.UUID) (int, error) {
	return 3, nil
}

func (f *fakeRepo) RecentTransactions(_ context.Context, _ uuid.UUID, limit int) ([]model.TransactionRow, error) {
	if len(f.income) > limit {
		return f.income[:limit], nil
	}
	return f.income, nil
}

func (f *fakeRepo) IncomeBetween(_ context.Context, _ uuid.UUID, from, to time.Time) ([]model.TransactionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom, f.lastTo = from, to
	return f.income, nil
}

func (f *fakeRepo) PlatformTotals(context.Context) (*model.PlatformTotals, error) {
	return &model.PlatformTotals{Users: 42, Novels: 5, CoinsInCirculation: 1000}, nil
}

func (f *fakeRepo) RevenueByProvider(context.Context) ([]model.Revenue, error) {
	return []model.Revenue{{Provider: "paypal", Currency: "USD", Amount: decimal.RequireFromString("9.98"), Orders: 2}}, nil
}

func (f *fakeRepo) TopNovels(context.Context, int) ([]model.NovelStats, error) {
	return f.novels, nil
}

func (f *fakeRepo) AddViews(_ context.Context, views map[uuid.UUID]int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	for id, n := range views {
		f.views[id] += n
	}
	return nil
}

func newTestService(repo *fakeRepo, c Counters) *analyticsService {
	svc := NewAnalyticsService(repo, c).(*analyticsService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestAddReadingTime_CapsHeartbeat(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, cache.NewMemoryCache())
	id := uuid.New()

	rt, err := svc.AddReadingTime(context.Background(), id, model.HeartbeatRequest{Seconds: 120})
	require.NoError(t, err)
	assert.Equal(t, int64(120), rt.Seconds)

	for _, s := range []int64{0, -5, model.MaxHeartbeatSeconds + 1} {
		_, err := svc.AddReadingTime(context.Background(), id, model.HeartbeatRequest{Seconds: s})
		var verrs validation.Errors
		assert.True(t, errors.As(err, &verrs), "seconds=%d", s)
	}

	rt, err = svc.GetReadingTime(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(120), rt.Seconds)
}

func TestAuthorDashboard_Aggregates(t *testing.T) {
	repo := newFakeRepo()
	repo.novels = []model.NovelStats{
		{ID: uuid.New(), Title: "A", Views: 100, Bookmarks: 4},
		{ID: uuid.New(), Title: "B", Views: 50, Bookmarks: 1},
	}
	repo.earnings = []model.EarningsByType{{Type: "chapter_income", Coins: 90}, {Type: "donation_received", Coins: 10}}

	dash, err := newTestService(repo, cache.NewMemoryCache()).AuthorDashboard(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(150), dash.TotalViews)
	assert.Equal(t, int64(5), dash.TotalBookmarks)
	assert.Equal(t, int64(100), dash.TotalEarnings)
	assert.Equal(t, 3, dash.Subscribers)
}

func TestAuthorDashboard_PropagatesError(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("db down")

	_, err := newTestService(repo, cache.NewMemoryCache()).AuthorDashboard(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestAdminDashboard(t *testing.T) {
	dash, err := newTestService(newFakeRepo(), cache.NewMemoryCache()).AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), dash.Users)
	require.Len(t, dash.Revenue, 1)
	assert.Equal(t, "paypal", dash.Revenue[0].Provider)
}

func TestExportEarnings_Workbook(t *testing.T) {
	repo := newFakeRepo()
	repo.income = []model.TransactionRow{
		{ID: uuid.New(), Type: "chapter_income", Amount: 9, Description: "unlock", BalanceAfter: 9, CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Type: "donation_received", Amount: 50, Description: "thanks", BalanceAfter: 59, CreatedAt: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)},
	}
	svc := newTestService(repo, cache.NewMemoryCache())

	f, err := svc.ExportEarnings(context.Background(), uuid.New(), model.ExportRequest{From: "2026-03-01", To: "2026-03-31"})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.lastFrom)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), repo.lastTo)

	header, err := f.GetCellValue("Earnings", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Coins", header)
	amount, err := f.GetCellValue("Earnings", "C3")
	require.NoError(t, err)
	assert.Equal(t, "50", amount)

	total, err := f.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "59", total)
}

func TestExportEarnings_DefaultAndInvalidRanges(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, cache.NewMemoryCache())

	_, err := svc.ExportEarnings(context.Background(), uuid.New(), model.ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), repo.lastTo)
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), repo.lastFrom)

	_, err = svc.ExportEarnings(context.Background(), uuid.New(), model.ExportRequest{From: "2026-03-10", To: "2026-03-01"})
	var ae *model.AnalyticsError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, model.ErrCodeInvalidRange, ae.Code)

	_, err = svc.ExportEarnings(context.Background(), uuid.New(), model.ExportRequest{From: "2024-01-01", To: "2026-03-01"})
	require.True(t, errors.As(err, &ae))

	_, err = svc.ExportEarnings(context.Background(), uuid.New(), model.ExportRequest{From: "03/01/2026"})
	var verrs validation.Errors
	assert.True(t, errors.As(err, &verrs))
}

func TestFlushViews_MovesCountersToDB(t *testing.T) {
	repo := newFakeRepo()
	c := cache.NewMemoryCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		_, _ = c.Increment(ctx, novelmodel.ViewCounterPrefix+a.String())
	}
	_, _ = c.Increment(ctx, novelmodel.ViewCounterPrefix+b.String())
	_, _ = c.Increment(ctx, novelmodel.ViewCounterPrefix+"garbage")

	n, err := svc.FlushViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(3), repo.views[a])
	assert.Equal(t, int64(1), repo.views[b])

	// counter đã reset
	n, err = svc.FlushViews(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushViews_RestoresCountersOnDBError(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("db down")
	c := cache.NewMemoryCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	id := uuid.New()
	_, _ = c.IncrementBy(ctx, novelmodel.ViewCounterPrefix+id.String(), 5)

	_, err := svc.FlushViews(ctx)
	require.Error(t, err)

	counters, err := c.GetAndDeleteCounters(ctx, novelmodel.ViewCounterPrefix+"*")
	require.NoError(t, err)
	assert.Equal(t, int64(5), counters[novelmodel.ViewCounterPrefix+id.String()])
}
