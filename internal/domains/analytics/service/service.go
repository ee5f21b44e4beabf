package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"novelhub-backend/internal/domains/analytics/model"
	"novelhub-backend/internal/domains/analytics/repository"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/pkg/logger"
)

const (
	recentTransactionLimit = 10
	topNovelLimit          = 10
)

type analyticsService struct {
	repo     repository.AnalyticsRepository
	counters Counters
	now      func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, counters Counters) ServiceInterface {
	return &analyticsService{repo: repo, counters: counters, now: time.Now}
}

// =====================================================
// READING TIME
// =====================================================

func (s *analyticsService) CreateReadingTime(ctx context.Context, profileID uuid.UUID) error {
	return s.repo.CreateReadingTime(ctx, profileID)
}

func (s *analyticsService) AddReadingTime(ctx context.Context, profileID uuid.UUID, req model.HeartbeatRequest) (*model.ReadingTime, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.AddReadingTime(ctx, profileID, req.Seconds)
}

func (s *analyticsService) GetReadingTime(ctx context.Context, profileID uuid.UUID) (*model.ReadingTime, error) {
	return s.repo.GetReadingTime(ctx, profileID)
}

// =====================================================
// DASHBOARDS
// =====================================================

func (s *analyticsService) AuthorDashboard(ctx context.Context, authorID uuid.UUID) (*model.AuthorDashboard, error) {
	dash := &model.AuthorDashboard{}

	// Các query độc lập, chạy song song
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		novels, err := s.repo.AuthorNovels(gctx, authorID)
		dash.Novels = novels
		return err
	})
	g.Go(func() error {
		earnings, err := s.repo.AuthorEarnings(gctx, authorID)
		dash.Earnings = earnings
		return err
	})
	g.Go(func() error {
		n, err := s.repo.ActiveSubscribers(gctx, authorID)
		dash.Subscribers = n
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.RecentTransactions(gctx, authorID, recentTransactionLimit)
		dash.RecentTransactions = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("author dashboard: %w", err)
	}

	for _, n := range dash.Novels {
		dash.TotalViews += n.Views
		dash.TotalBookmarks += int64(n.Bookmarks)
	}
	for _, e := range dash.Earnings {
		dash.TotalEarnings += e.Coins
	}
	return dash, nil
}

func (s *analyticsService) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	dash := &model.AdminDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.repo.PlatformTotals(gctx)
		if err == nil {
			dash.PlatformTotals = *totals
		}
		return err
	})
	g.Go(func() error {
		revenue, err := s.repo.RevenueByProvider(gctx)
		dash.Revenue = revenue
		return err
	})
	g.Go(func() error {
		top, err := s.repo.TopNovels(gctx, topNovelLimit)
		dash.TopNovels = top
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}
	return dash, nil
}

// =====================================================
// EXPORT
// =====================================================

func (s *analyticsService) ExportEarnings(ctx context.Context, authorID uuid.UUID, req model.ExportRequest) (*excelize.File, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, to, err := req.Range(s.now())
	if err != nil {
		return nil, model.NewInvalidRangeError()
	}

	rows, err := s.repo.IncomeBetween(ctx, authorID, from, to)
	if err != nil {
		return nil, err
	}

	f, err := buildEarningsWorkbook(rows, from, to)
	if err != nil {
		return nil, fmt.Errorf("build earnings workbook: %w", err)
	}
	return f, nil
}

func buildEarningsWorkbook(rows []model.TransactionRow, from, to time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Earnings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	// Row 1: Header
	headers := []string{"Date", "Type", "Coins", "Description", "Balance After"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(sheet, "A1", "E1", style)
	}

	// Data rows
	totals := map[string]int64{}
	for i, r := range rows {
		row := i + 2
		cell := func(col int) string {
			c, _ := excelize.CoordinatesToCellName(col, row)
			return c
		}
		f.SetCellValue(sheet, cell(1), r.CreatedAt.UTC().Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, cell(2), r.Type)
		f.SetCellValue(sheet, cell(3), r.Amount)
		f.SetCellValue(sheet, cell(4), r.Description)
		f.SetCellValue(sheet, cell(5), r.BalanceAfter)
		totals[r.Type] += r.Amount
	}
	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "D", "D", 48)

	// Sheet tổng hợp
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	f.SetCellValue(summary, "A1", "Period")
	f.SetCellValue(summary, "B1", from.Format(model.DateLayout)+" → "+to.AddDate(0, 0, -1).Format(model.DateLayout))
	var grand int64
	for i, t := range model.IncomeTypes {
		row := i + 2
		f.SetCellValue(summary, fmt.Sprintf("A%d", row), strings.ReplaceAll(t, "_", " "))
		f.SetCellValue(summary, fmt.Sprintf("B%d", row), totals[t])
		grand += totals[t]
	}
	totalRow := len(model.IncomeTypes) + 2
	f.SetCellValue(summary, fmt.Sprintf("A%d", totalRow), "total")
	f.SetCellValue(summary, fmt.Sprintf("B%d", totalRow), grand)
	f.SetColWidth(summary, "A", "B", 24)

	return f, nil
}

// =====================================================
// VIEWS
// =====================================================

func (s *analyticsService) FlushViews(ctx context.Context) (int, error) {
	counters, err := s.counters.GetAndDeleteCounters(ctx, novelmodel.ViewCounterPrefix+"*")
	if err != nil && len(counters) == 0 {
		return 0, fmt.Errorf("read view counters: %w", err)
	}
	if err != nil {
		// đã GETDEL một phần: vẫn flush phần đọc được
		logger.Error("partial view counter scan", err)
	}

	views := make(map[uuid.UUID]int64, len(counters))
	for key, n := range counters {
		id, perr := uuid.Parse(strings.TrimPrefix(key, novelmodel.ViewCounterPrefix))
		if perr != nil || n <= 0 {
			continue
		}
		views[id] += n
	}

	if err := s.repo.AddViews(ctx, views); err != nil {
		// trả counter lại Redis để lần flush sau cộng tiếp
		s.restoreCounters(ctx, views)
		return 0, err
	}

	if len(views) > 0 {
		logger.Info("view counters flushed", map[string]interface{}{"novels": len(views)})
	}
	return len(views), nil
}

func (s *analyticsService) restoreCounters(ctx context.Context, views map[uuid.UUID]int64) {
	ctx = context.WithoutCancel(ctx)
	for id, n := range views {
		if _, err := s.counters.IncrementBy(ctx, novelmodel.ViewCounterPrefix+id.String(), n); err != nil {
			logger.ErrorWithFields("restore view counter", err, map[string]interface{}{"novel_id": id, "views": n})
		}
	}
}
