package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	chaptermodel "novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/gdrive/model"
	"novelhub-backend/internal/domains/gdrive/repository"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/infrastructure/gdrive"
	"novelhub-backend/internal/infrastructure/markdown"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/logger"
)

const (
	maxTitleRunes = 255
	jobListLimit  = 50
)

type driveService struct {
	repo        repository.DriveRepository
	oauth       OAuthConfig
	state       StateSigner
	drives      DriveFactory
	novels      NovelFinder
	chapters    ChapterCreator
	queue       Enqueuer
	concurrency int
}

func NewDriveService(
	repo repository.DriveRepository,
	oauth OAuthConfig,
	state StateSigner,
	drives DriveFactory,
	novels NovelFinder,
	chapters ChapterCreator,
	queue Enqueuer,
	concurrency int,
) ServiceInterface {
	if concurrency < 1 {
		concurrency = 1
	}
	return &driveService{
		repo:        repo,
		oauth:       oauth,
		state:       state,
		drives:      drives,
		novels:      novels,
		chapters:    chapters,
		queue:       queue,
		concurrency: concurrency,
	}
}

// =====================================================
// CONNECT
// =====================================================

func (s *driveService) AuthURL(ctx context.Context, profileID uuid.UUID) (*model.AuthURLResponse, error) {
	state, err := s.state.GenerateStateToken(profileID.String())
	if err != nil {
		return nil, fmt.Errorf("sign oauth state: %w", err)
	}
	// offline + consent để Google luôn trả refresh token
	url := s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return &model.AuthURLResponse{URL: url}, nil
}

func (s *driveService) Callback(ctx context.Context, req model.CallbackRequest) (uuid.UUID, error) {
	// Step 1: State là JWT ký bởi server, chứa profile id
	claims, err := s.state.ValidateStateToken(req.State)
	if err != nil {
		return uuid.Nil, model.NewInvalidStateError()
	}
	profileID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, model.NewInvalidStateError()
	}

	// Step 2: User từ chối trên màn consent
	if req.Error != "" || req.Code == "" {
		return profileID, model.NewExchangeError(fmt.Errorf("consent denied: %s", req.Error))
	}

	// Step 3: Exchange + lưu token
	tok, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		logger.ErrorWithFields("google oauth exchange failed", err, map[string]interface{}{"profile_id": profileID})
		return profileID, model.NewExchangeError(err)
	}
	if err := s.repo.SaveToken(ctx, profileID, tok); err != nil {
		return profileID, err
	}

	logger.Info("google drive connected", map[string]interface{}{"profile_id": profileID})
	return profileID, nil
}

func (s *driveService) Status(ctx context.Context, profileID uuid.UUID) (*model.ConnectionStatus, error) {
	conn, err := s.repo.GetConnection(ctx, profileID)
	if errors.Is(err, model.ErrNotConnected) {
		return &model.ConnectionStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.ConnectionStatus{Connected: true, ConnectedAt: &conn.CreatedAt}, nil
}

func (s *driveService) Disconnect(ctx context.Context, profileID uuid.UUID) error {
	return s.repo.DeleteConnection(ctx, profileID)
}

// =====================================================
// FILES
// =====================================================

func (s *driveService) ListFiles(ctx context.Context, profileID uuid.UUID, req model.ListFilesRequest) ([]gdrive.File, error) {
	client, err := s.clientFor(ctx, profileID)
	if err != nil {
		return nil, err
	}

	files, err := client.ListFiles(ctx, strings.TrimSpace(req.FolderID))
	if err != nil {
		return nil, model.NewDriveError(err)
	}
	if files == nil {
		files = []gdrive.File{}
	}
	return files, nil
}

// clientFor tạo Drive client; token refresh được lưu lại ngay
func (s *driveService) clientFor(ctx context.Context, profileID uuid.UUID) (DriveClient, error) {
	conn, err := s.repo.GetConnection(ctx, profileID)
	if err != nil {
		if errors.Is(err, model.ErrNotConnected) {
			return nil, model.NewNotConnectedError()
		}
		return nil, err
	}

	persist := func(tok *oauth2.Token) error {
		// context riêng: token phải được lưu kể cả khi request đã xong
		return s.repo.SaveToken(context.WithoutCancel(ctx), profileID, tok)
	}
	client, err := s.drives.ForToken(ctx, conn.Token, persist)
	if err != nil {
		return nil, model.NewDriveError(err)
	}
	return client, nil
}

// =====================================================
// IMPORT
// =====================================================

func (s *driveService) StartImport(ctx context.Context, actor shared.Actor, req model.StartImportRequest) (*model.ImportJobResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Chỉ tác giả của novel được import (job chạy dưới tên tác giả)
	novel, err := s.novels.FindByID(ctx, req.NovelID)
	if err != nil {
		if errors.Is(err, novelmodel.ErrNovelNotFound) {
			return nil, model.NewNovelNotFoundError()
		}
		return nil, err
	}
	if novel.AuthorID != actor.ID {
		return nil, model.NewForbiddenError()
	}

	// Step 3: Phải connect Drive trước
	if _, err := s.repo.GetConnection(ctx, actor.ID); err != nil {
		if errors.Is(err, model.ErrNotConnected) {
			return nil, model.NewNotConnectedError()
		}
		return nil, err
	}

	// Step 4: Persist job + enqueue
	job := &model.ImportJob{
		ProfileID:       actor.ID,
		NovelID:         novel.ID,
		FileIDs:         dedupe(req.FileIDs),
		StartingChapter: req.StartingChapter,
		Coins:           req.Coins,
		PublishAt:       req.PublishAt,
		Status:          model.JobPending,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, shared.TypeDriveImport, shared.DriveImportPayload{JobID: job.ID.String()}); err != nil {
		msg := "enqueue failed"
		job.Status, job.Error = model.JobFailed, &msg
		if ferr := s.repo.FinishJob(ctx, job); ferr != nil {
			logger.Error("mark import job failed", ferr)
		}
		return nil, fmt.Errorf("enqueue drive import: %w", err)
	}

	logger.Info("drive import queued", map[string]interface{}{
		"job_id":   job.ID,
		"novel_id": novel.ID,
		"files":    len(job.FileIDs),
	})

	resp := job.ToResponse()
	return &resp, nil
}

func (s *driveService) GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*model.ImportJobResponse, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return nil, model.NewJobNotFoundError()
		}
		return nil, err
	}
	if !actor.CanManage(job.ProfileID) {
		return nil, model.NewJobNotFoundError()
	}
	resp := job.ToResponse()
	return &resp, nil
}

func (s *driveService) ListJobs(ctx context.Context, profileID uuid.UUID) ([]model.ImportJobResponse, error) {
	jobs, err := s.repo.ListJobs(ctx, profileID, jobListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.ImportJobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobs[i].ToResponse())
	}
	return out, nil
}

// convertedFile là file đã export + convert, chờ tạo chapter
type convertedFile struct {
	title   string
	content string
	err     error
}

// RunImport export song song (giới hạn concurrency) rồi tạo chapter tuần tự theo thứ tự file_ids
// để số chapter liên tục. Lỗi từng file được đếm, không làm hỏng cả job.
func (s *driveService) RunImport(ctx context.Context, jobID uuid.UUID) ([]model.FileResult, error) {
	// Step 1: Claim job
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Finished() {
		logger.Info("drive import already finished, skipping", map[string]interface{}{"job_id": jobID})
		return nil, nil
	}
	claimed, err := s.repo.ClaimJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	// Step 2: Client + novel; lỗi ở đây làm job failed luôn
	novel, err := s.novels.FindByID(ctx, job.NovelID)
	if err != nil {
		return nil, s.failJob(ctx, job, fmt.Errorf("load novel: %w", err))
	}
	client, err := s.clientFor(ctx, job.ProfileID)
	if err != nil {
		return nil, s.failJob(ctx, job, err)
	}

	start := job.StartingChapter
	if start == 0 {
		if start, err = s.chapters.NextNumber(ctx, novel.ID); err != nil {
			return nil, s.failJob(ctx, job, fmt.Errorf("next chapter number: %w", err))
		}
	}
	// task giao lại sau crash: tiếp tục sau các file đã tạo chapter
	start = job.NextAfterDone(start)

	// Step 3: Export + convert song song
	converted := make([]convertedFile, len(job.FileIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, fileID := range job.FileIDs {
		if _, done := job.DoneFiles[fileID]; done {
			continue
		}
		i, fileID := i, fileID
		g.Go(func() error {
			converted[i] = exportFile(gctx, client, fileID)
			// chỉ dừng cả nhóm khi ctx bị cancel (worker shutdown)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 4: Tạo chapter tuần tự
	actor := shared.Actor{ID: job.ProfileID, Role: "author"}
	results := make([]model.FileResult, len(job.FileIDs))
	number := start
	for i, fileID := range job.FileIDs {
		if n, done := job.DoneFiles[fileID]; done {
			results[i] = model.FileResult{FileID: fileID, ChapterNumber: n}
			continue
		}
		results[i] = model.FileResult{FileID: fileID, Title: converted[i].title}
		if converted[i].err != nil {
			results[i].Error = converted[i].err.Error()
			continue
		}

		_, err := s.chapters.Create(ctx, actor, novel.Slug, chaptermodel.CreateChapterRequest{
			ChapterNumber: number,
			Title:         converted[i].title,
			Content:       converted[i].content,
			Coins:         job.Coins,
			PublishAt:     job.PublishAt,
		})
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].ChapterNumber = number
		if err := s.repo.RecordFile(ctx, job.ID, fileID, number); err != nil {
			logger.Error("drive import: record file failed", err)
		}
		number++
	}

	// Step 5: Cập nhật job
	job.Status, job.Imported, job.Failed, job.Error = model.Summarize(results)
	if err := s.repo.FinishJob(ctx, job); err != nil {
		return results, err
	}

	logger.Info("drive import finished", map[string]interface{}{
		"job_id":   job.ID,
		"status":   job.Status,
		"imported": job.Imported,
		"failed":   job.Failed,
	})
	return results, nil
}

func exportFile(ctx context.Context, client DriveClient, fileID string) convertedFile {
	name, html, err := client.ExportHTML(ctx, fileID)
	if err != nil {
		return convertedFile{err: err}
	}

	md, err := markdown.HTMLToMarkdown(html)
	if err != nil {
		return convertedFile{title: name, err: fmt.Errorf("convert html: %w", err)}
	}
	if strings.TrimSpace(md) == "" {
		return convertedFile{title: name, err: errors.New("document is empty")}
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = fileID
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes])
	}
	return convertedFile{title: title, content: md}
}

func (s *driveService) failJob(ctx context.Context, job *model.ImportJob, cause error) error {
	msg := cause.Error()
	job.Status, job.Error = model.JobFailed, &msg
	job.Failed = len(job.FileIDs)
	if err := s.repo.FinishJob(ctx, job); err != nil {
		logger.Error("mark import job failed", err)
	}
	logger.ErrorWithFields("drive import failed", cause, map[string]interface{}{"job_id": job.ID})
	return cause
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
