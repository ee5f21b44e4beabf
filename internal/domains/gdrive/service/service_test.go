package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	chaptermodel "novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/gdrive/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/infrastructure/gdrive"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/jwt"
)

// =====================================================
// FAKES
// =====================================================

type fakeRepo struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*model.DriveConnection
	jobs  map[uuid.UUID]*model.ImportJob
	saves int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{conns: map[uuid.UUID]*model.DriveConnection{}, jobs: map[uuid.UUID]*model.ImportJob{}}
}

func (f *fakeRepo) SaveToken(_ context.Context, profileID uuid.UUID, tok *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if c, ok := f.conns[profileID]; ok {
		c.Token = tok
		return nil
	}
	f.conns[profileID] = &model.DriveConnection{ProfileID: profileID, Token: tok, CreatedAt: time.Now()}
	return nil
}

func (f *fakeRepo) GetConnection(_ context.Context, profileID uuid.UUID) (*model.DriveConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conns[profileID]
	if !ok {
		return nil, model.ErrNotConnected
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) DeleteConnection(_ context.Context, profileID uuid.UUID) error {
	delete(f.conns, profileID)
	return nil
}

func (f *fakeRepo) CreateJob(_ context.Context, job *model.ImportJob) error {
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeRepo) GetJob(_ context.Context, id uuid.UUID) (*model.ImportJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeRepo) ListJobs(_ context.Context, profileID uuid.UUID, limit int) ([]model.ImportJob, error) {
	var out []model.ImportJob
	for _, j := range f.jobs {
		if j.ProfileID == profileID && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeRepo) ClaimJob(_ context.Context, id uuid.UUID) (bool, error) {
	j, ok := f.jobs[id]
	if !ok {
		return false, model.ErrJobNotFound
	}
	if j.Finished() {
		return false, nil
	}
	j.Status = model.JobRunning
	return true, nil
}

func (f *fakeRepo) RecordFile(_ context.Context, id uuid.UUID, fileID string, chapterNumber int) error {
	j, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	done := map[string]int{fileID: chapterNumber}
	for k, v := range j.DoneFiles {
		done[k] = v
	}
	j.DoneFiles = done
	return nil
}

// FinishJob không ghi đè done_files, giống UPDATE trong postgres
func (f *fakeRepo) FinishJob(_ context.Context, job *model.ImportJob) error {
	cp := *job
	if existing, ok := f.jobs[job.ID]; ok {
		cp.DoneFiles = existing.DoneFiles
	}
	f.jobs[job.ID] = &cp
	return nil
}

type fakeOAuth struct {
	exchangeErr error
}

func (fakeOAuth) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f fakeOAuth) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh"}, nil
}

type fakeDrive struct {
	docs    map[string]string // file id -> html
	failing map[string]bool
}

func (d *fakeDrive) ListFiles(_ context.Context, folderID string) ([]gdrive.File, error) {
	var out []gdrive.File
	for id := range d.docs {
		out = append(out, gdrive.File{ID: id, Name: "Doc " + id, MimeType: gdrive.MimeGoogleDoc})
	}
	return out, nil
}

func (d *fakeDrive) ExportHTML(_ context.Context, fileID string) (string, string, error) {
	if d.failing[fileID] {
		return "", "", fmt.Errorf("export %s: 403", fileID)
	}
	html, ok := d.docs[fileID]
	if !ok {
		return "", "", fmt.Errorf("file %s not found", fileID)
	}
	return "Chapter " + fileID, html, nil
}

type fakeFactory struct {
	drive     *fakeDrive
	refreshed *oauth2.Token
}

func (f *fakeFactory) ForToken(_ context.Context, _ *oauth2.Token, onRefresh func(*oauth2.Token) error) (DriveClient, error) {
	if f.refreshed != nil {
		if err := onRefresh(f.refreshed); err != nil {
			return nil, err
		}
	}
	return f.drive, nil
}

type fakeNovels struct {
	novels map[uuid.UUID]*novelmodel.Novel
}

func (f *fakeNovels) FindByID(_ context.Context, id uuid.UUID) (*novelmodel.Novel, error) {
	n, ok := f.novels[id]
	if !ok {
		return nil, novelmodel.NewNovelNotFoundError()
	}
	return n, nil
}

type fakeChapters struct {
	next     int
	created  []chaptermodel.CreateChapterRequest
	rejectNo map[int]bool
	actors   []shared.Actor
}

func (f *fakeChapters) Create(_ context.Context, actor shared.Actor, _ string, req chaptermodel.CreateChapterRequest) (*chaptermodel.ChapterResponse, error) {
	if f.rejectNo[req.ChapterNumber] {
		return nil, chaptermodel.ErrNumberExists
	}
	f.created = append(f.created, req)
	f.actors = append(f.actors, actor)
	return &chaptermodel.ChapterResponse{}, nil
}

func (f *fakeChapters) NextNumber(context.Context, uuid.UUID) (int, error) {
	return f.next, nil
}

type fakeQueue struct {
	tasks []shared.DriveImportPayload
	err   error
}

func (q *fakeQueue) Enqueue(_ context.Context, taskType string, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	if taskType == shared.TypeDriveImport {
		q.tasks = append(q.tasks, payload.(shared.DriveImportPayload))
	}
	return nil
}

// =====================================================
// FIXTURE
// =====================================================

type fixture struct {
	svc      ServiceInterface
	repo     *fakeRepo
	drive    *fakeDrive
	factory  *fakeFactory
	chapters *fakeChapters
	queue    *fakeQueue
	jwt      *jwt.Manager
	author   uuid.UUID
	novel    *novelmodel.Novel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	author := uuid.New()
	novel := &novelmodel.Novel{ID: uuid.New(), AuthorID: author, Title: "Frieren", Slug: "frieren"}

	f := &fixture{
		repo: newFakeRepo(),
		drive: &fakeDrive{
			docs: map[string]string{
				"a": "<p>Mở đầu</p>",
				"b": "<p>Hành trình</p>",
				"c": "<p>Kết thúc</p>",
			},
			failing: map[string]bool{},
		},
		chapters: &fakeChapters{next: 4, rejectNo: map[int]bool{}},
		queue:    &fakeQueue{},
		jwt:      jwt.NewManager("test-secret", time.Minute, time.Hour),
		author:   author,
		novel:    novel,
	}
	f.factory = &fakeFactory{drive: f.drive}
	f.svc = NewDriveService(f.repo, fakeOAuth{}, f.jwt, f.factory,
		&fakeNovels{novels: map[uuid.UUID]*novelmodel.Novel{novel.ID: novel}},
		f.chapters, f.queue, 2)
	return f
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	require.NoError(t, f.repo.SaveToken(context.Background(), f.author, &oauth2.Token{AccessToken: "x"}))
}

func (f *fixture) actor() shared.Actor {
	return shared.Actor{ID: f.author, Role: "author"}
}

func codeOf(err error) string {
	var de *model.DriveError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// =====================================================
// CONNECT
// =====================================================

func TestDriveService_ConnectFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.AuthURL(ctx, f.author)
	require.NoError(t, err)
	require.Contains(t, resp.URL, "state=")
	state := resp.URL[len("https://accounts.example.com/auth?state="):]

	profileID, err := f.svc.Callback(ctx, model.CallbackRequest{Code: "abc", State: state})
	require.NoError(t, err)
	assert.Equal(t, f.author, profileID)

	status, err := f.svc.Status(ctx, f.author)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "access-abc", f.repo.conns[f.author].Token.AccessToken)

	require.NoError(t, f.svc.Disconnect(ctx, f.author))
	status, err = f.svc.Status(ctx, f.author)
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestDriveService_CallbackRejectsBadState(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Callback(context.Background(), model.CallbackRequest{Code: "abc", State: "garbage"})
	assert.Equal(t, model.ErrCodeInvalidState, codeOf(err))

	// access token không được dùng làm state
	access, err := f.jwt.GenerateAccessToken(f.author.String(), "frieren", "author")
	require.NoError(t, err)
	_, err = f.svc.Callback(context.Background(), model.CallbackRequest{Code: "abc", State: access})
	assert.Equal(t, model.ErrCodeInvalidState, codeOf(err))
}

func TestDriveService_CallbackConsentDeniedOrExchangeFails(t *testing.T) {
	f := newFixture(t)
	state, err := f.jwt.GenerateStateToken(f.author.String())
	require.NoError(t, err)

	_, err = f.svc.Callback(context.Background(), model.CallbackRequest{State: state, Error: "access_denied"})
	assert.Equal(t, model.ErrCodeExchange, codeOf(err))

	svc := NewDriveService(f.repo, fakeOAuth{exchangeErr: errors.New("invalid_grant")}, f.jwt, f.factory,
		&fakeNovels{}, f.chapters, f.queue, 1)
	_, err = svc.Callback(context.Background(), model.CallbackRequest{Code: "abc", State: state})
	assert.Equal(t, model.ErrCodeExchange, codeOf(err))
	assert.Empty(t, f.repo.conns)
}

func TestDriveService_ListFilesPersistsRefreshedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListFiles(ctx, f.author, model.ListFilesRequest{})
	assert.Equal(t, model.ErrCodeNotConnected, codeOf(err))

	f.connect(t)
	f.factory.refreshed = &oauth2.Token{AccessToken: "fresh"}

	files, err := f.svc.ListFiles(ctx, f.author, model.ListFilesRequest{FolderID: " root "})
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Equal(t, "fresh", f.repo.conns[f.author].Token.AccessToken)
}

// =====================================================
// START IMPORT
// =====================================================

func TestDriveService_StartImport(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	resp, err := f.svc.StartImport(context.Background(), f.actor(), model.StartImportRequest{
		NovelID: f.novel.ID,
		FileIDs: []string{"a", "b", "a", " "},
		Coins:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobPending, resp.Status)
	assert.Equal(t, 2, resp.FileCount)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, resp.ID.String(), f.queue.tasks[0].JobID)
}

func TestDriveService_StartImportRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := model.StartImportRequest{NovelID: f.novel.ID, FileIDs: []string{"a"}}

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.StartImport(ctx, f.actor(), model.StartImportRequest{FileIDs: []string{"a"}})
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs, "novel_id")
	})

	t.Run("not connected", func(t *testing.T) {
		_, err := f.svc.StartImport(ctx, f.actor(), req)
		assert.Equal(t, model.ErrCodeNotConnected, codeOf(err))
	})

	t.Run("novel missing", func(t *testing.T) {
		_, err := f.svc.StartImport(ctx, f.actor(), model.StartImportRequest{NovelID: uuid.New(), FileIDs: []string{"a"}})
		assert.Equal(t, model.ErrCodeNovelNotFound, codeOf(err))
	})

	t.Run("not the author", func(t *testing.T) {
		other := shared.Actor{ID: uuid.New(), Role: "admin"}
		_, err := f.svc.StartImport(ctx, other, req)
		assert.Equal(t, model.ErrCodeForbidden, codeOf(err))
	})

	assert.Empty(t, f.queue.tasks)
}

func TestDriveService_StartImportEnqueueFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.queue.err = errors.New("redis down")

	_, err := f.svc.StartImport(context.Background(), f.actor(), model.StartImportRequest{NovelID: f.novel.ID, FileIDs: []string{"a"}})
	require.Error(t, err)

	require.Len(t, f.repo.jobs, 1)
	for _, j := range f.repo.jobs {
		assert.Equal(t, model.JobFailed, j.Status)
	}
}

func TestDriveService_GetJobHidesOtherProfiles(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()

	resp, err := f.svc.StartImport(ctx, f.actor(), model.StartImportRequest{NovelID: f.novel.ID, FileIDs: []string{"a"}})
	require.NoError(t, err)

	_, err = f.svc.GetJob(ctx, shared.Actor{ID: uuid.New(), Role: "reader"}, resp.ID)
	assert.Equal(t, model.ErrCodeJobNotFound, codeOf(err))

	got, err := f.svc.GetJob(ctx, shared.Actor{ID: uuid.New(), Role: "admin"}, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	jobs, err := f.svc.ListJobs(ctx, f.author)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

// =====================================================
// RUN IMPORT
// =====================================================

func (f *fixture) queued(t *testing.T, req model.StartImportRequest) uuid.UUID {
	t.Helper()
	req.NovelID = f.novel.ID
	resp, err := f.svc.StartImport(context.Background(), f.actor(), req)
	require.NoError(t, err)
	return resp.ID
}

func TestDriveService_RunImportCreatesChaptersInOrder(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	publishAt := time.Now().Add(24 * time.Hour)
	jobID := f.queued(t, model.StartImportRequest{FileIDs: []string{"c", "a", "b"}, Coins: 3, PublishAt: &publishAt})

	results, err := f.svc.RunImport(context.Background(), jobID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// số chapter tiếp nối từ NextNumber, theo thứ tự file_ids
	require.Len(t, f.chapters.created, 3)
	assert.Equal(t, 4, f.chapters.created[0].ChapterNumber)
	assert.Equal(t, "Chapter c", f.chapters.created[0].Title)
	assert.Contains(t, f.chapters.created[0].Content, "Kết thúc")
	assert.Equal(t, 6, f.chapters.created[2].ChapterNumber)
	assert.Equal(t, "Chapter b", f.chapters.created[2].Title)
	for _, req := range f.chapters.created {
		assert.Equal(t, int64(3), req.Coins)
		assert.Equal(t, &publishAt, req.PublishAt)
	}
	assert.Equal(t, f.author, f.chapters.actors[0].ID)

	job := f.repo.jobs[jobID]
	assert.Equal(t, model.JobDone, job.Status)
	assert.Equal(t, 3, job.Imported)
	assert.Zero(t, job.Failed)
}

func TestDriveService_RunImportPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.drive.failing["b"] = true
	jobID := f.queued(t, model.StartImportRequest{FileIDs: []string{"a", "b", "c"}, StartingChapter: 10})

	results, err := f.svc.RunImport(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, 10, results[0].ChapterNumber)
	assert.NotEmpty(t, results[1].Error)
	// file lỗi không chiếm số chapter
	assert.Equal(t, 11, results[2].ChapterNumber)

	job := f.repo.jobs[jobID]
	assert.Equal(t, model.JobDone, job.Status)
	assert.Equal(t, 2, job.Imported)
	assert.Equal(t, 1, job.Failed)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "b:")
}

func TestDriveService_RunImportAllFailedAndRerun(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.chapters.rejectNo[1] = true
	jobID := f.queued(t, model.StartImportRequest{FileIDs: []string{"a"}, StartingChapter: 1})

	_, err := f.svc.RunImport(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobFailed, f.repo.jobs[jobID].Status)

	// job đã kết thúc thì retry không làm gì
	results, err := f.svc.RunImport(context.Background(), jobID)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, f.chapters.created)
}

func TestDriveService_RunImportWithoutConnectionFailsJob(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	jobID := f.queued(t, model.StartImportRequest{FileIDs: []string{"a", "b"}})
	require.NoError(t, f.svc.Disconnect(context.Background(), f.author))

	_, err := f.svc.RunImport(context.Background(), jobID)
	assert.Equal(t, model.ErrCodeNotConnected, codeOf(err))

	job := f.repo.jobs[jobID]
	assert.Equal(t, model.JobFailed, job.Status)
	assert.Equal(t, 2, job.Failed)
}

func TestDriveService_RunImportRedeliveredSkipsDoneFiles(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	jobID := f.queued(t, model.StartImportRequest{FileIDs: []string{"a", "b", "c"}})

	// lần chạy trước đã tạo chapter 4 cho "a" rồi worker chết
	f.repo.jobs[jobID].Status = model.JobRunning
	f.repo.jobs[jobID].DoneFiles = map[string]int{"a": 4}
	f.drive.failing["a"] = true

	results, err := f.svc.RunImport(context.Background(), jobID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Len(t, f.chapters.created, 2)
	assert.Equal(t, 5, f.chapters.created[0].ChapterNumber)
	assert.Equal(t, "Chapter b", f.chapters.created[0].Title)
	assert.Equal(t, 6, f.chapters.created[1].ChapterNumber)

	assert.Equal(t, 4, results[0].ChapterNumber)
	assert.Empty(t, results[0].Error)

	job := f.repo.jobs[jobID]
	assert.Equal(t, model.JobDone, job.Status)
	assert.Equal(t, 3, job.Imported)
	assert.Zero(t, job.Failed)
	assert.Equal(t, map[string]int{"a": 4, "b": 5, "c": 6}, job.DoneFiles)
}
