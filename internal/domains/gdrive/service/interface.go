package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	chaptermodel "novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/gdrive/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/infrastructure/gdrive"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/jwt"
)

type ServiceInterface interface {
	AuthURL(ctx context.Context, profileID uuid.UUID) (*model.AuthURLResponse, error)
	// Callback đổi code lấy token; trả về profile đã connect
	Callback(ctx context.Context, req model.CallbackRequest) (uuid.UUID, error)
	Status(ctx context.Context, profileID uuid.UUID) (*model.ConnectionStatus, error)
	Disconnect(ctx context.Context, profileID uuid.UUID) error

	ListFiles(ctx context.Context, profileID uuid.UUID, req model.ListFilesRequest) ([]gdrive.File, error)

	StartImport(ctx context.Context, actor shared.Actor, req model.StartImportRequest) (*model.ImportJobResponse, error)
	GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*model.ImportJobResponse, error)
	ListJobs(ctx context.Context, profileID uuid.UUID) ([]model.ImportJobResponse, error)

	// RunImport được worker gọi
	RunImport(ctx context.Context, jobID uuid.UUID) ([]model.FileResult, error)
}

// =====================================================
// DEPENDENCIES
// =====================================================

// OAuthConfig - *oauth2.Config
type OAuthConfig interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// StateSigner - *jwt.Manager
type StateSigner interface {
	GenerateStateToken(userID string) (string, error)
	ValidateStateToken(token string) (*jwt.Claims, error)
}

// DriveClient - *gdrive.Client
type DriveClient interface {
	ListFiles(ctx context.Context, folderID string) ([]gdrive.File, error)
	ExportHTML(ctx context.Context, fileID string) (name string, html string, err error)
}

// DriveFactory tạo client theo token của user; onRefresh nhận token mới sau refresh
type DriveFactory interface {
	ForToken(ctx context.Context, tok *oauth2.Token, onRefresh func(*oauth2.Token) error) (DriveClient, error)
}

type NovelFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*novelmodel.Novel, error)
}

// ChapterCreator - chapter service
type ChapterCreator interface {
	Create(ctx context.Context, actor shared.Actor, novelSlug string, req chaptermodel.CreateChapterRequest) (*chaptermodel.ChapterResponse, error)
	NextNumber(ctx context.Context, novelID uuid.UUID) (int, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}

// =====================================================
// DRIVE FACTORY
// =====================================================

type driveFactory struct {
	cfg *oauth2.Config
}

func NewDriveFactory(cfg *oauth2.Config) DriveFactory {
	return &driveFactory{cfg: cfg}
}

func (f *driveFactory) ForToken(ctx context.Context, tok *oauth2.Token, onRefresh func(*oauth2.Token) error) (DriveClient, error) {
	c, err := gdrive.NewClientForToken(ctx, f.cfg, tok, onRefresh)
	if err != nil {
		return nil, err
	}
	return c, nil
}
