package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"novelhub-backend/internal/config"
)

const (
	MimeGoogleDoc = "application/vnd.google-apps.document"
	MimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeFolder    = "application/vnd.google-apps.folder"

	maxExportBytes = 10 << 20
)

// File là metadata tối thiểu của một file Drive có thể import
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mime_type"`
	ModifiedTime string `json:"modified_time"`
}

// NewOAuthConfig tạo oauth2 config cho flow "connect Google Drive"
// drive.file cần cho bản copy tạm khi convert .docx
func NewOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveReadonlyScope, drive.DriveFileScope},
	}
}

// Client bọc drive.Service
type Client struct {
	svc *drive.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListFiles liệt kê Google Docs và .docx trong folder (rỗng = toàn bộ Drive), sắp theo tên
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("trashed = false and (mimeType = '%s' or mimeType = '%s')", MimeGoogleDoc, MimeDocx)
	if folderID != "" {
		q = fmt.Sprintf("'%s' in parents and %s", escapeQuery(folderID), q)
	}

	var files []File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(q).
			OrderBy("name").
			PageSize(200).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive files: %w", err)
		}
		for _, f := range res.Files {
			files = append(files, File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ModifiedTime: f.ModifiedTime})
		}

		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

// ExportHTML trả về tên file và nội dung HTML.
// File .docx được copy (convert sang Google Doc), export, rồi xóa bản copy.
func (c *Client) ExportHTML(ctx context.Context, fileID string) (string, string, error) {
	meta, err := c.svc.Files.Get(fileID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("get drive file %s: %w", fileID, err)
	}

	exportID := meta.Id
	switch meta.MimeType {
	case MimeGoogleDoc:
	case MimeDocx:
		copied, err := c.svc.Files.Copy(fileID, &drive.File{
			Name:     meta.Name + " (import)",
			MimeType: MimeGoogleDoc,
		}).Fields("id").Context(ctx).Do()
		if err != nil {
			return "", "", fmt.Errorf("convert docx %s: %w", fileID, err)
		}
		exportID = copied.Id
		defer func() {
			// context riêng để vẫn dọn được khi ctx gốc đã bị cancel
			_ = c.svc.Files.Delete(copied.Id).Context(context.WithoutCancel(ctx)).Do()
		}()
	default:
		return "", "", fmt.Errorf("unsupported mime type %q for file %s", meta.MimeType, fileID)
	}

	resp, err := c.svc.Files.Export(exportID, "text/html").Context(ctx).Download()
	if err != nil {
		return "", "", fmt.Errorf("export drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes))
	if err != nil {
		return "", "", fmt.Errorf("read export %s: %w", fileID, err)
	}

	return strings.TrimSuffix(meta.Name, ".docx"), string(body), nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// =====================================================
// TOKEN PERSISTENCE
// =====================================================

// persistingSource gọi onRefresh mỗi khi access token thay đổi
type persistingSource struct {
	mu        sync.Mutex
	base      oauth2.TokenSource
	last      string
	onRefresh func(*oauth2.Token) error
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if s.onRefresh != nil {
			if err := s.onRefresh(tok); err != nil {
				return nil, fmt.Errorf("persist refreshed token: %w", err)
			}
		}
	}
	return tok, nil
}

// TokenSource bọc oauth2 TokenSource; token mới sau refresh được giao cho onRefresh
func TokenSource(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, onRefresh func(*oauth2.Token) error) oauth2.TokenSource {
	return &persistingSource{
		base:      cfg.TokenSource(ctx, tok),
		last:      tok.AccessToken,
		onRefresh: onRefresh,
	}
}

// NewClientForToken tạo Drive client dùng token của user
func NewClientForToken(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, onRefresh func(*oauth2.Token) error) (*Client, error) {
	ts := oauth2.ReuseTokenSource(tok, TokenSource(ctx, cfg, tok, onRefresh))
	return NewClient(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
}

