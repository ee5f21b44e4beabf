package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/infrastructure/storage"
	"novelhub-backend/pkg/logger"
)

// CoverVariant là variant được dùng làm cover_url sau khi xử lý xong
const CoverVariant = "large"

type ServiceInterface interface {
	// ProcessCover tạo các variant từ ảnh gốc rồi trỏ cover_url sang variant lớn
	ProcessCover(ctx context.Context, novelID uuid.UUID, originalKey string) error
	// DeleteNovelAssets xoá mọi object dưới covers/<novel_id>/
	DeleteNovelAssets(ctx context.Context, novelID uuid.UUID) error
}

// ObjectStore - *storage.MinIOStorage
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ImageResizer - *storage.ImageProcessor
type ImageResizer interface {
	ProcessImage(data []byte) (map[string][]byte, error)
}

type CoverSetter interface {
	SetCoverURL(ctx context.Context, id uuid.UUID, url string) error
}

type mediaService struct {
	store  ObjectStore
	images ImageResizer
	novels CoverSetter
}

func NewMediaService(store ObjectStore, images ImageResizer, novels CoverSetter) ServiceInterface {
	return &mediaService{store: store, images: images, novels: novels}
}

func coverPrefix(novelID uuid.UUID) string {
	return fmt.Sprintf("covers/%s/", novelID)
}

func (s *mediaService) ProcessCover(ctx context.Context, novelID uuid.UUID, originalKey string) error {
	// Step 1: Lấy ảnh gốc
	data, err := s.store.Download(ctx, originalKey)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	// Step 2: Resize
	variants, err := s.images.ProcessImage(data)
	if err != nil {
		return fmt.Errorf("process cover: %w", err)
	}

	// Step 3: Upload từng variant
	urls := make(map[string]string, len(variants))
	for name, body := range variants {
		key := coverPrefix(novelID) + name + ".jpg"
		url, err := s.store.Upload(ctx, key, body, "image/jpeg")
		if err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		urls[name] = url
	}

	url, ok := urls[CoverVariant]
	if !ok {
		return fmt.Errorf("variant %q missing (have %d)", CoverVariant, len(urls))
	}

	// Step 4: Trỏ cover_url sang variant
	if err := s.novels.SetCoverURL(ctx, novelID, url); err != nil {
		if errors.Is(err, novelmodel.ErrNovelNotFound) {
			// novel bị xoá trong lúc xử lý: dọn luôn file vừa upload
			logger.Warn("novel gone before cover processed", map[string]interface{}{"novel_id": novelID})
			return s.DeleteNovelAssets(ctx, novelID)
		}
		return fmt.Errorf("set cover url: %w", err)
	}

	logger.Info("cover processed", map[string]interface{}{"novel_id": novelID, "variants": len(urls)})
	return nil
}

func (s *mediaService) DeleteNovelAssets(ctx context.Context, novelID uuid.UUID) error {
	if err := s.store.DeleteByPrefix(ctx, coverPrefix(novelID)); err != nil {
		return fmt.Errorf("delete novel assets: %w", err)
	}
	return nil
}

var (
	_ ObjectStore  = (*storage.MinIOStorage)(nil)
	_ ImageResizer = (*storage.ImageProcessor)(nil)
)
