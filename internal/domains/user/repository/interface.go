package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/user/model"
)

// Repository định nghĩa contract cho data access layer của profiles
type Repository interface {
	// Create - ErrEmailExists / ErrUsernameExists khi trùng
	Create(ctx context.Context, p *model.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	FindByUsername(ctx context.Context, username string) (*model.Profile, error)
	// FindByKofiUsername so khớp không phân biệt hoa thường
	FindByKofiUsername(ctx context.Context, kofiUsername string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error

	// Admin
	List(ctx context.Context, req model.ListUsersRequest) ([]model.Profile, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
}
