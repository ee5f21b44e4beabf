package service

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/user/model"
	"novelhub-backend/pkg/jwt"
)

// ServiceInterface định nghĩa business logic layer contract
type ServiceInterface interface {
	// Authentication
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.AuthResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.ProfileResponse, error)
	GetPublicProfile(ctx context.Context, username string) (*model.PublicProfileResponse, error)
	BecomeAuthor(ctx context.Context, userID uuid.UUID) (*model.AuthResponse, error)

	// Admin
	ListUsers(ctx context.Context, req model.ListUsersRequest) (*model.ListUsersResponse, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role model.Role) error
	UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) error
}

// ReadingTimeCreator tạo dòng reading_times cho profile mới
type ReadingTimeCreator interface {
	CreateReadingTime(ctx context.Context, profileID uuid.UUID) error
}

// TokenIssuer - *jwt.Manager
type TokenIssuer interface {
	GenerateAccessToken(userID, username, role string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
}
