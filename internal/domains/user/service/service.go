package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"novelhub-backend/internal/domains/user/model"
	"novelhub-backend/internal/domains/user/repository"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

type userService struct {
	repo         repository.Repository
	tokens       TokenIssuer
	readingTimes ReadingTimeCreator
	accessTTL    time.Duration
	bcryptCost   int
	now          func() time.Time
}

func NewUserService(
	repo repository.Repository,
	tokens TokenIssuer,
	readingTimes ReadingTimeCreator,
	accessTTL time.Duration,
) ServiceInterface {
	return &userService{
		repo:         repo,
		tokens:       tokens,
		readingTimes: readingTimes,
		accessTTL:    accessTTL,
		bcryptCost:   12,
		now:          time.Now,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Step 3: Create profile (coins = 0, role = user)
	now := s.now()
	p := &model.Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		DisplayName:  req.Username,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		Coins:        0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, model.FromRepoError(err)
	}

	// Step 4: Reading-time row; lỗi chỉ log, đăng ký vẫn thành công
	if s.readingTimes != nil {
		if err := s.readingTimes.CreateReadingTime(ctx, p.ID); err != nil {
			logger.ErrorWithFields("create reading time row failed", err, map[string]interface{}{
				"profile_id": p.ID.String(),
			})
		}
	}

	logger.Info("profile registered", map[string]interface{}{"profile_id": p.ID.String(), "username": p.Username})

	// Step 5: Issue tokens
	return s.issueTokens(p)
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("find by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	// Check status sau khi verify password để không lộ trạng thái tài khoản
	if !p.IsActive {
		return nil, model.NewUserInactiveError()
	}

	return s.issueTokens(p)
}

func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.NewInvalidTokenError(err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.NewInvalidTokenError(err)
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewInvalidTokenError(err)
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, model.NewUserInactiveError()
	}

	return s.issueTokens(p)
}

func (s *userService) issueTokens(p *model.Profile) (*model.AuthResponse, error) {
	access, err := s.tokens.GenerateAccessToken(p.ID.String(), p.Username, string(p.Role))
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL),
		Profile:      p.ToResponse(),
	}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.FromRepoError(err)
	}
	resp := p.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.FromRepoError(err)
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		p.AvatarURL = emptyToNil(*req.AvatarURL)
	}
	if req.KofiUsername != nil {
		p.KofiUsername = emptyToNil(*req.KofiUsername)
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, model.FromRepoError(err)
	}

	resp := p.ToResponse()
	return &resp, nil
}

func (s *userService) GetPublicProfile(ctx context.Context, username string) (*model.PublicProfileResponse, error) {
	p, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.FromRepoError(err)
	}
	if !p.IsActive {
		return nil, model.NewUserNotFoundError()
	}
	resp := p.ToPublic()
	return &resp, nil
}

// BecomeAuthor nâng role user → author; trả token mới vì role nằm trong JWT
func (s *userService) BecomeAuthor(ctx context.Context, userID uuid.UUID) (*model.AuthResponse, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.FromRepoError(err)
	}

	if p.Role == model.RoleUser {
		if err := s.repo.UpdateRole(ctx, p.ID, model.RoleAuthor); err != nil {
			return nil, model.FromRepoError(err)
		}
		p.Role = model.RoleAuthor
		logger.Info("profile became author", map[string]interface{}{"profile_id": p.ID.String()})
	}

	return s.issueTokens(p)
}

// ========================================
// ADMIN
// ========================================

func (s *userService) ListUsers(ctx context.Context, req model.ListUsersRequest) (*model.ListUsersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Page, req.Limit, _ = utils.NormalizePage(req.Page, req.Limit)

	profiles, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	users := make([]model.ProfileResponse, len(profiles))
	for i := range profiles {
		users[i] = profiles[i].ToResponse()
	}
	return &model.ListUsersResponse{Users: users, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (s *userService) UpdateRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	if !role.IsValid() {
		return &model.UserError{Code: model.ErrCodeInvalidRole, Message: "Invalid role", Err: model.ErrInvalidRole}
	}
	return model.FromRepoError(s.repo.UpdateRole(ctx, userID, role))
}

func (s *userService) UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) error {
	return model.FromRepoError(s.repo.UpdateStatus(ctx, userID, isActive))
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
