package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// =====================================================
// AUTH REQUESTS
// =====================================================

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 32).Error("username must be 3-32 characters"),
			validation.Match(usernamePattern).Error("username may only contain letters, numbers and underscores"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// AuthResponse - JWT tokens + profile
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Profile      ProfileResponse `json:"profile"`
}

// =====================================================
// PROFILE
// =====================================================

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	Bio          *string `json:"bio"`
	AvatarURL    *string `json:"avatar_url"`
	KofiUsername *string `json:"kofi_username"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.AvatarURL, validation.Length(0, 500), is.URL),
		validation.Field(&r.KofiUsername, validation.Length(0, 64), validation.Match(usernamePattern)),
	)
}

type ProfileResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	Role              Role      `json:"role"`
	Coins             int64     `json:"coins"`
	AvatarURL         *string   `json:"avatar_url,omitempty"`
	Bio               string    `json:"bio"`
	KofiUsername      *string   `json:"kofi_username,omitempty"`
	SubscriptionPrice int64     `json:"subscription_price"`
	SubscriptionTier  string    `json:"subscription_tier,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

type PublicProfileResponse struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	Role              Role      `json:"role"`
	AvatarURL         *string   `json:"avatar_url,omitempty"`
	Bio               string    `json:"bio"`
	SubscriptionPrice int64     `json:"subscription_price"`
	SubscriptionTier  string    `json:"subscription_tier,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// =====================================================
// ADMIN
// =====================================================

type ListUsersRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Role   string `form:"role"`
	Search string `form:"search"`
}

func (r ListUsersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.In("user", "author", "admin")),
		validation.Field(&r.Search, validation.Length(0, 100)),
	)
}

type ListUsersResponse struct {
	Users []ProfileResponse `json:"users"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(RoleUser, RoleAuthor, RoleAdmin)),
	)
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil.Error("is_active is required")),
	)
}
