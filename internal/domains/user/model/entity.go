package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// CanPublish - author và admin được tạo novel
func (r Role) CanPublish() bool {
	return r == RoleAuthor || r == RoleAdmin
}

// Profile là tài khoản người dùng, đồng thời giữ số dư coin
type Profile struct {
	ID                uuid.UUID
	Email             string
	Username          string
	DisplayName       string
	PasswordHash      string
	Role              Role
	Coins             int64
	AvatarURL         *string
	Bio               string
	KofiUsername      *string
	SubscriptionPrice int64
	SubscriptionTier  string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *Profile) ToResponse() ProfileResponse {
	return ProfileResponse{
		ID:                p.ID,
		Email:             p.Email,
		Username:          p.Username,
		DisplayName:       p.DisplayName,
		Role:              p.Role,
		Coins:             p.Coins,
		AvatarURL:         p.AvatarURL,
		Bio:               p.Bio,
		KofiUsername:      p.KofiUsername,
		SubscriptionPrice: p.SubscriptionPrice,
		SubscriptionTier:  p.SubscriptionTier,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
	}
}

// ToPublic ẩn email, số dư coin
func (p *Profile) ToPublic() PublicProfileResponse {
	return PublicProfileResponse{
		ID:                p.ID,
		Username:          p.Username,
		DisplayName:       p.DisplayName,
		Role:              p.Role,
		AvatarURL:         p.AvatarURL,
		Bio:               p.Bio,
		SubscriptionPrice: p.SubscriptionPrice,
		SubscriptionTier:  p.SubscriptionTier,
		CreatedAt:         p.CreatedAt,
	}
}
