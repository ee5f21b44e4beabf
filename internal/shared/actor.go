package shared

import "github.com/google/uuid"

// Actor là người thực hiện request (đã đăng nhập)
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// CanManage - chủ sở hữu hoặc admin
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.ID == ownerID || a.IsAdmin()
}
