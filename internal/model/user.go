package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// CanWrite reports whether the role may create, update or delete records.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username" validate:"required,min=3,max=50"`
	Name         string    `db:"name" validate:"max=100"`
	Role         Role      `db:"role" validate:"required,oneof=admin operator viewer"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
