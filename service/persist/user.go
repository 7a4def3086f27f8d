package persist

import (
	"context"
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleBan   Role = "ban"
)

// User is a user row as read by this service. Credential columns are never selected.
type User struct {
	ID          DBID      `json:"id"`
	UserAccount string    `json:"userAccount"`
	UserName    string    `json:"userName"`
	UserAvatar  string    `json:"userAvatar"`
	UserProfile string    `json:"userProfile"`
	UserRole    Role      `json:"userRole"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a user attached to comments and notifications
type UserSummary struct {
	ID          DBID      `json:"id"`
	UserAccount string    `json:"userAccount"`
	UserName    string    `json:"userName"`
	UserAvatar  string    `json:"userAvatar"`
	UserProfile string    `json:"userProfile"`
	UserRole    Role      `json:"userRole"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		UserAccount: u.UserAccount,
		UserName:    u.UserName,
		UserAvatar:  u.UserAvatar,
		UserProfile: u.UserProfile,
		UserRole:    u.UserRole,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type UserRepository interface {
	GetByID(ctx context.Context, userID DBID) (User, error)
	GetByIDs(ctx context.Context, userIDs []DBID) ([]User, error)
}

type ErrUserNotFound struct {
	UserID DBID
}

func (e ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found by id: %s", e.UserID)
}
