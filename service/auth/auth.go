package auth

import (
	"errors"

	"github.com/gdblog/go-blog/service/persist"
)

var (
	// ErrInvalidJWT is returned when a token is malformed, expired or signed with the wrong key
	ErrInvalidJWT = errors.New("invalid or expired auth token")
	// ErrNoIdentity is returned when a request carries no usable identity
	ErrNoIdentity = errors.New("authentication required")
	// ErrUserBanned is returned for authenticated users whose role is ban
	ErrUserBanned = errors.New("user is banned")
)

// Identity is the caller an operation runs on behalf of
type Identity struct {
	UserID persist.DBID `json:"userId"`
	Role   persist.Role `json:"role"`
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID.IsValid()
}

func (i Identity) IsAdmin() bool {
	return i.Role == persist.RoleAdmin
}

func (i Identity) IsBanned() bool {
	return i.Role == persist.RoleBan
}

// CanModify reports whether the identity may change a resource owned by ownerID
func (i Identity) CanModify(ownerID persist.DBID) bool {
	if !i.IsAuthenticated() || i.IsBanned() {
		return false
	}
	return i.IsAdmin() || i.UserID == ownerID
}
