package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gdblog/go-blog/debugtools"
	"github.com/gdblog/go-blog/service/auth"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/util"
)

const identityContextKey = "auth.identity"

// Authenticate resolves the caller's identity from a bearer token, or from the debug header in
// debug builds, and attaches it to the context. Anonymous requests pass through.
func Authenticate(users persist.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := debugtools.UserIDFromHeader(c.GetHeader(debugtools.DebugUserHeader))

		if !ok {
			token := bearerToken(c.GetHeader("Authorization"))
			if token == "" {
				c.Next()
				return
			}

			claims, err := auth.ParseAuthToken(c, token)
			if err != nil {
				util.ErrResponse(c, http.StatusUnauthorized, err)
				return
			}
			userID = claims.UserID
		}

		role, err := auth.RoleByUserID(c, users, userID)
		if err != nil {
			if _, ok := err.(persist.ErrUserNotFound); ok {
				util.ErrResponse(c, http.StatusUnauthorized, auth.ErrNoIdentity)
				return
			}
			logger.For(c).Errorf("failed to look up role for user %s: %s", userID, err)
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		SetIdentity(c, auth.Identity{UserID: userID, Role: role})
		logger.NewContextWithFields(c, logrus.Fields{"userId": userID})

		c.Next()
	}
}

// AuthRequired rejects anonymous and banned callers
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFor(c)

		if !identity.IsAuthenticated() {
			util.ErrResponse(c, http.StatusUnauthorized, auth.ErrNoIdentity)
			return
		}

		if identity.IsBanned() {
			util.ErrResponse(c, http.StatusForbidden, auth.ErrUserBanned)
			return
		}

		c.Next()
	}
}

func SetIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(identityContextKey, identity)
}

// IdentityFor returns the caller's identity, or the zero identity for anonymous requests
func IdentityFor(c *gin.Context) auth.Identity {
	if identity, ok := c.Value(identityContextKey).(auth.Identity); ok {
		return identity
	}
	return auth.Identity{}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
