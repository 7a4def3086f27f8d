package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/service/persist"
)

type TokenType string

const (
	TokenTypeAuth TokenType = "auth"
)

const issuer = "gdblog"

type BlogClaims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthTokenClaims struct {
	UserID persist.DBID `json:"user_id"`
	Role   persist.Role `json:"role"`
	BlogClaims
}

func GenerateAuthToken(ctx context.Context, userID persist.DBID, role persist.Role) (string, error) {
	secret := env.GetString("AUTH_JWT_SECRET")
	validFor := time.Duration(env.GetInt64("AUTH_JWT_TTL")) * time.Second

	claims := AuthTokenClaims{
		UserID:     userID,
		Role:       role,
		BlogClaims: newBlogClaims(TokenTypeAuth, validFor),
	}

	return generateJWT(claims, secret)
}

func ParseAuthToken(ctx context.Context, token string) (AuthTokenClaims, error) {
	claims := AuthTokenClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, &claims, keyFunc(env.GetString("AUTH_JWT_SECRET")))

	if err != nil || !parsedToken.Valid || claims.TokenType != TokenTypeAuth || !claims.UserID.IsValid() {
		return AuthTokenClaims{}, ErrInvalidJWT
	}

	return claims, nil
}

func newBlogClaims(tokenType TokenType, validFor time.Duration) BlogClaims {
	claims := BlogClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validFor)),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	return claims
}

func generateJWT(claims jwt.Claims, jwtSecret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	jwtToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", err
	}

	return jwtToken, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidJWT
		}
		return []byte(secret), nil
	}
}
