package auth

import (
	"context"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated principal carried through the request context.
// Roles are the assigned role names; the effective permission set is always
// resolved through rbac.Resolver, never read off this struct.
type User struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	IsActive bool     `json:"is_active"`
	Roles    []string `json:"roles,omitempty"`
}

// Principal reduces the user to the identity slice permission checks need.
func (u *User) Principal() rbac.Principal {
	return rbac.Principal{ID: u.ID, IsActive: u.IsActive}
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
