package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
)

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func GenerateToken(cfg *config.AuthConfig, userID, role string) (string, error) {
	now := time.Now()
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ParseToken(cfg *config.AuthConfig, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuthentication, err, "invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperr.Authentication("invalid token")
	}
	return claims, nil
}

// Authenticate resolves an "Authorization: Bearer <token>" header value.
func Authenticate(cfg *config.AuthConfig, header string) (Identity, error) {
	tokenStr, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || tokenStr == "" {
		return Identity{}, apperr.Authentication("not authorized, no token")
	}
	claims, err := ParseToken(cfg, strings.TrimSpace(tokenStr))
	if err != nil {
		return Identity{}, err
	}
	role := claims.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return Identity{UserID: claims.UserID, Role: role}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
