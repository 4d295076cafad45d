package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restopos/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims are the claims carried by access tokens
type JWTCustomClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWTPayload checks the claims a token must carry
func ParseJWTPayload(claims *JWTCustomClaims) (*JWTCustomClaims, error) {
	if claims.UserID == uuid.Nil {
		return nil, errors.New("missing user_id claim")
	}
	if claims.TenantID == uuid.Nil {
		return nil, errors.New("missing tenant_id claim")
	}
	if claims.Role == "" {
		return nil, errors.New("missing role claim")
	}
	return claims, nil
}

// JWTConfig validates HS256 tokens signed with secret and copies the user,
// tenant and role claims into the request context.
func JWTConfig(secret string) echojwt.Config {
	cfg := baseConfig()
	cfg.SigningKey = []byte(secret)
	cfg.SigningMethod = jwt.SigningMethodHS256.Alg()
	return cfg
}

// KeyfuncConfig validates tokens against the keys supplied by keyFunc,
// typically a JWKS published by an external identity provider
func KeyfuncConfig(keyFunc jwt.Keyfunc) echojwt.Config {
	cfg := baseConfig()
	cfg.KeyFunc = keyFunc
	return cfg
}

func baseConfig() echojwt.Config {
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), claims)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// JWTMiddleware rejects requests without a valid token or without the
// identity claims the handlers rely on
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return Authenticate(JWTConfig(secret))
}

// Authenticate applies cfg and then checks the identity claims
func Authenticate(cfg echojwt.Config) echo.MiddlewareFunc {
	validate := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}
			if _, err := ParseJWTPayload(claims); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			return next(c)
		}
	}
	auth := echojwt.WithConfig(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(validate(next))
	}
}

// WithIdentity stores the caller's identity in ctx
func WithIdentity(ctx context.Context, claims *JWTCustomClaims) context.Context {
	ctx = context.WithValue(ctx, common.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
	return context.WithValue(ctx, common.RoleKey, claims.Role)
}

// IssueToken signs an access token for the given identity
func IssueToken(secret string, userID, tenantID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
