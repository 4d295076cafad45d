package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"go.uber.org/zap"
)

// NewJWKS loads the key set published at url. Keys are refreshed hourly, and
// at most every five minutes when a token names an unknown kid, until ctx
// is done.
func NewJWKS(ctx context.Context, url string, logger *zap.Logger) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to refresh JWKS", zap.String("url", url), zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	logger.Info("JWKS loaded", zap.String("url", url), zap.Int("keys", jwks.Len()))
	return jwks, nil
}
