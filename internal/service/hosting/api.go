package hosting

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hostbr/deploybot/internal/domain"
)

// API is the hosting provider boundary. One implementation talks to the
// real service, the other simulates it when no credential is configured.
type API interface {
	// CreateApp uploads the artifact and manifest files and returns the
	// created application.
	CreateApp(ctx context.Context, artifactPath, manifestPath string) (domain.Application, error)
	AppStatus(ctx context.Context, appID string) (domain.AppStatus, error)
	DeleteApp(ctx context.Context, appID string) error
	ListApps(ctx context.Context) ([]domain.AppStatus, error)
	AppLogs(ctx context.Context, appID string) (domain.AppLogs, error)
	RestartApp(ctx context.Context, appID string) error
}

// ErrAppNotFound is returned when the provider does not know the app id.
var ErrAppNotFound = errors.New("application not found")

// api keys that ship in example env files and must be treated as unset.
var placeholderKeys = map[string]struct{}{
	"sua_api_key_square_cloud": {},
	"SQUARECLOUD_API_KEY":      {},
}

// KeyConfigured reports whether the hosting credential looks usable.
func KeyConfigured(key string) bool {
	key = strings.TrimSpace(key)
	if len(key) <= 10 {
		return false
	}
	_, placeholder := placeholderKeys[key]
	return !placeholder
}

// New selects the provider implementation once at startup.
func New(apiKey string, logger *slog.Logger) API {
	if !KeyConfigured(apiKey) {
		logger.Warn("hosting provider credential missing, running in simulated mode")
		return NewSimulatedAPI(logger)
	}
	return NewSquareCloud(apiKey, logger)
}
