package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hostbr/deploybot/internal/domain"
)

// SimulatedAPI stands in for the hosting provider when no credential is
// configured. Created apps live in memory for the process lifetime.
type SimulatedAPI struct {
	logger *slog.Logger

	mu   sync.Mutex
	apps map[string]domain.Application
}

// NewSimulatedAPI returns an empty in-process hosting provider.
func NewSimulatedAPI(logger *slog.Logger) *SimulatedAPI {
	return &SimulatedAPI{logger: logger, apps: make(map[string]domain.Application)}
}

// CreateApp registers a fake application named after the manifest.
func (s *SimulatedAPI) CreateApp(_ context.Context, artifactPath, manifestPath string) (domain.Application, error) {
	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		return domain.Application{}, fmt.Errorf("read manifest: %w", err)
	}
	name := manifestValue(string(manifest), "DISPLAY_NAME")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(artifactPath), ".zip")
	}

	id := "demo-" + uuid.NewString()[:8]
	app := domain.Application{
		ID:          id,
		Name:        name,
		Tag:         name,
		URL:         fmt.Sprintf("https://%s.squarecloud.app", id),
		Description: manifestValue(string(manifest), "DESCRIPTION"),
	}

	s.mu.Lock()
	s.apps[id] = app
	s.mu.Unlock()

	s.logger.Info("simulated application created", "app_id", id, "name", name)
	return app, nil
}

// AppStatus returns a canned healthy snapshot.
func (s *SimulatedAPI) AppStatus(_ context.Context, appID string) (domain.AppStatus, error) {
	s.mu.Lock()
	app, ok := s.apps[appID]
	s.mu.Unlock()

	name := "App " + appID
	if ok {
		name = app.Name
	}
	return domain.AppStatus{
		ID:           appID,
		Name:         name,
		Status:       "running",
		Running:      true,
		MemoryUsedMB: 256,
		MemoryMB:     512,
		CPUPercent:   15,
		Uptime:       "2h 30m",
		URL:          fmt.Sprintf("https://%s.squarecloud.app", appID),
		SampledAt:    time.Now().UTC(),
	}, nil
}

// DeleteApp always succeeds, for known and unknown ids alike.
func (s *SimulatedAPI) DeleteApp(_ context.Context, appID string) error {
	s.mu.Lock()
	delete(s.apps, appID)
	s.mu.Unlock()
	s.logger.Info("simulated application deleted", "app_id", appID)
	return nil
}

// ListApps lists the in-memory applications.
func (s *SimulatedAPI) ListApps(ctx context.Context) ([]domain.AppStatus, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.apps))
	for id := range s.apps {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	apps := make([]domain.AppStatus, 0, len(ids))
	for _, id := range ids {
		st, err := s.AppStatus(ctx, id)
		if err != nil {
			continue
		}
		apps = append(apps, st)
	}
	return apps, nil
}

// AppLogs returns canned log output.
func (s *SimulatedAPI) AppLogs(_ context.Context, appID string) (domain.AppLogs, error) {
	started := time.Now().Add(-150 * time.Minute).Format("2006-01-02 15:04:05")
	return domain.AppLogs{
		ID: appID,
		Lines: []string{
			fmt.Sprintf("[%s] application started", started),
			fmt.Sprintf("[%s] server listening on port 3000", started),
			fmt.Sprintf("[%s] connected to database", started),
		},
	}, nil
}

// RestartApp always succeeds.
func (s *SimulatedAPI) RestartApp(_ context.Context, appID string) error {
	s.logger.Info("simulated application restarted", "app_id", appID)
	return nil
}

func manifestValue(manifest, key string) string {
	for _, line := range strings.Split(manifest, "\n") {
		if v, ok := strings.CutPrefix(line, key+"="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
