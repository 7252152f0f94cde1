package deploy

import (
	"context"
	"fmt"
	"slices"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/adminlog"
)

// ListUserApps lists the provider applications registered to the user.
func (s *Service) ListUserApps(ctx context.Context, userID string) ([]domain.AppStatus, error) {
	owned := s.registry.Apps(userID)
	if len(owned) == 0 {
		return nil, nil
	}
	all, err := s.hosting.ListApps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps := make([]domain.AppStatus, 0, len(owned))
	for _, app := range all {
		if slices.Contains(owned, app.ID) {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// UserAppStatus fetches the status of one of the user's applications.
func (s *Service) UserAppStatus(ctx context.Context, userID, appID string) (domain.AppStatus, error) {
	if !s.registry.Owns(userID, appID) {
		return domain.AppStatus{}, ErrNotOwner
	}
	return s.hosting.AppStatus(ctx, appID)
}

// UserAppLogs fetches recent logs of one of the user's applications.
func (s *Service) UserAppLogs(ctx context.Context, userID, appID string) (domain.AppLogs, error) {
	if !s.registry.Owns(userID, appID) {
		return domain.AppLogs{}, ErrNotOwner
	}
	return s.hosting.AppLogs(ctx, appID)
}

// RestartUserApp restarts one of the user's applications.
func (s *Service) RestartUserApp(ctx context.Context, userID, appID string) error {
	if !s.registry.Owns(userID, appID) {
		return ErrNotOwner
	}
	if err := s.hosting.RestartApp(ctx, appID); err != nil {
		return err
	}
	s.logger.Info("application restarted", "app_id", appID, "user_id", userID)
	return nil
}

// DeleteUserApp deletes one of the user's applications and drops it from
// the registry.
func (s *Service) DeleteUserApp(ctx context.Context, userID, appID string) error {
	if !s.registry.Owns(userID, appID) {
		return ErrNotOwner
	}
	if err := s.hosting.DeleteApp(ctx, appID); err != nil {
		return err
	}
	s.registry.Unregister(userID, appID)

	s.notifier.Emit(ctx, adminlog.Event{
		Kind: adminlog.KindAdminAction,
		Fields: map[string]string{
			"action":  "app_deleted",
			"app_id":  appID,
			"user_id": userID,
		},
	})
	s.logger.Info("application deleted", "app_id", appID, "user_id", userID)
	return nil
}

// TestConnection verifies the hosting API is reachable and reports the
// result through the admin observer.
func (s *Service) TestConnection(ctx context.Context, requestedBy string) error {
	_, err := s.hosting.ListApps(ctx)
	fields := map[string]string{
		"action":  "api_test",
		"user_id": requestedBy,
		"result":  "ok",
	}
	if err != nil {
		fields["result"] = "failed"
		fields["error"] = err.Error()
	}
	s.notifier.Emit(ctx, adminlog.Event{Kind: adminlog.KindAdminAction, Fields: fields})
	return err
}
