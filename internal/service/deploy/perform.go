package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/adminlog"
	"github.com/hostbr/deploybot/internal/service/hosting"
)

// performDeploy downloads the artifact (once), runs the deploy and
// reports the outcome. Retry-eligible failures keep the session alive
// for a manual retry; anything else clears it.
func (s *Service) performDeploy(ctx context.Context, sess *domain.DeploySession, hooks Hooks, isRetry bool) {
	userID := sess.UserID

	artifact, err := s.artifactBytes(ctx, sess)
	if err != nil {
		s.logger.Error("artifact download failed", "user_id", userID, "payment_id", sess.PaymentID, "url", sess.Artifact.URL, "error", err)
		s.emitError(userID, sess.PaymentID, err)
		s.sessions.Remove(userID)
		if hooks.DeployFailed != nil {
			hooks.DeployFailed(err, false)
		}
		return
	}

	app, err := s.deployer.Deploy(ctx, artifact, sess.Config)
	if err != nil {
		s.emitError(userID, sess.PaymentID, err)

		var de *hosting.DeployError
		if errors.As(err, &de) && de.CanRetry && !isRetry {
			s.logger.Warn("deploy retry available", "user_id", userID, "payment_id", sess.PaymentID, "attempts", de.Attempts)
			// Session stays cached, including the downloaded bytes.
			if hooks.DeployFailed != nil {
				hooks.DeployFailed(err, true)
			}
			return
		}

		s.sessions.Remove(userID)
		if hooks.DeployFailed != nil {
			hooks.DeployFailed(err, false)
		}
		return
	}

	s.registry.Register(userID, app.ID)
	s.sessions.Remove(userID)

	s.notifier.Emit(context.Background(), adminlog.Event{
		Kind: adminlog.KindDeploy,
		Fields: map[string]string{
			"app_id":     app.ID,
			"app_name":   sess.Config.DisplayName,
			"memory_mb":  fmt.Sprintf("%d", sess.Config.MemoryMB),
			"user_id":    userID,
			"payment_id": sess.PaymentID,
			"amount":     fmt.Sprintf("%.2f", sess.Price),
		},
	})

	s.logger.Info("deploy completed", "app_id", app.ID, "user_id", userID, "payment_id", sess.PaymentID)
	if hooks.DeploySucceeded != nil {
		hooks.DeploySucceeded(app)
	}
}

// RetryDeploy re-runs the deploy for a retry-eligible failure using the
// cached artifact bytes. A second failure is definitive: the session is
// cleared.
func (s *Service) RetryDeploy(ctx context.Context, userID string, hooks Hooks) error {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	s.logger.Info("manual deploy retry", "user_id", userID, "payment_id", sess.PaymentID)
	s.performDeploy(ctx, sess, hooks, true)
	return nil
}

// CancelRetry abandons a retry-eligible failure. The payment stays
// captured; only the session is dropped.
func (s *Service) CancelRetry(userID string) error {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	s.sessions.Remove(userID)
	s.logger.Info("deploy retry cancelled by user", "user_id", userID, "payment_id", sess.PaymentID)
	return nil
}

// artifactBytes returns the downloaded archive, fetching it on first use
// and serving the cached copy on retries.
func (s *Service) artifactBytes(ctx context.Context, sess *domain.DeploySession) ([]byte, error) {
	if len(sess.ArtifactBytes) > 0 {
		s.logger.Info("using cached artifact", "user_id", sess.UserID, "size", len(sess.ArtifactBytes))
		return sess.ArtifactBytes, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sess.Artifact.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download artifact: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if int64(len(data)) > s.maxArtifactSize {
		return nil, ErrArtifactTooLarge
	}

	sess.ArtifactBytes = data
	s.sessions.Put(sess.UserID, sess)
	s.logger.Info("artifact downloaded", "user_id", sess.UserID, "size", len(data))
	return data, nil
}

func (s *Service) emitError(userID, paymentID string, err error) {
	s.notifier.Emit(context.Background(), adminlog.Event{
		Kind: adminlog.KindError,
		Fields: map[string]string{
			"user_id":    userID,
			"payment_id": paymentID,
			"error":      err.Error(),
		},
	})
}
