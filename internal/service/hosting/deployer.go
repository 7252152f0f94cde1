package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/workspace"
)

// retryDelay is the fixed pause between deploy attempts.
const retryDelay = 5 * time.Second

// transientSignatures mark provider errors worth another attempt. Anything
// else fails immediately.
var transientSignatures = []string{
	"network error",
	"timeout",
	"connection reset",
	"econnreset",
	"etimedout",
	"enotfound",
	"no such host",
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// DeployError reports a deploy that failed after exhausting every
// automatic attempt. CanRetry marks it safe for a manual, user-triggered
// retry: the payment is already captured.
type DeployError struct {
	Attempts int
	CanRetry bool
	Last     error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("deploy failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *DeployError) Unwrap() error {
	return e.Last
}

// Deployer drives the bounded-retry deploy against the hosting API,
// degrading the manifest one variant per attempt.
type Deployer struct {
	api    API
	ws     *workspace.Manager
	logger *slog.Logger
	delay  time.Duration
}

// NewDeployer returns a deployer with the standard inter-attempt delay.
func NewDeployer(api API, ws *workspace.Manager, logger *slog.Logger) *Deployer {
	return &Deployer{api: api, ws: ws, logger: logger, delay: retryDelay}
}

// Deploy uploads the artifact, retrying up to three times with an
// increasingly conservative manifest. Retries happen only for transient
// network failures; other errors abort immediately.
func (d *Deployer) Deploy(ctx context.Context, artifact []byte, cfg domain.DeployConfig) (domain.Application, error) {
	sanitized := SanitizeDisplayName(cfg.DisplayName)
	if sanitized != cfg.DisplayName {
		d.logger.Info("display name sanitized", "from", cfg.DisplayName, "to", sanitized)
	}

	var (
		app           domain.Application
		attempt       int
		lastErr       error
		lastRetryable bool
	)
	backoff := retry.WithMaxRetries(uint64(maxDeployAttempts-1), retry.NewConstant(d.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		d.logger.Info("deploy attempt", "attempt", attempt, "max_attempts", maxDeployAttempts, "display_name", sanitized)

		created, aerr := d.attemptOnce(ctx, artifact, cfg, sanitized, attempt)
		if aerr != nil {
			lastErr = aerr
			if isRetryable(aerr) {
				lastRetryable = true
				d.logger.Warn("deploy attempt failed, will retry", "attempt", attempt, "error", aerr)
				return retry.RetryableError(aerr)
			}
			lastRetryable = false
			return aerr
		}
		app = created
		return nil
	})
	if err != nil {
		if lastRetryable && attempt == maxDeployAttempts {
			d.logger.Error("all deploy attempts exhausted", "attempts", attempt, "error", lastErr)
			return domain.Application{}, &DeployError{Attempts: attempt, CanRetry: true, Last: lastErr}
		}
		return domain.Application{}, fmt.Errorf("deploy failed: %w", lastErr)
	}

	d.logger.Info("deploy succeeded", "attempt", attempt, "app_id", app.ID)
	return app, nil
}

// attemptOnce writes the per-attempt temp files, uploads them and always
// cleans the files up afterwards.
func (d *Deployer) attemptOnce(ctx context.Context, artifact []byte, cfg domain.DeployConfig, sanitized string, attempt int) (domain.Application, error) {
	token := uuid.NewString()

	artifactPath, err := d.ws.Write(fmt.Sprintf("app-%s.zip", token), artifact)
	if err != nil {
		return domain.Application{}, fmt.Errorf("stage artifact: %w", err)
	}
	defer d.cleanup(artifactPath)

	manifest := renderManifest(cfg, sanitized, attempt)
	manifestPath, err := d.ws.Write(fmt.Sprintf("squarecloud-%s.app", token), []byte(manifest))
	if err != nil {
		return domain.Application{}, fmt.Errorf("stage manifest: %w", err)
	}
	defer d.cleanup(manifestPath)

	return d.api.CreateApp(ctx, artifactPath, manifestPath)
}

func (d *Deployer) cleanup(path string) {
	if err := d.ws.Remove(path); err != nil {
		d.logger.Warn("temp file cleanup failed", "path", path, "error", err)
	}
}
