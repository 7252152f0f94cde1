package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/adminlog"
	"github.com/hostbr/deploybot/internal/service/hosting"
	"github.com/hostbr/deploybot/internal/service/payment"
	"github.com/hostbr/deploybot/internal/service/poller"
	"github.com/hostbr/deploybot/internal/service/session"
	"github.com/hostbr/deploybot/internal/settings"
)

var (
	// ErrPixDisabled is returned when an admin turned PIX payments off.
	ErrPixDisabled = errors.New("pix payments are disabled")
	// ErrArtifactTooLarge is returned for uploads over the size cap.
	ErrArtifactTooLarge = errors.New("artifact exceeds the maximum size")
	// ErrBadExtension is returned for non-zip uploads.
	ErrBadExtension = errors.New("unsupported artifact format")
	// ErrNotOwner is returned when a user targets an app they did not deploy.
	ErrNotOwner = errors.New("application does not belong to user")
)

// Hooks receives flow progress so the presentation layer can update the
// user-facing reply. Every hook is invoked from the polling goroutine.
type Hooks struct {
	PaymentApproved func()
	DeploySucceeded func(app domain.Application)
	// DeployFailed reports a failed deploy; canRetry marks failures that
	// are safe to retry manually because the payment is already captured.
	DeployFailed    func(err error, canRetry bool)
	PaymentTimedOut func()
}

// ArtifactDeployer uploads a paid artifact to the hosting provider.
// *hosting.Deployer is the production implementation.
type ArtifactDeployer interface {
	Deploy(ctx context.Context, artifact []byte, cfg domain.DeployConfig) (domain.Application, error)
}

// Service sequences a deploy request: session, configuration, payer
// identity, payment, polling, deploy, reporting.
type Service struct {
	sessions *session.Store
	payments payment.Client
	poller   *poller.Poller
	deployer ArtifactDeployer
	hosting  hosting.API
	registry *hosting.Registry
	settings *settings.Store
	notifier adminlog.Notifier
	logger   *slog.Logger

	downloader      *http.Client
	downloadTimeout time.Duration
	maxArtifactSize int64
}

// Options bundles the collaborators for New.
type Options struct {
	Sessions *session.Store
	Payments payment.Client
	Poller   *poller.Poller
	Deployer ArtifactDeployer
	Hosting  hosting.API
	Registry *hosting.Registry
	Settings *settings.Store
	Notifier adminlog.Notifier
	Logger   *slog.Logger

	DownloadTimeout time.Duration
	MaxArtifactSize int64
}

// New returns the orchestrating service.
func New(opts Options) *Service {
	timeout := opts.DownloadTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxSize := opts.MaxArtifactSize
	if maxSize <= 0 {
		maxSize = 100 * 1024 * 1024
	}
	return &Service{
		sessions:        opts.Sessions,
		payments:        opts.Payments,
		poller:          opts.Poller,
		deployer:        opts.Deployer,
		hosting:         opts.Hosting,
		registry:        opts.Registry,
		settings:        opts.Settings,
		notifier:        opts.Notifier,
		logger:          opts.Logger,
		downloader:      &http.Client{Timeout: timeout},
		downloadTimeout: timeout,
		maxArtifactSize: maxSize,
	}
}

// StartSession validates the upload and opens a fresh deploy session for
// the user, replacing any previous in-flight one.
func (s *Service) StartSession(userID, channelID string, artifact domain.Artifact, plan domain.Plan) (*domain.DeploySession, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("unknown plan %q", plan)
	}
	if !strings.HasSuffix(strings.ToLower(artifact.Filename), ".zip") {
		return nil, ErrBadExtension
	}
	if artifact.Size > s.maxArtifactSize {
		return nil, ErrArtifactTooLarge
	}

	cfg := s.settings.Load()
	price, err := cfg.PlanPrice(plan)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(artifact.Filename, filepath.Ext(artifact.Filename))
	sess := &domain.DeploySession{
		UserID:    userID,
		ChannelID: channelID,
		Artifact:  artifact,
		Plan:      plan,
		Price:     price,
		Config: domain.DeployConfig{
			DisplayName: hosting.SanitizeDisplayName(name),
			Description: fmt.Sprintf("Deploy via Discord - Plano %s", plan),
			MemoryMB:    plan.DefaultMemory(),
			Version:     "recommended",
		},
		CreatedAt: time.Now(),
	}
	s.sessions.Put(userID, sess)

	s.logger.Info("deploy session started", "user_id", userID, "plan", plan, "file", artifact.Filename, "size", artifact.Size)
	return sess, nil
}

// Session returns the user's in-flight session.
func (s *Service) Session(userID string) (*domain.DeploySession, error) {
	return s.sessions.Get(userID)
}

// Configure applies the user-supplied deploy configuration to the
// session. Validation failures leave the session untouched.
func (s *Service) Configure(userID string, cfg domain.DeployConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	sess.Config = cfg
	s.sessions.Put(userID, sess)
	s.logger.Info("deploy configured", "user_id", userID, "display_name", cfg.DisplayName, "memory_mb", cfg.MemoryMB)
	return nil
}

// BeginPayment collects the payer identity, creates the PIX payment at
// the price configured right now, and starts polling for its approval.
func (s *Service) BeginPayment(ctx context.Context, userID string, payer domain.PayerIdentity, surface poller.Surface, hooks Hooks) (domain.PaymentIntent, error) {
	if err := payer.Validate(); err != nil {
		return domain.PaymentIntent{}, err
	}
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	// Admin price changes apply to in-flight sessions at exactly this
	// checkpoint, never retroactively.
	cfg := s.settings.Load()
	if !cfg.Payment.PixEnabled {
		return domain.PaymentIntent{}, ErrPixDisabled
	}
	price, err := cfg.PlanPrice(sess.Plan)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	sess.Price = price

	// Payer identity is collected once and immutable afterwards.
	if sess.Payer == nil {
		sess.Payer = &payer
	}

	description := fmt.Sprintf("Deploy Square Cloud - %s", sess.Config.DisplayName)
	intent, err := s.payments.CreatePixPayment(ctx, price, description, *sess.Payer)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create payment: %w", err)
	}

	sess.PaymentID = intent.ID
	sess.PaymentStatus = intent.Status
	s.sessions.Put(userID, sess)

	s.poller.Start(poller.Request{
		PaymentID: intent.ID,
		UserID:    userID,
		ChannelID: sess.ChannelID,
		Surface:   surface,
		OnSuccess: func(approved domain.PaymentIntent) {
			s.onPaymentApproved(userID, approved, hooks)
		},
		OnTimeout: func() {
			s.logger.Info("payment wait timed out", "payment_id", intent.ID, "user_id", userID)
			if hooks.PaymentTimedOut != nil {
				hooks.PaymentTimedOut()
			}
		},
	})

	s.logger.Info("payment created", "payment_id", intent.ID, "user_id", userID, "amount", price, "plan", sess.Plan)
	return intent, nil
}

func (s *Service) onPaymentApproved(userID string, intent domain.PaymentIntent, hooks Hooks) {
	if hooks.PaymentApproved != nil {
		hooks.PaymentApproved()
	}

	sess, err := s.sessions.Get(userID)
	if err != nil {
		s.logger.Error("session missing after payment approval", "payment_id", intent.ID, "user_id", userID)
		if hooks.DeployFailed != nil {
			hooks.DeployFailed(err, false)
		}
		return
	}
	sess.PaymentStatus = domain.PaymentApproved
	s.sessions.Put(userID, sess)

	s.notifier.Emit(context.Background(), adminlog.Event{
		Kind: adminlog.KindPayment,
		Fields: map[string]string{
			"payment_id": intent.ID,
			"user_id":    userID,
			"plan":       string(sess.Plan),
			"amount":     fmt.Sprintf("%.2f", sess.Price),
			"status":     string(domain.PaymentApproved),
		},
	})

	s.performDeploy(context.Background(), sess, hooks, false)
}
