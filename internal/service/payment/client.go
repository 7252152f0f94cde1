package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hostbr/deploybot/internal/domain"
)

// Client creates and tracks PIX payments at the provider.
type Client interface {
	CreatePixPayment(ctx context.Context, amount float64, description string, payer domain.PayerIdentity) (domain.PaymentIntent, error)
	PaymentStatus(ctx context.Context, paymentID string) (domain.PaymentIntent, error)
	// CancelPayment is best-effort cleanup: provider failures are logged
	// and never propagated.
	CancelPayment(ctx context.Context, paymentID string) error
}

// ErrPaymentNotFound is returned when the provider does not know the id.
var ErrPaymentNotFound = errors.New("payment not found")

// placeholder tokens that ship in example env files and must be treated
// as "not configured".
var placeholderTokens = map[string]struct{}{
	"seu_access_token_mp_aqui":  {},
	"MERCADO_PAGO_ACCESS_TOKEN": {},
}

// tokenConfigured reports whether the access token looks usable.
func tokenConfigured(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	_, placeholder := placeholderTokens[token]
	return !placeholder
}

// New selects the provider client once at startup. With no usable
// credential every payment is simulated; with a credential the real
// client still downgrades to simulation when the provider rejects it.
func New(accessToken string, logger *slog.Logger) Client {
	sim := NewSimulated(logger)
	if !tokenConfigured(accessToken) {
		logger.Warn("payment provider credential missing, running in simulated mode")
		return sim
	}
	return &fallbackClient{
		real:   NewMercadoPago(accessToken, logger),
		sim:    sim,
		logger: logger,
	}
}

// fallbackClient routes demo ids to the simulator and downgrades real
// creation failures caused by provider auth/validation errors. The demo
// id check lives here and nowhere else.
type fallbackClient struct {
	real   *MercadoPago
	sim    *Simulated
	logger *slog.Logger
}

func (c *fallbackClient) CreatePixPayment(ctx context.Context, amount float64, description string, payer domain.PayerIdentity) (domain.PaymentIntent, error) {
	intent, err := c.real.CreatePixPayment(ctx, amount, description, payer)
	if err == nil {
		return intent, nil
	}
	if isAuthOrValidation(err) {
		c.logger.Warn("payment provider unavailable, simulating payment", "error", err)
		return c.sim.CreatePixPayment(ctx, amount, description, payer)
	}
	return domain.PaymentIntent{}, err
}

func (c *fallbackClient) PaymentStatus(ctx context.Context, paymentID string) (domain.PaymentIntent, error) {
	if strings.HasPrefix(paymentID, DemoPrefix) {
		return c.sim.PaymentStatus(ctx, paymentID)
	}
	return c.real.PaymentStatus(ctx, paymentID)
}

func (c *fallbackClient) CancelPayment(ctx context.Context, paymentID string) error {
	if strings.HasPrefix(paymentID, DemoPrefix) {
		return c.sim.CancelPayment(ctx, paymentID)
	}
	if err := c.real.CancelPayment(ctx, paymentID); err != nil {
		c.logger.Warn("payment cancel failed", "payment_id", paymentID, "error", err)
	}
	return nil
}
