package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
)

// DemoPrefix marks simulated payment ids so they are distinguishable
// from real provider payments everywhere downstream.
const DemoPrefix = "demo_payment_"

// approvalDelay is how long a simulated payment stays pending before it
// deterministically flips to approved.
const approvalDelay = 30 * time.Second

// demoQRCode is a syntactically valid PIX copy-paste code used for all
// simulated payments.
const demoQRCode = "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-426614174000520400005303986540510.005802BR5913SQUARE CLOUD6009SAO PAULO62070503***63041D3D"

// Simulated is the demo payment provider. Ids embed their creation
// timestamp in milliseconds, so status resolution needs no stored state.
type Simulated struct {
	logger *slog.Logger

	mu      sync.Mutex
	amounts map[string]float64
	now     func() time.Time
}

// NewSimulated returns a deterministic in-process payment provider.
func NewSimulated(logger *slog.Logger) *Simulated {
	return &Simulated{
		logger:  logger,
		amounts: make(map[string]float64),
		now:     time.Now,
	}
}

// CreatePixPayment mints a pending demo payment.
func (s *Simulated) CreatePixPayment(_ context.Context, amount float64, description string, _ domain.PayerIdentity) (domain.PaymentIntent, error) {
	created := s.now()
	id := fmt.Sprintf("%s%d", DemoPrefix, created.UnixMilli())

	s.mu.Lock()
	s.amounts[id] = amount
	s.mu.Unlock()

	s.logger.Info("simulated payment created", "payment_id", id, "amount", amount, "description", description)
	return domain.PaymentIntent{
		ID:           id,
		Status:       domain.PaymentPending,
		StatusDetail: "pending_waiting_payment",
		Amount:       amount,
		QRCode:       demoQRCode,
		TicketURL:    "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=demo",
		CreatedAt:    created,
	}, nil
}

// PaymentStatus resolves deterministically from the timestamp embedded
// in the id: pending before the approval delay elapses, approved after.
func (s *Simulated) PaymentStatus(_ context.Context, paymentID string) (domain.PaymentIntent, error) {
	created, err := demoCreationTime(paymentID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	s.mu.Lock()
	amount, known := s.amounts[paymentID]
	s.mu.Unlock()
	if !known {
		amount = 10.00
	}

	intent := domain.PaymentIntent{
		ID:           paymentID,
		Status:       domain.PaymentPending,
		StatusDetail: "pending_waiting_payment",
		Amount:       amount,
		CreatedAt:    created,
	}
	now := s.now()
	if now.Sub(created) > approvalDelay {
		intent.Status = domain.PaymentApproved
		intent.StatusDetail = "accredited"
		intent.ApprovedAt = &now
	}
	return intent, nil
}

// CancelPayment always succeeds for demo payments.
func (s *Simulated) CancelPayment(_ context.Context, paymentID string) error {
	s.mu.Lock()
	delete(s.amounts, paymentID)
	s.mu.Unlock()
	s.logger.Info("simulated payment cancelled", "payment_id", paymentID)
	return nil
}

func demoCreationTime(paymentID string) (time.Time, error) {
	raw, ok := strings.CutPrefix(paymentID, DemoPrefix)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	return time.UnixMilli(ms), nil
}
