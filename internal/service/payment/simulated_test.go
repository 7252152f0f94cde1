package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulatedPaymentLifecycle(t *testing.T) {
	sim := NewSimulated(testLogger())
	base := time.Now()
	sim.now = func() time.Time { return base }

	intent, err := sim.CreatePixPayment(context.Background(), 25.00, "Deploy Square Cloud - MyApp", domain.PayerIdentity{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(intent.ID, DemoPrefix) {
		t.Fatalf("id = %q, want demo prefix", intent.ID)
	}
	if intent.Status != domain.PaymentPending {
		t.Fatalf("status = %q", intent.Status)
	}
	if intent.QRCode == "" {
		t.Fatal("expected a copy-paste code")
	}

	// Still pending just before the approval delay elapses.
	sim.now = func() time.Time { return base.Add(approvalDelay - time.Second) }
	got, err := sim.PaymentStatus(context.Background(), intent.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.Status != domain.PaymentPending {
		t.Fatalf("status before delay = %q", got.Status)
	}

	sim.now = func() time.Time { return base.Add(approvalDelay + time.Second) }
	got, err = sim.PaymentStatus(context.Background(), intent.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.Status != domain.PaymentApproved {
		t.Fatalf("status after delay = %q", got.Status)
	}
	if got.StatusDetail != "accredited" {
		t.Fatalf("status detail = %q", got.StatusDetail)
	}
	if got.Amount != 25.00 {
		t.Fatalf("amount = %v", got.Amount)
	}
	if got.ApprovedAt == nil {
		t.Fatal("approved payment should carry an approval time")
	}
}

func TestSimulatedStatusSurvivesRestart(t *testing.T) {
	// A fresh instance knows nothing about the id but still resolves the
	// state from the embedded timestamp.
	sim := NewSimulated(testLogger())

	old := time.Now().Add(-2 * approvalDelay)
	id := DemoPrefix + strconv.FormatInt(old.UnixMilli(), 10)

	got, err := sim.PaymentStatus(context.Background(), id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.Status != domain.PaymentApproved {
		t.Fatalf("status = %q", got.Status)
	}
	if got.Amount != 10.00 {
		t.Fatalf("unknown id should fall back to the demo amount, got %v", got.Amount)
	}
}

func TestSimulatedRejectsForeignIDs(t *testing.T) {
	sim := NewSimulated(testLogger())

	_, err := sim.PaymentStatus(context.Background(), "123456789")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
	_, err = sim.PaymentStatus(context.Background(), DemoPrefix+"not-a-number")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestSimulatedCancelAlwaysSucceeds(t *testing.T) {
	sim := NewSimulated(testLogger())
	if err := sim.CancelPayment(context.Background(), DemoPrefix+"42"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}
