package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/payment"
)

// manualScheduler hands tick control to the test.
type manualScheduler struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{fns: make(map[int]func())}
}

func (s *manualScheduler) ScheduleRepeating(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *manualScheduler) tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *manualScheduler) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

type fakePayments struct {
	mu          sync.Mutex
	status      domain.PaymentIntent
	statusErr   error
	statusCalls int
	cancelled   chan string
}

func newFakePayments(status domain.PaymentStatus) *fakePayments {
	return &fakePayments{
		status:    domain.PaymentIntent{ID: "pay-1", Status: status},
		cancelled: make(chan string, 8),
	}
}

func (f *fakePayments) CreatePixPayment(context.Context, float64, string, domain.PayerIdentity) (domain.PaymentIntent, error) {
	panic("not used")
}

func (f *fakePayments) PaymentStatus(context.Context, string) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return domain.PaymentIntent{}, f.statusErr
	}
	return f.status, nil
}

func (f *fakePayments) CancelPayment(_ context.Context, paymentID string) error {
	f.cancelled <- paymentID
	return nil
}

func (f *fakePayments) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

type fakeSurface struct {
	mu           sync.Mutex
	channelAlive bool
	countdownErr error
	countdowns   int
	rejected     int
	notFound     int
}

func (f *fakeSurface) ChannelExists(string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channelAlive
}

func (f *fakeSurface) UpdateCountdown(time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countdowns++
	return f.countdownErr
}

func (f *fakeSurface) NotifyRejected() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected++
	return nil
}

func (f *fakeSurface) NotifyNotFound() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notFound++
	return nil
}

func newTestPoller(payments payment.Client, sched Scheduler, timeout time.Duration) *Poller {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(payments, sched, log, time.Second, timeout)
}

func expectCancelled(t *testing.T, payments *fakePayments, paymentID string) {
	t.Helper()
	select {
	case got := <-payments.cancelled:
		if got != paymentID {
			t.Fatalf("cancelled %q, want %q", got, paymentID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("payment cancellation never issued")
	}
}

func TestPollerApprovedRunsSuccessCallback(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentApproved)
	p := newTestPoller(payments, sched, time.Hour)

	var gotIntent domain.PaymentIntent
	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   &fakeSurface{channelAlive: true},
		OnSuccess: func(intent domain.PaymentIntent) { gotIntent = intent },
		OnTimeout: func() { t.Error("unexpected timeout") },
	})

	sched.tick()

	if gotIntent.ID != "pay-1" {
		t.Fatalf("success callback intent = %+v", gotIntent)
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed after approval")
	}
	if sched.scheduled() != 0 {
		t.Fatal("tick timer should be cancelled after approval")
	}
}

func TestPollerDuplicateStartIsNoOp(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)

	req := Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   &fakeSurface{channelAlive: true},
		OnSuccess: func(domain.PaymentIntent) {},
		OnTimeout: func() {},
	}
	p.Start(req)
	p.Start(req)

	if sched.scheduled() != 1 {
		t.Fatalf("expected a single scheduled tick, got %d", sched.scheduled())
	}
}

func TestPollerRejectedNotifiesAndStops(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentRejected)
	p := newTestPoller(payments, sched, time.Hour)
	surface := &fakeSurface{channelAlive: true}

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   surface,
		OnSuccess: func(domain.PaymentIntent) { t.Error("unexpected success") },
		OnTimeout: func() { t.Error("unexpected timeout") },
	})
	sched.tick()

	if surface.rejected != 1 {
		t.Fatalf("rejected notices = %d", surface.rejected)
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed after rejection")
	}
}

func TestPollerUnknownPaymentNotifiesAndStops(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	payments.statusErr = payment.ErrPaymentNotFound
	p := newTestPoller(payments, sched, time.Hour)
	surface := &fakeSurface{channelAlive: true}

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   surface,
		OnSuccess: func(domain.PaymentIntent) {},
		OnTimeout: func() {},
	})
	sched.tick()

	if surface.notFound != 1 {
		t.Fatalf("not-found notices = %d", surface.notFound)
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed")
	}
}

func TestPollerPendingUpdatesCountdown(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)
	surface := &fakeSurface{channelAlive: true}

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   surface,
		OnSuccess: func(domain.PaymentIntent) {},
		OnTimeout: func() {},
	})
	sched.tick()
	sched.tick()

	if surface.countdowns != 2 {
		t.Fatalf("countdown updates = %d", surface.countdowns)
	}
	if !p.Active("pay-1", "user-1") {
		t.Fatal("pending entry should stay active")
	}
}

func TestPollerClosedChannelCancelsWithoutQuerying(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		ChannelID: "chan-1",
		Surface:   &fakeSurface{channelAlive: false},
		OnSuccess: func(domain.PaymentIntent) { t.Error("unexpected success") },
		OnTimeout: func() { t.Error("unexpected timeout") },
	})
	sched.tick()

	expectCancelled(t, payments, "pay-1")
	if payments.calls() != 0 {
		t.Fatalf("provider queried %d times for a dead channel", payments.calls())
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed")
	}
}

func TestPollerSurfaceGoneCancelsPayment(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)
	surface := &fakeSurface{channelAlive: true, countdownErr: ErrSurfaceGone}

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   surface,
		OnSuccess: func(domain.PaymentIntent) {},
		OnTimeout: func() {},
	})
	sched.tick()

	expectCancelled(t, payments, "pay-1")
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed")
	}
}

func TestPollerTimeout(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, 0)
	surface := &fakeSurface{channelAlive: true}

	timedOut := false
	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   surface,
		OnSuccess: func(domain.PaymentIntent) { t.Error("unexpected success") },
		OnTimeout: func() { timedOut = true },
	})
	time.Sleep(5 * time.Millisecond)
	sched.tick()

	if !timedOut {
		t.Fatal("timeout callback not invoked")
	}
	if surface.countdowns != 0 {
		t.Fatal("countdown should not update after timeout")
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be removed")
	}
}

func TestPollerCancelForChannel(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)

	for i, ch := range []string{"chan-1", "chan-1", "chan-2"} {
		p.Start(Request{
			PaymentID: "pay-" + string(rune('a'+i)),
			UserID:    "user-" + string(rune('a'+i)),
			ChannelID: ch,
			Surface:   &fakeSurface{channelAlive: true},
			OnSuccess: func(domain.PaymentIntent) {},
			OnTimeout: func() {},
		})
	}

	p.CancelForChannel("chan-1")

	if p.Active("pay-a", "user-a") || p.Active("pay-b", "user-b") {
		t.Fatal("chan-1 entries should be removed")
	}
	if !p.Active("pay-c", "user-c") {
		t.Fatal("chan-2 entry should survive")
	}
	if sched.scheduled() != 1 {
		t.Fatalf("scheduled ticks = %d, want 1", sched.scheduled())
	}
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-payments.cancelled:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("payment cancellations never issued")
		}
	}
	if !got["pay-a"] || !got["pay-b"] {
		t.Fatalf("cancelled = %v", got)
	}
}

func TestPollerStopAll(t *testing.T) {
	sched := newManualScheduler()
	payments := newFakePayments(domain.PaymentPending)
	p := newTestPoller(payments, sched, time.Hour)

	for _, id := range []string{"pay-1", "pay-2"} {
		p.Start(Request{
			PaymentID: id,
			UserID:    "user-1",
			Surface:   &fakeSurface{channelAlive: true},
			OnSuccess: func(domain.PaymentIntent) {},
			OnTimeout: func() {},
		})
	}

	p.StopAll()

	if sched.scheduled() != 0 {
		t.Fatalf("scheduled ticks = %d after StopAll", sched.scheduled())
	}
	if p.Active("pay-1", "user-1") || p.Active("pay-2", "user-1") {
		t.Fatal("entries should be gone")
	}
}

// racingScheduler fires a shutdown from inside ScheduleRepeating,
// hitting the window between scheduling a tick and publishing its entry.
type racingScheduler struct {
	stopAll   func()
	cancelled chan struct{}
}

func (s *racingScheduler) ScheduleRepeating(time.Duration, func()) func() {
	go s.stopAll()
	return func() { close(s.cancelled) }
}

func TestPollerStopAllDuringStartCancelsTimer(t *testing.T) {
	payments := newFakePayments(domain.PaymentPending)
	sched := &racingScheduler{cancelled: make(chan struct{})}
	p := newTestPoller(payments, sched, time.Hour)
	sched.stopAll = p.StopAll

	p.Start(Request{
		PaymentID: "pay-1",
		UserID:    "user-1",
		Surface:   &fakeSurface{channelAlive: true},
		OnSuccess: func(domain.PaymentIntent) {},
		OnTimeout: func() {},
	})

	select {
	case <-sched.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("timer left running after shutdown raced the start")
	}
	if p.Active("pay-1", "user-1") {
		t.Fatal("entry should be gone")
	}
}
