package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/payment"
)

// ErrSurfaceGone signals that the user-visible reply (message or its
// channel) was deleted. The poller treats it as an implicit cancel.
var ErrSurfaceGone = errors.New("reply surface no longer exists")

// Surface is the user-visible reply a poll entry keeps updated.
type Surface interface {
	// ChannelExists reports whether the bound ticket channel is still
	// alive. Checked before every status query.
	ChannelExists(channelID string) bool
	// UpdateCountdown refreshes the remaining-time display. Implementations
	// return ErrSurfaceGone when the underlying message is deleted.
	UpdateCountdown(remaining time.Duration) error
	// NotifyRejected tells the user the payment was rejected or cancelled.
	NotifyRejected() error
	// NotifyNotFound tells the user the payment id is unknown to the provider.
	NotifyNotFound() error
}

// Request describes one payment to watch.
type Request struct {
	PaymentID string
	UserID    string
	// ChannelID binds the poll to a ticket channel; empty means no binding.
	ChannelID string
	Surface   Surface
	OnSuccess func(domain.PaymentIntent)
	OnTimeout func()
}

type pollKey struct {
	paymentID string
	userID    string
}

type entry struct {
	req     Request
	started time.Time
	cancel  func()
}

// Poller drives the per-payment polling state machine. Each active
// entry gets its own repeating tick; ticks for one entry are strictly
// sequential, distinct entries poll independently.
type Poller struct {
	payments payment.Client
	sched    Scheduler
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	entries map[pollKey]*entry
}

// New returns a poller using the given schedule interval and overall
// payment-approval timeout.
func New(payments payment.Client, sched Scheduler, logger *slog.Logger, interval, timeout time.Duration) *Poller {
	return &Poller{
		payments: payments,
		sched:    sched,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		entries:  make(map[pollKey]*entry),
	}
}

// Start begins polling for a payment. Starting an already-active
// (paymentID, userID) pair is a no-op.
func (p *Poller) Start(req Request) {
	k := pollKey{paymentID: req.PaymentID, userID: req.UserID}

	p.mu.Lock()
	if _, active := p.entries[k]; active {
		p.mu.Unlock()
		p.logger.Warn("polling already active", "payment_id", req.PaymentID, "user_id", req.UserID)
		return
	}
	// Schedule while still holding the lock so the entry is never visible
	// without its cancel func. A StopAll or CancelForChannel racing this
	// publication would otherwise skip the nil cancel and leak the ticker.
	e := &entry{req: req, started: time.Now()}
	e.cancel = p.sched.ScheduleRepeating(p.interval, func() { p.tick(k) })
	p.entries[k] = e
	p.mu.Unlock()

	p.logger.Info("payment polling started", "payment_id", req.PaymentID, "user_id", req.UserID, "channel_id", req.ChannelID)
}

// Active reports whether a poll entry exists for the pair.
func (p *Poller) Active(paymentID, userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[pollKey{paymentID: paymentID, userID: userID}]
	return ok
}

func (p *Poller) tick(k pollKey) {
	p.mu.Lock()
	e, ok := p.entries[k]
	p.mu.Unlock()
	if !ok {
		return
	}
	req := e.req

	// Ticket channel gone means the user abandoned the purchase. This is
	// checked before the provider is queried.
	if req.ChannelID != "" && !req.Surface.ChannelExists(req.ChannelID) {
		p.logger.Info("polling cancelled, ticket channel closed", "payment_id", req.PaymentID, "user_id", req.UserID)
		p.cancelExternally(k)
		return
	}

	intent, err := p.payments.PaymentStatus(context.Background(), req.PaymentID)
	if err != nil {
		p.logger.Error("payment status query failed", "payment_id", req.PaymentID, "user_id", req.UserID, "error", err)
		if errors.Is(err, payment.ErrPaymentNotFound) {
			if nerr := req.Surface.NotifyNotFound(); nerr != nil {
				p.logger.Warn("payment not-found notice failed", "payment_id", req.PaymentID, "error", nerr)
			}
			p.remove(k)
		}
		return
	}

	switch intent.Status {
	case domain.PaymentApproved:
		p.remove(k)
		p.logger.Info("payment approved", "payment_id", req.PaymentID, "user_id", req.UserID)
		// Follow-up failures (deploy etc.) are the callback's responsibility.
		req.OnSuccess(intent)
	case domain.PaymentRejected, domain.PaymentCancelled:
		p.remove(k)
		p.logger.Info("payment rejected or cancelled", "payment_id", req.PaymentID, "user_id", req.UserID, "status", intent.Status)
		if nerr := req.Surface.NotifyRejected(); nerr != nil {
			p.logger.Warn("payment rejection notice failed", "payment_id", req.PaymentID, "error", nerr)
		}
	default:
		elapsed := time.Since(e.started)
		if elapsed > p.timeout {
			p.remove(k)
			p.logger.Info("payment timed out", "payment_id", req.PaymentID, "user_id", req.UserID)
			req.OnTimeout()
			return
		}
		remaining := p.timeout - elapsed
		if uerr := req.Surface.UpdateCountdown(remaining); uerr != nil {
			if errors.Is(uerr, ErrSurfaceGone) {
				p.logger.Info("polling cancelled, reply surface gone", "payment_id", req.PaymentID, "user_id", req.UserID)
				p.cancelExternally(k)
				return
			}
			p.logger.Warn("countdown update failed", "payment_id", req.PaymentID, "error", uerr)
		}
	}
}

// remove cancels the entry's timer and drops it. Safe to call for an
// already-removed key.
func (p *Poller) remove(k pollKey) {
	p.mu.Lock()
	e, ok := p.entries[k]
	if ok {
		delete(p.entries, k)
	}
	p.mu.Unlock()
	if ok {
		e.cancel()
	}
}

// cancelExternally removes the entry and issues a best-effort payment
// cancellation without blocking the tick.
func (p *Poller) cancelExternally(k pollKey) {
	p.remove(k)
	go p.cancelPayment(k.paymentID)
}

func (p *Poller) cancelPayment(paymentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := p.payments.CancelPayment(ctx, paymentID); err != nil {
		p.logger.Warn("payment cancel failed", "payment_id", paymentID, "error", err)
	}
}

// CancelForChannel terminates every entry bound to the channel and
// attempts to cancel each affected payment.
func (p *Poller) CancelForChannel(channelID string) {
	p.mu.Lock()
	var removed []*entry
	for k, e := range p.entries {
		if e.req.ChannelID == channelID {
			delete(p.entries, k)
			removed = append(removed, e)
		}
	}
	p.mu.Unlock()

	for _, e := range removed {
		e.cancel()
		p.logger.Info("polling cancelled for closed channel", "payment_id", e.req.PaymentID, "user_id", e.req.UserID, "channel_id", channelID)
		go p.cancelPayment(e.req.PaymentID)
	}
}

// StopAll terminates every active entry. Used at process shutdown.
func (p *Poller) StopAll() {
	p.mu.Lock()
	all := make([]*entry, 0, len(p.entries))
	for k, e := range p.entries {
		delete(p.entries, k)
		all = append(all, e)
	}
	p.mu.Unlock()

	for _, e := range all {
		e.cancel()
		p.logger.Info("polling stopped", "payment_id", e.req.PaymentID, "user_id", e.req.UserID)
	}
}
