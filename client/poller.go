package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"budget/logger"
	"budget/models"
)

// DefaultPollInterval is used when a poller is built with a non-positive interval.
const DefaultPollInterval = 5 * time.Second

var ErrPollerRunning = errors.New("poller already running")

// FetchFunc performs one read. Its error is logged by the poller and otherwise ignored.
type FetchFunc func(ctx context.Context) error

// Poller runs a fetch immediately on Start and then once per interval until Stop.
// Each tick is a full re-read; there is no diffing.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(name string, interval time.Duration, fetch FetchFunc, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger.WithComponent(log, logger.ComponentPoller).With("view", name),
	}
}

// Start launches the polling goroutine. The poller also stops when ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrPollerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go p.run(ctx, done)
	return nil
}

// Cancel ends the loop without waiting for it. It is the way to stop a poller
// from inside its own fetch or subscription callback; call Stop afterwards from
// another goroutine to reap it before a restart.
func (p *Poller) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Stop cancels the loop and waits for an in-flight fetch to return. Stopping a
// poller that is not running is a no-op; a stopped poller can be started again.
// Stop must not be called from the fetch or a subscription callback, since it
// would wait on its own loop; use Cancel there.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether Start has been called without a matching Stop.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.WarnContext(ctx, "poll failed", logger.FieldError, err)
	}
}

// SubscribeTransactions builds a poller that hands the month's transactions to fn
// on every successful read. The caller starts and stops it.
func (c *Client) SubscribeTransactions(month models.Month, interval time.Duration, fn func([]models.Transaction), log *slog.Logger) *Poller {
	return NewPoller("transactions "+month.String(), interval, func(ctx context.Context) error {
		txs, err := c.Transactions(ctx, month)
		if err != nil {
			return err
		}
		fn(txs)
		return nil
	}, log)
}

// SubscribeBalance builds a poller for the month's balance. fn receives nil while
// no balance has been set.
func (c *Client) SubscribeBalance(month models.Month, interval time.Duration, fn func(*models.MonthlyBalance), log *slog.Logger) *Poller {
	return NewPoller("balance "+month.String(), interval, func(ctx context.Context) error {
		b, err := c.Balance(ctx, month)
		if err != nil {
			return err
		}
		fn(b)
		return nil
	}, log)
}
