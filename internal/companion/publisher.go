// Package companion mirrors engine status to a paired companion device (the
// watch app) and applies the commands it sends back.
package companion

import (
	"context"
	"log"
	stdsync "sync"
	"time"

	"golang.org/x/time/rate"

	"example.com/fitsync/internal/store/sqlite"
)

// Authorizer reports whether a server session is currently valid.
type Authorizer interface {
	IsAuthorized(now time.Time) bool
}

// Option configures optional behaviour for the Publisher and Handler.
type Option func(*config)

type config struct {
	logger   *log.Logger
	now      func() time.Time
	throttle time.Duration
}

func defaultConfig() config {
	return config{
		logger:   log.New(log.Writer(), "[companion] ", log.LstdFlags),
		now:      time.Now,
		throttle: 2 * time.Second,
	}
}

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithThrottle sets the minimum spacing between live messages. Zero disables
// the throttle.
func WithThrottle(interval time.Duration) Option {
	return func(c *config) {
		c.throttle = interval
	}
}

// Publisher pushes the (authorized, current day, current activity) tuple to
// the companion. The durable context is always refreshed; the live message
// channel fires only when the tuple changed and the device is reachable, and
// is rate limited to spare the device radio.
type Publisher struct {
	store     *sqlite.Store
	authz     Authorizer
	transport Transport
	limiter   *rate.Limiter
	cfg       config

	mu   stdsync.Mutex
	last *Status
}

// NewPublisher constructs a Publisher.
func NewPublisher(store *sqlite.Store, authz Authorizer, transport Transport, opts ...Option) *Publisher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Publisher{
		store:     store,
		authz:     authz,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Every(cfg.throttle), 1),
		cfg:       cfg,
	}
}

// Republish recomputes the status tuple and pushes it out.
func (p *Publisher) Republish(ctx context.Context) {
	status, err := p.currentStatus(ctx)
	if err != nil {
		p.cfg.logger.Printf("compute status: %v", err)
		return
	}

	if err := p.transport.UpdateContext(ctx, status); err != nil {
		p.cfg.logger.Printf("update context: %v", err)
	}

	p.mu.Lock()
	changed := p.last == nil || *p.last != status
	p.last = &status
	p.mu.Unlock()

	if !changed || !p.transport.Reachable() || !p.limiter.Allow() {
		return
	}
	if err := p.transport.SendMessage(ctx, status); err != nil {
		p.cfg.logger.Printf("send message: %v", err)
	}
}

func (p *Publisher) currentStatus(ctx context.Context) (Status, error) {
	now := p.cfg.now()
	status := Status{IsAuthorized: p.authz.IsAuthorized(now)}

	user, err := p.store.CurrentUser(ctx)
	if err != nil {
		return Status{}, err
	}
	if user == nil {
		return status, nil
	}
	status.CurrentDay = user.CurrentDay(now)

	act, err := p.store.GetActivity(ctx, user.ID, status.CurrentDay)
	if err != nil {
		return Status{}, err
	}
	if act != nil && !act.ShouldDelete {
		status.CurrentActivity = string(act.Kind)
	}
	return status, nil
}
