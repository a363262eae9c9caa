package toast

import (
	"context"
	"sync"
	"time"
)

// Distributor is the handle nested code uses to raise and dismiss toasts.
type Distributor interface {
	AddToast(in Input) (Message, error)
	RemoveToast(id string) error
}

// ProviderOption configures a Provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	dwell     time.Duration
	scheduler Scheduler
	storeOpts []StoreOption
	listeners []Listener
}

// WithDwellTime overrides DefaultDwellTime.
func WithDwellTime(d time.Duration) ProviderOption {
	return func(c *providerConfig) {
		c.dwell = d
	}
}

// WithScheduler replaces the timer implementation.
func WithScheduler(s Scheduler) ProviderOption {
	return func(c *providerConfig) {
		c.scheduler = s
	}
}

// WithStoreOptions passes options to the underlying Store.
func WithStoreOptions(opts ...StoreOption) ProviderOption {
	return func(c *providerConfig) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// WithListener subscribes l to the store before the provider is returned.
func WithListener(l Listener) ProviderOption {
	return func(c *providerConfig) {
		c.listeners = append(c.listeners, l)
	}
}

// Provider owns the toast state of one application tree. It is created when
// the tree's root mounts and closed when it unmounts.
type Provider struct {
	store      *Store
	controller *Controller

	mu        sync.RWMutex
	closed    bool
	listeners []func()
}

var _ Distributor = (*Provider)(nil)

// NewProvider creates a Provider with its own Store and Controller.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := providerConfig{dwell: DefaultDwellTime}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := NewStore(cfg.storeOpts...)
	p := &Provider{store: store}
	for _, l := range cfg.listeners {
		p.listeners = append(p.listeners, store.Subscribe(l))
	}
	p.controller = NewController(store, cfg.dwell, cfg.scheduler)
	return p
}

// AddToast creates a message. It fails with *ConfigurationError once the
// provider has been closed.
func (p *Provider) AddToast(in Input) (Message, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return Message{}, &ConfigurationError{Op: "add", Reason: "provider closed"}
	}
	return p.store.Add(in)
}

// RemoveToast dismisses a message. Unknown ids are ignored.
func (p *Provider) RemoveToast(id string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return &ConfigurationError{Op: "remove", Reason: "provider closed"}
	}
	p.store.Remove(id)
	return nil
}

// Messages returns the active messages in creation order.
func (p *Provider) Messages() []Message {
	return p.store.Messages()
}

// Subscribe registers l on the provider's store.
func (p *Provider) Subscribe(l Listener) func() {
	return p.store.Subscribe(l)
}

// Watch registers l and returns the active set at registration time.
func (p *Provider) Watch(l Listener) ([]Message, func()) {
	return p.store.Watch(l)
}

// Store returns the underlying store.
func (p *Provider) Store() *Store {
	return p.store
}

// Controller returns the lifecycle controller.
func (p *Provider) Controller() *Controller {
	return p.controller
}

// Closed reports whether Close has been called.
func (p *Provider) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Close tears the provider down: pending timers are stopped, remaining
// messages are removed with ReasonClosed and later calls fail with
// *ConfigurationError. Close is idempotent.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.controller.Close()
	for _, msg := range p.store.Messages() {
		p.store.RemoveWithReason(msg.ID, ReasonClosed)
	}
	for _, unsubscribe := range p.listeners {
		unsubscribe()
	}
}

type providerKey struct{}

// WithProvider returns a copy of ctx carrying p.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the live Provider carried by ctx.
func FromContext(ctx context.Context) (*Provider, error) {
	if ctx == nil {
		return nil, &ConfigurationError{Op: "lookup", Reason: "nil context"}
	}
	p, _ := ctx.Value(providerKey{}).(*Provider)
	if p == nil {
		return nil, &ConfigurationError{Op: "lookup", Reason: "no provider in context"}
	}
	if p.Closed() {
		return nil, &ConfigurationError{Op: "lookup", Reason: "provider closed"}
	}
	return p, nil
}

// Add creates a message through the Provider carried by ctx.
func Add(ctx context.Context, in Input) (Message, error) {
	p, err := FromContext(ctx)
	if err != nil {
		return Message{}, &ConfigurationError{Op: "add", Reason: err.(*ConfigurationError).Reason}
	}
	return p.AddToast(in)
}

// Remove dismisses a message through the Provider carried by ctx.
func Remove(ctx context.Context, id string) error {
	p, err := FromContext(ctx)
	if err != nil {
		return &ConfigurationError{Op: "remove", Reason: err.(*ConfigurationError).Reason}
	}
	return p.RemoveToast(id)
}
