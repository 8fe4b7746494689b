package breaker

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/mkuznecov/ticketgate/internal/domain"
)

// Config configures every breaker in a registry. FailureThreshold counts
// consecutive failures before the breaker opens; RecoveryTimeout is how long
// an open breaker waits before allowing a single trial call.
type Config struct {
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		RecoveryTimeout:  10 * time.Second,
	}
}

// StateChangeListener is notified on every breaker state transition.
type StateChangeListener func(service string, from, to gobreaker.State)

// Registry owns one circuit breaker per downstream service. It is built once
// at startup and handed to each client, so there is no ambient global state.
type Registry struct {
	cfg       Config
	breakers  map[string]*gobreaker.CircuitBreaker
	listeners []StateChangeListener
	mu        sync.RWMutex
	logger    *log.Entry
}

func NewRegistry(cfg Config, logger *log.Entry) *Registry {
	if logger == nil {
		logger = log.New().WithField("component", "breaker")
	}
	return &Registry{
		cfg:      cfg,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		logger:   logger,
	}
}

// OnStateChange registers a listener. Must be called before the first
// Execute for the transitions to be observed from the start.
func (r *Registry) OnStateChange(listener StateChangeListener) {
	if listener == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, listener)
	r.mu.Unlock()
}

// Execute runs fn through the breaker owned by service. Any error out of fn
// counts as a breaker failure; an open breaker rejects the call without
// invoking fn. Both cases surface as the service's unavailability signal.
func (r *Registry) Execute(service string, fn func() (any, error)) (any, error) {
	cb := r.getOrCreate(service)

	result, err := cb.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			r.logger.WithField("service", service).Warn("circuit breaker open, request rejected")
		}
		return nil, domain.NewServiceUnavailable(service)
	}
	return result, nil
}

// State returns the current breaker state for service, or closed if the
// service has not been called yet.
func (r *Registry) State(service string) gobreaker.State {
	r.mu.RLock()
	cb, ok := r.breakers[service]
	r.mu.RUnlock()
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

func (r *Registry) getOrCreate(service string) *gobreaker.CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[service]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok = r.breakers[service]; ok {
		return cb
	}

	threshold := r.cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        service,
		MaxRequests: 1, // single trial call in half-open
		Timeout:     r.cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.handleStateChange(name, from, to)
		},
	}

	cb = gobreaker.NewCircuitBreaker(settings)
	r.breakers[service] = cb
	r.logger.WithField("service", service).Info("created circuit breaker")
	return cb
}

func (r *Registry) handleStateChange(service string, from, to gobreaker.State) {
	r.logger.WithFields(log.Fields{
		"service": service,
		"from":    from.String(),
		"to":      to.String(),
	}).Warn("circuit breaker state changed")

	r.mu.RLock()
	listeners := r.listeners
	r.mu.RUnlock()
	for _, l := range listeners {
		l(service, from, to)
	}
}
