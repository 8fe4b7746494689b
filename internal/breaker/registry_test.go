package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/mkuznecov/ticketgate/internal/domain"
)

func testRegistry(recovery time.Duration) *Registry {
	return NewRegistry(Config{FailureThreshold: 3, RecoveryTimeout: recovery}, nil)
}

func failingCall(calls *int) func() (any, error) {
	return func() (any, error) {
		*calls++
		return nil, errors.New("boom")
	}
}

func succeedingCall(calls *int) func() (any, error) {
	return func() (any, error) {
		*calls++
		return "ok", nil
	}
}

func TestRegistry_OpensAfterThresholdFailures(t *testing.T) {
	registry := testRegistry(time.Minute)

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := registry.Execute("Flight Service", failingCall(&calls))
		assert.True(t, domain.IsUnavailable(err))
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, gobreaker.StateOpen, registry.State("Flight Service"))

	// 4th call fails fast with no invocation
	_, err := registry.Execute("Flight Service", failingCall(&calls))
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 3, calls)
}

func TestRegistry_UnavailableErrorCarriesServiceName(t *testing.T) {
	registry := testRegistry(time.Minute)

	_, err := registry.Execute("Bonus Service", func() (any, error) {
		return nil, errors.New("boom")
	})

	var unavailable *domain.ServiceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Bonus Service", unavailable.Service)
}

func TestRegistry_HalfOpenTrialSuccessCloses(t *testing.T) {
	registry := testRegistry(50 * time.Millisecond)

	calls := 0
	for i := 0; i < 3; i++ {
		registry.Execute("Flight Service", failingCall(&calls))
	}
	assert.Equal(t, gobreaker.StateOpen, registry.State("Flight Service"))

	time.Sleep(60 * time.Millisecond)

	result, err := registry.Execute("Flight Service", succeedingCall(&calls))
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, gobreaker.StateClosed, registry.State("Flight Service"))

	// failure count was reset: two failures do not re-open
	registry.Execute("Flight Service", failingCall(&calls))
	registry.Execute("Flight Service", failingCall(&calls))
	assert.Equal(t, gobreaker.StateClosed, registry.State("Flight Service"))
}

func TestRegistry_HalfOpenTrialFailureReopens(t *testing.T) {
	registry := testRegistry(50 * time.Millisecond)

	calls := 0
	for i := 0; i < 3; i++ {
		registry.Execute("Ticket Service", failingCall(&calls))
	}

	time.Sleep(60 * time.Millisecond)

	_, err := registry.Execute("Ticket Service", failingCall(&calls))
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 4, calls)
	assert.Equal(t, gobreaker.StateOpen, registry.State("Ticket Service"))

	// timer restarted: immediate retry is rejected without invocation
	_, err = registry.Execute("Ticket Service", failingCall(&calls))
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 4, calls)
}

func TestRegistry_SuccessResetsFailureCount(t *testing.T) {
	registry := testRegistry(time.Minute)

	calls := 0
	registry.Execute("Flight Service", failingCall(&calls))
	registry.Execute("Flight Service", failingCall(&calls))
	registry.Execute("Flight Service", succeedingCall(&calls))
	registry.Execute("Flight Service", failingCall(&calls))
	registry.Execute("Flight Service", failingCall(&calls))

	assert.Equal(t, gobreaker.StateClosed, registry.State("Flight Service"))
}

func TestRegistry_BreakersAreIsolated(t *testing.T) {
	registry := testRegistry(time.Minute)

	calls := 0
	for i := 0; i < 3; i++ {
		registry.Execute("Flight Service", failingCall(&calls))
	}

	assert.Equal(t, gobreaker.StateOpen, registry.State("Flight Service"))
	assert.Equal(t, gobreaker.StateClosed, registry.State("Ticket Service"))

	result, err := registry.Execute("Ticket Service", succeedingCall(&calls))
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}
