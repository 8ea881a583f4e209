package xbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/shopcache/pkg/resilience/xretry"
)

var errDB = errors.New("server selection timeout")

func fail(context.Context) error { return errDB }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)
	b := New("mongo", Config{ConsecutiveFailures: 3, Timeout: time.Hour},
		WithOnStateChange(func(name string, from, to State) {
			mu.Lock()
			transitions = append(transitions, fmt.Sprintf("%s:%s->%s", name, from, to))
			mu.Unlock()
		}))

	for range 3 {
		assert.ErrorIs(t, b.Do(context.Background(), fail), errDB)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, IsOpen(err))
	assert.True(t, IsBreakerError(err))

	var be *BreakerError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "mongo", be.Name)
	assert.Equal(t, StateOpen, be.State)
	assert.False(t, be.Retryable())
	assert.Equal(t, "breaker mongo: circuit breaker is open", be.Error())

	mu.Lock()
	assert.Equal(t, []string{"mongo:closed->open"}, transitions)
	mu.Unlock()
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("mongo", Config{ConsecutiveFailures: 1, Timeout: 20 * time.Millisecond})
	require.Error(t, b.Do(context.Background(), fail))
	require.Equal(t, StateOpen, b.State())

	require.Eventually(t, func() bool { return b.State() == StateHalfOpen }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_SuccessPolicy(t *testing.T) {
	notFound := errors.New("no documents")
	b := New("mongo", Config{ConsecutiveFailures: 1}, WithSuccessPolicy(func(err error) bool {
		return err == nil || errors.Is(err, notFound)
	}))

	for range 5 {
		assert.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return notFound }), notFound)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_TripPolicy(t *testing.T) {
	b := New("mongo", Config{}, WithTripPolicy(FailureRatio(0.5, 4)))
	ok := func(context.Context) error { return nil }

	_ = b.Do(context.Background(), ok)
	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), ok)
	assert.Equal(t, StateClosed, b.State(), "below min requests")
	_ = b.Do(context.Background(), fail)
	assert.Equal(t, StateOpen, b.State())
}

func TestExecute(t *testing.T) {
	b := New("mongo", Config{})

	v, err := Execute(context.Background(), b, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Execute(ctx, b, func(context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(1), b.Counts().Requests, "canceled ctx is not counted")
}

func TestInvalidArgs(t *testing.T) {
	b := New("x", Config{})
	assert.ErrorIs(t, b.Do(context.Background(), nil), ErrNilFunc)
	_, err := Execute[int](context.Background(), nil, func(context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrNilBreaker)
	_, err = Execute[int](nil, b, func(context.Context) (int, error) { return 0, nil }) //nolint:staticcheck // 测试 nil ctx
	assert.ErrorIs(t, err, ErrNilContext)
	assert.Equal(t, "x", b.Name())
}

func TestWrap_PassesThroughInner(t *testing.T) {
	inner := &BreakerError{Err: ErrOpenState, Name: "inner", State: StateOpen}
	assert.Same(t, inner, wrap(inner, "outer"))
	assert.NoError(t, wrap(nil, "outer"))

	var be *BreakerError
	require.ErrorAs(t, wrap(ErrTooManyRequests, "outer"), &be)
	assert.Equal(t, StateHalfOpen, be.State)
	assert.True(t, IsTooManyRequests(be))
	assert.Equal(t, "circuit breaker is open", (&BreakerError{Err: ErrOpenState}).Error())
}

func TestPolicies(t *testing.T) {
	assert.False(t, ConsecutiveFailures(3).ReadyToTrip(Counts{ConsecutiveFailures: 2}))
	assert.True(t, ConsecutiveFailures(3).ReadyToTrip(Counts{ConsecutiveFailures: 3}))
	assert.True(t, ConsecutiveFailures(0).ReadyToTrip(Counts{ConsecutiveFailures: 1}))

	assert.False(t, FailureRatio(0.5, 0).ReadyToTrip(Counts{}))
	assert.True(t, FailureRatio(2, 1).ReadyToTrip(Counts{Requests: 1, TotalFailures: 1}))
	assert.True(t, FailureRatio(-1, 1).ReadyToTrip(Counts{Requests: 1}))
}

func TestRetryDoesNotRetryRejections(t *testing.T) {
	b := New("mongo", Config{ConsecutiveFailures: 2, Timeout: time.Hour})
	r := xretry.New(xretry.WithAttempts(5), xretry.WithBackoff(xretry.NoBackoff))

	var calls int
	err := r.Do(context.Background(), func(ctx context.Context) error {
		return b.Do(ctx, func(context.Context) error {
			calls++
			return errDB
		})
	})
	assert.True(t, IsOpen(err))
	assert.Equal(t, 2, calls, "retries stop once the breaker opens")
}
