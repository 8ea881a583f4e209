package xretry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("connection reset")

func TestDo_SucceedsAfterRetries(t *testing.T) {
	r := New(WithAttempts(4), WithBackoff(NoBackoff))
	var calls atomic.Int32

	err := r.Do(context.Background(), func(context.Context) error {
		if calls.Add(1) < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var retried []int
	r := New(WithAttempts(3), WithBackoff(NoBackoff), WithOnRetry(func(n int, _ error) {
		retried = append(retried, n)
	}))
	var calls int

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("find product: %w", errTransient)
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	require.NotEmpty(t, retried)
	assert.Equal(t, 1, retried[0])
}

func TestDo_NonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"permanent", Permanent(errTransient)},
		{"canceled", context.Canceled},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded)},
		{"custom retryable=false", breakerLike{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(WithAttempts(5), WithBackoff(NoBackoff))
			var calls int
			err := r.Do(context.Background(), func(context.Context) error {
				calls++
				return tt.err
			})
			assert.Error(t, err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDo_RetryIf(t *testing.T) {
	notFound := errors.New("not found")
	r := New(WithAttempts(5), WithBackoff(NoBackoff), WithRetryIf(func(err error) bool {
		return !errors.Is(err, notFound)
	}))
	var calls int
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return notFound
	})
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	r := New(WithAttempts(10), WithBackoff(FixedBackoff(time.Hour)))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Do(ctx, func(context.Context) error { return errTransient })
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDoWithResult(t *testing.T) {
	r := New(WithBackoff(NoBackoff))
	var calls int
	v, err := DoWithResult(context.Background(), r, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errTransient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestInvalidArgs(t *testing.T) {
	var nilR *Retryer
	assert.ErrorIs(t, nilR.Do(context.Background(), func(context.Context) error { return nil }), ErrNilRetryer)

	r := New()
	assert.ErrorIs(t, r.Do(nil, func(context.Context) error { return nil }), ErrNilContext) //nolint:staticcheck // 测试 nil ctx
	assert.ErrorIs(t, r.Do(context.Background(), nil), ErrNilFunc)

	_, err := DoWithResult[int](context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNilRetryer)
	_, err = DoWithResult[int](nil, r, nil) //nolint:staticcheck // 测试 nil ctx
	assert.ErrorIs(t, err, ErrNilContext)
	_, err = DoWithResult[int](context.Background(), r, nil)
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestFromConfig(t *testing.T) {
	r := FromConfig(Config{})
	assert.Equal(t, defaultAttempts, r.Attempts())

	r = FromConfig(Config{Attempts: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	assert.Equal(t, 5, r.Attempts())
	assert.LessOrEqual(t, r.backoff.NextDelay(10), 2*time.Millisecond)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	err := Permanent(errTransient)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, errTransient.Error(), err.Error())
	assert.False(t, IsRetryable(err))
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errTransient))
}

type breakerLike struct{}

func (breakerLike) Error() string   { return "breaker open" }
func (breakerLike) Retryable() bool { return false }
