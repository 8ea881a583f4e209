package xbreaker

import "github.com/sony/gobreaker/v2"

type (
	Counts = gobreaker.Counts
	State  = gobreaker.State
)

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

var (
	ErrOpenState       = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)
