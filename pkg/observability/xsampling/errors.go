package xsampling

import "errors"

var (
	// ErrInvalidRate 采样比率不在 [0, 1] 内或为 NaN。
	ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

	// ErrNilKeyFunc KeyBasedSampler 缺少 keyFunc。
	ErrNilKeyFunc = errors.New("xsampling: keyFunc must not be nil")
)
