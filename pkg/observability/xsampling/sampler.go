package xsampling

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Sampler 采样策略，返回 true 表示记录。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

type constSampler bool

func (s constSampler) ShouldSample(context.Context) bool { return bool(s) }

// Always 全采样。
func Always() Sampler { return constSampler(true) }

// Never 不采样。
func Never() Sampler { return constSampler(false) }

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

// RateSampler 固定比率随机采样。
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建比率采样器，rate 取值 [0, 1]。
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

func (s *RateSampler) ShouldSample(context.Context) bool {
	return sampleRandom(s.rate)
}

// Rate 采样比率。
func (s *RateSampler) Rate() float64 { return s.rate }

// KeyFunc 从 ctx 提取采样 key。
type KeyFunc func(ctx context.Context) string

// KeyBasedSampler 按 key 一致性采样。key 为空时退化为随机采样。
type KeyBasedSampler struct {
	rate    float64
	keyFunc KeyFunc
}

// NewKeyBasedSampler 创建一致性采样器。
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	return &KeyBasedSampler{rate: rate, keyFunc: keyFunc}, nil
}

func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	}
	var key string
	if ctx != nil {
		key = s.keyFunc(ctx)
	}
	if key == "" {
		return sampleRandom(s.rate)
	}
	// hash == MaxUint64 时结果为 1.0，rate < 1 时不会通过
	return float64(xxhash.Sum64String(key))/float64(math.MaxUint64) < s.rate
}

// Rate 采样比率。
func (s *KeyBasedSampler) Rate() float64 { return s.rate }

func sampleRandom(rate float64) bool {
	switch {
	case rate <= 0:
		return false
	case rate >= 1:
		return true
	}
	return rand.Float64() < rate
}

var (
	_ Sampler = constSampler(false)
	_ Sampler = (*RateSampler)(nil)
	_ Sampler = (*KeyBasedSampler)(nil)
)
