package xcache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/omeyang/shopcache/pkg/util/xjson"
)

const (
	// CompressThreshold 原始大小超过此值才尝试压缩（10KiB）。
	CompressThreshold = 10 * 1024

	// DefaultMaxDecodedSize 解压后允许的最大字节数，防止损坏的长度头耗尽内存。
	DefaultMaxDecodedSize = 64 << 20

	maxInt = int(^uint(0) >> 1)
)

// Payload 编码后的条目负载，创建后不可修改。
type Payload struct {
	// Data 存储的字节（可能已压缩）。
	Data []byte
	// Size 存储大小，即 len(Data)，计入字节预算。
	Size int
	// Compressed 是否为 zstd 压缩数据。
	Compressed bool
	// OriginalSize 压缩前的规范化 JSON 大小。
	OriginalSize int
}

// CodecOption 配置 Codec。
type CodecOption func(*codecOptions)

type codecOptions struct {
	threshold      int
	maxDecodedSize uint64
	level          zstd.EncoderLevel
}

// WithCompressThreshold 设置压缩阈值，n <= 0 忽略。
func WithCompressThreshold(n int) CodecOption {
	return func(o *codecOptions) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithMaxDecodedSize 设置解压后的最大字节数，n == 0 忽略。
func WithMaxDecodedSize(n uint64) CodecOption {
	return func(o *codecOptions) {
		if n > 0 {
			o.maxDecodedSize = n
		}
	}
}

// WithEncoderLevel 设置 zstd 压缩级别，默认 SpeedDefault。
func WithEncoderLevel(level zstd.EncoderLevel) CodecOption {
	return func(o *codecOptions) {
		o.level = level
	}
}

// Codec 规范化 JSON + 可选 zstd 压缩。并发安全。
type Codec struct {
	threshold  int
	maxDecoded int
	enc        *zstd.Encoder
	dec        *zstd.Decoder
}

// NewCodec 创建编解码器。
func NewCodec(opts ...CodecOption) (*Codec, error) {
	o := codecOptions{
		threshold:      CompressThreshold,
		maxDecodedSize: DefaultMaxDecodedSize,
		level:          zstd.SpeedDefault,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	// EncodeAll/DecodeAll 无状态，单个实例可在 goroutine 间共享
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(o.level),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create encoder: %w", ErrCompression, err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(o.maxDecodedSize),
	)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("%w: create decoder: %w", ErrCompression, err)
	}
	return &Codec{
		threshold:  o.threshold,
		maxDecoded: int(min(o.maxDecodedSize, uint64(maxInt))),
		enc:        enc,
		dec:        dec,
	}, nil
}

// Encode 规范化序列化 v；compress 为 true 且原始大小超过阈值时尝试压缩。
// 压缩结果不小于原始数据时保留原始数据。
func (c *Codec) Encode(v any, compress bool) (Payload, error) {
	raw, err := xjson.Canonical(v)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	p := Payload{Data: raw, Size: len(raw), OriginalSize: len(raw)}
	if !compress || len(raw) <= c.threshold {
		return p, nil
	}

	packed := c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
	if len(packed) >= len(raw) {
		return p, nil
	}
	return Payload{Data: packed, Size: len(packed), Compressed: true, OriginalSize: len(raw)}, nil
}

// Decode 把 p 还原到 dst（必须是非 nil 指针）。
//
// 负载本身损坏时返回 [ErrCompression] 或 [ErrDeserialization]；
// 负载完好但 dst 无效或类型不兼容时返回 [ErrDestination]。
func (c *Codec) Decode(p Payload, dst any) error {
	data := p.Data
	if p.Compressed {
		out, err := c.dec.DecodeAll(data, make([]byte, 0, max(0, min(p.OriginalSize, c.maxDecoded))))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCompression, err)
		}
		data = out
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var invalid *json.InvalidUnmarshalError
		var mismatch *json.UnmarshalTypeError
		if errors.As(err, &invalid) || errors.As(err, &mismatch) {
			return fmt.Errorf("%w: %w", ErrDestination, err)
		}
		return fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return nil
}

// Close 释放解码器资源。Close 后不可再使用。
func (c *Codec) Close() {
	c.dec.Close()
	_ = c.enc.Close()
}
