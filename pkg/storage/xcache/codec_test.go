package xcache

import (
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, opts ...CodecOption) *Codec {
	t.Helper()
	c, err := NewCodec(opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	small := product{ID: "1", Name: "Pen", Price: 100}
	large := product{ID: "2", Name: strings.Repeat("long description ", 2000), Price: 200}

	tests := []struct {
		name     string
		value    product
		compress bool
		wantZstd bool
	}{
		{"small raw", small, false, false},
		{"small compress flag", small, true, false},
		{"large raw", large, false, false},
		{"large compressed", large, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := codec.Encode(tt.value, tt.compress)
			require.NoError(t, err)
			assert.Equal(t, tt.wantZstd, p.Compressed)
			assert.Equal(t, len(p.Data), p.Size)
			if tt.wantZstd {
				assert.Less(t, p.Size, p.OriginalSize)
			} else {
				assert.Equal(t, p.OriginalSize, p.Size)
			}

			var got product
			require.NoError(t, codec.Decode(p, &got))
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestCodec_Threshold(t *testing.T) {
	codec := newTestCodec(t, WithCompressThreshold(64))

	p, err := codec.Encode(sized(64), true)
	require.NoError(t, err)
	assert.False(t, p.Compressed, "size equal to threshold stays raw")

	p, err = codec.Encode(sized(65), true)
	require.NoError(t, err)
	assert.True(t, p.Compressed)
}

func TestCodec_IncompressibleStaysRaw(t *testing.T) {
	codec := newTestCodec(t, WithCompressThreshold(16))

	// 短数据经 zstd 帧头后只会变大
	p, err := codec.Encode("abcdefghijklmnopqrstuvwxyz", true)
	require.NoError(t, err)
	assert.False(t, p.Compressed)
}

func TestCodec_Canonical(t *testing.T) {
	codec := newTestCodec(t)

	a, err := codec.Encode(map[string]any{"b": 1, "a": "<x>"}, false)
	require.NoError(t, err)
	b, err := codec.Encode(map[string]any{"a": "<x>", "b": 1}, false)
	require.NoError(t, err)

	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, `{"a":"<x>","b":1}`, string(a.Data))
}

func TestCodec_Errors(t *testing.T) {
	codec := newTestCodec(t)

	t.Run("unserializable", func(t *testing.T) {
		_, err := codec.Encode(func() {}, true)
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("corrupted zstd", func(t *testing.T) {
		p := Payload{Data: []byte("not zstd"), Size: 8, Compressed: true, OriginalSize: 4096}
		var v string
		assert.ErrorIs(t, codec.Decode(p, &v), ErrCompression)
	})

	t.Run("corrupted json", func(t *testing.T) {
		p := Payload{Data: []byte(`{"id":`), Size: 6}
		var v product
		assert.ErrorIs(t, codec.Decode(p, &v), ErrDeserialization)
	})

	t.Run("type mismatch", func(t *testing.T) {
		p, err := codec.Encode([]int{1, 2}, false)
		require.NoError(t, err)
		var v product
		assert.ErrorIs(t, codec.Decode(p, &v), ErrDestination)
	})

	t.Run("nil destination", func(t *testing.T) {
		p, err := codec.Encode("v", false)
		require.NoError(t, err)
		assert.ErrorIs(t, codec.Decode(p, nil), ErrDestination)
		var v string
		assert.ErrorIs(t, codec.Decode(p, v), ErrDestination)
	})
}

func TestCodec_MaxDecodedSize(t *testing.T) {
	enc := newTestCodec(t)
	p, err := enc.Encode(sized(1<<20), true)
	require.NoError(t, err)
	require.True(t, p.Compressed)

	dec := newTestCodec(t, WithMaxDecodedSize(1024))
	var v string
	assert.ErrorIs(t, dec.Decode(p, &v), ErrCompression)
}

func TestCodec_EncoderLevel(t *testing.T) {
	codec := newTestCodec(t, WithEncoderLevel(zstd.SpeedBestCompression), WithCompressThreshold(-1), WithMaxDecodedSize(0))
	v := strings.Repeat("abc", 10000)

	p, err := codec.Encode(v, true)
	require.NoError(t, err)
	require.True(t, p.Compressed)

	var got string
	require.NoError(t, codec.Decode(p, &got))
	assert.Equal(t, v, got)
}
