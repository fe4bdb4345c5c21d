package entropy

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	BufferLength = 1024

	// 最宽的整数为 128 位
	maxWidth = 16
)

type Option struct {
	// 缓冲区大小, 必须大于 maxWidth
	Size int

	// 为 nil 时使用 PlatformSource()
	Source Source
}

var DefaultOptions = Option{
	Size: BufferLength,
}

// Buffer hands out random integers by slicing a fixed block of bytes that is
// refilled from a Source.
//
// Bytes in [0, index) have been handed out since the last refill and are never
// returned again. A read that does not fit before the end of the buffer
// refills the whole buffer and restarts at offset 0, discarding the unread tail.
type Buffer struct {
	mu sync.Mutex

	src         Source
	buf         []byte
	index       int
	initialized bool

	// 成功的填充次数, 包括第一次初始化
	refills uint64
}

func New(option Option) *Buffer {
	size := option.Size
	if size <= 0 {
		size = BufferLength
	}
	if size <= maxWidth {
		size = maxWidth + 1
	}
	src := option.Source
	if src == nil {
		src = PlatformSource()
	}
	return &Buffer{
		src: src,
		buf: make([]byte, size),
	}
}

func NewDefault() *Buffer {
	return New(DefaultOptions)
}

var (
	defaultOnce   sync.Once
	defaultBuffer *Buffer
)

// Default returns a process-wide Buffer backed by the platform source.
// It is created on first use.
func Default() *Buffer {
	defaultOnce.Do(func() {
		defaultBuffer = NewDefault()
	})
	return defaultBuffer
}

// Cursor returns the offset of the next unread byte.
func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index
}

func (b *Buffer) Refills() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refills
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

// fill overwrites the whole buffer from the source. On failure the buffer is
// left uninitialized so the next read tries again.
func (b *Buffer) fill() error {
	if err := b.src.Fill(b.buf); err != nil {
		b.initialized = false
		logrus.Debugf("fill entropy buffer failed, err:%v", err)
		return fmt.Errorf("entropy: fill buffer: %w", err)
	}
	b.initialized = true
	b.index = 0
	b.refills++
	return nil
}

// requires b.mu held. The returned slice aliases b.buf.
func (b *Buffer) slice(w int) ([]byte, error) {
	if w <= 0 || w >= len(b.buf) {
		panic(fmt.Sprintf("entropy: invalid slice size %d for buffer of %d bytes", w, len(b.buf)))
	}

	if !b.initialized {
		if err := b.fill(); err != nil {
			return nil, err
		}
		logrus.Debugf("entropy buffer initialized, len=%d", len(b.buf))
	}

	start := b.index
	if start+w >= len(b.buf) {
		logrus.Debugf("entropy buffer exhausted, cursor=%d, want=%d, discard %d bytes", start, w, len(b.buf)-start)
		b.initialized = false
		if err := b.fill(); err != nil {
			return nil, err
		}
		start = 0
	}

	b.index = start + w
	return b.buf[start:b.index], nil
}

func (b *Buffer) read(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slice(len(p))
	if err != nil {
		return err
	}
	copy(p, s)
	return nil
}

// Read fills p with fresh random bytes. At most Len()-1 bytes are served per
// call.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := min(len(p), len(b.buf)-1)
	if err := b.read(p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Buffer) Uint8() (uint8, error) {
	var p [1]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) Int8() (int8, error) {
	v, err := b.Uint8()
	return int8(v), err
}

func (b *Buffer) Uint16() (uint16, error) {
	var p [2]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint16(p[:]), nil
}

func (b *Buffer) Int16() (int16, error) {
	v, err := b.Uint16()
	return int16(v), err
}

func (b *Buffer) Uint32() (uint32, error) {
	var p [4]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(p[:]), nil
}

func (b *Buffer) Int32() (int32, error) {
	v, err := b.Uint32()
	return int32(v), err
}

func (b *Buffer) Uint64() (uint64, error) {
	var p [8]byte
	if err := b.read(p[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(p[:]), nil
}

func (b *Buffer) Int64() (int64, error) {
	v, err := b.Uint64()
	return int64(v), err
}

func (b *Buffer) Uint128() (Uint128, error) {
	var p [maxWidth]byte
	if err := b.read(p[:]); err != nil {
		return Uint128{}, err
	}
	return uint128FromNative(p[:]), nil
}

func (b *Buffer) Int128() (Int128, error) {
	v, err := b.Uint128()
	return Int128{Hi: int64(v.Hi), Lo: v.Lo}, err
}
