package bloom

import (
	"math/bits"
	"math/rand/v2"

	"github.com/spaolacci/murmur3"
)

// bit 0 是字节的最高位
var bitmask = [8]byte{
	0b10000000,
	0b01000000,
	0b00100000,
	0b00010000,
	0b00001000,
	0b00000100,
	0b00000010,
	0b00000001,
}

type BitArray []byte

func newBitArray(byteCount uint64) BitArray {
	return make(BitArray, byteCount)
}

// byteIdx 超出范围时对长度取模
func (b BitArray) set(byteIdx uint64, bit uint8) {
	b[byteIdx%uint64(len(b))] |= bitmask[bit]
}

func (b BitArray) get(byteIdx uint64, bit uint8) bool {
	return b[byteIdx%uint64(len(b))]&bitmask[bit] != 0
}

func (b BitArray) popCount() uint64 {
	var n uint64
	for _, c := range b {
		n += uint64(bits.OnesCount8(c))
	}
	return n
}

// Filter is a bloom filter over items of type T. Each item is hashed twice
// with per-filter random seeds; the k bit positions are derived from the two
// hashes by double hashing.
//
// A Filter is not safe for concurrent use, see SyncFilter.
type Filter[T any] struct {
	bitArray BitArray

	// 最优位数组长度, 仅用于推导 byteCount
	m uint64

	// m / 8, 实际分配的字节数
	byteCount uint64

	// 哈希轮数
	k uint32

	seeds [2]uint32
	key   KeyFunc[T]
}

type Option[T any] func(*Filter[T])

// WithKeyFunc sets how items are turned into bytes before hashing.
func WithKeyFunc[T any](fn KeyFunc[T]) Option[T] {
	return func(f *Filter[T]) {
		f.key = fn
	}
}

// WithSeeds fixes the two hash seeds. Filters built with the same seeds and
// sizing set the same bits for the same items.
func WithSeeds[T any](seed1, seed2 uint32) Option[T] {
	return func(f *Filter[T]) {
		f.seeds = [2]uint32{seed1, seed2}
	}
}

// n 代表预期的元素个数
// p 代表错误率, 当布隆过滤器判断某个元素存在时，实际上该元素并不在集合中的概率
func New[T any](n uint64, p float64, opts ...Option[T]) *Filter[T] {
	if n == 0 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}

	m := OptimalM(n, p)
	byteCount := m / 8
	if byteCount == 0 {
		byteCount = 1
	}

	f := &Filter[T]{
		bitArray:  newBitArray(byteCount),
		m:         m,
		byteCount: byteCount,
		k:         OptimalK(p),
		seeds:     randomSeeds(),
		key:       AppendKey[T],
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func randomSeeds() [2]uint32 {
	s1 := rand.Uint32()
	s2 := rand.Uint32()
	for s2 == s1 {
		s2 = rand.Uint32()
	}
	return [2]uint32{s1, s2}
}

func (f *Filter[T]) hashPair(item T) (uint64, uint64) {
	var scratch [64]byte
	data := f.key(scratch[:0], item)
	return murmur3.Sum64WithSeed(data, f.seeds[0]), murmur3.Sum64WithSeed(data, f.seeds[1])
}

// location 返回第 round 轮的 (字节下标, 位下标), 加法和乘法在 uint64 上回绕
func location(h1, h2 uint64, round uint32) (uint64, uint8) {
	idx := h1 + uint64(round)*h2
	return idx / 8, uint8(idx % 8)
}

func (f *Filter[T]) Insert(item T) {
	h1, h2 := f.hashPair(item)
	for i := uint32(0); i < f.k; i++ {
		f.bitArray.set(location(h1, h2, i))
	}
}

func (f *Filter[T]) Contains(item T) bool {
	h1, h2 := f.hashPair(item)
	for i := uint32(0); i < f.k; i++ {
		if !f.bitArray.get(location(h1, h2, i)) {
			return false
		}
	}
	return true
}

func (f *Filter[T]) M() uint64 {
	return f.m
}

func (f *Filter[T]) K() uint32 {
	return f.k
}

func (f *Filter[T]) ByteCount() uint64 {
	return f.byteCount
}

// Cap returns the number of addressable bits, byteCount * 8.
func (f *Filter[T]) Cap() uint64 {
	return f.byteCount * 8
}

func (f *Filter[T]) PopCount() uint64 {
	return f.bitArray.popCount()
}

func (f *Filter[T]) FillRatio() float64 {
	return float64(f.PopCount()) / float64(f.Cap())
}

// EstimatedFPRate is the false positive probability implied by the current
// fill ratio.
func (f *Filter[T]) EstimatedFPRate() float64 {
	r := f.FillRatio()
	p := 1.0
	for i := uint32(0); i < f.k; i++ {
		p *= r
	}
	return p
}
