package bloom

import (
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"

	bbloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloomkit/pkg/entropy"
)

func TestBloom(t *testing.T) {
	N := 10000
	bloom := New[[]byte](uint64(N), 0.001)
	for i := 0; i < N; i++ {
		bloom.Insert([]byte(strconv.Itoa(i)))
	}

	for i := 0; i < N; i++ {
		assert.True(t, bloom.Contains([]byte(strconv.Itoa(i))))
	}
}

func TestEmptyFilter(t *testing.T) {
	f := New[string](1000, 0.01)
	assert.Equal(t, uint64(0), f.PopCount())
	assert.False(t, f.Contains("anything"))
	assert.Equal(t, 0.0, f.EstimatedFPRate())
}

func TestSizing(t *testing.T) {
	f := New[uint64](1_000_000, 0.01)
	assert.Equal(t, uint64(9585059), f.M())
	assert.Equal(t, uint32(7), f.K())
	assert.Equal(t, uint64(1198132), f.ByteCount())
	assert.Equal(t, uint64(1198132*8), f.Cap())
	// 位数组必须按 byteCount 分配并清零
	assert.Len(t, f.bitArray, 1198132)
	assert.Equal(t, uint64(0), f.PopCount())
}

func TestTinyFilter(t *testing.T) {
	// m = 5, m / 8 == 0
	f := New[int](1, 0.1)
	assert.Equal(t, uint64(5), f.M())
	assert.Equal(t, uint64(1), f.ByteCount())
	for i := range 100 {
		f.Insert(i)
	}
	for i := range 100 {
		assert.True(t, f.Contains(i))
	}
}

func TestInvalidParameters(t *testing.T) {
	f := New[int](0, 0)
	assert.Equal(t, OptimalM(1, 0.01), f.M())
	assert.Equal(t, OptimalK(0.01), f.K())

	f = New[int](10, 1.5)
	assert.Equal(t, OptimalK(0.01), f.K())
}

func TestNoFalseNegatives(t *testing.T) {
	const N = 50_000
	f := New[uint64](N, 0.01)
	rnd := rand.New(rand.NewPCG(0xa30378d2, 0))
	items := make([]uint64, N)
	for i := range items {
		items[i] = rnd.Uint64()
		f.Insert(items[i])
		require.True(t, f.Contains(items[i]))
	}
	// 后续插入不会影响已插入的元素
	for _, it := range items {
		require.True(t, f.Contains(it))
	}
}

func TestDeterministic(t *testing.T) {
	f := New[string](1000, 0.01)
	for i := range 500 {
		f.Insert("key" + strconv.Itoa(i))
	}
	for i := range 2000 {
		key := "probe" + strconv.Itoa(i)
		first := f.Contains(key)
		for range 3 {
			assert.Equal(t, first, f.Contains(key))
		}
	}
}

func TestMonotonic(t *testing.T) {
	f := New[int](2000, 0.05)
	snapshot := make(BitArray, len(f.bitArray))
	last := uint64(0)
	for i := range 4000 {
		copy(snapshot, f.bitArray)
		f.Insert(i)
		for j := range snapshot {
			require.Equal(t, snapshot[j], snapshot[j]&f.bitArray[j], "bit cleared in byte %d", j)
		}
		pc := f.PopCount()
		require.GreaterOrEqual(t, pc, last)
		last = pc
	}
}

func TestSameSeeds(t *testing.T) {
	a := New[string](1000, 0.01, WithSeeds[string](1, 2))
	b := New[string](1000, 0.01, WithSeeds[string](1, 2))
	c := New[string](1000, 0.01, WithSeeds[string](3, 4))
	for i := range 100 {
		key := strconv.Itoa(i)
		a.Insert(key)
		b.Insert(key)
		c.Insert(key)
	}
	assert.Equal(t, a.bitArray, b.bitArray)
	assert.NotEqual(t, a.bitArray, c.bitArray)
}

func TestRandomSeeds(t *testing.T) {
	a := New[string](1000, 0.01)
	assert.NotEqual(t, a.seeds[0], a.seeds[1])
}

func TestKeyFunc(t *testing.T) {
	type user struct {
		ID   int
		Name string
	}
	f := New[user](100, 0.01, WithKeyFunc[user](func(dst []byte, u user) []byte {
		return strconv.AppendInt(dst, int64(u.ID), 10)
	}))
	f.Insert(user{ID: 7, Name: "a"})
	// 只按 ID 哈希
	assert.True(t, f.Contains(user{ID: 7, Name: "b"}))
}

func TestLocationWraparound(t *testing.T) {
	// (MaxUint64 - 3) + 2 * 5 回绕为 6
	byteIdx, bit := location(math.MaxUint64-3, 5, 2)
	assert.Equal(t, uint64(0), byteIdx)
	assert.Equal(t, uint8(6), bit)

	byteIdx, bit = location(17, 3, 0)
	assert.Equal(t, uint64(2), byteIdx)
	assert.Equal(t, uint8(1), bit)

	byteIdx, bit = location(0, math.MaxUint64, 1)
	assert.Equal(t, uint64(math.MaxUint64/8), byteIdx)
	assert.Equal(t, uint8(7), bit)
}

func TestBitArrayFold(t *testing.T) {
	b := newBitArray(3)
	b.set(10, 0)
	assert.Equal(t, BitArray{0, 0b10000000, 0}, b)
	assert.True(t, b.get(1, 0))
	assert.True(t, b.get(4, 0))

	b.set(math.MaxUint64/8, 7)
	// (2^61 - 1) % 3 == 1
	assert.Equal(t, BitArray{0, 0b10000001, 0}, b)
	assert.False(t, b.get(0, 7))
	assert.Equal(t, uint64(2), b.popCount())
}

func TestBitmask(t *testing.T) {
	b := newBitArray(1)
	for bit := range uint8(8) {
		b.set(0, bit)
	}
	assert.Equal(t, BitArray{0xff}, b)

	b = newBitArray(1)
	b.set(0, 0)
	assert.Equal(t, byte(0x80), b[0])
	b = newBitArray(1)
	b.set(0, 7)
	assert.Equal(t, byte(0x01), b[0])
}

func TestEstimatedFPRate(t *testing.T) {
	const N = 10_000
	f := New[int](N, 0.01)
	for i := range N {
		f.Insert(i)
	}
	assert.InDelta(t, 0.5, f.FillRatio(), 0.05)
	assert.InDelta(t, 0.01, f.EstimatedFPRate(), 0.005)
}

func TestSyncFilter(t *testing.T) {
	const (
		workers = 8
		per     = 1000
	)
	f := NewSync[int](workers*per, 0.01)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range per {
				f.Insert(w*per + i)
				_ = f.Contains(i)
			}
		}()
	}
	wg.Wait()
	for i := range workers * per {
		assert.True(t, f.Contains(i))
	}
	assert.NotZero(t, f.PopCount())
}

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("inserts one million items")
	}
	const (
		N       = 1_000_000
		samples = 1_000_000
	)
	buf := entropy.NewDefault()
	f := New[entropy.Uint128](N, 0.01)

	inserted := make(map[entropy.Uint128]struct{}, N)
	values := make([]entropy.Uint128, 0, N)
	for len(values) < N {
		v, err := buf.Uint128()
		require.NoError(t, err)
		if _, ok := inserted[v]; ok {
			continue
		}
		inserted[v] = struct{}{}
		values = append(values, v)
		f.Insert(v)
	}
	for _, v := range values {
		require.True(t, f.Contains(v))
	}

	var fp, tested int
	for tested < samples {
		v, err := buf.Uint128()
		require.NoError(t, err)
		if _, ok := inserted[v]; ok {
			continue
		}
		tested++
		if f.Contains(v) {
			fp++
		}
	}
	assert.InDelta(t, 0.01, float64(fp)/float64(tested), 0.002)
}

func BenchmarkBloomAdd(b *testing.B) {
	N := 1_000_000
	bloom := New[[]byte](uint64(N), 0.001)
	data := make([][]byte, N)
	for i := range data {
		data[i] = []byte(strconv.Itoa(rand.Int()))
	}
	idx := 0
	for b.Loop() {
		bloom.Insert(data[idx])
		idx++
		if idx == N {
			idx = 0
		}
	}
}

func BenchmarkBloomContains(b *testing.B) {
	N := 1_000_000
	bloom := New[[]byte](uint64(N), 0.001)
	data := make([][]byte, N)
	for i := range data {
		data[i] = []byte(strconv.Itoa(rand.Int()))
	}
	for i := 0; i < N; i++ {
		bloom.Insert(data[i])
	}

	idx := 0
	for b.Loop() {
		if !bloom.Contains(data[idx]) {
			b.Fail()
		}
		idx++
		if idx == N {
			idx = 0
		}
	}
}

func BenchmarkReferenceAdd(b *testing.B) {
	N := 1_000_000
	bloom := bbloom.NewWithEstimates(uint(N), 0.001)
	data := make([][]byte, N)
	for i := range data {
		data[i] = []byte(strconv.Itoa(rand.Int()))
	}
	idx := 0
	for b.Loop() {
		bloom.Add(data[idx])
		idx++
		if idx == N {
			idx = 0
		}
	}
}

func BenchmarkReferenceContains(b *testing.B) {
	N := 1_000_000
	bloom := bbloom.NewWithEstimates(uint(N), 0.001)
	data := make([][]byte, N)
	for i := range data {
		data[i] = []byte(strconv.Itoa(rand.Int()))
	}
	for i := 0; i < N; i++ {
		bloom.Add(data[i])
	}

	idx := 0
	for b.Loop() {
		if !bloom.Test(data[idx]) {
			b.Fail()
		}
		idx++
		if idx == N {
			idx = 0
		}
	}
}
