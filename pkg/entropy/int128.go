package entropy

import (
	"encoding/binary"
	"math/big"
)

type Uint128 struct {
	Hi uint64
	Lo uint64
}

type Int128 struct {
	Hi int64
	Lo uint64
}

var nativeBigEndian = binary.NativeEndian.Uint16([]byte{0x00, 0x01}) == 0x0001

// 16 字节按本机字节序解释为一个 128 位整数
func uint128FromNative(p []byte) Uint128 {
	first := binary.NativeEndian.Uint64(p[0:8])
	second := binary.NativeEndian.Uint64(p[8:16])
	if nativeBigEndian {
		return Uint128{Hi: first, Lo: second}
	}
	return Uint128{Hi: second, Lo: first}
}

// Bytes returns u in big-endian order.
func (u Uint128) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], u.Hi)
	binary.BigEndian.PutUint64(b[8:16], u.Lo)
	return b
}

func (u Uint128) AppendBinary(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint64(b, u.Hi)
	return binary.BigEndian.AppendUint64(b, u.Lo), nil
}

func (u Uint128) MarshalBinary() ([]byte, error) {
	return u.AppendBinary(make([]byte, 0, 16))
}

func (u Uint128) Big() *big.Int {
	b := u.Bytes()
	return new(big.Int).SetBytes(b[:])
}

func (u Uint128) String() string {
	return u.Big().String()
}

// Uint128 returns the two's complement bit pattern of i.
func (i Int128) Uint128() Uint128 {
	return Uint128{Hi: uint64(i.Hi), Lo: i.Lo}
}

func (i Int128) AppendBinary(b []byte) ([]byte, error) {
	return i.Uint128().AppendBinary(b)
}

func (i Int128) MarshalBinary() ([]byte, error) {
	return i.Uint128().MarshalBinary()
}

func (i Int128) Big() *big.Int {
	v := i.Uint128().Big()
	if i.Hi < 0 {
		// v - 2^128
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return v
}

func (i Int128) String() string {
	return i.Big().String()
}
