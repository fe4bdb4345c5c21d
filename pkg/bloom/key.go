package bloom

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"math"
)

// KeyFunc appends the byte representation of item to dst. It must be
// deterministic: equal items produce equal bytes.
type KeyFunc[T any] func(dst []byte, item T) []byte

// AppendKey is the default KeyFunc. Byte slices and strings are used as is,
// fixed width numbers in native byte order, and types implementing
// encoding.BinaryAppender or encoding.BinaryMarshaler through those methods.
// Anything else falls back to its %#v formatting.
func AppendKey[T any](dst []byte, item T) []byte {
	switch v := any(item).(type) {
	case []byte:
		return append(dst, v...)
	case string:
		return append(dst, v...)
	case bool:
		if v {
			return append(dst, 1)
		}
		return append(dst, 0)
	case uint8:
		return append(dst, v)
	case int8:
		return append(dst, byte(v))
	case uint16:
		return binary.NativeEndian.AppendUint16(dst, v)
	case int16:
		return binary.NativeEndian.AppendUint16(dst, uint16(v))
	case uint32:
		return binary.NativeEndian.AppendUint32(dst, v)
	case int32:
		return binary.NativeEndian.AppendUint32(dst, uint32(v))
	case uint64:
		return binary.NativeEndian.AppendUint64(dst, v)
	case int64:
		return binary.NativeEndian.AppendUint64(dst, uint64(v))
	case uint:
		return binary.NativeEndian.AppendUint64(dst, uint64(v))
	case int:
		return binary.NativeEndian.AppendUint64(dst, uint64(v))
	case uintptr:
		return binary.NativeEndian.AppendUint64(dst, uint64(v))
	case float32:
		return binary.NativeEndian.AppendUint32(dst, math.Float32bits(v))
	case float64:
		return binary.NativeEndian.AppendUint64(dst, math.Float64bits(v))
	case encoding.BinaryAppender:
		if b, err := v.AppendBinary(dst); err == nil {
			return b
		}
	case encoding.BinaryMarshaler:
		if b, err := v.MarshalBinary(); err == nil {
			return append(dst, b...)
		}
	}
	return fmt.Appendf(dst, "%#v", item)
}
