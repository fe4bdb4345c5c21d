//go:build windows

package entropy

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"

	"bloomkit/pkg/syserr"
)

const (
	bcryptUseSystemPreferredRNG = 0x00000002

	// BCryptGenRandom 单次最多写入的字节数
	maxChunk = math.MaxInt32
)

var (
	modbcrypt           = windows.NewLazySystemDLL("bcrypt.dll")
	procBCryptGenRandom = modbcrypt.NewProc("BCryptGenRandom")
)

// PlatformSource returns the system preferred RNG of BCryptGenRandom.
func PlatformSource() Source {
	return BCryptSource{}
}

type BCryptSource struct{}

func (BCryptSource) Fill(p []byte) error {
	if err := procBCryptGenRandom.Find(); err != nil {
		return fmt.Errorf("load BCryptGenRandom: %w", syserr.WindowsRtlGenRandom)
	}
	for len(p) > 0 {
		chunk := p[:min(len(p), maxChunk)]
		r, _, _ := procBCryptGenRandom.Call(
			0,
			uintptr(unsafe.Pointer(&chunk[0])),
			uintptr(len(chunk)),
			bcryptUseSystemPreferredRNG,
		)
		if status := uint32(r); ntError(status) {
			return syserr.Error(status ^ (1 << 31))
		}
		p = p[len(chunk):]
	}
	return nil
}

// NTSTATUS 最高两位为 11 表示错误
func ntError(status uint32) bool {
	return status>>30 == 0b11
}
