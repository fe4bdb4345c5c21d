package syserr

import (
	"fmt"
	"syscall"
)

// Error is a nonzero status code reported by the operating system or by this
// module. Codes below InternalStart are raw OS codes.
type Error uint32

const (
	// 最高位为 1
	InternalStart uint32 = 0x80000000
	// 最高两位为 1, 自定义错误
	CustomStart uint32 = 0xC0000000
)

// 内部错误码
const (
	Unsupported         = Error(InternalStart + 0)
	ErrnoNotPositive    = Error(InternalStart + 1)
	WindowsRtlGenRandom = Error(InternalStart + 4)
	FailedRdrand        = Error(InternalStart + 5)
	NoRdrand            = Error(InternalStart + 6)
)

var descriptions = map[Error]string{
	Unsupported:         "getrandom: this target is not supported",
	ErrnoNotPositive:    "errno: did not return a positive value",
	WindowsRtlGenRandom: "RtlGenRandom: Windows system function failure",
	FailedRdrand:        "RDRAND: failed multiple times: CPU issue likely",
	NoRdrand:            "RDRAND: instruction not supported",
}

// FromErrno converts an errno into an OS coded Error.
func FromErrno(errno syscall.Errno) Error {
	if errno == 0 || int64(errno) < 0 || uint64(errno) >= uint64(InternalStart) {
		return ErrnoNotPositive
	}
	return Error(errno)
}

func (e Error) Code() uint32 {
	return uint32(e)
}

// RawOSError returns the OS error code if e came from the OS.
func (e Error) RawOSError() (int32, bool) {
	if uint32(e) < InternalStart {
		return int32(e), true
	}
	return 0, false
}

func (e Error) IsInternal() bool {
	return uint32(e) >= InternalStart
}

func (e Error) IsCustom() bool {
	return uint32(e) >= CustomStart
}

func (e Error) description() (string, bool) {
	desc, ok := descriptions[e]
	return desc, ok
}

func (e Error) Error() string {
	if errno, ok := e.RawOSError(); ok {
		return fmt.Sprintf("OS Error: %d", errno)
	}
	if desc, ok := e.description(); ok {
		return desc
	}
	return fmt.Sprintf("Unknown Error: %d", uint32(e))
}

func (e Error) GoString() string {
	if errno, ok := e.RawOSError(); ok {
		return fmt.Sprintf("SysError{os_error: %d}", errno)
	}
	if desc, ok := e.description(); ok {
		return fmt.Sprintf("SysError{internal_code: %d, description: %q}", uint32(e), desc)
	}
	return fmt.Sprintf("SysError{unknown_code: %d}", uint32(e))
}

// OS coded errors unwrap to syscall.Errno, so errors.Is(err, syscall.EINTR) works.
func (e Error) Unwrap() error {
	if errno, ok := e.RawOSError(); ok {
		return syscall.Errno(errno)
	}
	return nil
}
