package entropy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"bloomkit/pkg/syserr"
)

const DefaultDevicePath = "/dev/urandom"

var ErrShortRead = errors.New("entropy: source returned fewer bytes than requested")

// Source fills p completely with cryptographically strong random bytes, or
// returns an error.
type Source interface {
	Fill(p []byte) error
}

// ReaderSource adapts an io.Reader, e.g. crypto/rand.Reader.
type ReaderSource struct {
	R io.Reader
}

func (s ReaderSource) Fill(p []byte) error {
	if _, err := io.ReadFull(s.R, p); err != nil {
		return sourceError("read", err)
	}
	return nil
}

// DeviceSource reads from a kernel random device. The device is opened for
// every fill.
type DeviceSource struct {
	Path string
}

func (s DeviceSource) Fill(p []byte) error {
	path := s.Path
	if path == "" {
		path = DefaultDevicePath
	}
	f, err := os.Open(path)
	if err != nil {
		return sourceError("open "+path, err)
	}
	defer f.Close()

	if _, err := io.ReadFull(f, p); err != nil {
		return sourceError("read "+path, err)
	}
	return nil
}

// errno 转换为 syserr.Error, 短读转换为 ErrShortRead
func sourceError(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return fmt.Errorf("%s: %w", op, syserr.FromErrno(errno))
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w", op, ErrShortRead)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type unsupportedSource struct{}

func (unsupportedSource) Fill([]byte) error {
	return syserr.Unsupported
}
