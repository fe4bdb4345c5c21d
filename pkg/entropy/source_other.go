//go:build !linux && !windows

package entropy

// PlatformSource returns a source that always fails with syserr.Unsupported.
func PlatformSource() Source {
	return unsupportedSource{}
}
