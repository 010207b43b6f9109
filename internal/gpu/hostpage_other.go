//go:build !unix

package gpu

// hostPageSize reports a conservative default page size on platforms
// where golang.org/x/sys/unix is unavailable.
func hostPageSize() uint64 {
	return 4096
}
