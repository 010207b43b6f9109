//go:build unix

package gpu

import "golang.org/x/sys/unix"

// hostPageSize reports the OS page size, used to round staging-buffer
// allocations so the host-visible readback mapping lands on a page
// boundary instead of splitting across two.
func hostPageSize() uint64 {
	sz := unix.Getpagesize()
	if sz <= 0 {
		return 4096
	}
	return uint64(sz)
}
