//go:build !linux

package fadvise

func willNeed(fd uintptr, offset, length int64) {
	// no-op: posix_fadvise has no equivalent on this platform
}
