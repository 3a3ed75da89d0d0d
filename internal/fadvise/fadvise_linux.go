//go:build linux

package fadvise

import "golang.org/x/sys/unix"

func willNeed(fd uintptr, offset, length int64) {
	_ = unix.Fadvise(int(fd), offset, length, unix.FADV_WILLNEED)
}
