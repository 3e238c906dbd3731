//go:build unix

package syserr

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func errnoName(errno syscall.Errno) string {
	return unix.ErrnoName(errno)
}

func errnoKnown(errno syscall.Errno) bool {
	return unix.ErrnoName(errno) != ""
}
