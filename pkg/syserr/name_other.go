//go:build !unix

package syserr

import (
	"strings"
	"syscall"
)

// No name table here.
func errnoName(syscall.Errno) string { return "" }

// A code is known when the system describes it with something other than
// the runtime's numeric fallback.
func errnoKnown(errno syscall.Errno) bool {
	desc := errno.Error()
	return desc != "" && !strings.HasPrefix(desc, "errno ") && !strings.HasPrefix(desc, "winapi error")
}
