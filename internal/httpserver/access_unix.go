//go:build !windows

package httpserver

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// canAccess asks the kernel whether this process may use path in every mode
// of check ("r", "w", "x" or a combination).
func canAccess(path string, _ fs.FileInfo, check string) bool {
	var mode uint32
	for _, c := range check {
		switch c {
		case 'r':
			mode |= unix.R_OK
		case 'w':
			mode |= unix.W_OK
		case 'x':
			mode |= unix.X_OK
		}
	}
	if mode == 0 {
		return true
	}
	return unix.Access(path, mode) == nil
}
