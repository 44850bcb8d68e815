//go:build windows

package httpserver

import "io/fs"

// canAccess falls back to the permission bits Go reports on Windows.
func canAccess(_ string, info fs.FileInfo, check string) bool {
	perm := info.Mode().Perm()
	for _, c := range check {
		switch c {
		case 'r':
			if perm&0444 == 0 {
				return false
			}
		case 'w':
			if perm&0222 == 0 {
				return false
			}
		case 'x':
			if perm&0111 == 0 {
				return false
			}
		}
	}
	return true
}
