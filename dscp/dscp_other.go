//go:build !linux

package dscp

import "net"

// Enable is a no-op on non-Linux platforms; DSCP marking has no portable
// socket-option equivalent.
func Enable(fd int, localAddr net.IP, value int) error {
	return nil
}
