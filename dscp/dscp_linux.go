//go:build linux

package dscp

import (
	"net"

	"golang.org/x/sys/unix"
)

// Enable sets the DSCP traffic class on fd's socket. localAddr selects
// between the IPv4 TOS and IPv6 traffic-class socket options.
func Enable(fd int, localAddr net.IP, value int) error {
	if localAddr.To4() == nil {
		return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_TCLASS, value<<2)
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, value<<2)
}
