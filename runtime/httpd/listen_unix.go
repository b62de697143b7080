// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build unix

package httpd

import (
	"context"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

func listen(_ context.Context, addr string, backlog int) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	family, sa := sockaddr(tcpAddr)
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)

	err = bindAndListen(fd, sa, backlog)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	// FileListener dups fd so the original is always closed here
	f := os.NewFile(uintptr(fd), "staticd:"+addr)
	defer f.Close()

	return net.FileListener(f)
}

func bindAndListen(fd int, sa unix.Sockaddr, backlog int) error {
	err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	err = unix.Bind(fd, sa)
	if err != nil {
		return os.NewSyscallError("bind", err)
	}
	err = unix.Listen(fd, backlog)
	if err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	ip4 := addr.IP.To4()
	if ip4 != nil || addr.IP == nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	return unix.AF_INET6, sa
}
