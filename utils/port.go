package utils

import (
	"fmt"
	"net"
	"strconv"
)

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

// CheckListenAddr fails when addr ("host:port" or ":port") cannot be bound.
// An unresolvable host is checked on all interfaces.
func CheckListenAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q in listen address %q", portStr, addr)
	}

	if host == "localhost" {
		host = "127.0.0.1"
	}

	if !IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use", port)
	}
	return nil
}
