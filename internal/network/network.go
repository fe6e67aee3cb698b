// Package network provides small TCP helpers shared by the dev-server
// loop (C11).
package network

import (
	"fmt"
	"net"
)

// IsPortAvailable reports whether a TCP listener can bind 127.0.0.1:port
// right now. Used as a preflight check before spawning the WASM host so
// `ftl up` fails with a clear message instead of the host's own opaque
// bind error.
func IsPortAvailable(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}
