//go:build darwin

package blockfs

import "golang.org/x/sys/unix"

// AmbientRequestContext resolves the real calling process's uid/gid
// from the OS. See ambient_linux.go.
func AmbientRequestContext() RequestContext {
	return RequestContext{Uid: uint16(unix.Getuid()), Gid: uint16(unix.Getgid())}
}
