//go:build linux

package blockfs

import "golang.org/x/sys/unix"

// AmbientRequestContext resolves the real calling process's uid/gid
// from the OS, for callers (the CLI) that have no more specific
// per-request identity to thread through.
// Platform-specific, the same role inode_linux.go/inode_darwin.go play
// in the teacher as separate per-GOOS files.
func AmbientRequestContext() RequestContext {
	return RequestContext{Uid: uint16(unix.Getuid()), Gid: uint16(unix.Getgid())}
}
