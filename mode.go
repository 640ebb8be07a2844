package blockfs

import "io/fs"

// blockfs modes are plain 16-bit POSIX modes, so use these constants
// directly rather than reinterpreting them as Go's io/fs.FileMode bits
// everywhere. Only the two file types this format supports are used:
// based on: https://golang.org/src/os/stat_linux.go

const (
	S_IFMT  = 0xf000
	S_IFREG = 0x8000
	S_IFDIR = 0x4000

	S_ISVTX = 0x200
	S_ISGID = 0x400
	S_ISUID = 0x800
)

// IsDir reports whether mode's type bits mark a directory.
func IsDir(mode uint16) bool { return mode&S_IFMT == S_IFDIR }

// IsRegular reports whether mode's type bits mark a regular file.
func IsRegular(mode uint16) bool { return mode&S_IFMT == S_IFREG }

// modeToFileMode converts a raw on-disk POSIX mode to an io/fs.FileMode,
// used only at the io/fs.FS shim boundary (fsio.go) since the core
// itself works in raw uint16 modes throughout, matching the original
// struct stat st_mode usage.
func modeToFileMode(mode uint16) fs.FileMode {
	res := fs.FileMode(mode & 0777)
	if mode&S_IFMT == S_IFDIR {
		res |= fs.ModeDir
	}
	if mode&S_ISGID == S_ISGID {
		res |= fs.ModeSetgid
	}
	if mode&S_ISUID == S_ISUID {
		res |= fs.ModeSetuid
	}
	if mode&S_ISVTX == S_ISVTX {
		res |= fs.ModeSticky
	}
	return res
}
