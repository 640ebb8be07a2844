package blockfs

import "errors"

// Errno is a POSIX-style error code returned by every blockfs operation.
// It wraps a sentinel so callers can both errors.Is() against the
// well-known variables below and recover the raw negative code a VFS
// adapter needs to hand back to the kernel.
type Errno struct {
	code int
	err  error
}

func (e *Errno) Error() string { return e.err.Error() }
func (e *Errno) Unwrap() error { return e.err }

// Code returns the negative POSIX-style integer code for this error,
// suitable for returning directly from a FUSE/VFS callback.
func (e *Errno) Code() int { return e.code }

func newErrno(code int, err error) *Errno { return &Errno{code: code, err: err} }

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrNoEntry is returned when a path component doesn't exist.
	ErrNoEntry = errors.New("no such file or directory")

	// ErrNotADirectory is returned when an intermediate path component,
	// or the target of rmdir/readdir, is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsADirectory is returned when the target of unlink, read,
	// write, or truncate is a directory.
	ErrIsADirectory = errors.New("is a directory")

	// ErrExist is returned when the destination of create/mkdir/rename
	// already exists.
	ErrExist = errors.New("file exists")

	// ErrNotEmpty is returned when an rmdir target still has entries.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNoSpace is returned when the bitmap or a directory's 128
	// slots are exhausted.
	ErrNoSpace = errors.New("no space left on device")

	// ErrInvalidArgument is returned for writes past EOF, nonzero
	// truncate, or a cross-directory rename.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIO is returned when the underlying block device fails.
	ErrIO = errors.New("input/output error")
)

// POSIX-style negative error codes, matching errno.h numbering so a
// VFS adapter can return them unchanged.
const (
	codeNoEntry         = -2
	codeIO              = -5
	codeNotADirectory   = -20
	codeIsADirectory    = -21
	codeInvalidArgument = -22
	codeNoSpace         = -28
	codeExist           = -17
	codeNotEmpty        = -39
)

func errNoEntry() error         { return newErrno(codeNoEntry, ErrNoEntry) }
func errNotADirectory() error   { return newErrno(codeNotADirectory, ErrNotADirectory) }
func errIsADirectory() error    { return newErrno(codeIsADirectory, ErrIsADirectory) }
func errExist() error           { return newErrno(codeExist, ErrExist) }
func errNotEmpty() error        { return newErrno(codeNotEmpty, ErrNotEmpty) }
func errNoSpace() error         { return newErrno(codeNoSpace, ErrNoSpace) }
func errInvalidArgument() error { return newErrno(codeInvalidArgument, ErrInvalidArgument) }
func errIO() error              { return newErrno(codeIO, ErrIO) }
