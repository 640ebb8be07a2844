// Package blockfs implements the core of a small, block-addressed
// POSIX-style file system: the on-disk format, allocation, path
// resolution, and operation semantics needed to interpret a backing
// block device as a hierarchy of files and directories.
//
// The package is deliberately narrow. It has no opinion on how it is
// exposed — a FUSE mount, a 9P server, an in-process test harness —
// that wiring lives in fuseadapter/ and cmd/blockfsctl; blockfs itself
// only ever reads and writes whole blocks through the BlockDevice
// contract and returns POSIX-style errors.
package blockfs

import (
	"log"
	"time"
)

// FileSystem is a mounted blockfs image: a BlockDevice plus the small
// amount of process-wide state the format requires (spec §4.2) — the
// superblock, the in-memory free-space bitmap, and a cached copy of the
// root inode. All other inodes, directory blocks, and data blocks are
// read on demand; there is no page/inode cache beyond this.
//
// FileSystem is built for single-threaded cooperative use (spec §5):
// exactly one operation is ever in flight, invoked by a single caller.
// It holds no internal locks.
type FileSystem struct {
	dev BlockDevice

	sb      *Superblock
	bitmap  *Bitmap
	rootIno *Inode // cached; path resolution always re-reads block 2 as authoritative
	now     func() uint32
}

// Option configures a FileSystem at construction time, following the
// functional-options idiom used elsewhere in this codebase (see
// options.go).
type Option func(*FileSystem) error

// New performs the one-shot initialization spec §4.2 describes: it
// loads block 0 into the superblock, block 1 into the bitmap, and
// block 2 into the cached root inode. It must be called once before
// any other FileSystem method.
func New(dev BlockDevice, opts ...Option) (*FileSystem, error) {
	sb, err := loadSuperblock(dev)
	if err != nil {
		return nil, err
	}

	bm, err := loadBitmap(dev, sb.DiskSizeBlocks)
	if err != nil {
		return nil, err
	}

	fs := &FileSystem{
		dev: dev,
		sb:  sb,
		bitmap: bm,
		now: func() uint32 { return uint32(time.Now().Unix()) },
	}

	root, err := fs.loadInode(sb.RootInodeBlock)
	if err != nil {
		return nil, err
	}
	fs.rootIno = root

	for _, opt := range opts {
		if err := opt(fs); err != nil {
			return nil, err
		}
	}

	log.Printf("blockfs: mounted, %d blocks, root at %d", sb.DiskSizeBlocks, sb.RootInodeBlock)
	return fs, nil
}

// flushBitmap rewrites block 1. Every mutator that allocates or frees
// a block ends with this (spec §4.3): there is no lazy/deferred flush.
func (fs *FileSystem) flushBitmap() error {
	return fs.writeBlock(1, fs.bitmap.marshalBinary())
}

// alloc allocates one block and flushes the bitmap immediately,
// returning ErrNoSpace on exhaustion.
func (fs *FileSystem) alloc() (uint32, error) {
	b, ok := fs.bitmap.alloc()
	if !ok {
		return 0, errNoSpace()
	}
	if err := fs.flushBitmap(); err != nil {
		return 0, err
	}
	return b, nil
}

// free clears a bitmap bit and flushes. A zero block number is a no-op
// (pointer value 0 means "no block", spec §3).
func (fs *FileSystem) free(block uint32) error {
	if block == 0 {
		return nil
	}
	fs.bitmap.free(block)
	return fs.flushBitmap()
}
