package blockfs

import "encoding/binary"

// DirEntries is the fixed number of dirents a directory block holds
// (spec §3); a directory can never have more children than this.
const DirEntries = 128

// MaxNameLen is the longest name a dirent stores, not counting the NUL
// terminator; longer names are truncated on input (spec §4.5).
const MaxNameLen = 27

const direntSize = 32 // 4-byte packed (valid | inode<<1) + 28-byte name field

// dirent is one slot of a directory block: a fixed-size tuple
// (valid, inode, name). The on-disk layout packs the valid flag into
// the low bit of the same word as the inode number — spec §3's literal
// 1-byte-valid + 4-byte-inode + 28-byte-name tuple is 33 bytes and
// doesn't divide 4096 across 128 slots, so valid is folded into the
// inode word to land on a clean 32-byte entry (128*32 == BlockSize).
type dirent struct {
	Valid bool
	Inode uint32
	Name  [MaxNameLen + 1]byte // NUL-terminated
}

func (d *dirent) nameString() string {
	n := 0
	for n < len(d.Name) && d.Name[n] != 0 {
		n++
	}
	return string(d.Name[:n])
}

func (d *dirent) setName(name string) {
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	d.Name = [MaxNameLen + 1]byte{}
	copy(d.Name[:], name)
}

// dirBlock is the decoded contents of a directory block: exactly
// DirEntries dirents (spec §3).
type dirBlock struct {
	Entries [DirEntries]dirent
}

func newDirBlock() *dirBlock { return &dirBlock{} }

func (db *dirBlock) unmarshalBinary(buf []byte) {
	for i := range db.Entries {
		off := i * direntSize
		word := binary.LittleEndian.Uint32(buf[off:])
		e := &db.Entries[i]
		e.Valid = word&1 != 0
		e.Inode = word >> 1
		copy(e.Name[:], buf[off+4:off+direntSize])
	}
}

// marshalBinary re-encodes the block. Invalid slots are zero-initialized
// (valid=0, inode=0, name all-zero) rather than round-tripping stale
// bytes — deterministic, and free since the whole block is rewritten
// regardless (see SPEC_FULL Open Questions).
func (db *dirBlock) marshalBinary() []byte {
	buf := make([]byte, BlockSize)
	for i := range db.Entries {
		off := i * direntSize
		e := &db.Entries[i]
		if !e.Valid {
			continue
		}
		word := (e.Inode << 1) | 1
		binary.LittleEndian.PutUint32(buf[off:], word)
		copy(buf[off+4:off+direntSize], e.Name[:])
	}
	return buf
}

func (fs *FileSystem) loadDirBlock(lba uint32) (*dirBlock, error) {
	buf, err := fs.readBlock(lba)
	if err != nil {
		return nil, err
	}
	db := newDirBlock()
	db.unmarshalBinary(buf)
	return db, nil
}

func (fs *FileSystem) storeDirBlock(lba uint32, db *dirBlock) error {
	return fs.writeBlock(lba, db.marshalBinary())
}

// find returns the index of the valid entry named name, or -1.
func (db *dirBlock) find(name string) int {
	for i := range db.Entries {
		if db.Entries[i].Valid && db.Entries[i].nameString() == name {
			return i
		}
	}
	return -1
}

// firstFree returns the index of the first invalid slot, or -1 if the
// directory's 128 entries are all in use.
func (db *dirBlock) firstFree() int {
	for i := range db.Entries {
		if !db.Entries[i].Valid {
			return i
		}
	}
	return -1
}
