package blockfs

import (
	"bytes"
	"encoding/binary"
)

// K is the number of direct block pointers an inode carries. The header
// occupies exactly 5 little-endian 32-bit words: uid+gid packed into
// one word, then mode, ctime, mtime, size — leaving K = (B/4) - 5
// pointers, 1019 on a 4 KiB block. There are no indirect blocks; an
// implementation must match this exact constant to keep images
// byte-compatible (spec §9).
const K = (BlockSize / 4) - 5

// MaxFileSize is the largest a file's data can be: K direct pointers,
// each addressing one full block.
const MaxFileSize = int64(K) * BlockSize

const (
	inodeOffUid   = 0 // uint16
	inodeOffGid   = 2 // uint16
	inodeOffMode  = 4
	inodeOffCtime = 8
	inodeOffMtime = 12
	inodeOffSize  = 16
	inodeOffPtrs  = 20
)

// Inode is the decoded contents of one inode block (spec §3). Every
// inode, file or directory, occupies exactly one block even though its
// encoded form is far smaller; the unused tail is zeroed on write.
// Mode carries the full POSIX mode (file-type bits + permission bits);
// only the low 16 bits are meaningful, matching spec §3.
type Inode struct {
	Mode  uint16
	Uid   uint16
	Gid   uint16
	Ctime uint32
	Mtime uint32
	Size  uint32
	Ptrs  [K]uint32
}

// loadInode reads and decodes the inode at block lba.
func (fs *FileSystem) loadInode(lba uint32) (*Inode, error) {
	buf, err := fs.readBlock(lba)
	if err != nil {
		return nil, err
	}
	ino := &Inode{}
	ino.unmarshalBinary(buf)
	return ino, nil
}

// storeInode writes the inode back to block lba, zeroing the tail.
func (fs *FileSystem) storeInode(lba uint32, ino *Inode) error {
	return fs.writeBlock(lba, ino.marshalBinary())
}

func (ino *Inode) unmarshalBinary(buf []byte) {
	ino.Uid = binary.LittleEndian.Uint16(buf[inodeOffUid:])
	ino.Gid = binary.LittleEndian.Uint16(buf[inodeOffGid:])
	ino.Mode = uint16(binary.LittleEndian.Uint32(buf[inodeOffMode:]))
	ino.Ctime = binary.LittleEndian.Uint32(buf[inodeOffCtime:])
	ino.Mtime = binary.LittleEndian.Uint32(buf[inodeOffMtime:])
	ino.Size = binary.LittleEndian.Uint32(buf[inodeOffSize:])
	r := bytes.NewReader(buf[inodeOffPtrs:])
	binary.Read(r, binary.LittleEndian, &ino.Ptrs)
}

func (ino *Inode) marshalBinary() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint16(buf[inodeOffUid:], ino.Uid)
	binary.LittleEndian.PutUint16(buf[inodeOffGid:], ino.Gid)
	binary.LittleEndian.PutUint32(buf[inodeOffMode:], uint32(ino.Mode))
	binary.LittleEndian.PutUint32(buf[inodeOffCtime:], ino.Ctime)
	binary.LittleEndian.PutUint32(buf[inodeOffMtime:], ino.Mtime)
	binary.LittleEndian.PutUint32(buf[inodeOffSize:], ino.Size)
	w := bytes.NewBuffer(buf[inodeOffPtrs:inodeOffPtrs])
	binary.Write(w, binary.LittleEndian, &ino.Ptrs)
	return buf
}

// IsDir reports whether this inode is a directory.
func (ino *Inode) IsDir() bool { return IsDir(ino.Mode) }
