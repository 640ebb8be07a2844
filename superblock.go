package blockfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log"
)

// Magic identifies a blockfs disk image. It is stored as the first four
// bytes of block 0, little-endian, spelling "BFS1" when read as bytes.
const Magic uint32 = 0x31534642

// RootInodeBlock is the fixed block number of the root directory's
// inode; invariant 6 of spec §3 requires this to never change.
const RootInodeBlock uint32 = 2

// ErrInvalidSuper is returned when block 0 does not carry the expected
// magic number.
var ErrInvalidSuper = errors.New("blockfs: invalid superblock")

// Superblock is the decoded contents of block 0: the minimal global
// metadata a freshly-initialized FileSystem needs before it can resolve
// any path.
type Superblock struct {
	Magic         uint32
	DiskSizeBlocks uint32
	RootInodeBlock uint32
}

func (sb *Superblock) unmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &sb.Magic); err != nil {
		return err
	}
	if sb.Magic != Magic {
		return ErrInvalidSuper
	}
	if err := binary.Read(r, binary.LittleEndian, &sb.DiskSizeBlocks); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &sb.RootInodeBlock); err != nil {
		return err
	}
	return nil
}

func (sb *Superblock) marshalBinary() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.DiskSizeBlocks)
	binary.LittleEndian.PutUint32(buf[8:12], sb.RootInodeBlock)
	return buf
}

// loadSuperblock reads and decodes block 0.
func loadSuperblock(dev BlockDevice) (*Superblock, error) {
	buf := make([]byte, BlockSize)
	if err := dev.ReadBlock(0, buf); err != nil {
		return nil, errIO()
	}
	log.Printf("blockfs: read superblock")
	sb := &Superblock{}
	if err := sb.unmarshalBinary(buf); err != nil {
		if errors.Is(err, ErrInvalidSuper) {
			return nil, err
		}
		return nil, errIO()
	}
	return sb, nil
}

// Format initializes a fresh disk image on dev: it writes the
// superblock (block 0), an empty bitmap (block 1) with blocks 0, 1 and
// the root inode block marked in-use, and an empty root directory
// (block 2, plus its directory block). This is not part of the
// original course assignment (images were supplied pre-built) but is
// the natural complement to it for a standalone module.
func Format(dev BlockDevice, diskSizeBlocks uint32) error {
	if diskSizeBlocks < 4 || diskSizeBlocks > MaxBlocks {
		return errInvalidArgument()
	}

	sb := &Superblock{Magic: Magic, DiskSizeBlocks: diskSizeBlocks, RootInodeBlock: RootInodeBlock}
	if err := dev.WriteBlock(0, sb.marshalBinary()); err != nil {
		return errIO()
	}

	bm := newBitmap(diskSizeBlocks)
	bm.set(0)
	bm.set(1)
	bm.set(RootInodeBlock)
	// root directory's own dirent block: first-fit picks the next free block
	dirBlock, ok := bm.alloc()
	if !ok {
		return errNoSpace()
	}

	root := &Inode{
		Mode:  S_IFDIR | 0755,
		Uid:   0,
		Gid:   0,
		Ctime: 0,
		Mtime: 0,
		Size:  BlockSize,
	}
	root.Ptrs[0] = dirBlock
	if err := dev.WriteBlock(RootInodeBlock, root.marshalBinary()); err != nil {
		return errIO()
	}

	empty := newDirBlock()
	if err := dev.WriteBlock(dirBlock, empty.marshalBinary()); err != nil {
		return errIO()
	}

	if err := dev.WriteBlock(1, bm.marshalBinary()); err != nil {
		return errIO()
	}
	return nil
}
