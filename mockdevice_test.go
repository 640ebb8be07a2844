package blockfs_test

import (
	"io"

	"github.com/KarpelesLab/blockfs"
)

// memDevice implements blockfs.BlockDevice entirely in memory, the way
// mock_test.go's mockReader simulates a backing device for squashfs
// without touching disk.
type memDevice struct {
	blocks [][]byte
	failAt int // block number at/after which reads and writes fail; -1 disables
}

func newMemDevice(count uint32) *memDevice {
	blocks := make([][]byte, count)
	for i := range blocks {
		blocks[i] = make([]byte, blockfs.BlockSize)
	}
	return &memDevice{blocks: blocks, failAt: -1}
}

func (d *memDevice) ReadBlock(lba uint32, buf []byte) error {
	if d.failAt >= 0 && int(lba) >= d.failAt {
		return io.ErrClosedPipe
	}
	n := len(buf) / blockfs.BlockSize
	for i := 0; i < n; i++ {
		if int(lba)+i >= len(d.blocks) {
			return io.ErrUnexpectedEOF
		}
		copy(buf[i*blockfs.BlockSize:(i+1)*blockfs.BlockSize], d.blocks[int(lba)+i])
	}
	return nil
}

func (d *memDevice) WriteBlock(lba uint32, buf []byte) error {
	if d.failAt >= 0 && int(lba) >= d.failAt {
		return io.ErrClosedPipe
	}
	n := len(buf) / blockfs.BlockSize
	for i := 0; i < n; i++ {
		if int(lba)+i >= len(d.blocks) {
			return io.ErrUnexpectedEOF
		}
		copy(d.blocks[int(lba)+i], buf[i*blockfs.BlockSize:(i+1)*blockfs.BlockSize])
	}
	return nil
}

func mustFormat(count uint32) *memDevice {
	dev := newMemDevice(count)
	if err := blockfs.Format(dev, count); err != nil {
		panic(err)
	}
	return dev
}
