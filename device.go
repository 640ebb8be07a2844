package blockfs

import "os"

// FileDevice implements BlockDevice over a regular file of exactly
// N*BlockSize bytes, the "backing device" spec §6 describes. This is
// the concrete collaborator cmd/blockfsctl uses; the core
// itself only ever depends on the BlockDevice interface.
type FileDevice struct {
	f *os.File
}

// OpenFileDevice opens path for read/write as a BlockDevice.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &FileDevice{f: f}, nil
}

// CreateFileDevice creates a new, zero-filled backing file of
// diskSizeBlocks*BlockSize bytes.
func CreateFileDevice(path string, diskSizeBlocks uint32) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(diskSizeBlocks) * BlockSize); err != nil {
		f.Close()
		return nil, err
	}
	return &FileDevice{f: f}, nil
}

func (d *FileDevice) ReadBlock(lba uint32, buf []byte) error {
	_, err := d.f.ReadAt(buf, int64(lba)*BlockSize)
	return err
}

func (d *FileDevice) WriteBlock(lba uint32, buf []byte) error {
	_, err := d.f.WriteAt(buf, int64(lba)*BlockSize)
	return err
}

// Close closes the backing file.
func (d *FileDevice) Close() error { return d.f.Close() }
