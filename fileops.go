package blockfs

import "errors"

// Read copies up to len(buf) bytes from path starting at offset into
// buf, returning the number of bytes copied (spec §4.7). If offset is
// at or past the file's size, it returns (0, nil).
func (fs *FileSystem) Read(path string, buf []byte, offset int64) (int, error) {
	block, err := fs.resolve(path)
	if err != nil {
		return 0, err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return 0, err
	}
	if ino.IsDir() {
		return 0, errIsADirectory()
	}

	size := int64(ino.Size)
	if offset >= size {
		return 0, nil
	}

	toRead := int64(len(buf))
	if rem := size - offset; toRead > rem {
		toRead = rem
	}

	var total int
	remaining := toRead
	blockIndex := int(offset / BlockSize)
	blockOffset := int(offset % BlockSize)

	for remaining > 0 && blockIndex < K {
		ptr := ino.Ptrs[blockIndex]
		if ptr == 0 {
			break
		}
		data, err := fs.readBlock(ptr)
		if err != nil {
			return total, err
		}
		n := BlockSize - blockOffset
		if int64(n) > remaining {
			n = int(remaining)
		}
		copy(buf[total:total+n], data[blockOffset:blockOffset+n])
		total += n
		remaining -= int64(n)
		blockIndex++
		blockOffset = 0
	}

	ino.Mtime = fs.now() // spec §9: preserves the source's mtime-on-read quirk
	if err := fs.storeInode(block, ino); err != nil {
		return total, err
	}
	return total, nil
}

// Write copies len(buf) bytes to path starting at offset, allocating
// data blocks as needed (spec §4.7). offset > current size is
// rejected: holes are forbidden, though appending exactly at EOF is
// legal. Returns the number of bytes written; a short write means the
// bitmap or the pointer array was exhausted before buf was consumed.
func (fs *FileSystem) Write(path string, buf []byte, offset int64) (int, error) {
	block, err := fs.resolve(path)
	if err != nil {
		return 0, err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return 0, err
	}
	if ino.IsDir() {
		return 0, errIsADirectory()
	}
	if offset > int64(ino.Size) {
		return 0, errInvalidArgument()
	}

	var total int
	remaining := len(buf)
	blockIndex := int(offset / BlockSize)
	blockOffset := int(offset % BlockSize)

	for remaining > 0 && blockIndex < K {
		ptr := ino.Ptrs[blockIndex]
		if ptr == 0 {
			newBlock, err := fs.alloc()
			if err != nil {
				if errors.Is(err, ErrNoSpace) {
					break // no space: short write
				}
				return total, err
			}
			zero := make([]byte, BlockSize)
			if err := fs.writeBlock(newBlock, zero); err != nil {
				return total, err
			}
			ino.Ptrs[blockIndex] = newBlock
			ptr = newBlock
		}

		data, err := fs.readBlock(ptr)
		if err != nil {
			return total, err
		}
		n := BlockSize - blockOffset
		if n > remaining {
			n = remaining
		}
		copy(data[blockOffset:blockOffset+n], buf[total:total+n])
		if err := fs.writeBlock(ptr, data); err != nil {
			return total, err
		}

		total += n
		remaining -= n
		blockIndex++
		blockOffset = 0
	}

	newOffset := offset + int64(total)
	if newOffset > int64(ino.Size) {
		ino.Size = uint32(newOffset)
	}
	ino.Mtime = fs.now()
	if err := fs.storeInode(block, ino); err != nil {
		return total, err
	}
	return total, nil
}

// Truncate shrinks path to len bytes. Only len == 0 is supported; any
// other value is rejected (spec §4.7, Non-goals).
func (fs *FileSystem) Truncate(path string, length int64) error {
	if length != 0 {
		return errInvalidArgument()
	}

	block, err := fs.resolve(path)
	if err != nil {
		return err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return err
	}
	if ino.IsDir() {
		return errIsADirectory()
	}

	for i := range ino.Ptrs {
		if ino.Ptrs[i] != 0 {
			if err := fs.free(ino.Ptrs[i]); err != nil {
				return err
			}
			ino.Ptrs[i] = 0
		}
	}
	ino.Size = 0
	ino.Mtime = fs.now()
	return fs.storeInode(block, ino)
}
