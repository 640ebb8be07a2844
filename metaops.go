package blockfs

// Attr is the stat-like record getattr/readdir populate (spec §4.8).
type Attr struct {
	Mode  uint16
	Uid   uint16
	Gid   uint16
	Size  uint32
	Ctime uint32
	Mtime uint32
	Atime uint32 // the simplified format doesn't store atime; set equal to Mtime
	Nlink uint32 // always 1 (spec §1 Non-goals: no hard links)
	Blksize uint32
}

func attrFromInode(ino *Inode) Attr {
	return Attr{
		Mode:    ino.Mode,
		Uid:     ino.Uid,
		Gid:     ino.Gid,
		Size:    ino.Size,
		Ctime:   ino.Ctime,
		Mtime:   ino.Mtime,
		Atime:   ino.Mtime,
		Nlink:   1,
		Blksize: BlockSize,
	}
}

// Getattr resolves path and returns its attributes (spec §4.8).
func (fs *FileSystem) Getattr(path string) (Attr, error) {
	block, err := fs.resolve(path)
	if err != nil {
		return Attr{}, err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return Attr{}, err
	}
	return attrFromInode(ino), nil
}

// DirEntry is one emitted entry from Readdir: a name paired with its
// attributes. Synthetic "." carries the directory's own attrs; ".."
// carries none (spec §4.8).
type DirEntry struct {
	Name string
	Attr *Attr
}

// Readdir resolves path, which must be a directory, and invokes emit
// once for "." (with the directory's own attrs), once for ".." (no
// attrs), then once per valid child entry in slot order (spec §4.8).
func (fs *FileSystem) Readdir(path string, emit func(DirEntry)) error {
	block, err := fs.resolve(path)
	if err != nil {
		return err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return err
	}
	if !ino.IsDir() {
		return errNotADirectory()
	}

	selfAttr := attrFromInode(ino)
	emit(DirEntry{Name: ".", Attr: &selfAttr})
	emit(DirEntry{Name: "..", Attr: nil})

	db, err := fs.loadDirBlock(ino.Ptrs[0])
	if err != nil {
		return err
	}
	for i := range db.Entries {
		e := &db.Entries[i]
		if !e.Valid {
			continue
		}
		childIno, err := fs.loadInode(e.Inode)
		if err != nil {
			return err
		}
		attr := attrFromInode(childIno)
		emit(DirEntry{Name: e.nameString(), Attr: &attr})
	}
	return nil
}

// Chmod replaces path's permission bits, preserving its file-type bits
// (spec §4.8).
func (fs *FileSystem) Chmod(path string, perm uint16) error {
	block, err := fs.resolve(path)
	if err != nil {
		return err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return err
	}
	ino.Mode = (ino.Mode & S_IFMT) | (perm &^ S_IFMT)
	ino.Mtime = fs.now()
	return fs.storeInode(block, ino)
}

// Utime sets path's mtime (spec §4.8).
func (fs *FileSystem) Utime(path string, mtime uint32) error {
	block, err := fs.resolve(path)
	if err != nil {
		return err
	}
	ino, err := fs.loadInode(block)
	if err != nil {
		return err
	}
	ino.Mtime = mtime
	return fs.storeInode(block, ino)
}

// StatfsResult is the statfs(2)-like summary blockfs reports (spec
// §4.8).
type StatfsResult struct {
	Bsize   uint32
	Blocks  uint32 // total usable blocks (N - 2: excludes superblock and bitmap)
	Bfree   uint32
	NameMax uint32
}

// Statfs reports overall filesystem usage (spec §4.8).
func (fs *FileSystem) Statfs() StatfsResult {
	total := fs.sb.DiskSizeBlocks - 2
	free := fs.bitmap.freeCount(2)
	return StatfsResult{
		Bsize:   BlockSize,
		Blocks:  total,
		Bfree:   free,
		NameMax: MaxNameLen,
	}
}
