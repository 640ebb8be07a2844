package blockfs

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// FS adapts a *FileSystem to the standard io/fs.FS interface, so
// callers can use fs.ReadFile/fs.ReadDir/fs.Glob/fs.WalkDir the way
// cmd/blockfsctl does, the same convenience the teacher's File/FileDir
// types provide over a read-only squashfs image (file.go). Only
// reading is exposed this way; mutation always goes through the
// explicit FileSystem methods, which require a RequestContext.
type FS struct {
	fs *FileSystem
}

// AsIOFS wraps fs as a read-only io/fs.FS.
func AsIOFS(fs *FileSystem) FS { return FS{fs: fs} }

var _ fs.FS = FS{}
var _ fs.ReadDirFS = FS{}
var _ fs.StatFS = FS{}

func ioPath(name string) string {
	if name == "." || name == "" {
		return "/"
	}
	return "/" + name
}

func (f FS) Open(name string) (fs.File, error) {
	p := ioPath(name)
	block, err := f.fs.resolve(p)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	ino, err := f.fs.loadInode(block)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if ino.IsDir() {
		return &ioDir{fs: f.fs, path: p, name: path.Base(name), ino: ino}, nil
	}
	return &ioFile{fs: f.fs, path: p, name: path.Base(name), ino: ino}, nil
}

func (f FS) Stat(name string) (fs.FileInfo, error) {
	a, err := f.fs.Getattr(ioPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return &ioFileInfo{name: path.Base(name), attr: a}, nil
}

func (f FS) ReadDir(name string) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	err := f.fs.Readdir(ioPath(name), func(e DirEntry) {
		if e.Name == "." || e.Name == ".." || e.Attr == nil {
			return
		}
		out = append(out, &ioFileInfo{name: e.Name, attr: *e.Attr})
	})
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return out, nil
}

// ioFileInfo implements both fs.FileInfo and fs.DirEntry.
type ioFileInfo struct {
	name string
	attr Attr
}

func (i *ioFileInfo) Name() string               { return i.name }
func (i *ioFileInfo) Size() int64                { return int64(i.attr.Size) }
func (i *ioFileInfo) Mode() fs.FileMode           { return modeToFileMode(i.attr.Mode) }
func (i *ioFileInfo) ModTime() time.Time          { return time.Unix(int64(i.attr.Mtime), 0) }
func (i *ioFileInfo) IsDir() bool                 { return IsDir(i.attr.Mode) }
func (i *ioFileInfo) Sys() any                    { return i.attr }
func (i *ioFileInfo) Type() fs.FileMode           { return i.Mode().Type() }
func (i *ioFileInfo) Info() (fs.FileInfo, error)  { return i, nil }

type ioFile struct {
	fs     *FileSystem
	path   string
	name   string
	ino    *Inode
	offset int64
}

func (f *ioFile) Stat() (fs.FileInfo, error) {
	return &ioFileInfo{name: f.name, attr: attrFromInode(f.ino)}, nil
}

func (f *ioFile) Read(p []byte) (int, error) {
	n, err := f.fs.Read(f.path, p, f.offset)
	if err != nil {
		return 0, err
	}
	f.offset += int64(n)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *ioFile) Close() error { return nil }

type ioDir struct {
	fs      *FileSystem
	path    string
	name    string
	ino     *Inode
	read    bool
	entries []fs.DirEntry
}

func (d *ioDir) Stat() (fs.FileInfo, error) {
	return &ioFileInfo{name: d.name, attr: attrFromInode(d.ino)}, nil
}

func (d *ioDir) Read([]byte) (int, error) { return 0, fs.ErrInvalid }
func (d *ioDir) Close() error             { return nil }

func (d *ioDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		entries, err := AsIOFS(d.fs).ReadDir(d.path)
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.read = true
	}
	if n <= 0 {
		out := d.entries
		d.entries = nil
		return out, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := d.entries[:n]
	d.entries = d.entries[n:]
	return out, nil
}

var _ fs.ReadDirFile = (*ioDir)(nil)
