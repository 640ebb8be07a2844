package blockfs

// WithClock overrides the function used to obtain "now" for ctime/mtime
// stamps, giving deterministic timestamps instead of wall-clock time.
// Without it, New uses time.Now().
func WithClock(now func() uint32) Option {
	return func(fs *FileSystem) error {
		fs.now = now
		return nil
	}
}
