package main

import (
	"fmt"
	"io/fs"

	"github.com/KarpelesLab/blockfs"
)

// runFsck walks the tree from the root with fs.WalkDir over AsIOFS and
// reports duplicate names within a directory and paths visited twice.
// It does not check bitmap coverage of block pointers or dirent inode
// numbers. It repairs nothing (no journaling/crash-recovery, per
// spec.md Non-goals), it only reports.
func runFsck(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: blockfsctl fsck <image>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	iofs := blockfs.AsIOFS(fsys)
	var problems int
	seen := map[string]bool{}

	err = fs.WalkDir(iofs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			problems++
			fmt.Printf("error at %s: %s\n", path, err)
			return nil
		}
		if d.IsDir() {
			names := map[string]bool{}
			entries, err := fs.ReadDir(iofs, path)
			if err != nil {
				problems++
				fmt.Printf("cannot read directory %s: %s\n", path, err)
				return nil
			}
			for _, e := range entries {
				if names[e.Name()] {
					problems++
					fmt.Printf("duplicate name %q in %s\n", e.Name(), path)
				}
				names[e.Name()] = true
			}
		}
		if seen[path] {
			problems++
			fmt.Printf("path visited twice: %s\n", path)
		}
		seen[path] = true
		return nil
	})
	if err != nil {
		return err
	}

	st := fsys.Statfs()
	fmt.Printf("checked %d entries, %d problem(s)\n", len(seen), problems)
	fmt.Printf("blocks: %d total, %d free\n", st.Blocks, st.Bfree)
	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	return nil
}
