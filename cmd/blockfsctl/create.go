package main

import (
	"fmt"

	"github.com/KarpelesLab/blockfs"
)

// runTouch and runMkdir exercise the explicit RequestContext the core
// takes on every call that creates an inode (spec.md §9's resolved open
// question): the CLI resolves the real calling process's uid/gid via
// blockfs.AmbientRequestContext and passes it in, rather than the core
// reaching for a hidden global.
func runTouch(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl touch <image> <path>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx := blockfs.AmbientRequestContext()
	if err := fsys.Create(ctx, args[1], 0644); err != nil {
		return fmt.Errorf("failed to create %q: %w", args[1], err)
	}
	return nil
}

func runMkdir(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl mkdir <image> <path>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx := blockfs.AmbientRequestContext()
	if err := fsys.Mkdir(ctx, args[1], 0755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", args[1], err)
	}
	return nil
}
