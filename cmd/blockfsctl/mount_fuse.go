//go:build fuse

package main

import (
	"fmt"

	"github.com/KarpelesLab/blockfs/fuseadapter"
	"github.com/hanwen/go-fuse/v2/fs"
)

func runMount(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl mount <image> <mountpoint>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	root := fuseadapter.New(fsys)
	server, err := fs.Mount(args[1], root, &fs.Options{})
	if err != nil {
		return fmt.Errorf("failed to mount: %w", err)
	}
	fmt.Printf("mounted %s at %s\n", args[0], args[1])
	server.Wait()
	return nil
}
