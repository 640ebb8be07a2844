// Command blockfsctl is a small CLI for blockfs images, in the same
// spirit as the teacher's cmd/sqfs tool: a bare os.Args switch over a
// handful of verbs, no flag-parsing framework.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/KarpelesLab/blockfs"
)

const usage = `blockfsctl - blockfs image tool

Usage:
  blockfsctl mkfs <image> <blocks>          Format a new blockfs image
  blockfsctl ls <image> [<path>]            List files in a blockfs image
  blockfsctl cat <image> <file>             Display contents of a file
  blockfsctl info <image>                   Display superblock/statfs information
  blockfsctl fsck <image>                   Check on-disk invariants (read-only)
  blockfsctl touch <image> <path>           Create an empty file, owned by the calling user
  blockfsctl mkdir <image> <path>           Create a directory, owned by the calling user
  blockfsctl mount <image> <mountpoint>     Mount via FUSE (requires: go build -tags fuse)
  blockfsctl export <image> <out.img.zst>   Write a zstd-compressed snapshot
  blockfsctl import <in.img.xz> <image>     Restore a snapshot (xz or zst) to an image
  blockfsctl help                           Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "mkfs":
		err = runMkfs(os.Args[2:])
	case "ls":
		err = runLs(os.Args[2:])
	case "cat":
		err = runCat(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "fsck":
		err = runFsck(os.Args[2:])
	case "touch":
		err = runTouch(os.Args[2:])
	case "mkdir":
		err = runMkdir(os.Args[2:])
	case "mount":
		err = runMount(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "help":
		fmt.Println(usage)
	default:
		fmt.Printf("Error: unknown command %q\n", os.Args[1])
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runMkfs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl mkfs <image> <blocks>")
	}
	blocks, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid block count: %w", err)
	}
	dev, err := blockfs.CreateFileDevice(args[0], uint32(blocks))
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer dev.Close()
	if err := blockfs.Format(dev, uint32(blocks)); err != nil {
		return fmt.Errorf("failed to format image: %w", err)
	}
	fmt.Printf("formatted %s: %d blocks (%d bytes)\n", args[0], blocks, uint64(blocks)*blockfs.BlockSize)
	return nil
}

func openImage(path string) (*blockfs.FileSystem, *blockfs.FileDevice, error) {
	dev, err := blockfs.OpenFileDevice(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	fsys, err := blockfs.New(dev)
	if err != nil {
		dev.Close()
		return nil, nil, fmt.Errorf("failed to mount image: %w", err)
	}
	return fsys, dev, nil
}

func runLs(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: blockfsctl ls <image> [<path>]")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}

	entries, err := fs.ReadDir(blockfs.AsIOFS(fsys), dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", dir, err)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to stat %q: %s\n", e.Name(), err)
			continue
		}
		printEntry(e.Name(), info)
	}
	return nil
}

func printEntry(name string, info fs.FileInfo) {
	typeChar := "-"
	if info.IsDir() {
		typeChar = "d"
	}
	size := fmt.Sprintf("%8d", info.Size())
	if info.IsDir() {
		size = "       -"
	}
	fmt.Printf("%s%s %s %s %s\n", typeChar, info.Mode().Perm(), size, info.ModTime().Format("Jan 02 15:04"), name)
}

func runCat(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl cat <image> <file>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	data, err := fs.ReadFile(blockfs.AsIOFS(fsys), args[1])
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", args[1], err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: blockfsctl info <image>")
	}
	fsys, dev, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer dev.Close()

	st := fsys.Statfs()
	root, err := fsys.Getattr("/")
	if err != nil {
		return err
	}

	fmt.Println("blockfs image information")
	fmt.Println("=========================")
	fmt.Printf("Block size:       %d bytes\n", st.Bsize)
	fmt.Printf("Total blocks:     %d\n", st.Blocks)
	fmt.Printf("Free blocks:      %d\n", st.Bfree)
	fmt.Printf("Max name length:  %d\n", st.NameMax)
	fmt.Printf("Root mode:        %#o\n", root.Mode)
	fmt.Printf("Root mtime:       %s\n", time.Unix(int64(root.Mtime), 0).Format(time.RFC1123))
	return nil
}
