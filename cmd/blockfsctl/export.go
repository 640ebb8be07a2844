package main

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// runExport streams the raw image through a zstd encoder to produce a
// compact snapshot, the supplemental backup feature SPEC_FULL.md §3
// gives klauspost/compress a home in (the teacher uses the same
// package for squashfs block decompression; here it compresses the
// whole flat image instead of per-block metadata tables, since
// blockfs's on-disk format has none).
func runExport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl export <image> <out.img.zst>")
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer in.Close()

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("failed to start zstd encoder: %w", err)
	}

	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress image: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}

	fmt.Printf("exported %s -> %s\n", args[0], args[1])
	return nil
}
