//go:build !fuse

package main

import "fmt"

// runMount is a stub when built without -tags fuse: the FUSE adapter
// is an optional external-collaborator boundary (see fuseadapter/),
// not part of the core, so a default build doesn't pull it in.
func runMount(args []string) error {
	return fmt.Errorf("blockfsctl was built without FUSE support; rebuild with -tags fuse")
}
