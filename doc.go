// Package wheelpack builds reproducible binary-distribution (wheel) archives.
//
// Two primitives make up the package:
//   - [Walk] enumerates a directory tree in a canonical order: names sorted
//     lexicographically at every level, root-level metadata directories
//     (".dist-info") last, and the manifest ("RECORD") last inside them.
//   - [Pack] consumes that order and writes a ZIP archive whose bytes depend
//     only on the relative paths and contents of the tree.
//
// Every entry of a packed archive carries the same modification time, taken
// from the root directory or supplied with [PackWithTimestamp]. Files are
// DEFLATE compressed at a fixed level and empty directories are kept as
// zero-length members with a trailing slash.
//
// # Quick Start
//
// Pack an unpacked wheel tree:
//
//	res, err := wheelpack.Pack(ctx, "./build/wheel", "dist/pkg-1.0-py3-none-linux_x86_64.whl")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Digest)
//
// Walk a tree in archive order:
//
//	for dir, err := range wheelpack.Walk("./build/wheel") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(dir.Path, dir.Dirs, dir.Files)
//	}
package wheelpack
