// Package testutil backs the block, bitmap, inode and dirent package tests
// with in-memory disk images,
// adapted from the teacher's testing.LoadDiskImage — but building a fresh
// zeroed image directly instead of decompressing a fixture, since no
// component of this module compresses images.
package testutil

import (
	"io"

	"github.com/xaionaro-go/bytesextra"
)

// NewBlankImage returns a zero-filled, fixed-size in-memory stream suitable
// for Format to write into. Its size is fixed to blockSize*totalBlocks;
// writes past that size fail the same way a real fixed-size host file would.
func NewBlankImage(blockSize, totalBlocks uint) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(make([]byte, blockSize*totalBlocks))
}
