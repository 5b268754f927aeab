// Package block implements the disk image's lowest layer: reading and
// writing exactly one block at a time against a seekable host-file handle.
// Every higher layer (bitmaps, inodes, directory entries) goes through this
// package; nothing above it is allowed to touch the underlying stream
// directly. There is no caching and no partial I/O — each call maps to
// exactly one underlying read or write, per the spec's block I/O design.
package block

import (
	"io"

	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/sirupsen/logrus"
)

// Device is a block-granular view of a host file (or any ReadWriteSeeker).
// BlockSize and TotalBlocks are informational; callers should not mutate
// them after construction.
type Device struct {
	BlockSize   uint32
	TotalBlocks uint32

	stream io.ReadWriteSeeker
	log    *logrus.Logger
}

// New wraps an already-open stream as a Device. The stream must support
// seeking to any block*blockSize offset; no length validation is performed
// here since TotalBlocks is advisory.
func New(stream io.ReadWriteSeeker, blockSize, totalBlocks uint32, log *logrus.Logger) *Device {
	return &Device{
		BlockSize:   blockSize,
		TotalBlocks: totalBlocks,
		stream:      stream,
		log:         log,
	}
}

// ReadBlock reads exactly BlockSize bytes from block number `n` into a
// freshly allocated buffer.
func (d *Device) ReadBlock(n uint32) ([]byte, error) {
	if d.stream == nil {
		return nil, fserrors.ErrIoError.WithMessage("device not open")
	}
	d.log.WithField("block", n).Debug("reading block")

	offset := int64(n) * int64(d.BlockSize)
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, fserrors.ErrIoError.WrapError(err)
	}

	buf := make([]byte, d.BlockSize)
	if _, err := io.ReadFull(d.stream, buf); err != nil {
		return nil, fserrors.ErrIoError.WrapError(err)
	}
	return buf, nil
}

// WriteBlock writes `data` (which must be exactly BlockSize bytes) to block
// number `n`.
func (d *Device) WriteBlock(n uint32, data []byte) error {
	if d.stream == nil {
		return fserrors.ErrIoError.WithMessage("device not open")
	}
	if uint32(len(data)) != d.BlockSize {
		return fserrors.ErrIoError.WithMessage("write buffer is not exactly one block")
	}
	d.log.WithField("block", n).Debug("writing block")

	offset := int64(n) * int64(d.BlockSize)
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return fserrors.ErrIoError.WrapError(err)
	}

	written, err := d.stream.Write(data)
	if err != nil {
		return fserrors.ErrIoError.WrapError(err)
	}
	if uint32(written) != d.BlockSize {
		return fserrors.ErrIoError.WithMessage("short write")
	}
	return nil
}

// ZeroBlock returns a fresh, zero-filled buffer exactly one block long.
func (d *Device) ZeroBlock() []byte {
	return make([]byte, d.BlockSize)
}
