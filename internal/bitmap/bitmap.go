// Package bitmap implements the inode and data-block allocators. Each
// allocator is a contiguous run of blocks on disk, one bit per unit; this
// package never keeps the whole bitmap in memory at once — it reads one
// bitmap block at a time, flips bits with github.com/boljen/go-bitmap (the
// same in-memory bit-twiddling library the teacher driver uses for its
// allocation maps), and writes the block straight back. The disk is always
// the source of truth.
package bitmap

import (
	bm "github.com/boljen/go-bitmap"

	"github.com/alveshenriique/unixfs/internal/block"
)

// Allocator manages one bitmap region: `TotalBits` bits starting at block
// `StartBlock` of the device.
type Allocator struct {
	Device     *block.Device
	StartBlock uint32
	TotalBits  uint32
}

func New(device *block.Device, startBlock, totalBits uint32) *Allocator {
	return &Allocator{Device: device, StartBlock: startBlock, TotalBits: totalBits}
}

func (a *Allocator) bitsPerBlock() uint32 {
	return a.Device.BlockSize * 8
}

func (a *Allocator) blocksInBitmap() uint32 {
	bpb := a.bitsPerBlock()
	return (a.TotalBits + bpb - 1) / bpb
}

// FindFreeFrom scans starting at bit index `startBit` and returns the first
// clear bit at or after it, or ok=false if none exists before TotalBits.
func (a *Allocator) FindFreeFrom(startBit uint32) (bit uint32, ok bool, err error) {
	if startBit >= a.TotalBits {
		return 0, false, nil
	}

	bpb := a.bitsPerBlock()
	startBlockIdx := startBit / bpb
	blocks := a.blocksInBitmap()

	for i := startBlockIdx; i < blocks; i++ {
		buf, err := a.Device.ReadBlock(a.StartBlock + i)
		if err != nil {
			return 0, false, err
		}
		view := bm.NewSlice(len(buf)*8, buf)

		firstBit := uint32(0)
		if i == startBlockIdx {
			firstBit = startBit % bpb
		}
		for b := firstBit; b < bpb; b++ {
			globalBit := i*bpb + b
			if globalBit >= a.TotalBits {
				break
			}
			if !view.Get(int(b)) {
				return globalBit, true, nil
			}
		}
	}
	return 0, false, nil
}

// Set writes a single bit's value, rewriting the block that contains it.
func (a *Allocator) Set(bit uint32, value bool) error {
	bpb := a.bitsPerBlock()
	blockIdx := bit / bpb
	bitInBlock := bit % bpb

	buf, err := a.Device.ReadBlock(a.StartBlock + blockIdx)
	if err != nil {
		return err
	}
	view := bm.NewSlice(len(buf)*8, buf)
	view.Set(int(bitInBlock), value)
	return a.Device.WriteBlock(a.StartBlock+blockIdx, buf)
}

// Get reads a single bit's current value.
func (a *Allocator) Get(bit uint32) (bool, error) {
	bpb := a.bitsPerBlock()
	blockIdx := bit / bpb
	bitInBlock := bit % bpb

	buf, err := a.Device.ReadBlock(a.StartBlock + blockIdx)
	if err != nil {
		return false, err
	}
	return bm.NewSlice(len(buf)*8, buf).Get(int(bitInBlock)), nil
}

// CountSet scans every block in the bitmap and returns the number of set
// bits within [0, TotalBits).
func (a *Allocator) CountSet() (uint32, error) {
	bpb := a.bitsPerBlock()
	blocks := a.blocksInBitmap()
	count := uint32(0)

	for i := uint32(0); i < blocks; i++ {
		buf, err := a.Device.ReadBlock(a.StartBlock + i)
		if err != nil {
			return 0, err
		}
		view := bm.NewSlice(len(buf)*8, buf)
		for b := uint32(0); b < bpb; b++ {
			globalBit := i*bpb + b
			if globalBit >= a.TotalBits {
				break
			}
			if view.Get(int(b)) {
				count++
			}
		}
	}
	return count, nil
}
