package unixfs

import (
	"io"
	"os"

	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/bitmap"
	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/alveshenriique/unixfs/internal/dirent"
	"github.com/alveshenriique/unixfs/internal/inode"
	"github.com/sirupsen/logrus"
)

// rootInode is the fixed inode number of the root directory.
const rootInode uint32 = 0

// minTotalInodes is the floor the spec's format step enforces on inode
// counts for small disks (spec.md scenario A: total_inodes = max(16, blocks/4)).
const minTotalInodes = 16

// Session is the single mutable handle a process holds on a mounted disk
// image: the open file, the cached superblock, the current directory, and
// the verbose-logging flag. There is exactly one of these per mount, and it
// is not safe for concurrent use — mirroring the reference implementation's
// global state, but held as an owned value instead of package globals so the
// file handle's lifetime is explicit.
type Session struct {
	stream    io.ReadWriteSeeker
	closer    io.Closer
	device    *block.Device
	sb        Superblock
	inodeBMap *bitmap.Allocator
	blockBMap *bitmap.Allocator
	inodes    *inode.Store
	dirs      *dirent.Layer

	cwd     uint32
	mounted bool
	log     *logrus.Logger
}

// NewSession creates an unmounted session. Use Format to initialize a fresh
// image, or Mount to open an existing one.
func NewSession() *Session {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return &Session{log: log}
}

// SetVerbose toggles the debug-log hook. When on, every low-level step
// (block read/write, inode read/write, bitmap flip, directory scan) emits a
// diagnostic line. This is purely observational and never affects control
// flow.
func (s *Session) SetVerbose(on bool) {
	if on {
		s.log.SetLevel(logrus.DebugLevel)
	} else {
		s.log.SetLevel(logrus.ErrorLevel)
	}
}

// Logger exposes the session's logger so callers (e.g. the CLI) can attach
// their own formatter or output sink.
func (s *Session) Logger() *logrus.Logger { return s.log }

func (s *Session) requireMounted() error {
	if !s.mounted {
		return fserrors.ErrNotMounted
	}
	return nil
}

// layout computes every derived superblock field from the requested total
// size and block size, in bytes. It does not touch the disk.
func layout(totalSize, blockSize uint32) (Superblock, error) {
	if blockSize == 0 || totalSize == 0 {
		return Superblock{}, fserrors.ErrIoError.WithMessage("disk and block size must be nonzero")
	}

	sb := Superblock{Magic: MagicNumber, BlockSize: blockSize}
	sb.TotalBlocks = totalSize / blockSize
	sb.TotalInodes = sb.TotalBlocks / 4
	if sb.TotalInodes < minTotalInodes {
		sb.TotalInodes = minTotalInodes
	}

	sb.InodeBitmapStart = 1
	bitsPerBlock := blockSize * 8
	inodeBitmapBlocks := (sb.TotalInodes + bitsPerBlock - 1) / bitsPerBlock
	sb.BlockBitmapStart = sb.InodeBitmapStart + inodeBitmapBlocks

	blockBitmapBlocks := (sb.TotalBlocks + bitsPerBlock - 1) / bitsPerBlock
	sb.InodeTableStart = sb.BlockBitmapStart + blockBitmapBlocks

	sb.DataBlocksStart = sb.InodeTableStart + inode.TableBlocks(sb.TotalInodes, blockSize)

	if sb.DataBlocksStart >= sb.TotalBlocks {
		return Superblock{}, fserrors.ErrIoError.WithMessage("disk too small for metadata regions")
	}
	return sb, nil
}

// Format writes a fresh image to `path`: a zeroed disk of `totalKB` KiB with
// `blockKB` KiB blocks, a superblock, pre-marked metadata bitmap bits, and a
// root directory at inode 0. It leaves the session Unmounted; call Mount
// afterward to start using it.
func Format(path string, totalKB, blockKB uint32) error {
	sb, err := layout(totalKB*1024, blockKB*1024)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fserrors.ErrIoError.WrapError(err)
	}
	defer file.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	device := block.New(file, sb.BlockSize, sb.TotalBlocks, log)

	zero := device.ZeroBlock()
	for i := uint32(0); i < sb.TotalBlocks; i++ {
		if err := device.WriteBlock(i, zero); err != nil {
			return err
		}
	}

	if err := device.WriteBlock(0, sb.marshal(sb.BlockSize)); err != nil {
		return err
	}

	inodeBMap := bitmap.New(device, sb.InodeBitmapStart, sb.TotalInodes)
	blockBMap := bitmap.New(device, sb.BlockBitmapStart, sb.TotalBlocks)

	// Metadata blocks (superblock, both bitmaps, inode table) are
	// pre-marked used and never cleared.
	for b := uint32(0); b < sb.DataBlocksStart; b++ {
		if err := blockBMap.Set(b, true); err != nil {
			return err
		}
	}

	if err := inodeBMap.Set(rootInode, true); err != nil {
		return err
	}
	rootDataBlock := sb.DataBlocksStart
	if err := blockBMap.Set(rootDataBlock, true); err != nil {
		return err
	}

	inodes := inode.NewStore(device, sb.InodeTableStart, log)
	now := inode.Now()
	root := inode.Inode{
		Type:       inode.TypeDir,
		FileSize:   2 * dirent.Size,
		LinkCount:  2,
		CreatedAt:  now,
		ModifiedAt: now,
		AccessedAt: now,
	}
	root.DirectBlocks[0] = rootDataBlock
	if err := inodes.Write(rootInode, root); err != nil {
		return err
	}

	dirBlock := device.ZeroBlock()
	copy(dirBlock[0:dirent.Size], dotEntry(".", rootInode))
	copy(dirBlock[dirent.Size:2*dirent.Size], dotEntry("..", rootInode))
	return device.WriteBlock(rootDataBlock, dirBlock)
}

// dotEntry marshals a single directory entry the same way package dirent
// does internally; duplicated here (rather than exported) because only
// Format needs to hand-place entries outside the normal Add path.
func dotEntry(name string, inodeNum uint32) []byte {
	buf := make([]byte, dirent.Size)
	n := copy(buf[:dirent.MaxNameLen-1], name)
	buf[n] = 0
	for i := 0; i < 4; i++ {
		buf[dirent.MaxNameLen+i] = byte(inodeNum >> (8 * i))
	}
	return buf
}

// Mount opens `path`, validates the magic number, and caches the
// superblock. cwd starts at the root. Mount fails with ErrBadMagic without
// changing the session's state if the image isn't a unixfs image.
func Mount(path string) (*Session, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fserrors.ErrIoError.WrapError(err)
	}

	s := NewSession()
	s.stream = file
	s.closer = file

	boot := make([]byte, 4096)
	n, err := file.ReadAt(boot, 0)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fserrors.ErrIoError.WrapError(err)
	}
	if n < superblockSize {
		file.Close()
		return nil, fserrors.ErrBadMagic
	}

	magic := uint32(boot[0]) | uint32(boot[1])<<8 | uint32(boot[2])<<16 | uint32(boot[3])<<24
	if magic != MagicNumber {
		file.Close()
		return nil, fserrors.ErrBadMagic
	}

	// Re-read the full superblock now that we know the block size, which
	// lives at offset 12 in boot[]. We already have enough bytes buffered.
	sb := unmarshalSuperblock(boot[:superblockSize])
	if sb.Magic != MagicNumber {
		file.Close()
		return nil, fserrors.ErrBadMagic
	}

	s.device = block.New(file, sb.BlockSize, sb.TotalBlocks, s.log)
	s.sb = sb
	s.inodeBMap = bitmap.New(s.device, sb.InodeBitmapStart, sb.TotalInodes)
	s.blockBMap = bitmap.New(s.device, sb.BlockBitmapStart, sb.TotalBlocks)
	s.inodes = inode.NewStore(s.device, sb.InodeTableStart, s.log)
	s.dirs = dirent.New(s.device, s.inodes, s.log)
	s.cwd = rootInode
	s.mounted = true
	return s, nil
}

// Unmount closes the handle and transitions the session back to Unmounted.
func (s *Session) Unmount() error {
	if !s.mounted {
		return nil
	}
	s.mounted = false
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return fserrors.ErrIoError.WrapError(err)
		}
	}
	return nil
}
