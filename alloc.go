package unixfs

import (
	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/inode"
)

// allocInode finds and marks the first free inode bit after the root's bit 0,
// returning its number.
func (s *Session) allocInode() (uint32, error) {
	bit, ok, err := s.inodeBMap.FindFreeFrom(rootInode + 1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fserrors.ErrNoInodes
	}
	if err := s.inodeBMap.Set(bit, true); err != nil {
		return 0, err
	}
	return bit, nil
}

// allocBlock finds and marks the first free data block bit, returning its
// number. The block is not zeroed here; callers that need a clean block
// use s.device.ZeroBlock() before their first write.
func (s *Session) allocBlock() (uint32, error) {
	bit, ok, err := s.blockBMap.FindFreeFrom(s.sb.DataBlocksStart)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fserrors.ErrNoBlocks
	}
	if err := s.blockBMap.Set(bit, true); err != nil {
		return 0, err
	}
	return bit, nil
}

func (s *Session) freeInode(num uint32) error {
	return s.inodeBMap.Set(num, false)
}

func (s *Session) freeBlock(num uint32) error {
	return s.blockBMap.Set(num, false)
}

// freeInodeBlocks releases every allocated direct block of `in`, collecting
// (not stopping on) individual failures — mirroring the reference
// implementation's best-effort cleanup in fs_remove_file.
func (s *Session) freeInodeBlocks(in *inode.Inode) error {
	var errs []error
	for _, b := range in.DirectBlocks {
		if b == 0 {
			continue
		}
		if err := s.freeBlock(b); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}
