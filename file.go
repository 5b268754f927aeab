package unixfs

import (
	"io"
	"os"

	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/inode"
)

// Import copies a host file into the current directory under `destName`,
// splitting it across direct blocks. Files that need more than
// inode.DirectBlockCount blocks are rejected outright: there are no
// indirect blocks in this format.
func (s *Session) Import(sourcePath, destName string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if err := validateName(destName); err != nil {
		return err
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return fserrors.ErrHostOpen.WrapError(err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fserrors.ErrHostOpen.WrapError(err)
	}
	fileSize := uint32(info.Size())

	parent, err := s.readCwd()
	if err != nil {
		return err
	}
	if _, found, err := s.dirs.Lookup(&parent, destName); err != nil {
		return err
	} else if found {
		return fserrors.ErrAlreadyExists
	}

	blocksNeeded := (fileSize + s.sb.BlockSize - 1) / s.sb.BlockSize
	if blocksNeeded > inode.DirectBlockCount {
		return fserrors.ErrFileTooLarge
	}

	newInodeNum, err := s.allocInode()
	if err != nil {
		return err
	}

	allocated := make([]uint32, 0, blocksNeeded)
	rollback := func() {
		for _, b := range allocated {
			_ = s.freeBlock(b)
		}
		_ = s.freeInode(newInodeNum)
	}

	for i := uint32(0); i < blocksNeeded; i++ {
		b, err := s.allocBlock()
		if err != nil {
			rollback()
			return err
		}
		allocated = append(allocated, b)
	}

	for _, blockNum := range allocated {
		buf := s.device.ZeroBlock()
		_, readErr := io.ReadFull(source, buf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			rollback()
			return fserrors.ErrHostOpen.WrapError(readErr)
		}
		if err := s.device.WriteBlock(blockNum, buf); err != nil {
			rollback()
			return err
		}
	}

	now := inode.Now()
	newInode := inode.Inode{
		Type:       inode.TypeFile,
		FileSize:   fileSize,
		LinkCount:  1,
		CreatedAt:  now,
		ModifiedAt: now,
		AccessedAt: now,
	}
	for i, b := range allocated {
		newInode.DirectBlocks[i] = b
	}
	if err := s.inodes.Write(newInodeNum, newInode); err != nil {
		rollback()
		return err
	}
	if err := s.dirs.Add(&parent, s.cwd, destName, newInodeNum); err != nil {
		rollback()
		return err
	}
	return nil
}

// Cat returns the full contents of a file in the current directory.
func (s *Session) Cat(name string) ([]byte, error) {
	if err := s.requireMounted(); err != nil {
		return nil, err
	}
	parent, err := s.readCwd()
	if err != nil {
		return nil, err
	}
	targetNum, err := s.findInDirectory(&parent, name)
	if err != nil {
		return nil, err
	}
	target, err := s.inodes.Read(targetNum)
	if err != nil {
		return nil, err
	}
	if !target.IsFile() {
		return nil, fserrors.ErrNotAFile
	}

	var data []byte
	if target.FileSize > 0 {
		data = make([]byte, 0, target.FileSize)
		remaining := target.FileSize
		for _, blockNum := range target.DirectBlocks {
			if remaining == 0 {
				break
			}
			if blockNum == 0 {
				continue
			}
			buf, err := s.device.ReadBlock(blockNum)
			if err != nil {
				return nil, err
			}
			take := remaining
			if take > uint32(len(buf)) {
				take = uint32(len(buf))
			}
			data = append(data, buf[:take]...)
			remaining -= take
		}
	} else {
		data = []byte{}
	}

	target.AccessedAt = inode.Now()
	if err := s.inodes.Write(targetNum, target); err != nil {
		return nil, err
	}
	return data, nil
}

// Rm removes a regular file from the current directory, freeing its blocks
// and inode. Block-freeing failures are aggregated rather than aborting
// early, matching the reference implementation's best-effort cleanup.
func (s *Session) Rm(name string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	parent, err := s.readCwd()
	if err != nil {
		return err
	}
	targetNum, err := s.findInDirectory(&parent, name)
	if err != nil {
		return err
	}
	target, err := s.inodes.Read(targetNum)
	if err != nil {
		return err
	}
	if !target.IsFile() {
		return fserrors.ErrNotAFile
	}

	freeErr := s.freeInodeBlocks(&target)
	if err := s.freeInode(targetNum); err != nil {
		return err
	}
	if err := s.dirs.Remove(&parent, s.cwd, name); err != nil {
		return err
	}
	return freeErr
}

// WriteOp selects echo's redirection mode.
type WriteOp int

const (
	// OpTruncate (">") replaces the file's entire contents.
	OpTruncate WriteOp = iota
	// OpAppend (">>") appends to the file's existing contents.
	OpAppend
)

// Echo writes `text` to `filename` in the current directory, creating it if
// it doesn't exist. OpTruncate first removes any existing file of the same
// name; OpAppend writes starting at the file's current end.
func (s *Session) Echo(filename, text string, op WriteOp) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if err := validateName(filename); err != nil {
		return err
	}

	parent, err := s.readCwd()
	if err != nil {
		return err
	}
	targetNum, found, err := s.dirs.Lookup(&parent, filename)
	if err != nil {
		return err
	}

	if op == OpTruncate && found {
		if err := s.Rm(filename); err != nil {
			return err
		}
		found = false
		parent, err = s.readCwd()
		if err != nil {
			return err
		}
	}

	if !found {
		newInodeNum, err := s.allocInode()
		if err != nil {
			return err
		}
		if err := s.dirs.Add(&parent, s.cwd, filename, newInodeNum); err != nil {
			_ = s.freeInode(newInodeNum)
			return err
		}
		now := inode.Now()
		if err := s.inodes.Write(newInodeNum, inode.Inode{
			Type:       inode.TypeFile,
			LinkCount:  1,
			CreatedAt:  now,
			ModifiedAt: now,
			AccessedAt: now,
		}); err != nil {
			return err
		}
		targetNum = newInodeNum
	}

	target, err := s.inodes.Read(targetNum)
	if err != nil {
		return err
	}
	if target.IsDir() {
		return fserrors.ErrNotAFile.WithMessage("cannot write to a directory")
	}

	textBytes := []byte(text)
	newSize := target.FileSize + uint32(len(textBytes))
	blocksNeeded := (newSize + s.sb.BlockSize - 1) / s.sb.BlockSize
	if blocksNeeded > inode.DirectBlockCount {
		return fserrors.ErrFileTooLarge
	}

	var blockIdx, offsetInBlock uint32
	if op == OpAppend {
		blockIdx = target.FileSize / s.sb.BlockSize
		offsetInBlock = target.FileSize % s.sb.BlockSize
	}

	var buf []byte
	if offsetInBlock > 0 {
		buf, err = s.device.ReadBlock(target.DirectBlocks[blockIdx])
		if err != nil {
			return err
		}
	}

	pos := 0
	for pos < len(textBytes) {
		if offsetInBlock == 0 {
			buf = s.device.ZeroBlock()
			if target.DirectBlocks[blockIdx] == 0 {
				newBlock, err := s.allocBlock()
				if err != nil {
					return err
				}
				target.DirectBlocks[blockIdx] = newBlock
			}
		}
		spaceInBlock := s.sb.BlockSize - offsetInBlock
		toWrite := uint32(len(textBytes) - pos)
		if toWrite > spaceInBlock {
			toWrite = spaceInBlock
		}
		copy(buf[offsetInBlock:], textBytes[pos:pos+int(toWrite)])
		if err := s.device.WriteBlock(target.DirectBlocks[blockIdx], buf); err != nil {
			return err
		}
		pos += int(toWrite)
		offsetInBlock = 0
		blockIdx++
	}

	target.FileSize = newSize
	now := inode.Now()
	target.ModifiedAt = now
	target.AccessedAt = now
	return s.inodes.Write(targetNum, target)
}
