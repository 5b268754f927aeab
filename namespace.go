package unixfs

import (
	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/dirent"
	"github.com/alveshenriique/unixfs/internal/inode"
)

// ItemType is the 3-state result of CheckItemType: a name in the current
// directory resolves to a file, a directory, or neither (absent).
type ItemType int

const (
	ItemAbsent ItemType = iota
	ItemFile
	ItemDir
)

// CheckItemType reports whether `name` exists in the current directory and,
// if so, what kind of object it names. Unlike the reference implementation's
// fs_check_item_type (which overloads -1 for both "I/O error" and "not
// found"), absence is reported through the ItemAbsent value rather than an
// error, since "does this exist" is the normal, expected question this
// helper answers.
func (s *Session) CheckItemType(name string) (ItemType, error) {
	if err := s.requireMounted(); err != nil {
		return ItemAbsent, err
	}
	dir, err := s.readCwd()
	if err != nil {
		return ItemAbsent, err
	}
	num, found, err := s.dirs.Lookup(&dir, name)
	if err != nil {
		return ItemAbsent, err
	}
	if !found {
		return ItemAbsent, nil
	}
	target, err := s.inodes.Read(num)
	if err != nil {
		return ItemAbsent, err
	}
	if target.IsDir() {
		return ItemDir, nil
	}
	return ItemFile, nil
}

// Stat returns the raw inode record for a name in the current directory.
func (s *Session) Stat(name string) (inode.Inode, error) {
	if err := s.requireMounted(); err != nil {
		return inode.Inode{}, err
	}
	dir, err := s.readCwd()
	if err != nil {
		return inode.Inode{}, err
	}
	num, err := s.findInDirectory(&dir, name)
	if err != nil {
		return inode.Inode{}, err
	}
	return s.inodes.Read(num)
}

// Rename changes a name in place within the current directory without
// touching the target's inode or data. "." and ".." may neither be renamed
// nor be used as a new name.
func (s *Session) Rename(oldName, newName string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if oldName == "." || oldName == ".." || newName == "." || newName == ".." {
		return fserrors.ErrInvalidName.WithMessage("cannot rename '.' or '..'")
	}
	if err := validateName(newName); err != nil {
		return err
	}

	dir, err := s.readCwd()
	if err != nil {
		return err
	}
	if _, found, err := s.dirs.Lookup(&dir, oldName); err != nil {
		return err
	} else if !found {
		return fserrors.ErrNotFound
	}
	if _, found, err := s.dirs.Lookup(&dir, newName); err != nil {
		return err
	} else if found {
		return fserrors.ErrAlreadyExists
	}

	if err := s.dirs.Rename(&dir, oldName, newName); err != nil {
		return err
	}
	dir.ModifiedAt = inode.Now()
	return s.inodes.Write(s.cwd, dir)
}

// Mv moves an item from the current directory into a subdirectory of the
// current directory, keeping its name. This is the one mutation the
// reference design explicitly does not roll back on partial failure: once
// the destination entry has been written, a failure removing the source
// entry leaves the item linked in both places rather than losing it, and is
// reported to the caller as an error to investigate by hand.
func (s *Session) Mv(sourceName, destDirName string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if sourceName == "." || sourceName == ".." {
		return fserrors.ErrInvalidName.WithMessage("cannot move '.' or '..'")
	}
	if sourceName == destDirName {
		return fserrors.ErrInvalidName.WithMessage("source and destination must differ")
	}

	cwdInode, err := s.readCwd()
	if err != nil {
		return err
	}
	sourceNum, err := s.findInDirectory(&cwdInode, sourceName)
	if err != nil {
		return err
	}
	destDirNum, err := s.findInDirectory(&cwdInode, destDirName)
	if err != nil {
		return err
	}

	source, err := s.inodes.Read(sourceNum)
	if err != nil {
		return err
	}
	destDir, err := s.inodes.Read(destDirNum)
	if err != nil {
		return err
	}
	if !destDir.IsDir() {
		return fserrors.ErrNotADirectory
	}
	if _, found, err := s.dirs.Lookup(&destDir, sourceName); err != nil {
		return err
	} else if found {
		return fserrors.ErrAlreadyExists
	}

	if err := s.dirs.Add(&destDir, destDirNum, sourceName, sourceNum); err != nil {
		return err
	}

	if source.IsDir() {
		// Moving a directory changes its parent, so its ".." entry must
		// point at the new parent. Layer only offers name-preserving
		// renames, so the entry's inode number is rewritten directly.
		if err := s.rewriteDotDot(&source, destDirNum); err != nil {
			return err
		}
		cwdInode.LinkCount--
		destDir.LinkCount++
		if err := s.inodes.Write(s.cwd, cwdInode); err != nil {
			return err
		}
		if err := s.inodes.Write(destDirNum, destDir); err != nil {
			return err
		}
	}

	return s.dirs.Remove(&cwdInode, s.cwd, sourceName)
}

// rewriteDotDot updates a directory's ".." entry to point at a new parent
// inode number, in place, without disturbing any other entry.
func (s *Session) rewriteDotDot(dir *inode.Inode, newParentNum uint32) error {
	blockNum := dir.DirectBlocks[0]
	buf, err := s.device.ReadBlock(blockNum)
	if err != nil {
		return err
	}
	// ".." always occupies the second slot of a directory's first block,
	// right after ".", by construction (Mkdir/Format write them in that
	// fixed order and nothing ever reorders a directory's entries).
	const dotDotSlot = 1
	off := dotDotSlot * dirent.Size
	copy(buf[off:off+dirent.Size], dotEntry("..", newParentNum))
	return s.device.WriteBlock(blockNum, buf)
}

// Delete recursively removes `name`: files are removed directly, and
// directories have their contents deleted depth-first before the directory
// itself is removed. Unlike the reference implementation (which changes
// into each subdirectory with cd and returns via ".." — implicitly trusting
// that cd ".." always lands back where it started), this restores the
// current directory to its exact starting value once the whole subtree
// finishes, so a Delete call never has an observable side effect on cwd.
// Deletion stops at the first error encountered.
func (s *Session) Delete(name string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	startCwd := s.cwd
	err := s.deleteRecursive(name)
	s.cwd = startCwd
	return err
}

func (s *Session) deleteRecursive(name string) error {
	dir, err := s.readCwd()
	if err != nil {
		return err
	}
	targetNum, err := s.findInDirectory(&dir, name)
	if err != nil {
		return err
	}
	target, err := s.inodes.Read(targetNum)
	if err != nil {
		return err
	}

	if target.IsFile() {
		return s.Rm(name)
	}

	savedCwd := s.cwd
	if err := s.Cd(name); err != nil {
		return err
	}
	entries, err := s.Ls()
	if err != nil {
		s.cwd = savedCwd
		return err
	}
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		if err := s.deleteRecursive(e.Name); err != nil {
			s.cwd = savedCwd
			return err
		}
	}
	s.cwd = savedCwd
	return s.Rmdir(name)
}
