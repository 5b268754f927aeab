package unixfs

import (
	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/dirent"
	"github.com/alveshenriique/unixfs/internal/inode"
)

// DirEntry is one listed item, with its type resolved so callers don't have
// to re-read the inode themselves.
type DirEntry struct {
	Name string
	Type inode.Type
}

// findInDirectory looks up `name` in `dir`, returning ErrNotFound if absent.
func (s *Session) findInDirectory(dir *inode.Inode, name string) (uint32, error) {
	num, found, err := s.dirs.Lookup(dir, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fserrors.ErrNotFound
	}
	return num, nil
}

func (s *Session) readCwd() (inode.Inode, error) {
	return s.inodes.Read(s.cwd)
}

// Ls lists the current directory's entries, including "." and "..".
func (s *Session) Ls() ([]DirEntry, error) {
	if err := s.requireMounted(); err != nil {
		return nil, err
	}
	dir, err := s.readCwd()
	if err != nil {
		return nil, err
	}
	raw, err := s.dirs.Enumerate(&dir)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(raw))
	for _, e := range raw {
		childInode, err := s.inodes.Read(e.InodeNum)
		if err != nil {
			return nil, err
		}
		entries = append(entries, DirEntry{Name: e.Name, Type: childInode.Type})
	}
	return entries, nil
}

// Mkdir creates a new, empty subdirectory of the current directory. If the
// block allocation or adding the parent entry fails, it frees the inode and
// block it already allocated before returning. Failures after the parent
// entry is in place (writing the new inode, its first block, or the parent's
// link count) are returned without rollback.
func (s *Session) Mkdir(name string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	parent, err := s.readCwd()
	if err != nil {
		return err
	}
	if _, found, err := s.dirs.Lookup(&parent, name); err != nil {
		return err
	} else if found {
		return fserrors.ErrAlreadyExists
	}

	newInodeNum, err := s.allocInode()
	if err != nil {
		return err
	}
	newBlockNum, err := s.allocBlock()
	if err != nil {
		_ = s.freeInode(newInodeNum)
		return err
	}

	if err := s.dirs.Add(&parent, s.cwd, name, newInodeNum); err != nil {
		_ = s.freeInode(newInodeNum)
		_ = s.freeBlock(newBlockNum)
		return err
	}

	now := inode.Now()
	child := inode.Inode{
		Type:       inode.TypeDir,
		FileSize:   2 * dirent.Size,
		LinkCount:  2,
		CreatedAt:  now,
		ModifiedAt: now,
		AccessedAt: now,
	}
	child.DirectBlocks[0] = newBlockNum
	if err := s.inodes.Write(newInodeNum, child); err != nil {
		return err
	}

	block := s.device.ZeroBlock()
	copy(block[0:dirent.Size], dotEntry(".", newInodeNum))
	copy(block[dirent.Size:2*dirent.Size], dotEntry("..", s.cwd))
	if err := s.device.WriteBlock(newBlockNum, block); err != nil {
		return err
	}

	parent.LinkCount++
	return s.inodes.Write(s.cwd, parent)
}

// Rmdir removes an empty subdirectory of the current directory. "." and
// ".." can never be removed.
func (s *Session) Rmdir(name string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
	if name == "." || name == ".." {
		return fserrors.ErrInvalidName.WithMessage("cannot remove '.' or '..'")
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
	if !target.IsDir() {
		return fserrors.ErrNotADirectory
	}
	if target.FileSize > 2*dirent.Size {
		return fserrors.ErrNotEmpty
	}

	if err := s.dirs.Remove(&parent, s.cwd, name); err != nil {
		return err
	}

	if err := s.freeBlock(target.DirectBlocks[0]); err != nil {
		return err
	}
	if err := s.freeInode(targetNum); err != nil {
		return err
	}

	parent.LinkCount--
	return s.inodes.Write(s.cwd, parent)
}

// Cd changes the current directory to the named subdirectory of the current
// directory. There is no path resolution: `name` must be a single
// component, typically ".", "..", or the name of an immediate child.
func (s *Session) Cd(name string) error {
	if err := s.requireMounted(); err != nil {
		return err
	}
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
	if !target.IsDir() {
		return fserrors.ErrNotADirectory
	}
	s.cwd = targetNum
	return nil
}

// GetCurrentPath walks from the current directory up to the root via ".."
// entries, reconstructing the absolute path.
func (s *Session) GetCurrentPath() (string, error) {
	if err := s.requireMounted(); err != nil {
		return "", err
	}
	if s.cwd == rootInode {
		return "/", nil
	}

	var segments []string
	cur := s.cwd
	for cur != rootInode {
		child, err := s.inodes.Read(cur)
		if err != nil {
			return "", err
		}
		parentNum, err := s.findInDirectory(&child, "..")
		if err != nil {
			return "", err
		}
		parent, err := s.inodes.Read(parentNum)
		if err != nil {
			return "", err
		}
		entries, err := s.dirs.Enumerate(&parent)
		if err != nil {
			return "", err
		}
		name := "?"
		for _, e := range entries {
			if e.InodeNum == cur && e.Name != "." && e.Name != ".." {
				name = e.Name
				break
			}
		}
		segments = append([]string{name}, segments...)
		cur = parentNum
	}
	return "/" + joinSlash(segments), nil
}

func joinSlash(segments []string) string {
	out := ""
	for i, seg := range segments {
		if i > 0 {
			out += "/"
		}
		out += seg
	}
	return out
}

func validateName(name string) error {
	if name == "" {
		return fserrors.ErrInvalidName.WithMessage("name cannot be empty")
	}
	if len(name) >= dirent.MaxNameLen {
		return fserrors.ErrNameTooLong
	}
	return nil
}
