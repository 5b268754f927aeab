// Package dirent implements the directory layer: a directory inode's direct
// blocks are a sequence of fixed-size (name, inode-number) slots. This
// package only knows how to scan, add, remove, and enumerate those slots —
// it has no idea what a path or a current-working-directory is; that's the
// namespace layer's job.
package dirent

import (
	"bytes"
	"encoding/binary"

	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/alveshenriique/unixfs/internal/inode"
	"github.com/sirupsen/logrus"
)

// MaxNameLen is the number of bytes reserved for a name, including its NUL
// terminator.
const MaxNameLen = 60

// Size is the on-disk size of one directory entry: a MaxNameLen-byte name
// field followed by a 4-byte inode number.
const Size = MaxNameLen + 4

// Entry is the in-memory form of one directory slot.
type Entry struct {
	Name     string
	InodeNum uint32
}

func marshal(name string, inodeNum uint32) []byte {
	buf := make([]byte, Size)
	n := copy(buf[:MaxNameLen-1], name)
	buf[n] = 0
	binary.LittleEndian.PutUint32(buf[MaxNameLen:], inodeNum)
	return buf
}

func unmarshal(buf []byte) (name string, inodeNum uint32) {
	nameBytes := buf[:MaxNameLen]
	if nul := bytes.IndexByte(nameBytes, 0); nul >= 0 {
		nameBytes = nameBytes[:nul]
	}
	name = string(nameBytes)
	inodeNum = binary.LittleEndian.Uint32(buf[MaxNameLen:])
	return
}

// Layer performs directory operations against a directory inode's direct
// blocks.
type Layer struct {
	Device *block.Device
	Inodes *inode.Store
	log    *logrus.Logger
}

func New(device *block.Device, inodes *inode.Store, log *logrus.Logger) *Layer {
	return &Layer{Device: device, Inodes: inodes, log: log}
}

func (l *Layer) entriesPerBlock() int {
	return int(l.Device.BlockSize) / Size
}

// Lookup performs a linear scan of dir's direct blocks for `name`, returning
// the inode number of the first matching non-empty entry.
func (l *Layer) Lookup(dir *inode.Inode, name string) (inodeNum uint32, found bool, err error) {
	l.log.WithField("name", name).Debug("looking up directory entry")

	perBlock := l.entriesPerBlock()
	for _, blockNum := range dir.DirectBlocks {
		if blockNum == 0 {
			continue
		}
		buf, err := l.Device.ReadBlock(blockNum)
		if err != nil {
			return 0, false, err
		}
		for slot := 0; slot < perBlock; slot++ {
			off := slot * Size
			entryName, entryInode := unmarshal(buf[off : off+Size])
			if entryName != "" && entryName == name {
				return entryInode, true, nil
			}
		}
	}
	return 0, false, nil
}

// Add places (name, childInodeNum) into the first empty slot of one of
// dir's already-allocated direct blocks, persisting dir's updated size.
// Directories never grow past their currently allocated direct blocks —
// if every allocated block is full, Add fails with ErrDirectoryFull rather
// than allocating a new one.
func (l *Layer) Add(dir *inode.Inode, dirNum uint32, name string, childInodeNum uint32) error {
	l.log.WithFields(logrus.Fields{"dir": dirNum, "name": name, "child": childInodeNum}).
		Debug("adding directory entry")

	perBlock := l.entriesPerBlock()
	for _, blockNum := range dir.DirectBlocks {
		if blockNum == 0 {
			continue
		}
		buf, err := l.Device.ReadBlock(blockNum)
		if err != nil {
			return err
		}
		for slot := 0; slot < perBlock; slot++ {
			off := slot * Size
			entryName, _ := unmarshal(buf[off : off+Size])
			if entryName != "" {
				continue
			}
			copy(buf[off:off+Size], marshal(name, childInodeNum))
			if err := l.Device.WriteBlock(blockNum, buf); err != nil {
				return err
			}
			dir.FileSize += Size
			return l.Inodes.Write(dirNum, *dir)
		}
	}
	return fserrors.ErrDirectoryFull
}

// Remove zeroes the entry named `name`, persisting dir's updated size.
func (l *Layer) Remove(dir *inode.Inode, dirNum uint32, name string) error {
	l.log.WithFields(logrus.Fields{"dir": dirNum, "name": name}).Debug("removing directory entry")

	perBlock := l.entriesPerBlock()
	for _, blockNum := range dir.DirectBlocks {
		if blockNum == 0 {
			continue
		}
		buf, err := l.Device.ReadBlock(blockNum)
		if err != nil {
			return err
		}
		for slot := 0; slot < perBlock; slot++ {
			off := slot * Size
			entryName, _ := unmarshal(buf[off : off+Size])
			if entryName == "" || entryName != name {
				continue
			}
			for i := off; i < off+Size; i++ {
				buf[i] = 0
			}
			if err := l.Device.WriteBlock(blockNum, buf); err != nil {
				return err
			}
			dir.FileSize -= Size
			return l.Inodes.Write(dirNum, *dir)
		}
	}
	return fserrors.ErrNotFound
}

// Rename overwrites the name field of the entry matching `oldName`, leaving
// its inode number untouched.
func (l *Layer) Rename(dir *inode.Inode, oldName, newName string) error {
	perBlock := l.entriesPerBlock()
	for _, blockNum := range dir.DirectBlocks {
		if blockNum == 0 {
			continue
		}
		buf, err := l.Device.ReadBlock(blockNum)
		if err != nil {
			return err
		}
		for slot := 0; slot < perBlock; slot++ {
			off := slot * Size
			entryName, inodeNum := unmarshal(buf[off : off+Size])
			if entryName == "" || entryName != oldName {
				continue
			}
			copy(buf[off:off+Size], marshal(newName, inodeNum))
			return l.Device.WriteBlock(blockNum, buf)
		}
	}
	return fserrors.ErrNotFound
}

// Enumerate returns every non-empty entry in dir's direct blocks, including
// "." and ".." — callers decide whether to hide them.
func (l *Layer) Enumerate(dir *inode.Inode) ([]Entry, error) {
	perBlock := l.entriesPerBlock()
	var entries []Entry

	for _, blockNum := range dir.DirectBlocks {
		if blockNum == 0 {
			continue
		}
		buf, err := l.Device.ReadBlock(blockNum)
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < perBlock; slot++ {
			off := slot * Size
			entryName, entryInode := unmarshal(buf[off : off+Size])
			if entryName == "" {
				continue
			}
			entries = append(entries, Entry{Name: entryName, InodeNum: entryInode})
		}
	}
	return entries, nil
}
