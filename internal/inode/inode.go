// Package inode defines the on-disk inode record and the inode table
// reader/writer. The on-disk layout is marshaled explicitly with
// encoding/binary (little-endian) rather than reinterpreted Go struct bytes,
// so the image produced by one run is byte-identical to what any other run
// (or platform) produces and consumes — the same discipline
// drivers/unixv1/dirents.go uses for its own raw records.
package inode

import (
	"encoding/binary"
	"time"

	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/sirupsen/logrus"
)

// DirectBlockCount is D in the spec: the number of direct block pointers an
// inode carries. There are no indirect blocks.
const DirectBlockCount = 12

// Type tags an inode as a file or a directory. There are no other kinds of
// objects in this filesystem.
type Type uint32

const (
	TypeFile Type = 0
	TypeDir  Type = 1
)

// Size is the marshaled, on-disk size of one inode record, in bytes:
// type(4) + size(4) + linkcount(4) + 3 timestamps(4 each) + 12 direct
// blocks(4 each).
const Size = 4 + 4 + 4 + 3*4 + DirectBlockCount*4

// Inode is the in-memory form of one inode record.
type Inode struct {
	Type         Type
	FileSize     uint32
	LinkCount    uint32
	CreatedAt    uint32
	ModifiedAt   uint32
	AccessedAt   uint32
	DirectBlocks [DirectBlockCount]uint32
}

// IsDir reports whether this inode describes a directory.
func (i *Inode) IsDir() bool { return i.Type == TypeDir }

// IsFile reports whether this inode describes a regular file.
func (i *Inode) IsFile() bool { return i.Type == TypeFile }

// IsAllocated distinguishes a real inode record from the zeroed sentinel
// returned for "not found" lookups — a live inode always has LinkCount >= 1.
func (i *Inode) IsAllocated() bool { return i.LinkCount > 0 }

// Now returns the current time truncated to the on-disk uint32-seconds
// resolution, the same resolution drivers/unixv1.SerializeTimestamp uses.
func Now() uint32 {
	return uint32(time.Now().Unix())
}

func (i *Inode) marshal() []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(i.Type))
	binary.LittleEndian.PutUint32(buf[4:8], i.FileSize)
	binary.LittleEndian.PutUint32(buf[8:12], i.LinkCount)
	binary.LittleEndian.PutUint32(buf[12:16], i.CreatedAt)
	binary.LittleEndian.PutUint32(buf[16:20], i.ModifiedAt)
	binary.LittleEndian.PutUint32(buf[20:24], i.AccessedAt)
	for idx, b := range i.DirectBlocks {
		off := 24 + idx*4
		binary.LittleEndian.PutUint32(buf[off:off+4], b)
	}
	return buf
}

func unmarshal(buf []byte) Inode {
	var i Inode
	i.Type = Type(binary.LittleEndian.Uint32(buf[0:4]))
	i.FileSize = binary.LittleEndian.Uint32(buf[4:8])
	i.LinkCount = binary.LittleEndian.Uint32(buf[8:12])
	i.CreatedAt = binary.LittleEndian.Uint32(buf[12:16])
	i.ModifiedAt = binary.LittleEndian.Uint32(buf[16:20])
	i.AccessedAt = binary.LittleEndian.Uint32(buf[20:24])
	for idx := range i.DirectBlocks {
		off := 24 + idx*4
		i.DirectBlocks[idx] = binary.LittleEndian.Uint32(buf[off : off+4])
	}
	return i
}

// Store reads and writes inodes by number, packing several per block.
type Store struct {
	Device          *block.Device
	TableStartBlock uint32
	PerBlock        uint32
	log             *logrus.Logger
}

func NewStore(device *block.Device, tableStartBlock uint32, log *logrus.Logger) *Store {
	perBlock := device.BlockSize / Size
	return &Store{Device: device, TableStartBlock: tableStartBlock, PerBlock: perBlock, log: log}
}

func (s *Store) locate(num uint32) (blockNum uint32, offset uint32) {
	blockNum = s.TableStartBlock + num/s.PerBlock
	offset = (num % s.PerBlock) * Size
	return
}

// Read returns the inode record stored at `num`.
func (s *Store) Read(num uint32) (Inode, error) {
	blockNum, offset := s.locate(num)
	s.log.WithFields(logrus.Fields{"inode": num, "block": blockNum, "offset": offset}).Debug("reading inode")

	buf, err := s.Device.ReadBlock(blockNum)
	if err != nil {
		return Inode{}, err
	}
	return unmarshal(buf[offset : offset+Size]), nil
}

// Write persists `in` as inode number `num`, read-modify-writing the
// containing block.
func (s *Store) Write(num uint32, in Inode) error {
	blockNum, offset := s.locate(num)
	s.log.WithFields(logrus.Fields{"inode": num, "block": blockNum, "offset": offset}).Debug("writing inode")

	buf, err := s.Device.ReadBlock(blockNum)
	if err != nil {
		return err
	}
	marshaled := in.marshal()
	copy(buf[offset:offset+Size], marshaled)
	return s.Device.WriteBlock(blockNum, buf)
}

// TableBlocks returns the number of blocks needed to store `totalInodes`
// inodes given the store's current packing.
func TableBlocks(totalInodes, blockSize uint32) uint32 {
	perBlock := blockSize / Size
	return (totalInodes + perBlock - 1) / perBlock
}

