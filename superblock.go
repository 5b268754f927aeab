package unixfs

import "encoding/binary"

// MagicNumber identifies a block 0 as a unixfs superblock. "DA7A F17E" is a
// leetspeak rendering of "data file", preserved from the reference format.
const MagicNumber uint32 = 0xDA7AF17E

// superblockSize is the marshaled size of the Superblock record: eight
// uint32 fields. The remainder of block 0 is zero-padding.
const superblockSize = 8 * 4

// Superblock is the fixed record stored in block 0 of every disk image.
type Superblock struct {
	Magic            uint32
	TotalBlocks      uint32
	TotalInodes      uint32
	BlockSize        uint32
	InodeBitmapStart uint32
	BlockBitmapStart uint32
	InodeTableStart  uint32
	DataBlocksStart  uint32
}

func (sb *Superblock) marshal(blockSize uint32) []byte {
	buf := make([]byte, blockSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[8:12], sb.TotalInodes)
	binary.LittleEndian.PutUint32(buf[12:16], sb.BlockSize)
	binary.LittleEndian.PutUint32(buf[16:20], sb.InodeBitmapStart)
	binary.LittleEndian.PutUint32(buf[20:24], sb.BlockBitmapStart)
	binary.LittleEndian.PutUint32(buf[24:28], sb.InodeTableStart)
	binary.LittleEndian.PutUint32(buf[28:32], sb.DataBlocksStart)
	return buf
}

func unmarshalSuperblock(buf []byte) Superblock {
	return Superblock{
		Magic:            binary.LittleEndian.Uint32(buf[0:4]),
		TotalBlocks:      binary.LittleEndian.Uint32(buf[4:8]),
		TotalInodes:      binary.LittleEndian.Uint32(buf[8:12]),
		BlockSize:        binary.LittleEndian.Uint32(buf[12:16]),
		InodeBitmapStart: binary.LittleEndian.Uint32(buf[16:20]),
		BlockBitmapStart: binary.LittleEndian.Uint32(buf[20:24]),
		InodeTableStart:  binary.LittleEndian.Uint32(buf[24:28]),
		DataBlocksStart:  binary.LittleEndian.Uint32(buf[28:32]),
	}
}
