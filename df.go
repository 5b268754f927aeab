package unixfs

import (
	"bytes"

	"github.com/gocarina/gocsv"
)

// DiskUsageInfo summarizes inode and block utilization across the mounted
// image, the numbers reported by the `df` shell command.
type DiskUsageInfo struct {
	TotalInodes uint32 `csv:"total_inodes"`
	UsedInodes  uint32 `csv:"used_inodes"`
	FreeInodes  uint32 `csv:"free_inodes"`
	TotalBlocks uint32 `csv:"total_blocks"`
	UsedBlocks  uint32 `csv:"used_blocks"`
	FreeBlocks  uint32 `csv:"free_blocks"`
	TotalKB     uint32 `csv:"total_kb"`
	UsedKB      uint32 `csv:"used_kb"`
	FreeKB      uint32 `csv:"free_kb"`
}

// Df computes current usage by counting set bits in both bitmaps; it never
// trusts a cached count, since any mutation could have gone through a
// different Session.
func (s *Session) Df() (DiskUsageInfo, error) {
	if err := s.requireMounted(); err != nil {
		return DiskUsageInfo{}, err
	}

	usedInodes, err := s.inodeBMap.CountSet()
	if err != nil {
		return DiskUsageInfo{}, err
	}
	usedBlocks, err := s.blockBMap.CountSet()
	if err != nil {
		return DiskUsageInfo{}, err
	}

	freeInodes := s.sb.TotalInodes - usedInodes
	freeBlocks := s.sb.TotalBlocks - usedBlocks
	kbPerBlock := s.sb.BlockSize / 1024

	return DiskUsageInfo{
		TotalInodes: s.sb.TotalInodes,
		UsedInodes:  usedInodes,
		FreeInodes:  freeInodes,
		TotalBlocks: s.sb.TotalBlocks,
		UsedBlocks:  usedBlocks,
		FreeBlocks:  freeBlocks,
		TotalKB:     s.sb.TotalBlocks * kbPerBlock,
		UsedKB:      usedBlocks * kbPerBlock,
		FreeKB:      freeBlocks * kbPerBlock,
	}, nil
}

// DfCSV renders a DiskUsageInfo snapshot as a single-row CSV table, for the
// `df --export` shell flag.
func DfCSV(info DiskUsageInfo) (string, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal([]DiskUsageInfo{info}, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
