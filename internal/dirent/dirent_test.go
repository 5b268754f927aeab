package dirent_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alveshenriique/unixfs/errors"
	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/alveshenriique/unixfs/internal/dirent"
	"github.com/alveshenriique/unixfs/internal/inode"
	"github.com/alveshenriique/unixfs/internal/testutil"
)

func newLayer(t *testing.T, blockSize, totalBlocks uint32) (*dirent.Layer, *block.Device, *inode.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	stream := testutil.NewBlankImage(uint(blockSize), uint(totalBlocks))
	dev := block.New(stream, blockSize, totalBlocks, log)
	inodes := inode.NewStore(dev, 0, log)
	return dirent.New(dev, inodes, log), dev, inodes
}

func TestAddThenLookup(t *testing.T) {
	layer, dev, _ := newLayer(t, 128, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))

	require.NoError(t, layer.Add(&dir, 0, "hello.txt", 7))

	num, found, err := layer.Lookup(&dir, "hello.txt")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(7), num)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	layer, dev, _ := newLayer(t, 128, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))

	_, found, err := layer.Lookup(&dir, "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestAddFailsWhenDirectoryFull(t *testing.T) {
	// block size 72 (one inode record), entry size 64 -> exactly one slot
	// per block.
	layer, dev, _ := newLayer(t, inode.Size, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))

	require.NoError(t, layer.Add(&dir, 0, "only", 3))

	err := layer.Add(&dir, 0, "overflow", 4)
	require.ErrorIs(t, err, errors.ErrDirectoryFull)
}

func TestRemoveThenLookupNotFound(t *testing.T) {
	layer, dev, _ := newLayer(t, 128, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))
	require.NoError(t, layer.Add(&dir, 0, "doomed", 9))

	require.NoError(t, layer.Remove(&dir, 0, "doomed"))

	_, found, err := layer.Lookup(&dir, "doomed")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRenamePreservesInodeNumber(t *testing.T) {
	layer, dev, _ := newLayer(t, 128, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))
	require.NoError(t, layer.Add(&dir, 0, "old", 11))

	require.NoError(t, layer.Rename(&dir, "old", "new"))

	num, found, err := layer.Lookup(&dir, "new")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(11), num)

	_, found, err = layer.Lookup(&dir, "old")
	require.NoError(t, err)
	require.False(t, found)
}

func TestEnumerateReturnsAllNonEmptyEntries(t *testing.T) {
	layer, dev, _ := newLayer(t, 128, 4)
	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	dir.DirectBlocks[0] = 1
	require.NoError(t, dev.WriteBlock(1, dev.ZeroBlock()))
	require.NoError(t, layer.Add(&dir, 0, "a", 1))
	require.NoError(t, layer.Add(&dir, 0, "b", 2))

	entries, err := layer.Enumerate(&dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
