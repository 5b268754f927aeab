package inode_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/alveshenriique/unixfs/internal/inode"
	"github.com/alveshenriique/unixfs/internal/testutil"
)

func newStore(t *testing.T) *inode.Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	stream := testutil.NewBlankImage(256, 8)
	dev := block.New(stream, 256, 8, log)
	return inode.NewStore(dev, 0, log)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newStore(t)

	in := inode.Inode{
		Type:       inode.TypeFile,
		FileSize:   42,
		LinkCount:  1,
		CreatedAt:  1000,
		ModifiedAt: 1001,
		AccessedAt: 1002,
	}
	in.DirectBlocks[0] = 5

	require.NoError(t, store.Write(3, in))

	got, err := store.Read(3)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestMultipleInodesInSameBlockDontClobber(t *testing.T) {
	store := newStore(t)

	a := inode.Inode{Type: inode.TypeFile, LinkCount: 1, FileSize: 1}
	b := inode.Inode{Type: inode.TypeDir, LinkCount: 2, FileSize: 2}

	require.NoError(t, store.Write(0, a))
	require.NoError(t, store.Write(1, b))

	gotA, err := store.Read(0)
	require.NoError(t, err)
	gotB, err := store.Read(1)
	require.NoError(t, err)

	require.Equal(t, a, gotA)
	require.Equal(t, b, gotB)
}

func TestIsAllocatedAndTypePredicates(t *testing.T) {
	free := inode.Inode{}
	require.False(t, free.IsAllocated())

	file := inode.Inode{Type: inode.TypeFile, LinkCount: 1}
	require.True(t, file.IsAllocated())
	require.True(t, file.IsFile())
	require.False(t, file.IsDir())

	dir := inode.Inode{Type: inode.TypeDir, LinkCount: 2}
	require.True(t, dir.IsDir())
}

func TestTableBlocksRoundsUp(t *testing.T) {
	perBlock := 128 / inode.Size
	require.Equal(t, uint32(1), inode.TableBlocks(uint32(perBlock), 128))
	require.Equal(t, uint32(2), inode.TableBlocks(uint32(perBlock+1), 128))
}
