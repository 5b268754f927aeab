package bitmap_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alveshenriique/unixfs/internal/bitmap"
	"github.com/alveshenriique/unixfs/internal/block"
	"github.com/alveshenriique/unixfs/internal/testutil"
)

func newAllocator(t *testing.T, totalBits uint32) *bitmap.Allocator {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	stream := testutil.NewBlankImage(64, 4)
	dev := block.New(stream, 64, 4, log)
	return bitmap.New(dev, 0, totalBits)
}

func TestFindFreeFromEmptyBitmap(t *testing.T) {
	a := newAllocator(t, 100)
	bit, ok, err := a.FindFreeFrom(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(0), bit)
}

func TestSetThenFindFreeSkipsUsedBits(t *testing.T) {
	a := newAllocator(t, 100)
	require.NoError(t, a.Set(0, true))
	require.NoError(t, a.Set(1, true))

	bit, ok, err := a.FindFreeFrom(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(2), bit)
}

func TestCountSetReflectsSetBits(t *testing.T) {
	a := newAllocator(t, 100)
	require.NoError(t, a.Set(3, true))
	require.NoError(t, a.Set(50, true))

	count, err := a.CountSet()
	require.NoError(t, err)
	require.Equal(t, uint32(2), count)
}

func TestSetFalseClearsBit(t *testing.T) {
	a := newAllocator(t, 100)
	require.NoError(t, a.Set(10, true))
	require.NoError(t, a.Set(10, false))

	got, err := a.Get(10)
	require.NoError(t, err)
	require.False(t, got)
}

func TestFindFreeFromReturnsFalseWhenBitmapFull(t *testing.T) {
	a := newAllocator(t, 8)
	for i := uint32(0); i < 8; i++ {
		require.NoError(t, a.Set(i, true))
	}
	_, ok, err := a.FindFreeFrom(0)
	require.NoError(t, err)
	require.False(t, ok)
}
