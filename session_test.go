package unixfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	unixfs "github.com/alveshenriique/unixfs"
	"github.com/alveshenriique/unixfs/errors"
)

func formatAndMount(t *testing.T, totalKB, blockKB uint32) *unixfs.Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.ufs")
	require.NoError(t, unixfs.Format(path, totalKB, blockKB))
	s, err := unixfs.Mount(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Unmount() })
	return s
}

func TestFormatAndMountSizing(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	info, err := s.Df()
	require.NoError(t, err)

	require.GreaterOrEqual(t, info.TotalInodes, uint32(16))
	require.Equal(t, uint32(1), info.UsedInodes)
	require.Greater(t, info.TotalBlocks, uint32(0))
}

func TestMountRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.ufs")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	_, err := unixfs.Mount(path)
	require.ErrorIs(t, err, errors.ErrBadMagic)
}

func TestMkdirCdRmdir(t *testing.T) {
	s := formatAndMount(t, 64, 1)

	require.NoError(t, s.Mkdir("sub"))
	require.NoError(t, s.Cd("sub"))

	path, err := s.GetCurrentPath()
	require.NoError(t, err)
	require.Equal(t, "/sub", path)

	require.NoError(t, s.Cd(".."))
	require.NoError(t, s.Rmdir("sub"))

	_, err = s.Stat("sub")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRmdirRejectsNonEmptyDirectory(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	require.NoError(t, s.Mkdir("sub"))
	require.NoError(t, s.Cd("sub"))
	require.NoError(t, s.Mkdir("nested"))
	require.NoError(t, s.Cd(".."))

	err := s.Rmdir("sub")
	require.ErrorIs(t, err, errors.ErrNotEmpty)
}

func TestImportCatRmRoundTrip(t *testing.T) {
	s := formatAndMount(t, 64, 1)

	hostPath := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(hostPath, []byte("hello world"), 0o644))

	require.NoError(t, s.Import(hostPath, "greeting.txt"))

	data, err := s.Cat("greeting.txt")
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	require.NoError(t, s.Rm("greeting.txt"))
	_, err = s.Cat("greeting.txt")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestEchoTruncateAndAppend(t *testing.T) {
	s := formatAndMount(t, 64, 1)

	require.NoError(t, s.Echo("notes.txt", "first", unixfs.OpTruncate))
	data, err := s.Cat("notes.txt")
	require.NoError(t, err)
	require.Equal(t, "first", string(data))

	require.NoError(t, s.Echo("notes.txt", "-second", unixfs.OpAppend))
	data, err = s.Cat("notes.txt")
	require.NoError(t, err)
	require.Equal(t, "first-second", string(data))

	require.NoError(t, s.Echo("notes.txt", "replaced", unixfs.OpTruncate))
	data, err = s.Cat("notes.txt")
	require.NoError(t, err)
	require.Equal(t, "replaced", string(data))
}

func TestMvBetweenDirectories(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	require.NoError(t, s.Mkdir("dest"))
	require.NoError(t, s.Echo("file.txt", "payload", unixfs.OpTruncate))

	require.NoError(t, s.Mv("file.txt", "dest"))

	_, err := s.Stat("file.txt")
	require.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, s.Cd("dest"))
	data, err := s.Cat("file.txt")
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestRenameRejectsDotAndDotDot(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	err := s.Rename(".", "x")
	require.ErrorIs(t, err, errors.ErrInvalidName)
	err = s.Rename("..", "x")
	require.ErrorIs(t, err, errors.ErrInvalidName)
}

func TestDeleteRecursiveRestoresCwd(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	require.NoError(t, s.Mkdir("tree"))
	require.NoError(t, s.Cd("tree"))
	require.NoError(t, s.Mkdir("child"))
	require.NoError(t, s.Cd("child"))
	require.NoError(t, s.Echo("leaf.txt", "x", unixfs.OpTruncate))
	require.NoError(t, s.Cd(".."))
	require.NoError(t, s.Cd(".."))

	startPath, err := s.GetCurrentPath()
	require.NoError(t, err)

	require.NoError(t, s.Delete("tree"))

	endPath, err := s.GetCurrentPath()
	require.NoError(t, err)
	require.Equal(t, startPath, endPath)

	_, err = s.Stat("tree")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCheckItemTypeDistinguishesFilesAndDirs(t *testing.T) {
	s := formatAndMount(t, 64, 1)
	require.NoError(t, s.Mkdir("adir"))
	require.NoError(t, s.Echo("afile", "x", unixfs.OpTruncate))

	typ, err := s.CheckItemType("adir")
	require.NoError(t, err)
	require.Equal(t, unixfs.ItemDir, typ)

	typ, err = s.CheckItemType("afile")
	require.NoError(t, err)
	require.Equal(t, unixfs.ItemFile, typ)

	typ, err = s.CheckItemType("missing")
	require.NoError(t, err)
	require.Equal(t, unixfs.ItemAbsent, typ)
}

func TestOperationsFailWhenUnmounted(t *testing.T) {
	s := unixfs.NewSession()
	_, err := s.Ls()
	require.ErrorIs(t, err, errors.ErrNotMounted)
}
