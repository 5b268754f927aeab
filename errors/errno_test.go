package errors_test

import (
	"errors"
	"testing"

	fserrors "github.com/alveshenriique/unixfs/errors"
	"github.com/stretchr/testify/require"
)

func TestFSErrorSatisfiesErrorInterface(t *testing.T) {
	var err error = fserrors.ErrNotFound
	require.EqualError(t, err, "no such file or directory")
}

func TestWithMessageAddsContextAndUnwraps(t *testing.T) {
	wrapped := fserrors.ErrNotFound.WithMessage("missing.txt")
	require.Contains(t, wrapped.Error(), "no such file or directory")
	require.Contains(t, wrapped.Error(), "missing.txt")
	require.True(t, errors.Is(wrapped, fserrors.ErrNotFound))
}

func TestWrapErrorPreservesOriginal(t *testing.T) {
	original := errors.New("disk exploded")
	wrapped := fserrors.ErrIoError.WrapError(original)
	require.True(t, errors.Is(wrapped, original))
	require.Contains(t, wrapped.Error(), "disk I/O failed")
}

func TestDistinctSentinelsAreNotEqual(t *testing.T) {
	require.False(t, errors.Is(fserrors.ErrNotFound, fserrors.ErrAlreadyExists))
}
