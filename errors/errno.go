// Sentinel error kinds for the unixfs engine, one per failure mode named in
// the specification's error-handling design. Each is a plain string that
// implements the `error` interface directly, so callers can compare with the
// standard library's errors.Is, and can be upgraded to a contextualized
// DriverError with WithMessage or WrapError.

package errors

import (
	"fmt"
)

type FSError string

const ErrNotMounted = FSError("not mounted")
const ErrIoError = FSError("disk I/O failed")
const ErrBadMagic = FSError("bad magic number: not a unixfs image")
const ErrNoInodes = FSError("no free inodes")
const ErrNoBlocks = FSError("no free data blocks")
const ErrDirectoryFull = FSError("directory has no free entry slots")
const ErrAlreadyExists = FSError("name already exists")
const ErrNotFound = FSError("no such file or directory")
const ErrNotADirectory = FSError("not a directory")
const ErrNotAFile = FSError("not a file")
const ErrNotEmpty = FSError("directory not empty")
const ErrNameTooLong = FSError("name too long")
const ErrInvalidName = FSError("invalid name")
const ErrFileTooLarge = FSError("file too large for direct blocks")
const ErrHostOpen = FSError("could not open host file")

func (e FSError) Error() string {
	return string(e)
}

func (e FSError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", string(e), message),
		originalError: e,
	}
}

func (e FSError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", string(e), err.Error()),
		originalError: err,
	}
}
