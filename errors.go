package wad

import "github.com/pkg/errors"

var (
	// ErrBadMagic is returned when the header does not start with IWAD or PWAD.
	ErrBadMagic = errors.New("wad: unrecognized magic")

	// ErrTruncatedDirectory is returned when the directory declared by the header
	// does not fit inside the file.
	ErrTruncatedDirectory = errors.New("wad: truncated directory")

	// ErrLumpOutOfBounds is returned when a directory entry points past the end of
	// the file. The whole archive is rejected.
	ErrLumpOutOfBounds = errors.New("wad: lump out of bounds")

	// ErrLumpNotFound is returned when no directory entry matches a lookup.
	ErrLumpNotFound = errors.New("wad: lump not found")

	// ErrNotLevel is returned when a scoped lookup names an index that is not a
	// level marker.
	ErrNotLevel = errors.New("wad: not a level marker")

	// ErrRead is returned when a lump's bytes could not be fetched although its
	// directory entry is valid.
	ErrRead = errors.New("wad: read failed")

	// ErrClosed is returned by reads on a closed archive.
	ErrClosed = errors.New("wad: archive closed")
)
