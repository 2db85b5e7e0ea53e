package wad

import "bytes"

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

const (
	headerSize   = 12
	lumpInfoSize = 16
)

// Variant tells whether an archive stands alone or patches another one.
type Variant int

const (
	VariantPrimary Variant = iota // IWAD
	VariantOverlay                // PWAD
)

func (v Variant) String() string {
	switch v {
	case VariantPrimary:
		return "IWAD"
	case VariantOverlay:
		return "PWAD"
	}
	return "unknown"
}

// Header is the decoded archive header.
type Header struct {
	Variant      Variant
	NumLumps     int
	InfoTableOfs int
}

// LumpFlags marks directory entries during level grouping.
type LumpFlags uint8

const (
	// FlagLevel marks a level marker.
	FlagLevel LumpFlags = 1 << iota
	// FlagLevelData marks an entry inside a level marker's run.
	FlagLevelData
)

// LumpInfo describes one directory entry. Children is only set on level markers and
// counts the entries that immediately follow the marker and belong to its level.
type LumpInfo struct {
	Name     string
	Filepos  int
	Size     int
	Flags    LumpFlags
	Children int
}

// IsLevel reports whether the entry is a level marker.
func (li LumpInfo) IsLevel() bool {
	return li.Flags&FlagLevel != 0
}

// End returns the offset one past the lump's last byte.
func (li LumpInfo) End() int {
	return li.Filepos + li.Size
}

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Names are stored upper-cased, so every lookup key goes through here. Only
// ASCII letters change; other bytes are kept as they are on disk.
func normalizeName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
