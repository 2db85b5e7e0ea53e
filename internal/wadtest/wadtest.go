// Package wadtest lays out synthetic WAD archives for tests.
package wadtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Entry is one directory record. Data is laid out after the header unless Raw
// is set, in which case Filepos and Size are written verbatim.
type Entry struct {
	Name    string
	Data    []byte
	Raw     bool
	Filepos int32
	Size    int32
}

// Builder collects entries and serialises them as header, lump data, directory.
type Builder struct {
	Magic   string
	Entries []Entry

	// Overrides for the header fields, used to build broken archives.
	NumLumps     *int32
	InfoTableOfs *int32
	// Trailing bytes appended after the directory.
	Padding int
}

// New returns a builder for an archive with the given magic, IWAD or PWAD.
func New(magic string) *Builder {
	return &Builder{Magic: magic}
}

// Add appends a lump with a payload.
func (b *Builder) Add(name string, data []byte) *Builder {
	b.Entries = append(b.Entries, Entry{Name: name, Data: data})
	return b
}

// Marker appends an empty lump.
func (b *Builder) Marker(name string) *Builder {
	return b.Add(name, nil)
}

// AddRaw appends a directory record without payload.
func (b *Builder) AddRaw(name string, filepos, size int32) *Builder {
	b.Entries = append(b.Entries, Entry{Name: name, Raw: true, Filepos: filepos, Size: size})
	return b
}

// Bytes serialises the archive.
func (b *Builder) Bytes() []byte {
	var data bytes.Buffer
	const headerSize = 12
	type record struct {
		Filepos int32
		Size    int32
		Name    [8]byte
	}
	records := make([]record, len(b.Entries))
	for i, e := range b.Entries {
		r := record{Filepos: e.Filepos, Size: e.Size}
		copy(r.Name[:], e.Name)
		if !e.Raw {
			r.Filepos = int32(headerSize + data.Len())
			r.Size = int32(len(e.Data))
			data.Write(e.Data)
		}
		records[i] = r
	}

	numLumps := int32(len(records))
	if b.NumLumps != nil {
		numLumps = *b.NumLumps
	}
	infoTableOfs := int32(headerSize + data.Len())
	if b.InfoTableOfs != nil {
		infoTableOfs = *b.InfoTableOfs
	}

	var out bytes.Buffer
	var magic [4]byte
	copy(magic[:], b.Magic)
	out.Write(magic[:])
	must(binary.Write(&out, binary.LittleEndian, numLumps))
	must(binary.Write(&out, binary.LittleEndian, infoTableOfs))
	out.Write(data.Bytes())
	must(binary.Write(&out, binary.LittleEndian, records))
	out.Write(make([]byte, b.Padding))
	return out.Bytes()
}

// WriteFile writes the archive into a temporary directory and returns its path.
func (b *Builder) WriteFile(t testing.TB) string {
	t.Helper()
	return WriteFile(t, b.Bytes())
}

// WriteFile stores raw archive bytes in a temporary file.
func WriteFile(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wad")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// Int32 returns a pointer for the header overrides.
func Int32(v int32) *int32 {
	return &v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
