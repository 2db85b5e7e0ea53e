// Package wad provides access to Doom's data archives also known as WAD files.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
//
// A WAD is a 12 byte header, a directory of named byte ranges called lumps, and
// the lump data itself. Open validates the whole directory up front and groups
// level data lumps under their level marker (E1M1, MAP01, ...). Lump payloads are
// read on demand, one at a time, with ReadLump or ReadLevelLump.
//
// A WAD serialises its own reads, but it keeps a single file position, so callers
// that want concurrent lump access should open the file more than once.
package wad

import (
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// WAD is an open archive. Its directory is immutable once Open returns.
type WAD struct {
	mu     sync.Mutex
	file   io.ReadSeeker // nil once closed
	closer io.Closer
	size   int64

	header     Header
	lumpInfos  []LumpInfo
	levelLumps lumpSet
	log        logrus.FieldLogger
}

// Open reads the header and directory of the named file. On failure the file is
// closed again and no WAD is returned.
func Open(filename string, opts ...Option) (*WAD, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open wad")
	}
	w, err := newWAD(file, append(opts[:len(opts):len(opts)], withLogField("file", filename)))
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	w.closer = file
	return w, nil
}

// New reads the header and directory from r. Close on the returned WAD does not
// close r.
func New(r io.ReadSeeker, opts ...Option) (*WAD, error) {
	return newWAD(r, opts)
}

func withLogField(key string, value any) Option {
	return func(w *WAD) {
		w.log = w.log.WithField(key, value)
	}
}

func newWAD(r io.ReadSeeker, opts []Option) (*WAD, error) {
	w := &WAD{
		file:       r,
		levelLumps: newLumpSet(DefaultLevelLumps...),
		log:        logger,
	}
	for _, opt := range opts {
		opt(w)
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "determine size")
	}
	w.size = size

	if err := w.readHeader(); err != nil {
		return nil, err
	}
	if err := w.readInfoTables(); err != nil {
		return nil, err
	}
	levels := groupLevels(w.lumpInfos, w.levelLumps)
	w.log.Debugf("Loaded %v lumps, %v levels", len(w.lumpInfos), levels)
	return w, nil
}

func (w *WAD) readHeader() error {
	if w.size < headerSize {
		return errors.Wrapf(ErrBadMagic, "file is only %d bytes", w.size)
	}
	if err := w.seek(0); err != nil {
		return errors.Wrap(err, "seek header")
	}
	var binHeader binHeader
	if err := binary.Read(w.file, binary.LittleEndian, &binHeader); err != nil {
		return errors.Wrap(err, "read header")
	}

	switch string(binHeader.Magic[:]) {
	case "IWAD":
		w.header.Variant = VariantPrimary
	case "PWAD":
		w.header.Variant = VariantOverlay
	default:
		return errors.Wrapf(ErrBadMagic, "%q", binHeader.Magic[:])
	}

	if binHeader.NumLumps < 0 || binHeader.InfoTableOfs < 0 {
		return errors.Wrapf(ErrTruncatedDirectory, "negative header field: %d lumps at %d",
			binHeader.NumLumps, binHeader.InfoTableOfs)
	}
	tableSize := int64(binHeader.NumLumps) * lumpInfoSize
	if !fits(int64(binHeader.InfoTableOfs), tableSize, w.size) {
		return errors.Wrapf(ErrTruncatedDirectory, "%d lumps at %d exceed file size %d",
			binHeader.NumLumps, binHeader.InfoTableOfs, w.size)
	}
	w.header.NumLumps = int(binHeader.NumLumps)
	w.header.InfoTableOfs = int(binHeader.InfoTableOfs)
	return nil
}

func (w *WAD) readInfoTables() error {
	if err := w.seek(int64(w.header.InfoTableOfs)); err != nil {
		return errors.Wrap(err, "seek directory")
	}
	binInfos := make([]binLumpInfo, w.header.NumLumps)
	if err := binary.Read(w.file, binary.LittleEndian, binInfos); err != nil {
		return errors.Wrap(err, "read directory")
	}

	lumpInfos := make([]LumpInfo, len(binInfos))
	for i, bi := range binInfos {
		lumpInfo := LumpInfo{
			Name:    normalizeName(bi.Name.String()),
			Filepos: int(bi.Filepos),
			Size:    int(bi.Size),
		}
		// Empty lumps carry no payload, so their offset may point past the end.
		if bi.Filepos < 0 || bi.Size < 0 || (bi.Size > 0 && !fits(bi.Filepos, bi.Size, w.size)) {
			return errors.Wrapf(ErrLumpOutOfBounds, "lump %d (%s): %d bytes at %d, file size %d",
				i, lumpInfo.Name, bi.Size, bi.Filepos, w.size)
		}
		lumpInfos[i] = lumpInfo
	}
	w.lumpInfos = lumpInfos
	return nil
}

// Header returns the decoded archive header.
func (w *WAD) Header() Header {
	return w.header
}

// NumLumps returns the number of directory entries.
func (w *WAD) NumLumps() int {
	return len(w.lumpInfos)
}

// Lump returns the directory entry at index i.
func (w *WAD) Lump(i int) (LumpInfo, bool) {
	if i < 0 || i >= len(w.lumpInfos) {
		return LumpInfo{}, false
	}
	return w.lumpInfos[i], true
}

// Lumps returns a copy of the directory in on-disk order.
func (w *WAD) Lumps() []LumpInfo {
	return slices.Clone(w.lumpInfos)
}

// FindLump returns the index of the first entry called name. A negative level
// searches the whole directory; otherwise level must be a level marker index and
// the search covers only the marker and its children.
func (w *WAD) FindLump(name string, level int) (int, bool) {
	name = normalizeName(name)
	start, end := 0, len(w.lumpInfos)
	if level >= 0 {
		if w.checkLevel(level) != nil {
			return -1, false
		}
		start, end = level, level+w.lumpInfos[level].Children+1
	}
	for i := start; i < end; i++ {
		if w.lumpInfos[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// ReadLump reads the first lump called name anywhere in the directory. The
// returned slice belongs to the caller.
func (w *WAD) ReadLump(name string) ([]byte, error) {
	return w.readLumpNamed(name, -1)
}

// ReadLevelLump reads the lump called name from the level whose marker is at
// index level, as returned by FindLevel. Levels may share lump names.
func (w *WAD) ReadLevelLump(level int, name string) ([]byte, error) {
	if err := w.checkLevel(level); err != nil {
		return nil, err
	}
	return w.readLumpNamed(name, level)
}

func (w *WAD) checkLevel(level int) error {
	if level < 0 || level >= len(w.lumpInfos) || !w.lumpInfos[level].IsLevel() {
		return errors.Wrapf(ErrNotLevel, "index %d", level)
	}
	return nil
}

func (w *WAD) readLumpNamed(name string, level int) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil, ErrClosed
	}
	i, ok := w.FindLump(name, level)
	if !ok {
		w.log.WithFields(logrus.Fields{"lump": name, "level": level}).Debug("Lump not found")
		return nil, errors.Wrapf(ErrLumpNotFound, "%s", normalizeName(name))
	}
	return w.readLump(&w.lumpInfos[i])
}

// Read entire lump. Callers hold w.mu.
func (w *WAD) readLump(lumpInfo *LumpInfo) ([]byte, error) {
	lump := make([]byte, lumpInfo.Size)
	if lumpInfo.Size == 0 {
		return lump, nil
	}
	err := w.seek(int64(lumpInfo.Filepos))
	if err == nil {
		_, err = io.ReadFull(w.file, lump)
	}
	if err != nil {
		w.log.WithError(err).WithField("lump", lumpInfo.Name).Warn("Cannot read lump")
		return nil, errors.Wrapf(ErrRead, "lump %s (%d bytes at %d): %v",
			lumpInfo.Name, lumpInfo.Size, lumpInfo.Filepos, err)
	}
	return lump, nil
}

func (w *WAD) seek(offset int64) error {
	off, err := w.file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return errors.Errorf("seek to %d landed at %d", offset, off)
	}
	return nil
}

// Close releases the file opened by Open. Closing twice is a no-op.
func (w *WAD) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	w.file = nil
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}
