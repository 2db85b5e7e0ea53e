package wad

import (
	"golang.org/x/exp/slices"
)

// AnyLevel makes FindLevel return the first level in the directory.
const AnyLevel = "*"

// DefaultLevelLumps is the set of lump names that may follow a level marker and
// belong to that level. Grouping stops at the first name outside this set.
var DefaultLevelLumps = []string{
	"THINGS",
	"LINEDEFS",
	"SIDEDEFS",
	"VERTEXES",
	"SEGS",
	"SSECTORS",
	"NODES",
	"SECTORS",
	"REJECT",
	"BLOCKMAP",
	"BEHAVIOR", // Hexen
	"SCRIPTS",
	"GL_VERT", // GL nodes
	"GL_SEGS",
	"GL_SSECT",
	"GL_NODES",
	"GL_PVS",
}

type lumpSet map[string]struct{}

func newLumpSet(names ...string) lumpSet {
	s := make(lumpSet, len(names))
	s.add(names...)
	return s
}

func (s lumpSet) add(names ...string) {
	for _, n := range names {
		s[normalizeName(n)] = struct{}{}
	}
}

func (s lumpSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// IsLevelName reports whether name follows one of the level naming schemes:
// ExMy (episode and map) or MAPxx.
func IsLevelName(name string) bool {
	name = normalizeName(name)
	switch {
	case len(name) == 4 && name[0] == 'E' && isDigit(name[1]) && name[2] == 'M' && isDigit(name[3]):
		return true
	case len(name) == 5 && name[:3] == "MAP" && isDigit(name[3]) && isDigit(name[4]):
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// groupLevels flags level markers and counts the run of level lumps following
// each one. Entries outside any run keep Children == 0.
func groupLevels(lumps []LumpInfo, vocab lumpSet) int {
	levels := 0
	for i := 0; i < len(lumps); i++ {
		if !IsLevelName(lumps[i].Name) {
			continue
		}
		lumps[i].Flags |= FlagLevel
		levels++

		children := 0
		for j := i + 1; j < len(lumps); j++ {
			next := &lumps[j]
			if IsLevelName(next.Name) || !vocab.has(next.Name) {
				break
			}
			next.Flags |= FlagLevelData
			children++
		}
		lumps[i].Children = children
		i += children
	}
	return levels
}

// FindLevel returns the directory index of the level marker called name, or of
// the first marker when name is AnyLevel.
func (w *WAD) FindLevel(name string) (int, bool) {
	if name != AnyLevel {
		name = normalizeName(name)
	}
	for i, li := range w.lumpInfos {
		if !li.IsLevel() {
			continue
		}
		if name == AnyLevel || li.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Levels returns the directory indexes of all level markers in directory order.
func (w *WAD) Levels() []int {
	var result []int
	for i, li := range w.lumpInfos {
		if li.IsLevel() {
			result = append(result, i)
		}
	}
	return result
}

// LevelNames returns a sorted slice of level names found in the WAD archive.
func (w *WAD) LevelNames() []string {
	var result []string
	for _, li := range w.lumpInfos {
		if li.IsLevel() && !slices.Contains(result, li.Name) {
			result = append(result, li.Name)
		}
	}
	slices.Sort(result)
	return result
}

// LevelLumps returns the marker at level followed by its children.
func (w *WAD) LevelLumps(level int) ([]LumpInfo, error) {
	if err := w.checkLevel(level); err != nil {
		return nil, err
	}
	end := level + w.lumpInfos[level].Children + 1
	return slices.Clone(w.lumpInfos[level:end]), nil
}
