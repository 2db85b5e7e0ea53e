package mapdata

type binLine struct {
	VertexStart, VertexEnd uint16
	Flags                  int16
	Type                   int16
	SectorTag              int16
	SideR, SideL           uint16
}

// NoSide is the side number of the missing side of a one-sided line.
const NoSide = 0xffff

type Line struct {
	V1Num                  int
	V2Num                  int
	BlockPlayerAndMonsters bool
	BlockMonsters          bool
	TwoSided               bool
	UpperTextureUnpegged   bool
	LowerTextureUnpegged   bool
	Secret                 bool
	BlocksSound            bool
	NeverMap               bool
	AlwaysMap              bool
	Special                int
	SectorTagNum           int
	SideRNum, SideLNum     int

	// References
	V1, V2                  Vertex
	DX, DY                  float64 // Precalculated VertexEnd-VertexStart for side checking
	SideR, SideL            *Side   // SideL is nil if one-sided
	FrontSector, BackSector *Sector
}

func readLines(src LumpSource, level int) ([]Line, error) {
	binLines, err := readRecords[binLine](src, level, "LINEDEFS")
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	lines := make([]Line, len(binLines))
	for i, line := range binLines {
		lines[i] = Line{
			V1Num:                  int(line.VertexStart),
			V2Num:                  int(line.VertexEnd),
			BlockPlayerAndMonsters: line.Flags&1 != 0,
			BlockMonsters:          line.Flags&2 != 0,
			TwoSided:               line.Flags&4 != 0,
			UpperTextureUnpegged:   line.Flags&8 != 0,
			LowerTextureUnpegged:   line.Flags&0x10 != 0,
			Secret:                 line.Flags&0x20 != 0,
			BlocksSound:            line.Flags&0x40 != 0,
			NeverMap:               line.Flags&0x80 != 0,
			AlwaysMap:              line.Flags&0x100 != 0,
			Special:                int(line.Type),
			SectorTagNum:           int(line.SectorTag),
			SideRNum:               int(line.SideR),
			SideLNum:               int(line.SideL),
		}
	}
	logger.Printf("Read %v lines", len(lines))
	return lines, nil
}
