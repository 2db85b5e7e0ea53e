// Package mapdata decodes the level lumps of a WAD archive into records.
// The level format is documented in The Unofficial DOOM Specs, chapter 4.
package mapdata

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"

	"github.com/obsidian-level/wad"
)

var (
	// ErrBadLumpSize is returned when a lump is not a whole number of records.
	ErrBadLumpSize = errors.New("mapdata: lump size is not a multiple of the record size")

	// ErrBadReference is returned when a record points at a record that does not exist.
	ErrBadReference = errors.New("mapdata: reference out of range")
)

var logger logrus.FieldLogger = discardLogger()

// SetLogger sets the logger used while loading levels.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discardLogger()
	}
	logger = l
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// LumpSource hands out the lumps of one level. *wad.WAD implements it.
type LumpSource interface {
	ReadLevelLump(level int, name string) ([]byte, error)
}

type Level struct {
	Things   []Thing
	Lines    []Line
	Sides    []Side
	Vertexes []Vertex
	Sectors  []Sector
}

// Stats counts the records of a level.
type Stats struct {
	Things   int
	Lines    int
	Sides    int
	Vertexes int
	Sectors  int
	Secrets  int // sectors of TypeSecret
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type Thing struct {
	X, Y            int
	Angle           float64 // Radians
	Type            int
	Skill1and2      bool
	Skill3          bool
	Skill4and5      bool
	Ambush          bool
	MultiplayerOnly bool
}

type binVertex struct {
	X, Y int16
}

type Vertex struct {
	X, Y float64
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  wad.String8
	LowerTexture  wad.String8
	MiddleTexture wad.String8
	SectorNum     int16
}

type Side struct {
	XOffset           float64
	YOffset           float64
	UpperTextureName  string
	LowerTextureName  string
	MiddleTextureName string
	SectorNum         int
	Sector            *Sector
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   wad.String8
	CeilingTexture wad.String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

type Sector struct {
	Index              int
	FloorHeight        float64
	CeilingHeight      float64
	FloorTextureName   string
	CeilingTextureName string
	LightLevel         int
	Type               SectorType
	TagNum             int
}

type SectorType int

const (
	TypeNormal          SectorType = iota
	TypeBlinkRandom                // 1  Light  Blink random
	TypeBlink05                    // 2  Light  Blink 0.5 second
	TypeBlink10                    // 3  Light  Blink 1.0 second
	TypeDamage20Blink05            // 4  Both   20% damage per second; light blink 0.5 second
	TypeDamage10                   // 5	 Damage 10% damage per second
	TypeUnused1                    // 6  Unused
	TypeDamage5                    // 7	 Damage 5% damage per second
	TypeOscillate                  // 8	 Light  Oscillates
	TypeSecret                     // 9	 Secret Player entering this sector gets credit for finding a secret
	TypeDoor30                     // 10 Door   30 seconds after level start, ceiling closes like a door
	TypeEnd                        // 11 End    20% damage ps. Level ends when player health drops below 11% & touching floor
	TypeBlink10Sync                // 12 Light  Blink 1.0 second, synchronized
	TypeBlink05Sync                // 13 Light  Blink 0.5 second, synchronized
	TypeDoor300                    // 14 Door   300 seconds after level start, ceiling opens like a door
	TypeUnused2                    // 15 Unused
	TypeDamage20                   // 16 Damage 20% damage per second
	TypeFlickerRandom              // 17 Light  Flickers randomly
)

type BoundBox struct {
	Top, Bottom, Left, Right float64
}

func newBBox() BoundBox {
	return BoundBox{
		Left:   math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(1),
		Top:    math.Inf(-1),
	}
}

func (b *BoundBox) add(v Vertex) {
	b.Left = min(b.Left, v.X)
	b.Right = max(b.Right, v.X)
	b.Bottom = min(b.Bottom, v.Y)
	b.Top = max(b.Top, v.Y)
}

// Load reads and decodes the level whose marker is at index level. Missing
// lumps leave the matching slice empty.
func Load(src LumpSource, level int) (*Level, error) {
	logger.Printf("Reading Level %v ...", level)

	var err error
	l := &Level{}
	if l.Things, err = readThings(src, level); err != nil {
		return nil, err
	}
	if l.Vertexes, err = readVertexes(src, level); err != nil {
		return nil, err
	}
	if l.Sectors, err = readSectors(src, level); err != nil {
		return nil, err
	}
	if l.Sides, err = readSides(src, level); err != nil {
		return nil, err
	}
	if l.Lines, err = readLines(src, level); err != nil {
		return nil, err
	}
	if err := l.setReferences(); err != nil {
		return nil, err
	}
	return l, nil
}

// Stats returns the record counts of the level.
func (l *Level) Stats() Stats {
	s := Stats{
		Things:   len(l.Things),
		Lines:    len(l.Lines),
		Sides:    len(l.Sides),
		Vertexes: len(l.Vertexes),
		Sectors:  len(l.Sectors),
	}
	for _, sector := range l.Sectors {
		if sector.Type == TypeSecret {
			s.Secrets++
		}
	}
	return s
}

// Bounds returns the bounding box of all vertexes. ok is false for a level
// without vertexes.
func (l *Level) Bounds() (box BoundBox, ok bool) {
	if len(l.Vertexes) == 0 {
		return BoundBox{}, false
	}
	box = newBBox()
	for _, v := range l.Vertexes {
		box.add(v)
	}
	return box, true
}

// setReferences adds pointers to all level assets
func (l *Level) setReferences() error {
	for i := range l.Sides {
		s := &l.Sides[i]
		if s.SectorNum < 0 || s.SectorNum >= len(l.Sectors) {
			return errors.Wrapf(ErrBadReference, "side %d: sector %d", i, s.SectorNum)
		}
		s.Sector = &l.Sectors[s.SectorNum]
	}

	for i := range l.Lines {
		line := &l.Lines[i]
		if line.V1Num >= len(l.Vertexes) || line.V2Num >= len(l.Vertexes) {
			return errors.Wrapf(ErrBadReference, "line %d: vertexes %d, %d", i, line.V1Num, line.V2Num)
		}
		line.V1 = l.Vertexes[line.V1Num]
		line.V2 = l.Vertexes[line.V2Num]
		line.DX = line.V2.X - line.V1.X
		line.DY = line.V2.Y - line.V1.Y

		if line.SideRNum != NoSide {
			if line.SideRNum >= len(l.Sides) {
				return errors.Wrapf(ErrBadReference, "line %d: right side %d", i, line.SideRNum)
			}
			line.SideR = &l.Sides[line.SideRNum]
			line.FrontSector = line.SideR.Sector
		}
		if line.SideLNum != NoSide {
			if line.SideLNum >= len(l.Sides) {
				return errors.Wrapf(ErrBadReference, "line %d: left side %d", i, line.SideLNum)
			}
			line.SideL = &l.Sides[line.SideLNum]
			line.BackSector = line.SideL.Sector
		}
	}
	return nil
}

// readRecords decodes a whole lump as a sequence of fixed-size records.
func readRecords[T any](src LumpSource, level int, name string) ([]T, error) {
	data, err := src.ReadLevelLump(level, name)
	if errors.Is(err, wad.ErrLumpNotFound) {
		logger.Debugf("Level %v has no %v lump", level, name)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}

	var zero T
	size := binary.Size(zero)
	if len(data)%size != 0 {
		return nil, errors.Wrapf(ErrBadLumpSize, "%s: %d bytes, record size %d", name, len(data), size)
	}
	records := make([]T, len(data)/size)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, records); err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return records, nil
}

func readThings(src LumpSource, level int) ([]Thing, error) {
	binThings, err := readRecords[binThing](src, level, "THINGS")
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	things := make([]Thing, len(binThings))
	for i, t := range binThings {
		things[i] = Thing{
			X:               int(t.X),
			Y:               int(t.Y),
			Angle:           degreesToRadians(t.Angle),
			Type:            int(t.Type),
			Skill1and2:      t.Options&1 != 0,
			Skill3:          t.Options&2 != 0,
			Skill4and5:      t.Options&4 != 0,
			Ambush:          t.Options&8 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}
	logger.Printf("Read %v things", len(things))
	return things, nil
}

func readVertexes(src LumpSource, level int) ([]Vertex, error) {
	binVertexes, err := readRecords[binVertex](src, level, "VERTEXES")
	if err != nil {
		return nil, err
	}

	vertexes := make([]Vertex, len(binVertexes))
	for i, v := range binVertexes {
		vertexes[i] = Vertex{X: float64(v.X), Y: float64(v.Y)}
	}
	logger.Printf("Read %v vertexes", len(vertexes))
	return vertexes, nil
}

func readSides(src LumpSource, level int) ([]Side, error) {
	binSides, err := readRecords[binSide](src, level, "SIDEDEFS")
	if err != nil {
		return nil, err
	}

	sides := make([]Side, len(binSides))
	for i, s := range binSides {
		sides[i] = Side{
			XOffset:           float64(s.XOffset),
			YOffset:           float64(s.YOffset),
			UpperTextureName:  s.UpperTexture.String(),
			MiddleTextureName: s.MiddleTexture.String(),
			LowerTextureName:  s.LowerTexture.String(),
			SectorNum:         int(s.SectorNum),
		}
	}
	logger.Printf("Read %v sides", len(sides))
	return sides, nil
}

func readSectors(src LumpSource, level int) ([]Sector, error) {
	binSectors, err := readRecords[binSector](src, level, "SECTORS")
	if err != nil {
		return nil, err
	}

	sectors := make([]Sector, len(binSectors))
	for i, s := range binSectors {
		sectors[i] = Sector{
			Index:              i,
			FloorHeight:        float64(s.FloorHeight),
			CeilingHeight:      float64(s.CeilingHeight),
			FloorTextureName:   s.FloorTexture.String(),
			CeilingTextureName: s.CeilingTexture.String(),
			LightLevel:         int(s.LightLevel),
			Type:               SectorType(s.Type),
			TagNum:             int(s.TagNum),
		}
	}
	logger.Printf("Read %v Sectors", len(sectors))
	return sectors, nil
}

// degreesToRadians
func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}
