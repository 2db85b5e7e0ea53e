package mapdata

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-level/wad"
	"github.com/obsidian-level/wad/internal/wadtest"
)

func encode(t *testing.T, records any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, records))
	return buf.Bytes()
}

func name8(s string) wad.String8 {
	var n wad.String8
	copy(n[:], s)
	return n
}

// square builds a one-sector square room with a single player start.
func square(t *testing.T) *wadtest.Builder {
	return wadtest.New("PWAD").
		Marker("MAP01").
		Add("THINGS", encode(t, []binThing{{X: 32, Y: 48, Angle: 90, Type: 1, Options: 7}})).
		Add("LINEDEFS", encode(t, []binLine{
			{VertexStart: 0, VertexEnd: 1, Flags: 1, SideR: 0, SideL: NoSide},
			{VertexStart: 1, VertexEnd: 2, Flags: 1, SideR: 0, SideL: NoSide},
			{VertexStart: 2, VertexEnd: 3, Flags: 1, SideR: 0, SideL: NoSide},
			{VertexStart: 3, VertexEnd: 0, Flags: 0x21, Type: 11, SectorTag: 4, SideR: 0, SideL: NoSide},
		})).
		Add("SIDEDEFS", encode(t, []binSide{{MiddleTexture: name8("STARTAN3"), UpperTexture: name8("-"), LowerTexture: name8("-")}})).
		Add("VERTEXES", encode(t, []binVertex{{0, 0}, {0, 128}, {256, 128}, {256, -64}})).
		Add("SECTORS", encode(t, []binSector{{
			FloorHeight:    0,
			CeilingHeight:  128,
			FloorTexture:   name8("FLOOR4_8"),
			CeilingTexture: name8("CEIL3_5"),
			LightLevel:     160,
			Type:           9,
			TagNum:         4,
		}}))
}

func open(t *testing.T, b *wadtest.Builder) *wad.WAD {
	t.Helper()
	w, err := wad.Open(b.WriteFile(t))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestLoad(t *testing.T) {
	w := open(t, square(t))
	level, ok := w.FindLevel(wad.AnyLevel)
	require.True(t, ok)

	l, err := Load(w, level)
	require.NoError(t, err)

	assert.Equal(t, Stats{Things: 1, Lines: 4, Sides: 1, Vertexes: 4, Sectors: 1, Secrets: 1}, l.Stats())

	thing := l.Things[0]
	assert.Equal(t, 32, thing.X)
	assert.Equal(t, 48, thing.Y)
	assert.Equal(t, 1, thing.Type)
	assert.InDelta(t, math.Pi/2, thing.Angle, 1e-9)
	assert.True(t, thing.Skill1and2)
	assert.True(t, thing.Skill3)
	assert.True(t, thing.Skill4and5)
	assert.False(t, thing.Ambush)

	exit := l.Lines[3]
	assert.True(t, exit.Secret)
	assert.True(t, exit.BlockPlayerAndMonsters)
	assert.Equal(t, 11, exit.Special)
	assert.Equal(t, 4, exit.SectorTagNum)
	assert.Equal(t, Vertex{256, -64}, exit.V1)
	assert.Equal(t, Vertex{0, 0}, exit.V2)
	assert.Equal(t, -256.0, exit.DX)
	assert.Nil(t, exit.SideL)
	assert.Nil(t, exit.BackSector)
	require.NotNil(t, exit.FrontSector)
	assert.Equal(t, "FLOOR4_8", exit.FrontSector.FloorTextureName)
	assert.Equal(t, TypeSecret, exit.FrontSector.Type)

	assert.Equal(t, "STARTAN3", l.Sides[0].MiddleTextureName)
	assert.Same(t, &l.Sectors[0], l.Sides[0].Sector)

	box, ok := l.Bounds()
	require.True(t, ok)
	assert.Equal(t, BoundBox{Top: 128, Bottom: -64, Left: 0, Right: 256}, box)
}

func TestLoadMissingLumps(t *testing.T) {
	w := open(t, wadtest.New("IWAD").
		Marker("E1M1").
		Add("THINGS", encode(t, []binThing{{Type: 1}, {Type: 2}})))

	l, err := Load(w, 0)
	require.NoError(t, err)
	assert.Equal(t, Stats{Things: 2}, l.Stats())

	_, ok := l.Bounds()
	assert.False(t, ok)
}

func TestLoadScopedToLevel(t *testing.T) {
	b := square(t).
		Marker("MAP02").
		Add("VERTEXES", encode(t, []binVertex{{1, 1}}))
	w := open(t, b)

	level, ok := w.FindLevel("MAP02")
	require.True(t, ok)
	l, err := Load(w, level)
	require.NoError(t, err)
	assert.Equal(t, Stats{Vertexes: 1}, l.Stats())
}

func TestLoadBadLumpSize(t *testing.T) {
	w := open(t, wadtest.New("IWAD").
		Marker("MAP01").
		Add("VERTEXES", []byte{1, 2, 3, 4, 5}))

	_, err := Load(w, 0)
	assert.ErrorIs(t, err, ErrBadLumpSize)
}

func TestLoadBadReference(t *testing.T) {
	w := open(t, wadtest.New("IWAD").
		Marker("MAP01").
		Add("LINEDEFS", encode(t, []binLine{{VertexStart: 0, VertexEnd: 5, SideR: NoSide, SideL: NoSide}})).
		Add("VERTEXES", encode(t, []binVertex{{0, 0}})))

	_, err := Load(w, 0)
	assert.ErrorIs(t, err, ErrBadReference)
}

func TestLoadSideWithoutSector(t *testing.T) {
	w := open(t, wadtest.New("IWAD").
		Marker("MAP01").
		Add("SIDEDEFS", encode(t, []binSide{{SectorNum: 3}})))

	_, err := Load(w, 0)
	assert.ErrorIs(t, err, ErrBadReference)
}

type failingSource struct{}

func (failingSource) ReadLevelLump(int, string) ([]byte, error) {
	return nil, errors.Wrap(wad.ErrRead, "disk on fire")
}

func TestLoadReadError(t *testing.T) {
	_, err := Load(failingSource{}, 0)
	assert.ErrorIs(t, err, wad.ErrRead)
}

func TestLoadNotLevel(t *testing.T) {
	w := open(t, square(t))
	_, err := Load(w, 1)
	assert.ErrorIs(t, err, wad.ErrNotLevel)
}
