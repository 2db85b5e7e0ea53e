package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-level/wad"
	"github.com/obsidian-level/wad/internal/wadtest"
)

func testWAD(t *testing.T) string {
	t.Helper()
	return wadtest.New("PWAD").
		Add("PLAYPAL", []byte("palette")).
		Marker("MAP01").
		Add("THINGS", make([]byte, 20)).
		Add("VERTEXES", []byte{0, 0, 0, 0, 64, 0, 128, 0}).
		Marker("MAP02").
		Add("THINGS", []byte("0123456789")).
		Add("TEXTMAP", []byte("namespace")).
		WriteFile(t)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"wadinfo"}, args...))
	return stdout.String(), err
}

func TestDir(t *testing.T) {
	out, err := run(t, "dir", testWAD(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "PWAD, 7 lumps, directory at 66", lines[0])
	assert.Regexp(t, `^#\s+NAME\s+POS\s+SIZE\s+FLAGS\s+CHILDREN$`, lines[1])
	assert.Regexp(t, `^1\s+MAP01\s+\d+\s+0\s+level\s+2$`, lines[3])
	assert.Regexp(t, `^2\s+THINGS\s+\d+\s+20\s+data\s+0$`, lines[4])
	assert.Regexp(t, `^6\s+TEXTMAP\s+\d+\s+9\s+-\s+0$`, lines[8])
}

func TestLevels(t *testing.T) {
	out, err := run(t, "levels", testWAD(t))
	require.NoError(t, err)
	assert.Equal(t, "MAP01\t1\tTHINGS VERTEXES\nMAP02\t4\tTHINGS\n", out)

	out, err = run(t, "--level-lump", "textmap", "levels", testWAD(t))
	require.NoError(t, err)
	assert.Equal(t, "MAP01\t1\tTHINGS VERTEXES\nMAP02\t4\tTHINGS TEXTMAP\n", out)
}

func TestLevelsFromConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "wadinfo.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level = "error"
level_lumps = ["THINGS", "TEXTMAP"]
replace_level_lumps = true
`), 0o644))

	out, err := run(t, "--config", cfgPath, "levels", testWAD(t))
	require.NoError(t, err)
	assert.Equal(t, "MAP01\t1\tTHINGS\nMAP02\t4\tTHINGS TEXTMAP\n", out)
}

func TestDump(t *testing.T) {
	path := testWAD(t)

	out, err := run(t, "dump", path, "things")
	require.NoError(t, err)
	assert.Equal(t, string(make([]byte, 20)), out)

	out, err = run(t, "dump", "--level", "MAP02", path, "THINGS")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", out)

	dst := filepath.Join(t.TempDir(), "playpal.lmp")
	_, err = run(t, "dump", "-o", dst, path, "PLAYPAL")
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("palette"), data)
}

func TestDumpErrors(t *testing.T) {
	path := testWAD(t)

	_, err := run(t, "dump", path, "MISSING")
	assert.ErrorIs(t, err, wad.ErrLumpNotFound)

	_, err = run(t, "dump", "--level", "MAP09", path, "THINGS")
	assert.ErrorContains(t, err, "MAP09")

	_, err = run(t, "dump", path)
	assert.ErrorContains(t, err, "missing lump name")

	_, err = run(t, "dump")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats", testWAD(t))
	require.NoError(t, err)
	assert.Equal(t, "MAP01: 2 things, 0 lines, 0 sides, 2 vertexes, 0 sectors (0 secret)\nbounds: x 0..64, y 0..128\n", out)

	out, err = run(t, "stats", testWAD(t), "map02")
	require.NoError(t, err)
	assert.Equal(t, "MAP02: 1 things, 0 lines, 0 sides, 0 vertexes, 0 sectors (0 secret)\n", out)
}

func TestOpenErrors(t *testing.T) {
	_, err := run(t, "dir")
	assert.ErrorContains(t, err, "missing WAD file")

	_, err = run(t, "dir", filepath.Join(t.TempDir(), "nope.wad"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "--log-level", "loud", "dir", testWAD(t))
	assert.Error(t, err)
}
