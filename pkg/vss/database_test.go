package vss

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestIni(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "srcsafe.ini")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseSrcSafeIniSkipsCommentsAndSections(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	writeTestIni(t, dir, "; a comment\n[General]\n# another comment\nData_Path = data\nCodepage=1252\n\n")

	cfg, err := parseSrcSafeIni(filepath.Join(dir, "srcsafe.ini"))
	assert.NoError(err)
	assert.Equal("data", cfg.get("Data_Path", ""))
	assert.Equal("1252", cfg.get("codepage", ""))
}

func TestParseSrcSafeIniMissingFile(t *testing.T) {
	assert := assert.New(t)
	_, err := parseSrcSafeIni(filepath.Join(t.TempDir(), "nope.ini"))
	assert.ErrorIs(err, ErrFileNotFound)
}

func TestOpenDatabaseResolvesRelativeDataPath(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	writeTestIni(t, dir, "Data_Path = subdata\n")
	assert.NoError(os.MkdirAll(filepath.Join(dir, "subdata"), 0o755))

	db, err := OpenDatabase(dir, 0)
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "subdata"), db.DataPath)
	assert.Nil(db.NameFile, "no names.dat present, so NameFile should be nil rather than an error")
}

func TestPhysicalPathBucketsByFirstLetter(t *testing.T) {
	assert := assert.New(t)
	db := &Database{DataPath: "/srv/vss/data"}
	got := db.PhysicalPath(physicalName("BCDEFGHJ"))
	assert.Equal(filepath.Join("/srv/vss/data", "B", "BCDEFGHJ"), got)
}

func TestDecoderForCodepageUnknownReturnsNil(t *testing.T) {
	assert := assert.New(t)
	assert.Nil(decoderForCodepage(0))
	assert.Nil(decoderForCodepage(99999))
	assert.NotNil(decoderForCodepage(1252))
}

func TestDecoderForCodepage1252TranscodesHighBytes(t *testing.T) {
	assert := assert.New(t)
	dec := decoderForCodepage(1252)
	// 0x93 in Windows-1252 is a left curly quote (U+201C), not the C1
	// control code UTF-8 would otherwise infer from the raw byte.
	out := dec([]byte{0x93})
	assert.Equal("“", out)
}
