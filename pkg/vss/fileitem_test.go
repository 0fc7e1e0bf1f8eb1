package vss

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func put16(buf []byte, v uint16) []byte { return append(buf, byte(v), byte(v>>8)) }
func put32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func putFixed(buf []byte, s string, n int) []byte {
	field := make([]byte, n)
	copy(field, s)
	return append(buf, field...)
}

func encodeVSSName(flags uint16, shortName string, nameOffset uint32) []byte {
	var buf []byte
	buf = put16(buf, flags)
	buf = putFixed(buf, shortName, vssNameShortLen)
	buf = put32(buf, nameOffset)
	return buf
}

func encodePhysical(s string) []byte {
	return putFixed(nil, s, physicalNameFieldSize)
}

func encodeItemHeaderPayload(itemType uint16, name []byte, dataCRC, latestRevOffset, firstProjectOffset, firstBranchOffset uint32, content []byte) []byte {
	var buf []byte
	buf = put16(buf, itemType)
	buf = append(buf, name...)
	buf = put32(buf, dataCRC)
	buf = put32(buf, latestRevOffset)
	buf = put32(buf, firstProjectOffset)
	buf = put32(buf, firstBranchOffset)
	buf = append(buf, content...)
	return buf
}

func encodeRevisionBase(prevOffset uint32, action VssRevisionAction, revisionNum uint16, timestamp uint32, user, label string, commentOffset, labelCommentOffset uint32, commentLength, labelCommentLength uint16) []byte {
	var buf []byte
	buf = put32(buf, prevOffset)
	buf = put16(buf, uint16(action))
	buf = put16(buf, revisionNum)
	buf = put32(buf, timestamp)
	buf = putFixed(buf, user, 32)
	buf = putFixed(buf, label, 32)
	buf = put32(buf, commentOffset)
	buf = put32(buf, labelCommentOffset)
	buf = put16(buf, commentLength)
	buf = put16(buf, labelCommentLength)
	return buf
}

// writeSyntheticFileItem builds a file item file on disk: a header, a
// create revision, a separate "FD" delta record, and a checkin revision
// whose PrevDeltaOffset points at that delta record — the same indirection
// a real checkin uses, rather than carrying the delta ops inline.
func writeSyntheticFileItem(t *testing.T, path string) {
	t.Helper()

	name := encodeVSSName(0, "widget.c", 0)
	headerPayload := encodeItemHeaderPayload(ItemTypeFile, name, 0, 0 /*patched below*/, 0, 0, []byte("Hello World"))
	headerRecord := buildRecord(SigItemHeader, headerPayload)
	rev1Offset := uint32(len(headerRecord))

	rev1Payload := encodeRevisionBase(0, ActionCreateFile, 1, 1000, "alice", "", 0, 0, 0, 0)
	rev1Payload = append(rev1Payload, encodeVSSName(0, "widget.c", 0)...)
	rev1Payload = append(rev1Payload, encodePhysical("AAAAAAAA")...)
	rev1Record := buildRecord(SigRevision, rev1Payload)
	deltaOffset := rev1Offset + uint32(len(rev1Record))

	deltaPayload := encodeDeltaOpsForTest([]DeltaOp{
		{Opcode: DeltaWriteLog, Data: []byte("Hello")},
		{Opcode: DeltaStop},
	})
	deltaRecord := buildRecord(SigDelta, deltaPayload)
	rev2Offset := deltaOffset + uint32(len(deltaRecord))

	rev2Payload := encodeRevisionBase(rev1Offset, ActionCheckinFile, 2, 2000, "alice", "", 0, 0, 0, 0)
	rev2Payload = put32(rev2Payload, deltaOffset)
	rev2Payload = put32(rev2Payload, 0) // filler
	rev2Payload = putFixed(rev2Payload, "$/", 260)
	rev2Record := buildRecord(SigRevision, rev2Payload)

	// Patch the header's LatestRevOffset field (byte offset 2+40+4 = 46
	// within its payload, i.e. after itemType+vssName+dataCRC) now that
	// rev2's offset is known.
	headerPayload2 := encodeItemHeaderPayload(ItemTypeFile, name, 0, rev2Offset, 0, 0, []byte("Hello World"))
	headerRecord = buildRecord(SigItemHeader, headerPayload2)
	assert.Equal(t, rev1Offset, uint32(len(headerRecord)), "patched header record must keep the same length")

	data := append(headerRecord, rev1Record...)
	data = append(data, deltaRecord...)
	data = append(data, rev2Record...)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFileItemContentAtReconstructsOlderRevision(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "AAAAAAAA")
	writeSyntheticFileItem(t, path)

	fi, err := OpenFileItem(path, nil)
	assert.NoError(err)

	latestNum, latestContent, err := fi.Latest()
	assert.NoError(err)
	assert.Equal(uint16(2), latestNum)
	assert.Equal("Hello World", string(latestContent))

	older, err := fi.ContentAt(1)
	assert.NoError(err)
	assert.Equal("Hello", string(older))

	_, err = fi.ContentAt(5)
	assert.ErrorIs(err, ErrOutOfRange)
}

func TestFileItemRevisionsAreNewestFirst(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "AAAAAAAA")
	writeSyntheticFileItem(t, path)

	fi, err := OpenFileItem(path, nil)
	assert.NoError(err)

	revs, err := fi.Revisions()
	assert.NoError(err)
	assert.Len(revs, 2)
	assert.Equal(uint16(2), revs[0].RevisionNum)
	assert.Equal(uint16(1), revs[1].RevisionNum)
}
