package vss

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// buildRecord assembles a complete on-disk record: an 8-byte header
// (length, signature, crc) followed by payload. When sig is SigComment the
// stored CRC is forced to zero, mirroring the format's exemption for
// comment records.
func buildRecord(sig Signature, payload []byte) []byte {
	var crc uint16
	if sig != SigComment {
		crc = bytestream.Fold16(bytestream.CRC32(payload))
	}
	buf := make([]byte, 0, 8+len(payload))
	length := uint32(len(payload))
	buf = append(buf, byte(length), byte(length>>8), byte(length>>16), byte(length>>24))
	buf = append(buf, sig[0], sig[1])
	buf = append(buf, byte(crc), byte(crc>>8))
	buf = append(buf, payload...)
	return buf
}

func TestReadRecordHeaderRoundTrip(t *testing.T) {
	assert := assert.New(t)
	payload := []byte("hello, vss")
	data := buildRecord(SigComment, payload)

	r := bytestream.NewReader(data, nil)
	header, body, err := ReadRecordHeader(r)
	assert.NoError(err)
	assert.Equal(uint32(len(payload)), header.Length)
	assert.Equal(SigComment, header.Signature)
	assert.Equal(len(payload), body.Len())
	assert.Equal(0, r.Remaining(), "reader should have advanced past the whole record")

	got, err := body.ReadBytes(len(payload))
	assert.NoError(err)
	assert.Equal(payload, got)
}

func TestCommentRecordSkipsCRCCheck(t *testing.T) {
	assert := assert.New(t)
	data := buildRecord(SigComment, []byte("a comment"))
	r := bytestream.NewReader(data, nil)

	header, _, err := ReadRecordHeader(r)
	assert.NoError(err)
	assert.Equal(uint16(0), header.FileCRC)
	assert.NotEqual(header.FileCRC, header.ActualCRC, "sanity: the actual fold of real text isn't zero")
	assert.NoError(header.CheckCRC(), "comment records must not be CRC-validated")
}

func TestNonCommentRecordDetectsCorruption(t *testing.T) {
	assert := assert.New(t)
	data := buildRecord(SigNameRecord, []byte{0x00, 0x00, 'x', 'y', 'z'})
	data[len(data)-1] ^= 0xFF // corrupt a payload byte after the CRC was computed

	r := bytestream.NewReader(data, nil)
	header, _, err := ReadRecordHeader(r)
	assert.NoError(err)
	assert.ErrorIs(header.CheckCRC(), ErrRecordCRCMismatch)
}

func TestReadVSSNameInlineShortForm(t *testing.T) {
	assert := assert.New(t)
	payload := make([]byte, vssNameSize)
	payload[0] = 0x01 // flags: project
	copy(payload[2:], []byte("widget.c"))
	r := bytestream.NewReader(payload, nil)

	name, err := readVSSName(r)
	assert.NoError(err)
	assert.True(name.isProject())
	assert.Equal([]byte("widget.c"), name.ShortName)
	assert.Equal(uint32(0), name.NameOffset)
	assert.Equal(vssNameSize, r.Offset())
}
