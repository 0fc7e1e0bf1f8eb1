package bytestream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadUint32LittleEndian(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04}, nil)

	v, err := r.ReadUint32(false)
	assert.NoError(err)
	assert.Equal(uint32(0x04030201), v)
	assert.Equal(4, r.Offset())
}

func TestReadUint16Alignment(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte{0x00, 0xAA, 0xBB}, nil)

	assert.NoError(r.Skip(1))
	_, err := r.ReadUint16(false)
	assert.ErrorIs(err, ErrUnalignedRead)

	r.SetOffset(1)
	v, err := r.ReadUint16(true)
	assert.NoError(err)
	assert.Equal(uint16(0xBBAA), v)
}

func TestReadBytesPastEndOfBuffer(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte{0x01, 0x02}, nil)

	_, err := r.ReadBytes(3)
	assert.ErrorIs(err, ErrEndOfBuffer)
}

func TestReadByteStringZeroTruncatesButFullyAdvances(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte("abc\x00\x00\x00more"), nil)

	s, err := r.ReadByteString(6)
	assert.NoError(err)
	assert.Equal([]byte("abc"), s)
	assert.Equal(6, r.Offset())

	rest, err := r.ReadBytes(4)
	assert.NoError(err)
	assert.Equal([]byte("more"), rest)
}

func TestCloneIsIndependentOfParentCursor(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}, nil)

	assert.NoError(r.Skip(2))
	child, err := r.Clone(0, 2)
	assert.NoError(err)

	assert.NoError(r.Skip(2))
	b, err := child.ReadBytes(2)
	assert.NoError(err)
	assert.Equal([]byte{0xCC, 0xDD}, b)
}

func TestCloneRejectsOutOfRangeLength(t *testing.T) {
	assert := assert.New(t)
	r := NewReader([]byte{0x01, 0x02, 0x03}, nil)

	_, err := r.Clone(0, 10)
	assert.ErrorIs(err, ErrEndOfBuffer)
}

func TestUnpackMixedFields(t *testing.T) {
	assert := assert.New(t)
	data := []byte{
		0x2A, 0x00, 0x00, 0x00, // I = 42
		0x05, 0x00, // H = 5
		'h', 'i', 0x00, 0x00, // 4s "hi"
	}
	r := NewReader(data, nil)

	fields, err := r.Unpack("IH4s")
	assert.NoError(err)
	assert.Equal(uint32(42), fields[0])
	assert.Equal(uint16(5), fields[1])
	assert.Equal([]byte("hi"), fields[2])
	assert.Equal(len(data), r.Offset())
}

func TestFold16MatchesKnownCRC(t *testing.T) {
	assert := assert.New(t)
	crc := CRC32([]byte("123456789"))
	assert.Equal(uint32(0xCBF43926), crc)
	assert.Equal(Fold16(crc), uint16(crc>>16)^uint16(crc&0xFFFF))
}

func TestCRC16MatchesCRC32Fold(t *testing.T) {
	assert := assert.New(t)
	data := []byte("payload bytes for a record")
	r := NewReader(data, nil)

	got, err := r.CRC16(-1)
	assert.NoError(err)
	assert.Equal(Fold16(CRC32(data)), got)
	assert.Equal(0, r.Offset(), "CRC16 must not advance the cursor")
}
