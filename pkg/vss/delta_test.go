package vss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDeltaMixesLiteralAndCopiedRanges(t *testing.T) {
	assert := assert.New(t)
	successor := []byte("The quick brown fox")

	ops := []DeltaOp{
		{Opcode: DeltaWriteLog, Data: []byte("A slow")},
		{Opcode: DeltaWriteSuccessor, Offset: 9, Length: 10}, // " brown fox"
		{Opcode: DeltaStop},
	}
	out, err := ApplyDelta(successor, ops)
	assert.NoError(err)
	assert.Equal("A slow"+string(successor[9:19]), string(out))
}

func TestApplyDeltaRejectsOutOfRangeCopy(t *testing.T) {
	assert := assert.New(t)
	successor := []byte("short")

	ops := []DeltaOp{
		{Opcode: DeltaWriteSuccessor, Offset: 0, Length: 100},
	}
	_, err := ApplyDelta(successor, ops)
	assert.ErrorIs(err, ErrOutOfRange)
}

func TestApplyDeltaStopsAtStopOp(t *testing.T) {
	assert := assert.New(t)
	successor := []byte("irrelevant")

	ops := []DeltaOp{
		{Opcode: DeltaWriteLog, Data: []byte("kept")},
		{Opcode: DeltaStop},
		{Opcode: DeltaWriteLog, Data: []byte("never applied")},
	}
	out, err := ApplyDelta(successor, ops)
	assert.NoError(err)
	assert.Equal("kept", string(out))
}

func TestParseDeltaOpsRoundTrip(t *testing.T) {
	assert := assert.New(t)
	data := encodeDeltaOpsForTest([]DeltaOp{
		{Opcode: DeltaWriteLog, Data: []byte("hi")},
		{Opcode: DeltaWriteSuccessor, Offset: 3, Length: 5},
		{Opcode: DeltaStop},
	})

	r := newTestReader(data)
	ops, err := parseDeltaOps(r)
	assert.NoError(err)
	assert.Len(ops, 3)
	assert.Equal(DeltaWriteLog, ops[0].Opcode)
	assert.Equal([]byte("hi"), ops[0].Data)
	assert.Equal(DeltaWriteSuccessor, ops[1].Opcode)
	assert.Equal(uint32(3), ops[1].Offset)
	assert.Equal(uint32(5), ops[1].Length)
	assert.Equal(DeltaStop, ops[2].Opcode)
}

// encodeDeltaOpsForTest packs ops the way parseDeltaOps expects to read
// them: a uint16 opcode, a uint16 padding word, then the opcode's fields.
func encodeDeltaOpsForTest(ops []DeltaOp) []byte {
	var buf []byte
	put16 := func(v uint16) { buf = append(buf, byte(v), byte(v>>8)) }
	put32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	for _, op := range ops {
		put16(uint16(op.Opcode))
		put16(0)
		switch op.Opcode {
		case DeltaWriteLog:
			put32(uint32(len(op.Data)))
			buf = append(buf, op.Data...)
		case DeltaWriteSuccessor:
			put32(op.Offset)
			put32(op.Length)
		case DeltaStop:
		}
	}
	return buf
}
