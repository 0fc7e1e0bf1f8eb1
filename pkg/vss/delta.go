package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// DeltaOpcode selects how one delta operation contributes to the
// reconstructed buffer.
type DeltaOpcode uint16

const (
	// DeltaWriteLog inserts Data, bytes carried inline in the delta record
	// itself, at the current output position.
	DeltaWriteLog DeltaOpcode = 0
	// DeltaWriteSuccessor copies Length bytes starting at Offset out of the
	// successor (chronologically newer) version's buffer.
	DeltaWriteSuccessor DeltaOpcode = 1
	// DeltaStop terminates the op stream.
	DeltaStop DeltaOpcode = 2
)

// DeltaOp is one instruction in a reverse delta: each item revision is
// stored as the set of edits needed to turn the next (newer) revision's
// content back into this one's.
type DeltaOp struct {
	Opcode DeltaOpcode
	Offset uint32 // DeltaWriteSuccessor only
	Length uint32
	Data   []byte // DeltaWriteLog only
}

// DeltaRecord is the decoded payload of a "FD" record: an ordered op stream.
type DeltaRecord struct {
	Header *RecordHeader
	Ops    []DeltaOp
}

func decodeDeltaRecord(h *RecordHeader, r *bytestream.Reader) (*DeltaRecord, error) {
	ops, err := parseDeltaOps(r)
	if err != nil {
		return nil, fmt.Errorf("%w: delta record at 0x%X", err, h.Offset)
	}
	return &DeltaRecord{Header: h, Ops: ops}, nil
}

func parseDeltaOps(r *bytestream.Reader) ([]DeltaOp, error) {
	var ops []DeltaOp
	for {
		opcode, err := r.ReadUint16(true)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadUint16(true); err != nil { // reserved/padding word
			return nil, err
		}
		switch DeltaOpcode(opcode) {
		case DeltaStop:
			ops = append(ops, DeltaOp{Opcode: DeltaStop})
			return ops, nil
		case DeltaWriteLog:
			length, err := r.ReadUint32(true)
			if err != nil {
				return nil, err
			}
			data, err := r.ReadBytes(int(length))
			if err != nil {
				return nil, err
			}
			ops = append(ops, DeltaOp{Opcode: DeltaWriteLog, Length: length, Data: data})
		case DeltaWriteSuccessor:
			offset, err := r.ReadUint32(true)
			if err != nil {
				return nil, err
			}
			length, err := r.ReadUint32(true)
			if err != nil {
				return nil, err
			}
			ops = append(ops, DeltaOp{Opcode: DeltaWriteSuccessor, Offset: offset, Length: length})
		default:
			return nil, fmt.Errorf("%w: unrecognized delta opcode %d", ErrUnrecognizedRecord, opcode)
		}
		if r.Remaining() == 0 {
			return ops, nil
		}
	}
}

// ApplyDelta reconstructs an older revision's content from its successor
// (the next-newer revision's content already reconstructed) by replaying
// ops in order. A DeltaWriteSuccessor op reading past the end of successor
// is a corrupt delta chain, not a silent truncation.
func ApplyDelta(successor []byte, ops []DeltaOp) ([]byte, error) {
	var out []byte
	for _, op := range ops {
		switch op.Opcode {
		case DeltaWriteLog:
			out = append(out, op.Data...)
		case DeltaWriteSuccessor:
			start, end := int(op.Offset), int(op.Offset)+int(op.Length)
			if start > len(successor) || end > len(successor) {
				return nil, fmt.Errorf("%w: delta references [%d:%d) of a %d-byte successor", ErrOutOfRange, start, end, len(successor))
			}
			out = append(out, successor[start:end]...)
		case DeltaStop:
			return out, nil
		default:
			return nil, fmt.Errorf("%w: unrecognized delta opcode %d", ErrUnrecognizedRecord, op.Opcode)
		}
	}
	return out, nil
}
