package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// CommentRecord carries the overflow text of a revision comment or label
// comment that didn't fit inline in the revision record (spec.md §3).
type CommentRecord struct {
	Header *RecordHeader
	Text   string
}

func decodeCommentRecord(h *RecordHeader, r *bytestream.Reader) (*CommentRecord, error) {
	text, err := r.ReadString(r.Remaining())
	if err != nil {
		return nil, fmt.Errorf("%w: comment record at 0x%X", err, h.Offset)
	}
	return &CommentRecord{Header: h, Text: text}, nil
}

// CheckoutRecord records one outstanding (or historical) checkout of a file
// by a user from a particular working directory.
type CheckoutRecord struct {
	Header       *RecordHeader
	User         string
	Machine      string
	LocalDir     string
	CheckoutTime uint32
	Revision     uint16
}

func decodeCheckoutRecord(h *RecordHeader, r *bytestream.Reader) (*CheckoutRecord, error) {
	fields, err := r.Unpack("32s32s260sIH")
	if err != nil {
		return nil, fmt.Errorf("%w: checkout record at 0x%X", err, h.Offset)
	}
	return &CheckoutRecord{
		Header:       h,
		User:         r.Decode(fields[0].([]byte)),
		Machine:      r.Decode(fields[1].([]byte)),
		LocalDir:     r.Decode(fields[2].([]byte)),
		CheckoutTime: fields[3].(uint32),
		Revision:     fields[4].(uint16),
	}, nil
}

// ProjectBacklinkRecord lets a shared file enumerate every project it's
// linked into: PrevOffset chains to the next-older backlink record for the
// same file, forming a singly-linked list terminated by zero.
type ProjectBacklinkRecord struct {
	Header     *RecordHeader
	PrevOffset uint32
	Project    vssName
}

func decodeProjectBacklinkRecord(h *RecordHeader, r *bytestream.Reader) (*ProjectBacklinkRecord, error) {
	prevOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: project backlink record at 0x%X", err, h.Offset)
	}
	name, err := readVSSName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: project backlink record at 0x%X", err, h.Offset)
	}
	return &ProjectBacklinkRecord{Header: h, PrevOffset: prevOffset, Project: name}, nil
}

// BranchBacklinkRecord records that a file's history branched off another
// file's history at BranchOffset, chaining to older branch records the same
// way ProjectBacklinkRecord does for project links.
type BranchBacklinkRecord struct {
	Header       *RecordHeader
	PrevOffset   uint32
	BranchFile   vssName
	BranchOffset uint32
}

func decodeBranchBacklinkRecord(h *RecordHeader, r *bytestream.Reader) (*BranchBacklinkRecord, error) {
	prevOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: branch backlink record at 0x%X", err, h.Offset)
	}
	name, err := readVSSName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: branch backlink record at 0x%X", err, h.Offset)
	}
	branchOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: branch backlink record at 0x%X", err, h.Offset)
	}
	return &BranchBacklinkRecord{Header: h, PrevOffset: prevOffset, BranchFile: name, BranchOffset: branchOffset}, nil
}
