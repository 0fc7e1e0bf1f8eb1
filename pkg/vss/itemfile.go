package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// Item type codes carried in an ItemHeader.
const (
	ItemTypeProject uint16 = 1
	ItemTypeFile    uint16 = 2
)

// ItemHeader is the "DH" record that opens every item file (project or
// file). Content is the item's latest full content: for a file item, the
// bytes of its newest revision; for a project item, unused (a project's
// listing is folded from its "JP" entry records, not stored as a blob).
type ItemHeader struct {
	Header              *RecordHeader
	ItemType            uint16
	Name                vssName
	DataCRC             uint32
	LatestRevOffset     uint32
	FirstProjectOffset  uint32
	FirstBranchOffset   uint32
	Content             []byte
}

func decodeItemHeader(h *RecordHeader, r *bytestream.Reader) (*ItemHeader, error) {
	itemType, err := r.ReadUint16(true)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	name, err := readVSSName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	dataCRC, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	latestRevOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	firstProjectOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	firstBranchOffset, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}
	content, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return nil, fmt.Errorf("%w: item header at 0x%X", err, h.Offset)
	}

	if itemType != ItemTypeProject && itemType != ItemTypeFile {
		return nil, fmt.Errorf("%w: item header at 0x%X has item type %d", ErrBadHeader, h.Offset, itemType)
	}
	if bytestream.Fold16(bytestream.CRC32(content)) != uint16(dataCRC) && dataCRC != 0 {
		return nil, fmt.Errorf("%w: item header at 0x%X content crc mismatch", ErrRecordCRCMismatch, h.Offset)
	}

	return &ItemHeader{
		Header:             h,
		ItemType:           itemType,
		Name:               name,
		DataCRC:            dataCRC,
		LatestRevOffset:    latestRevOffset,
		FirstProjectOffset: firstProjectOffset,
		FirstBranchOffset:  firstBranchOffset,
		Content:            content,
	}, nil
}

// ProjectEntryRecord is a "JP" record: one live or soft-deleted (see
// projectEntryFlagDeleted) child of a project, kept as a standing cache
// alongside the project's revision log so listing a directory doesn't
// require replaying history.
type ProjectEntryRecord struct {
	Header        *RecordHeader
	ItemType      int16
	Flags         int16
	Name          vssName
	PinnedVersion int16
	Physical      PhysicalName
}

// projectEntryFlagDeleted marks a child as soft-deleted: still present in
// the project's entry cache (recoverable) but excluded from a live listing.
const projectEntryFlagDeleted = 1

func decodeProjectEntryRecord(h *RecordHeader, r *bytestream.Reader) (*ProjectEntryRecord, error) {
	itemType, err := r.ReadInt16(true)
	if err != nil {
		return nil, fmt.Errorf("%w: project entry record at 0x%X", err, h.Offset)
	}
	flags, err := r.ReadInt16(true)
	if err != nil {
		return nil, fmt.Errorf("%w: project entry record at 0x%X", err, h.Offset)
	}
	name, err := readVSSName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: project entry record at 0x%X", err, h.Offset)
	}
	pinnedVersion, err := r.ReadInt16(true)
	if err != nil {
		return nil, fmt.Errorf("%w: project entry record at 0x%X", err, h.Offset)
	}
	phys, err := readPhysicalName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: project entry record at 0x%X", err, h.Offset)
	}
	return &ProjectEntryRecord{
		Header:        h,
		ItemType:      itemType,
		Flags:         flags,
		Name:          name,
		PinnedVersion: pinnedVersion,
		Physical:      phys,
	}, nil
}

// DecodeRecordPayload decodes the record whose header is h from payload,
// dispatching purely on the 2-byte on-disk signature.
func DecodeRecordPayload(h *RecordHeader, payload *bytestream.Reader) (any, error) {
	switch h.Signature {
	case SigComment:
		return decodeCommentRecord(h, payload)
	case SigCheckout:
		return decodeCheckoutRecord(h, payload)
	case SigProjectBack:
		return decodeProjectBacklinkRecord(h, payload)
	case SigBranchBack:
		return decodeBranchBacklinkRecord(h, payload)
	case SigRevision:
		return decodeRevisionRecord(h, payload)
	case SigDelta:
		return decodeDeltaRecord(h, payload)
	case SigItemHeader:
		return decodeItemHeader(h, payload)
	case SigProjectKid:
		return decodeProjectEntryRecord(h, payload)
	case SigNameHeader:
		return decodeNameFileHeader(h, payload)
	case SigNameRecord:
		return decodeNameRecord(h, payload)
	default:
		return nil, fmt.Errorf("%w: signature %s at 0x%X", ErrUnrecognizedRecord, h.Signature, h.Offset)
	}
}

// itemFile is the shared open-and-read-header plumbing behind FileItem and
// ProjectItem.
type itemFile struct {
	rf     *RecordFile
	Header *ItemHeader
}

func openItemFile(path string, decoder bytestream.Decoder, want uint16) (*itemFile, error) {
	rf, err := OpenRecordFile(path, decoder)
	if err != nil {
		return nil, err
	}
	_, payload, err := rf.ReadRecordAt(0)
	if err != nil {
		return nil, err
	}
	ih, ok := payload.(*ItemHeader)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not open with an item header", ErrWrongRecordClass, path)
	}
	if ih.ItemType != want {
		return nil, fmt.Errorf("%w: %s has item type %d, wanted %d", ErrBadHeader, path, ih.ItemType, want)
	}
	return &itemFile{rf: rf, Header: ih}, nil
}

// Revisions walks the reverse revision log starting at Header.LatestRevOffset,
// returning records newest-first.
func (f *itemFile) Revisions() ([]*RevisionRecord, error) {
	var out []*RevisionRecord
	offset := f.Header.LatestRevOffset
	for offset != 0 {
		_, payload, err := f.rf.ReadRecordAt(int(offset))
		if err != nil {
			return nil, err
		}
		rev, ok := payload.(*RevisionRecord)
		if !ok {
			return nil, fmt.Errorf("%w: offset 0x%X is not a revision record", ErrWrongRecordClass, offset)
		}
		out = append(out, rev)
		offset = rev.PrevOffset
	}
	return out, nil
}

// ResolveComment fetches the comment text stored at offset (a
// RevisionRecord's CommentOffset or LabelCommentOffset), returning "" for a
// zero offset (no comment).
func (f *itemFile) ResolveComment(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	_, payload, err := f.rf.ReadRecordAt(int(offset))
	if err != nil {
		return "", err
	}
	c, ok := payload.(*CommentRecord)
	if !ok {
		return "", fmt.Errorf("%w: offset 0x%X is not a comment record", ErrWrongRecordClass, offset)
	}
	return c.Text, nil
}

// ResolveDelta fetches the delta op stream stored at offset (a
// CheckinActionData's PrevDeltaOffset), the separate "FD" record that turns
// the next-newer revision's content back into this one's.
func (f *itemFile) ResolveDelta(offset uint32) ([]DeltaOp, error) {
	if offset == 0 {
		return nil, nil
	}
	_, payload, err := f.rf.ReadRecordAt(int(offset))
	if err != nil {
		return nil, err
	}
	d, ok := payload.(*DeltaRecord)
	if !ok {
		return nil, fmt.Errorf("%w: offset 0x%X is not a delta record", ErrWrongRecordClass, offset)
	}
	return d.Ops, nil
}

// ProjectBacklinks walks the chain of ProjectBacklinkRecord starting at
// Header.FirstProjectOffset, newest-first.
func (f *itemFile) ProjectBacklinks() ([]*ProjectBacklinkRecord, error) {
	var out []*ProjectBacklinkRecord
	offset := f.Header.FirstProjectOffset
	for offset != 0 {
		_, payload, err := f.rf.ReadRecordAt(int(offset))
		if err != nil {
			return nil, err
		}
		rec, ok := payload.(*ProjectBacklinkRecord)
		if !ok {
			return nil, fmt.Errorf("%w: offset 0x%X is not a project backlink record", ErrWrongRecordClass, offset)
		}
		out = append(out, rec)
		offset = rec.PrevOffset
	}
	return out, nil
}
