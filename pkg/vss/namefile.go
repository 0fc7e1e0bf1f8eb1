package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// NameFileHeader is the "HN" record that opens names.dat.
type NameFileHeader struct {
	Header    *RecordHeader
	FileCount uint32
}

func decodeNameFileHeader(h *RecordHeader, r *bytestream.Reader) (*NameFileHeader, error) {
	count, err := r.ReadUint32(true)
	if err != nil {
		return nil, fmt.Errorf("%w: name file header at 0x%X", err, h.Offset)
	}
	return &NameFileHeader{Header: h, FileCount: count}, nil
}

// NameKind selects which of a file's several recorded alternate names an
// "SN" overflow record is giving the full text of.
type NameKind int16

const (
	NameKindDos     NameKind = 1
	NameKindLong    NameKind = 2
	NameKindMacOS   NameKind = 3
	NameKindProject NameKind = 10
)

// NameRecord is an "SN" overflow record: a small per-kind index table
// (kind, offset) pointing into a trailing inline string blob, giving the
// authoritative long text for whichever vssName kinds a 34-byte inline
// short name couldn't hold.
type NameRecord struct {
	Header *RecordHeader
	Names  map[NameKind][]byte
}

// Get returns the stored text for kind, and whether the record carries one.
func (n *NameRecord) Get(kind NameKind) ([]byte, bool) {
	b, ok := n.Names[kind]
	return b, ok
}

func decodeNameRecord(h *RecordHeader, r *bytestream.Reader) (*NameRecord, error) {
	count, err := r.ReadInt16(true)
	if err != nil {
		return nil, fmt.Errorf("%w: name record at 0x%X", err, h.Offset)
	}
	if err := r.Skip(2); err != nil {
		return nil, fmt.Errorf("%w: name record at 0x%X", err, h.Offset)
	}

	// The string blob starts right after the (kind, offset) index table;
	// each entry's offset is relative to the blob's own start, not to the
	// reader's current position, so it's resolved through a cloned reader.
	blob, err := r.Clone(int(count)*4, r.Remaining()-int(count)*4)
	if err != nil {
		return nil, fmt.Errorf("%w: name record at 0x%X", err, h.Offset)
	}

	names := make(map[NameKind][]byte, count)
	for i := 0; i < int(count); i++ {
		kind, err := r.ReadInt16(true)
		if err != nil {
			return nil, fmt.Errorf("%w: name record at 0x%X", err, h.Offset)
		}
		offset, err := r.ReadInt16(true)
		if err != nil {
			return nil, fmt.Errorf("%w: name record at 0x%X", err, h.Offset)
		}
		text, err := blob.ReadByteStringAt(int(offset), blob.Len()-int(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: name record at 0x%X kind %d", err, h.Offset, kind)
		}
		names[NameKind(kind)] = text
	}
	return &NameRecord{Header: h, Names: names}, nil
}

// NameFile wraps names.dat, the overflow store for names too long to fit in
// a vss_name's inline 34-byte short form.
type NameFile struct {
	rf *RecordFile
}

// OpenNameFile opens path (typically "<root>/data/names.dat") as a names
// overflow file. A database with no overflow names may have no such file;
// callers treat ErrFileNotFound from this call as "no overflow store".
func OpenNameFile(path string, decoder bytestream.Decoder) (*NameFile, error) {
	rf, err := OpenRecordFile(path, decoder)
	if err != nil {
		return nil, err
	}
	return &NameFile{rf: rf}, nil
}

// GetLongName resolves a vssName to its full text: if NameOffset is zero
// (no overflow record), the inline short name decoded through the file's
// codepage is authoritative. Otherwise the overflow record at NameOffset
// wins, preferring its NameKindLong entry (and falling back to the inline
// short name if the record has no long entry) — matching how VSS prefers
// the untruncated display name when one exists.
func (nf *NameFile) GetLongName(decoder bytestream.Decoder, name vssName) (string, error) {
	if name.NameOffset == 0 {
		return decoder(name.ShortName), nil
	}
	_, payload, err := nf.rf.ReadRecordAt(int(name.NameOffset))
	if err != nil {
		return "", fmt.Errorf("%w: resolving overflow name at 0x%X", err, name.NameOffset)
	}
	rec, ok := payload.(*NameRecord)
	if !ok {
		return "", fmt.Errorf("%w: offset 0x%X is not a name record", ErrWrongRecordClass, name.NameOffset)
	}
	if long, ok := rec.Get(NameKindLong); ok {
		return decoder(long), nil
	}
	return decoder(name.ShortName), nil
}

// ResolveName is the convenience form used everywhere else in this package:
// decode the short name with decoder when there's no overflow, else defer
// to the overflow file.
func ResolveName(nf *NameFile, decoder bytestream.Decoder, name vssName) (string, error) {
	if nf == nil {
		return decoder(name.ShortName), nil
	}
	return nf.GetLongName(decoder, name)
}
