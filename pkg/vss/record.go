package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// Signature is the 2-byte on-disk record type code. It is stored exactly as
// read off disk; no byte-swap is applied anywhere in this package (spec.md's
// remark that a signature reads "reversed" relative to its C-literal name is
// a historical curiosity of the original format, not a transform we need to
// undo — we only ever compare raw bytes against raw constants).
type Signature [2]byte

func (s Signature) String() string { return string(s[:]) }

// Record signatures. DH/EL/JP/HN/SN are attested by original_source/VSS;
// the remaining five (comment, checkout, the file's own project/branch
// backlink, and delta) are not present in the retrieved Python subset, so
// their codes are this implementation's own choice of two-letter mnemonic —
// internal, never round-tripped against a real VSS database.
var (
	SigItemHeader  = Signature{'D', 'H'} // item file header (project or file)
	SigRevision    = Signature{'E', 'L'} // revision log entry
	SigProjectKid  = Signature{'J', 'P'} // project entry-file child record
	SigNameHeader  = Signature{'H', 'N'} // names.dat header
	SigNameRecord  = Signature{'S', 'N'} // names.dat overflow name record
	SigComment     = Signature{'M', 'C'} // comment text
	SigCheckout    = Signature{'J', 'C'} // checkout record
	SigProjectBack = Signature{'F', 'P'} // file -> containing-project backlink
	SigBranchBack  = Signature{'B', 'F'} // file -> branch-parent backlink
	SigDelta       = Signature{'F', 'D'} // delta operations
)

// RecordHeaderSize is the fixed 8-byte on-disk header: length(4) + signature(2) + crc(2).
const RecordHeaderSize = 8

// RecordHeader is the common 8-byte prefix of every record.
type RecordHeader struct {
	Offset    int // absolute offset of the header's first byte within the file
	Length    uint32
	Signature Signature
	FileCRC   uint16
	ActualCRC uint16
}

// IsCRCValid reports whether the stored CRC matches the payload's actual fold.
func (h *RecordHeader) IsCRCValid() bool { return h.FileCRC == h.ActualCRC }

// IsCommentSignature reports whether this header belongs to a comment
// record, the one record type exempt from CRC validation (spec.md §3/§4.2).
func (h *RecordHeader) IsCommentSignature() bool { return h.Signature == SigComment }

// CheckCRC validates the header's CRC per the comment exception.
func (h *RecordHeader) CheckCRC() error {
	if h.IsCommentSignature() {
		return nil
	}
	if !h.IsCRCValid() {
		return fmt.Errorf("%w: signature=%s expected=%04X actual=%04X", ErrRecordCRCMismatch, h.Signature, h.FileCRC, h.ActualCRC)
	}
	return nil
}

// ReadRecordHeader reads an 8-byte header at the reader's current offset and
// clones a payload reader over the following Length bytes. On return, r has
// advanced past the whole record (header + payload); the caller owns the
// independent payload reader.
func ReadRecordHeader(r *bytestream.Reader) (*RecordHeader, *bytestream.Reader, error) {
	offset := r.Offset()

	length, err := r.ReadUint32(true)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: record header length at 0x%X", err, offset)
	}
	sigBytes, err := r.ReadBytes(2)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: record header signature at 0x%X", err, offset)
	}
	fileCRC, err := r.ReadUint16(true)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: record header crc at 0x%X", err, offset)
	}

	payload, err := r.Clone(0, int(length))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRecordTruncated, err)
	}
	actualCRC, err := payload.CRC16(-1)
	if err != nil {
		return nil, nil, err
	}

	if err := r.Skip(int(length)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRecordTruncated, err)
	}

	header := &RecordHeader{
		Offset:    offset,
		Length:    length,
		Signature: Signature{sigBytes[0], sigBytes[1]},
		FileCRC:   fileCRC,
		ActualCRC: actualCRC,
	}
	return header, payload, nil
}

// vssNameSize is the fixed on-disk size of a vss_name: flags(2) + short
// name(34, zero-terminated) + name offset(4).
const (
	vssNameShortLen = 34
	vssNameSize     = 2 + vssNameShortLen + 4
)

// vssNameFlagProject marks a vss_name as naming a project rather than a file.
const vssNameFlagProject = 0x0001

// vssName is a compact embedded name: flags, an inline short name, and an
// optional offset into the names overflow file for the authoritative long
// name (spec.md §3).
type vssName struct {
	Flags      uint16
	ShortName  []byte
	NameOffset uint32
}

func (n vssName) isProject() bool { return n.Flags&vssNameFlagProject != 0 }

// PhysicalName is the 8-character uppercase identifier VSS uses to name an
// item file on disk (e.g. "AAAAAAAA"), independent of any logical name.
type PhysicalName [8]byte

func (p PhysicalName) String() string { return string(p[:]) }

// IsZero reports whether the physical name is unset (all-zero bytes).
func (p PhysicalName) IsZero() bool { return p == PhysicalName{} }

// physicalNameFieldSize is the on-disk width of a physical-name field: the
// 8-character name plus zero padding, zero-terminated like every other
// fixed-width byte string in this format.
const physicalNameFieldSize = 10

func readPhysicalName(r *bytestream.Reader) (PhysicalName, error) {
	b, err := r.ReadByteString(physicalNameFieldSize)
	if err != nil {
		return PhysicalName{}, err
	}
	var p PhysicalName
	copy(p[:], b)
	return p, nil
}

func readVSSName(r *bytestream.Reader) (vssName, error) {
	flags, err := r.ReadUint16(true)
	if err != nil {
		return vssName{}, err
	}
	short, err := r.ReadByteString(vssNameShortLen)
	if err != nil {
		return vssName{}, err
	}
	offset, err := r.ReadUint32(true)
	if err != nil {
		return vssName{}, err
	}
	return vssName{Flags: flags, ShortName: short, NameOffset: offset}, nil
}
