// Package bytestream implements a bounds-checked, endian-typed cursor over
// an immutable byte buffer, the primitive every VSS on-disk record is
// decoded through.
package bytestream

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrEndOfBuffer is returned when a read would exceed the reader's slice.
	ErrEndOfBuffer = errors.New("bytestream: attempted read past end of buffer")
	// ErrUnalignedRead is returned by a strict-aligned typed read at an
	// offset that isn't a multiple of the read size.
	ErrUnalignedRead = errors.New("bytestream: unaligned read")
)

// Decoder turns a byte string into text using whatever codepage a caller
// configured. The zero value decodes as UTF-8.
type Decoder func([]byte) string

func utf8Decoder(b []byte) string { return string(b) }

// Reader is a cursor over an immutable range of a shared byte buffer.
// Reads never copy the backing buffer; Clone spawns an independent cursor
// over a sub-range of the same buffer.
type Reader struct {
	data    []byte // the whole shared buffer
	begin   int    // start of this reader's slice within data
	length  int    // length of this reader's slice
	offset  int    // current read position, relative to begin
	decoder Decoder
}

// NewReader wraps data in a Reader over its entire length.
func NewReader(data []byte, decoder Decoder) *Reader {
	if decoder == nil {
		decoder = utf8Decoder
	}
	return &Reader{data: data, begin: 0, length: len(data), decoder: decoder}
}

// Len returns the length of the reader's slice.
func (r *Reader) Len() int { return r.length }

// Offset returns the current read position, relative to the reader's slice.
func (r *Reader) Offset() int { return r.offset }

// SetOffset repositions the cursor within the reader's slice without
// bounds-checking against remaining data (a subsequent read still is).
func (r *Reader) SetOffset(offset int) { r.offset = offset }

// Remaining returns the number of unread bytes in the reader's slice.
func (r *Reader) Remaining() int { return r.length - r.offset }

// Clone produces an independent cursor over a sub-range of the parent's
// slice, starting additionalOffset bytes past the parent's current cursor.
// A negative length means "to the end of the parent's slice".
func (r *Reader) Clone(additionalOffset int, length int) (*Reader, error) {
	offset := r.offset + additionalOffset
	if offset > r.length {
		return nil, fmt.Errorf("%w: clone at offset 0x%X with only 0x%X bytes in slice", ErrEndOfBuffer, offset, r.length)
	}
	if length < 0 {
		length = r.length - offset
	} else if length+offset > r.length {
		return nil, fmt.Errorf("%w: clone of 0x%X bytes with only 0x%X bytes remaining", ErrEndOfBuffer, length, r.length-offset)
	}
	return &Reader{
		data:    r.data,
		begin:   r.begin + offset,
		length:  length,
		decoder: r.decoder,
	}, nil
}

func (r *Reader) checkRead(length int) error {
	if r.offset+length > r.length {
		return fmt.Errorf("%w: read of %d bytes with only %d bytes remaining", ErrEndOfBuffer, length, r.length-r.offset)
	}
	return nil
}

func (r *Reader) checkReadAt(offset, length int) error {
	if offset+length > r.length {
		return fmt.Errorf("%w: read of %d bytes at offset %d with only %d bytes in slice", ErrEndOfBuffer, length, offset, r.length-offset)
	}
	return nil
}

// ReadBytes reads n bytes and advances the cursor.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.checkRead(n); err != nil {
		return nil, err
	}
	start := r.begin + r.offset
	out := r.data[start : start+n]
	r.offset += n
	return out, nil
}

// ReadBytesAt reads n bytes at offset without advancing the cursor.
func (r *Reader) ReadBytesAt(offset, n int) ([]byte, error) {
	if err := r.checkReadAt(offset, n); err != nil {
		return nil, err
	}
	start := r.begin + offset
	return r.data[start : start+n], nil
}

// ReadUint16 reads a little-endian uint16, enforcing 2-byte alignment unless
// unaligned is set.
func (r *Reader) ReadUint16(unaligned bool) (uint16, error) {
	if !unaligned && r.offset&1 != 0 {
		return 0, fmt.Errorf("%w: 16-bit read at offset %d", ErrUnalignedRead, r.offset)
	}
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadInt16 reads a little-endian int16 with the same alignment policy as ReadUint16.
func (r *Reader) ReadInt16(unaligned bool) (int16, error) {
	v, err := r.ReadUint16(unaligned)
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32, enforcing 4-byte alignment unless
// unaligned is set.
func (r *Reader) ReadUint32(unaligned bool) (uint32, error) {
	if !unaligned && r.offset&3 != 0 {
		return 0, fmt.Errorf("%w: 32-bit read at offset %d", ErrUnalignedRead, r.offset)
	}
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadInt32 reads a little-endian int32 with the same alignment policy as ReadUint32.
func (r *Reader) ReadInt32(unaligned bool) (int32, error) {
	v, err := r.ReadUint32(unaligned)
	return int32(v), err
}

// Skip advances the cursor by n bytes, bounds-checked.
func (r *Reader) Skip(n int) error {
	if err := r.checkRead(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

// ReadByteString reads up to max bytes (or the remainder of the slice when
// max < 0), truncates at the first zero byte, and returns the bytes before
// the zero. The cursor always advances by the requested max (or the
// remainder read), regardless of where the zero byte fell, so fixed-size
// name fields are fully consumed.
func (r *Reader) ReadByteString(max int) ([]byte, error) {
	n := max
	if n < 0 {
		n = r.Remaining()
	}
	s, err := r.ReadByteStringAt(r.offset, n)
	if err != nil {
		return nil, err
	}
	if err := r.Skip(n); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadByteStringAt is the non-advancing form of ReadByteString.
func (r *Reader) ReadByteStringAt(offset, n int) ([]byte, error) {
	b, err := r.ReadBytesAt(offset, n)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return b, nil
}

// ReadString decodes up to max bytes via the reader's configured codepage
// decoder, with the same zero-truncation/full-advance semantics as
// ReadByteString.
func (r *Reader) ReadString(max int) (string, error) {
	b, err := r.ReadByteString(max)
	if err != nil {
		return "", err
	}
	return r.decoder(b), nil
}

// Decode decodes raw bytes through the reader's configured codepage.
func (r *Reader) Decode(b []byte) string { return r.decoder(b) }

// Unpack performs a composite read described by a compact format string,
// advancing the cursor by the total size consumed. Each token is one of:
// 'I' (uint32), 'i' (int32), 'H' (uint16), 'h' (int16), or a decimal count
// followed by 's' (a fixed-size byte string, zero-truncated). It mirrors
// the shape of the original format descriptors without requiring a decoder
// per VSS record tail.
func (r *Reader) Unpack(format string) ([]any, error) {
	fields, size := parseUnpackFormat(format)
	if err := r.checkRead(size); err != nil {
		return nil, err
	}
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		switch f.kind {
		case 'I':
			v, err := r.ReadUint32(true)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case 'i':
			v, err := r.ReadInt32(true)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case 'H':
			v, err := r.ReadUint16(true)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case 'h':
			v, err := r.ReadInt16(true)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case 's':
			v, err := r.ReadByteString(f.count)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

type unpackField struct {
	kind  byte
	count int
}

func parseUnpackFormat(format string) ([]unpackField, int) {
	var fields []unpackField
	size := 0
	count := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c >= '0' && c <= '9':
			count = count*10 + int(c-'0')
		case c == 's':
			n := count
			if n == 0 {
				n = 1
			}
			fields = append(fields, unpackField{kind: 's', count: n})
			size += n
			count = 0
		case c == 'I' || c == 'i':
			fields = append(fields, unpackField{kind: c})
			size += 4
			count = 0
		case c == 'H' || c == 'h':
			fields = append(fields, unpackField{kind: c})
			size += 2
			count = 0
		default:
			count = 0
		}
	}
	return fields, size
}

// CRC16 computes the VSS-style folded CRC-32 over length bytes from the
// cursor (or the remainder, if length < 0), without advancing the cursor.
func (r *Reader) CRC16(length int) (uint16, error) {
	if length < 0 {
		length = r.length - r.offset
	} else if err := r.checkRead(length); err != nil {
		return 0, err
	}
	start := r.begin + r.offset
	return Fold16(CRC32(r.data[start : start+length])), nil
}
