package vss

import (
	"fmt"
	"os"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// RecordFile wraps a single VSS binary file (an item file, names.dat, or a
// project's data file) loaded whole into memory, serving records out of an
// offset-keyed cache so repeated lookups of the same backlink chain don't
// re-parse.
type RecordFile struct {
	path    string
	reader  *bytestream.Reader
	decoder bytestream.Decoder
	cache   map[int]decodedRecord
}

type decodedRecord struct {
	header  *RecordHeader
	payload any
}

// OpenRecordFile reads path in full and wraps it for record-at-a-time access.
func OpenRecordFile(path string, decoder bytestream.Decoder) (*RecordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	return &RecordFile{
		path:    path,
		reader:  bytestream.NewReader(data, decoder),
		decoder: decoder,
		cache:   make(map[int]decodedRecord),
	}, nil
}

// Path returns the filesystem path this RecordFile was opened from.
func (f *RecordFile) Path() string { return f.path }

// Size returns the total length of the underlying file.
func (f *RecordFile) Size() int { return f.reader.Len() }

// ReadRecordAt decodes the record whose header starts at offset, caching the
// result. offset must point at an 8-byte record header, not a payload.
func (f *RecordFile) ReadRecordAt(offset int) (*RecordHeader, any, error) {
	if cached, ok := f.cache[offset]; ok {
		return cached.header, cached.payload, nil
	}

	cursor, err := f.reader.Clone(offset-f.reader.Offset(), -1)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", err, f.path)
	}
	header, payload, err := ReadRecordHeader(cursor)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", err, f.path)
	}
	// cursor starts at offset, so ReadRecordHeader saw it as 0.
	header.Offset = offset
	if err := header.CheckCRC(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", err, f.path)
	}
	decoded, err := DecodeRecordPayload(header, payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", err, f.path)
	}
	f.cache[offset] = decodedRecord{header: header, payload: decoded}
	return header, decoded, nil
}

// ReadAllRecords walks every record from the start of the file to EOF in
// order, the access pattern used to build an item file's revision log or a
// names.dat scan.
func (f *RecordFile) ReadAllRecords() ([]*RecordHeader, []any, error) {
	cursor, err := f.reader.Clone(-f.reader.Offset(), -1)
	if err != nil {
		return nil, nil, err
	}
	var headers []*RecordHeader
	var payloads []any
	for cursor.Remaining() > 0 {
		offset := cursor.Offset()
		header, payload, err := ReadRecordHeader(cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s at 0x%X", err, f.path, offset)
		}
		if err := header.CheckCRC(); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", err, f.path)
		}
		decoded, err := DecodeRecordPayload(header, payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", err, f.path)
		}
		f.cache[offset] = decodedRecord{header: header, payload: decoded}
		headers = append(headers, header)
		payloads = append(payloads, decoded)
	}
	return headers, payloads, nil
}
