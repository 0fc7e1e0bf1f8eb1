package vss

import (
	"errors"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// Error kinds per the propagation policy: each is a sentinel, wrapped with
// context via fmt.Errorf("...: %w", err) at the point of failure, matched
// by callers with errors.Is.
var (
	// ErrEndOfBuffer is re-exported from the byte reader for callers that
	// only import pkg/vss.
	ErrEndOfBuffer = bytestream.ErrEndOfBuffer
	// ErrUnalignedRead is re-exported from the byte reader.
	ErrUnalignedRead = bytestream.ErrUnalignedRead

	// ErrRecordCRCMismatch is the payload CRC fold not matching the header CRC.
	ErrRecordCRCMismatch = errors.New("vss: record CRC mismatch")
	// ErrRecordTruncated is a record header length exceeding the file.
	ErrRecordTruncated = errors.New("vss: record truncated")
	// ErrUnrecognizedRecord is an unknown record signature.
	ErrUnrecognizedRecord = errors.New("vss: unrecognized record signature")
	// ErrUnknownRevisionAction is an unknown revision action code.
	ErrUnknownRevisionAction = errors.New("vss: unknown revision action")
	// ErrWrongRecordClass is an offset resolving to an unexpected record type.
	ErrWrongRecordClass = errors.New("vss: wrong record class at offset")
	// ErrFileNotFound is an expected on-disk file missing.
	ErrFileNotFound = errors.New("vss: file not found")
	// ErrOutOfRange is a version number outside the known range.
	ErrOutOfRange = errors.New("vss: argument out of range")
	// ErrBadHeader is an item-file header that fails its signature/version checks.
	ErrBadHeader = errors.New("vss: bad item file header")
)
