package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// FileItem is a file's item file: a header carrying the latest revision's
// full content, and a reverse log of revisions each carrying the delta (if
// any) needed to step one revision older.
type FileItem struct {
	*itemFile
}

// OpenFileItem opens path as a file item file.
func OpenFileItem(path string, decoder bytestream.Decoder) (*FileItem, error) {
	f, err := openItemFile(path, decoder, ItemTypeFile)
	if err != nil {
		return nil, err
	}
	return &FileItem{itemFile: f}, nil
}

// Name returns the item's own vssName (its filename as stored in its item
// header, independent of whatever name a containing project lists it
// under).
func (fi *FileItem) Name() vssName { return fi.Header.Name }

// ContentAt reconstructs the file's content as of revisionNum by walking
// the revision log from the latest content backward, applying each
// intervening checkin's reverse delta.
func (fi *FileItem) ContentAt(revisionNum uint16) ([]byte, error) {
	revs, err := fi.Revisions()
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("%w: %s has no revisions", ErrOutOfRange, fi.rf.Path())
	}
	if revisionNum > revs[0].RevisionNum {
		return nil, fmt.Errorf("%w: revision %d requested, latest is %d", ErrOutOfRange, revisionNum, revs[0].RevisionNum)
	}

	content := fi.Header.Content
	for _, rev := range revs {
		if rev.RevisionNum == revisionNum {
			return content, nil
		}
		if ck, ok := rev.Data.(CheckinActionData); ok {
			ops, err := fi.ResolveDelta(ck.PrevDeltaOffset)
			if err != nil {
				return nil, fmt.Errorf("%w: resolving delta for revision %d of %s", err, rev.RevisionNum, fi.rf.Path())
			}
			older, err := ApplyDelta(content, ops)
			if err != nil {
				return nil, fmt.Errorf("%w: reconstructing revision %d of %s", err, rev.RevisionNum-1, fi.rf.Path())
			}
			content = older
		}
	}
	return nil, fmt.Errorf("%w: revision %d not found in %s", ErrOutOfRange, revisionNum, fi.rf.Path())
}

// Latest returns the file's newest revision number and content.
func (fi *FileItem) Latest() (uint16, []byte, error) {
	revs, err := fi.Revisions()
	if err != nil {
		return 0, nil, err
	}
	if len(revs) == 0 {
		return 0, nil, fmt.Errorf("%w: %s has no revisions", ErrOutOfRange, fi.rf.Path())
	}
	return revs[0].RevisionNum, fi.Header.Content, nil
}
