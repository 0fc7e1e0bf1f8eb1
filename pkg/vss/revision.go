package vss

import "time"

// Revision is a RevisionRecord lifted into display-ready form: a parsed
// timestamp and a flattened Action, still carrying enough of the raw record
// (Num, the record's own offset) for chain-walking callers.
type Revision struct {
	Offset    int
	Num       uint16
	Timestamp time.Time
	User      string
	Action    Action
}

func newRevision(owner *itemFile, nf *NameFile, decoder func([]byte) string, rec *RevisionRecord) (Revision, error) {
	action, err := buildAction(owner, nf, decoder, rec)
	if err != nil {
		return Revision{}, err
	}
	return Revision{
		Offset:    rec.Header.Offset,
		Num:       rec.RevisionNum,
		Timestamp: time.Unix(int64(rec.Timestamp), 0).UTC(),
		User:      rec.User,
		Action:    action,
	}, nil
}

// revisionsOf lifts every RevisionRecord the owner's log holds into
// Revision, newest first (the order itemFile.Revisions already returns).
func revisionsOf(owner *itemFile, nf *NameFile, decoder func([]byte) string) ([]Revision, error) {
	raw, err := owner.Revisions()
	if err != nil {
		return nil, err
	}
	out := make([]Revision, 0, len(raw))
	for _, rec := range raw {
		rev, err := newRevision(owner, nf, decoder, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}
