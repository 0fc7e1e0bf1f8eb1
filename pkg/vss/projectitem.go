package vss

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// FullName is one live entry in a project's directory: a display name, its
// case-folded index key, the physical item it names, and whether that item
// is itself a project.
type FullName struct {
	Name      string
	IndexKey  string
	Physical  PhysicalName
	IsProject bool
}

func compareFullName(aKey string, aPhys PhysicalName, bKey string, bPhys PhysicalName) int {
	if c := strings.Compare(aKey, bKey); c != 0 {
		return c
	}
	return bytes.Compare(aPhys[:], bPhys[:])
}

// directoryState is a sorted-by-(IndexKey,Physical) slice of FullName,
// maintained by binary search so lookup, insert and remove are all O(log n)
// probes plus an O(n) shift (spec's invariant that the array stays sorted
// and each (name, physical) pair appears at most once).
type directoryState struct {
	entries []*FullName
}

func (d *directoryState) search(key string, phys PhysicalName) (int, bool) {
	i := sort.Search(len(d.entries), func(i int) bool {
		return compareFullName(d.entries[i].IndexKey, d.entries[i].Physical, key, phys) >= 0
	})
	if i < len(d.entries) && d.entries[i].IndexKey == key && d.entries[i].Physical == phys {
		return i, true
	}
	return i, false
}

func (d *directoryState) insert(fn *FullName) {
	i, found := d.search(fn.IndexKey, fn.Physical)
	if found {
		d.entries[i] = fn
		return
	}
	d.entries = append(d.entries, nil)
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = fn
}

func (d *directoryState) remove(key string, phys PhysicalName) bool {
	i, found := d.search(key, phys)
	if !found {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	return true
}

// ProjectItem is a project's item file: a header, a revision log recording
// its own history (renames, destroys, labels), and a cache of
// ProjectEntryRecord describing its currently-live children.
type ProjectItem struct {
	*itemFile
}

// OpenProjectItem opens path as a project item file.
func OpenProjectItem(path string, decoder bytestream.Decoder) (*ProjectItem, error) {
	f, err := openItemFile(path, decoder, ItemTypeProject)
	if err != nil {
		return nil, err
	}
	return &ProjectItem{itemFile: f}, nil
}

// Entries folds every ProjectEntryRecord in the item file into a sorted,
// deduplicated directory listing, resolving each entry's authoritative name
// through db.NameFile (nil if the database has no names overflow file) and
// its index key through db's codepage.
func (pi *ProjectItem) Entries(db *Database) ([]*FullName, error) {
	_, payloads, err := pi.rf.ReadAllRecords()
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s", err, pi.rf.Path())
	}

	state := &directoryState{}
	for _, payload := range payloads {
		entry, ok := payload.(*ProjectEntryRecord)
		if !ok {
			continue
		}
		if entry.Flags&projectEntryFlagDeleted != 0 {
			state.remove(db.IndexKey(db.Decoder(entry.Name.ShortName)), entry.Physical)
			continue
		}
		name, err := ResolveName(db.NameFile, db.Decoder, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving entry in %s", err, pi.rf.Path())
		}
		state.insert(&FullName{
			Name:      name,
			IndexKey:  db.IndexKey(name),
			Physical:  entry.Physical,
			IsProject: entry.ItemType == int16(ItemTypeProject),
		})
	}
	return state.entries, nil
}
