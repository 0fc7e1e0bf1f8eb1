package vss

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TreeEntry is one node encountered while walking a database's live project
// tree.
type TreeEntry struct {
	Path      string
	Physical  PhysicalName
	IsProject bool
}

// Walker recurses a Database's project tree and, separately, folds the
// full history of every item it ever reaches into chronological changesets.
type Walker struct {
	db *Database
}

// NewWalker wraps db for tree and history walks.
func NewWalker(db *Database) *Walker { return &Walker{db: db} }

// Walk visits every currently-live project and file reachable from phys,
// depth first, calling visit with each entry's full path.
func (w *Walker) Walk(basePath string, phys PhysicalName, visit func(TreeEntry) error) error {
	proj, err := w.db.OpenProject(phys)
	if err != nil {
		return err
	}
	entries, err := proj.Entries(w.db)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := basePath + "/" + e.Name
		if err := visit(TreeEntry{Path: path, Physical: e.Physical, IsProject: e.IsProject}); err != nil {
			return err
		}
		if e.IsProject {
			if err := w.Walk(path, e.Physical, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// PathAction is one Action located at a path, as it contributed to a Change.
type PathAction struct {
	Path     string
	Physical PhysicalName
	Action   Action
}

// Change groups every action recorded at the same instant by the same
// user into a single logical commit, the unit vssdump's history view and
// any downstream migration tooling actually wants (VSS itself has no
// concept of a commit spanning several item files).
type Change struct {
	Timestamp time.Time
	User      string
	Comment   string
	Actions   []PathAction
}

type rawEntry struct {
	path string
	rev  Revision
}

// CollectChangesets walks every project and file reachable from phys —
// including ones no longer live, discovered through AddProject/AddFile
// actions in a project's own revision log rather than its current entry
// cache — and folds their combined revision history into time-ordered
// Change groups.
func (w *Walker) CollectChangesets(basePath string, phys PhysicalName) ([]Change, error) {
	var all []rawEntry
	visited := make(map[PhysicalName]bool)

	var walkItem func(path string, phys PhysicalName, isProject bool) error
	walkItem = func(path string, phys PhysicalName, isProject bool) error {
		if visited[phys] {
			return nil
		}
		visited[phys] = true

		var owner *itemFile
		if isProject {
			proj, err := w.db.OpenProject(phys)
			if err != nil {
				return err
			}
			owner = proj.itemFile
		} else {
			fi, err := w.db.OpenFile(phys)
			if err != nil {
				return err
			}
			owner = fi.itemFile
		}

		revs, err := revisionsOf(owner, w.db.NameFile, w.db.Decoder)
		if err != nil {
			return fmt.Errorf("%w: collecting history at %s", err, path)
		}
		// revisionsOf returns newest-first; walk oldest-first so a child
		// discovered via AddProject/AddFile is only ever recursed into once
		// its parent has recorded the add.
		for i := len(revs) - 1; i >= 0; i-- {
			rev := revs[i]
			all = append(all, rawEntry{path: path, rev: rev})
			if !isProject {
				continue
			}
			switch rev.Action.Kind {
			case ActionAddProject:
				if err := walkItem(path+"/"+rev.Action.Name, rev.Action.Physical, true); err != nil {
					return err
				}
			case ActionAddFile:
				if err := walkItem(path+"/"+rev.Action.Name, rev.Action.Physical, false); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walkItem(basePath, phys, true); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].rev.Timestamp.Equal(all[j].rev.Timestamp) {
			return all[i].rev.Timestamp.Before(all[j].rev.Timestamp)
		}
		if all[i].rev.User != all[j].rev.User {
			return all[i].rev.User < all[j].rev.User
		}
		return all[i].path < all[j].path
	})

	var changes []Change
	for _, e := range all {
		pa := PathAction{Path: e.path, Physical: e.rev.Action.Physical, Action: e.rev.Action}
		if n := len(changes); n > 0 {
			last := &changes[n-1]
			if last.Timestamp.Equal(e.rev.Timestamp) && last.User == e.rev.User {
				last.Actions = append(last.Actions, pa)
				appendComment(last, e.rev.Action.Comment)
				continue
			}
		}
		c := Change{Timestamp: e.rev.Timestamp, User: e.rev.User, Actions: []PathAction{pa}}
		appendComment(&c, e.rev.Action.Comment)
		changes = append(changes, c)
	}
	return changes, nil
}

// appendComment folds comment into c.Comment, normalizing CRLF line endings
// and skipping a comment that's already present verbatim — the same text
// commonly shows up on every file in a multi-file checkin.
func appendComment(c *Change, comment string) {
	comment = normalizeComment(comment)
	if comment == "" {
		return
	}
	for _, existing := range strings.Split(c.Comment, "\n\n") {
		if existing == comment {
			return
		}
	}
	if c.Comment == "" {
		c.Comment = comment
	} else {
		c.Comment += "\n\n" + comment
	}
}

func normalizeComment(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
