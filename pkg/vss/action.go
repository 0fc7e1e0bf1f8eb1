package vss

import "fmt"

// Action is the flattened, display-ready form of a RevisionRecord: the
// piece of history a changeset or dump cares about, independent of the raw
// record layout.
type Action struct {
	Kind     VssRevisionAction
	Version  uint16
	Name     string // the item's display name, when the action names one
	Physical PhysicalName
	Comment  string
	Extra    string // old name, partner path, or archive path, depending on Kind
}

// String renders a one-line description in the register item-history
// dumps use, e.g. "AddFile widget.c" or "RenameFile report.doc -> report.txt".
func (a Action) String() string {
	switch a.Kind {
	case ActionLabel:
		return fmt.Sprintf("Label %q", a.Extra)
	case ActionRenameProject, ActionRenameFile:
		return fmt.Sprintf("%s %s -> %s", a.Kind, a.Extra, a.Name)
	case ActionMoveFrom, ActionMoveTo:
		return fmt.Sprintf("%s %s (%s)", a.Kind, a.Name, a.Extra)
	case ActionShareFile, ActionBranchFile:
		return fmt.Sprintf("%s %s (%s)", a.Kind, a.Name, a.Extra)
	case ActionCheckinFile:
		return fmt.Sprintf("CheckinFile revision %d", a.Version)
	case ActionArchiveFile, ActionArchiveProject, ActionRestoreFile, ActionRestoreProject:
		return fmt.Sprintf("%s %s", a.Kind, a.Extra)
	default:
		if a.Name != "" {
			return fmt.Sprintf("%s %s", a.Kind, a.Name)
		}
		return a.Kind.String()
	}
}

// buildAction flattens rev's action-specific payload into an Action,
// resolving any embedded vssName through decoder/nf.
func buildAction(owner *itemFile, nf *NameFile, decoder func([]byte) string, rev *RevisionRecord) (Action, error) {
	a := Action{Kind: rev.Action, Version: rev.RevisionNum}

	resolve := func(n vssName) (string, error) { return ResolveName(nf, decoder, n) }

	switch d := rev.Data.(type) {
	case nil:
		a.Extra = rev.Label
	case CommonActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical = name, d.Physical
	case DestroyActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical = name, d.Physical
	case RenameActionData:
		newName, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		oldName, err := resolve(d.OldName)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical, a.Extra = newName, d.Physical, oldName
	case MoveActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical, a.Extra = name, d.Physical, d.ProjectPath
	case ShareActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical = name, d.Physical
		if d.UnpinnedRevision != 0 {
			a.Extra = "unpinned"
		} else {
			a.Extra = fmt.Sprintf("pinned rev %d", d.PinnedRevision)
		}
	case BranchActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical, a.Extra = name, d.Physical, d.BranchFile.String()
	case CheckinActionData:
		a.Extra = d.ProjectPath
	case ArchiveRestoreActionData:
		name, err := resolve(d.Name)
		if err != nil {
			return Action{}, err
		}
		a.Name, a.Physical, a.Extra = name, d.Physical, d.ArchivePath
	}

	comment, err := owner.ResolveComment(rev.CommentOffset)
	if err != nil {
		return Action{}, err
	}
	a.Comment = comment
	return a, nil
}
