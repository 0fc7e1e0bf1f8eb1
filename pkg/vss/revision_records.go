package vss

import (
	"fmt"

	"github.com/agrigoriev/vss2git/internal/bytestream"
)

// VssRevisionAction is the verb a revision record represents. Numeric values
// are VSS's own on-disk codes, not assignment order: they're read straight
// off a record's action field and must match byte for byte.
type VssRevisionAction uint16

const (
	ActionLabel          VssRevisionAction = 0
	ActionCreateProject  VssRevisionAction = 1
	ActionAddProject     VssRevisionAction = 2
	ActionAddFile        VssRevisionAction = 3
	ActionDestroyProject VssRevisionAction = 4
	ActionDestroyFile    VssRevisionAction = 5
	ActionDeleteProject  VssRevisionAction = 6
	ActionDeleteFile     VssRevisionAction = 7
	ActionRecoverProject VssRevisionAction = 8
	ActionRecoverFile    VssRevisionAction = 9
	ActionRenameProject  VssRevisionAction = 10
	ActionRenameFile     VssRevisionAction = 11
	ActionMoveFrom       VssRevisionAction = 12
	ActionMoveTo         VssRevisionAction = 13

	// ActionShareFile also covers pinning and unpinning an already-shared
	// file: the tail's UnpinnedRevision/PinnedRevision fields tell which.
	ActionShareFile   VssRevisionAction = 14
	ActionBranchFile  VssRevisionAction = 15
	ActionCreateFile  VssRevisionAction = 16
	ActionCheckinFile VssRevisionAction = 17

	// ActionCheckInProject is a numbered action code with no known record
	// layout; this package reports it as unrecognized if encountered,
	// matching the original's factory, which has no entry for it either.
	ActionCheckInProject VssRevisionAction = 18
	ActionCreateBranch   VssRevisionAction = 19

	// ActionArchiveVersionFile and ActionRestoreVersionFile are numbered
	// but, like ActionCheckInProject, have no known record layout.
	ActionArchiveVersionFile VssRevisionAction = 20
	ActionRestoreVersionFile VssRevisionAction = 21
	ActionArchiveFile        VssRevisionAction = 22
	ActionArchiveProject     VssRevisionAction = 23
	ActionRestoreFile        VssRevisionAction = 24
	ActionRestoreProject     VssRevisionAction = 25
)

var actionNames = map[VssRevisionAction]string{
	ActionLabel:              "Label",
	ActionCreateProject:      "CreateProject",
	ActionAddProject:         "AddProject",
	ActionAddFile:            "AddFile",
	ActionDestroyProject:     "DestroyProject",
	ActionDestroyFile:        "DestroyFile",
	ActionDeleteProject:      "DeleteProject",
	ActionDeleteFile:         "DeleteFile",
	ActionRecoverProject:     "RecoverProject",
	ActionRecoverFile:        "RecoverFile",
	ActionRenameProject:      "RenameProject",
	ActionRenameFile:         "RenameFile",
	ActionMoveFrom:           "MoveFrom",
	ActionMoveTo:             "MoveTo",
	ActionShareFile:          "ShareFile",
	ActionBranchFile:         "BranchFile",
	ActionCreateFile:         "CreateFile",
	ActionCheckinFile:        "CheckinFile",
	ActionCheckInProject:     "CheckInProject",
	ActionCreateBranch:       "CreateBranch",
	ActionArchiveVersionFile: "ArchiveVersionFile",
	ActionRestoreVersionFile: "RestoreVersionFile",
	ActionArchiveFile:        "ArchiveFile",
	ActionArchiveProject:     "ArchiveProject",
	ActionRestoreFile:        "RestoreFile",
	ActionRestoreProject:     "RestoreProject",
}

func (a VssRevisionAction) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("VssRevisionAction(%d)", uint16(a))
}

// ActionData is the action-specific tail that follows the common revision
// fields; its concrete type is chosen by the record's Action.
type ActionData interface {
	isActionData()
}

// CommonActionData covers CreateProject/CreateFile/AddProject/AddFile/
// DeleteProject/DeleteFile/RecoverProject/RecoverFile: just the affected
// item's name and physical id.
type CommonActionData struct {
	Name     vssName
	Physical PhysicalName
}

// DestroyActionData covers DestroyProject/DestroyFile. WasDeleted is
// nonzero if the item had already been soft-deleted and this destroy
// purged it outright, zero if it was destroyed directly.
type DestroyActionData struct {
	Name       vssName
	WasDeleted uint16
	Physical   PhysicalName
}

// RenameActionData covers RenameProject/RenameFile: Name is the entry as it
// reads after the rename, OldName what it displaced.
type RenameActionData struct {
	Name     vssName
	OldName  vssName
	Physical PhysicalName
}

// MoveActionData covers MoveFrom/MoveTo: ProjectPath is the path of the
// project at the other end of the move.
type MoveActionData struct {
	ProjectPath string
	Name        vssName
	Physical    PhysicalName
}

// ShareActionData covers ShareFile, also used to pin and unpin an
// already-shared file: UnpinnedRevision nonzero means this share unpinned
// (PinnedRevision is then meaningless); UnpinnedRevision zero means it
// pinned at PinnedRevision.
type ShareActionData struct {
	ProjectPath      string
	Name             vssName
	UnpinnedRevision int16
	PinnedRevision   int16
	ProjectIndex     int16
	Physical         PhysicalName
}

// BranchActionData covers BranchFile/CreateBranch: the item's own name and
// physical id, plus BranchFile, the physical name of the file this one's
// history split off from.
type BranchActionData struct {
	Name       vssName
	Physical   PhysicalName
	BranchFile PhysicalName
}

// CheckinActionData covers CheckinFile: PrevDeltaOffset points at the
// separate "FD" delta record (delta.go) that turns the next-newer
// revision's content back into this revision's; it is not carried inline.
type CheckinActionData struct {
	PrevDeltaOffset uint32
	ProjectPath     string
}

// ArchiveRestoreActionData covers ArchiveFile/ArchiveProject/RestoreFile/
// RestoreProject: the item's own name and physical id, plus the archive
// file's path on the filesystem at the time of the operation.
type ArchiveRestoreActionData struct {
	Name        vssName
	Physical    PhysicalName
	ArchivePath string
}

func (CommonActionData) isActionData()         {}
func (DestroyActionData) isActionData()        {}
func (RenameActionData) isActionData()         {}
func (MoveActionData) isActionData()           {}
func (ShareActionData) isActionData()          {}
func (BranchActionData) isActionData()         {}
func (CheckinActionData) isActionData()        {}
func (ArchiveRestoreActionData) isActionData() {}

// RevisionRecord is one entry in an item's append-only revision log.
type RevisionRecord struct {
	Header             *RecordHeader
	PrevOffset         uint32
	Action             VssRevisionAction
	RevisionNum        uint16
	Timestamp          uint32
	User               string
	Label              string
	CommentOffset      uint32
	LabelCommentOffset uint32
	CommentLength      uint16
	LabelCommentLength uint16
	Data               ActionData
}

func decodeRevisionRecord(h *RecordHeader, r *bytestream.Reader) (*RevisionRecord, error) {
	fields, err := r.Unpack("IHHI32s32sIIHH")
	if err != nil {
		return nil, fmt.Errorf("%w: revision record at 0x%X", err, h.Offset)
	}
	rec := &RevisionRecord{
		Header:             h,
		PrevOffset:         fields[0].(uint32),
		Action:             VssRevisionAction(fields[1].(uint16)),
		RevisionNum:        fields[2].(uint16),
		Timestamp:          fields[3].(uint32),
		User:               r.Decode(fields[4].([]byte)),
		Label:              r.Decode(fields[5].([]byte)),
		CommentOffset:      fields[6].(uint32),
		LabelCommentOffset: fields[7].(uint32),
		CommentLength:      fields[8].(uint16),
		LabelCommentLength: fields[9].(uint16),
	}

	data, err := decodeActionData(rec.Action, r)
	if err != nil {
		return nil, fmt.Errorf("%w: revision record at 0x%X action %s", err, h.Offset, rec.Action)
	}
	rec.Data = data
	return rec, nil
}

func decodeActionData(action VssRevisionAction, r *bytestream.Reader) (ActionData, error) {
	switch action {
	case ActionLabel:
		return nil, nil

	case ActionCreateProject, ActionAddProject, ActionAddFile, ActionDeleteProject,
		ActionDeleteFile, ActionRecoverProject, ActionRecoverFile, ActionCreateFile:
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return CommonActionData{Name: name, Physical: phys}, nil

	case ActionDestroyProject, ActionDestroyFile:
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		wasDeleted, err := r.ReadUint16(true)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return DestroyActionData{Name: name, WasDeleted: wasDeleted, Physical: phys}, nil

	case ActionRenameProject, ActionRenameFile:
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		oldName, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return RenameActionData{Name: name, OldName: oldName, Physical: phys}, nil

	case ActionMoveFrom, ActionMoveTo:
		projectPath, err := r.ReadString(260)
		if err != nil {
			return nil, err
		}
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return MoveActionData{ProjectPath: projectPath, Name: name, Physical: phys}, nil

	case ActionShareFile:
		projectPath, err := r.ReadString(260)
		if err != nil {
			return nil, err
		}
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		unpinned, err := r.ReadInt16(true)
		if err != nil {
			return nil, err
		}
		pinned, err := r.ReadInt16(true)
		if err != nil {
			return nil, err
		}
		projectIdx, err := r.ReadInt16(true)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return ShareActionData{
			ProjectPath:      projectPath,
			Name:             name,
			UnpinnedRevision: unpinned,
			PinnedRevision:   pinned,
			ProjectIndex:     projectIdx,
			Physical:         phys,
		}, nil

	case ActionBranchFile, ActionCreateBranch:
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		branchFile, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		return BranchActionData{Name: name, Physical: phys, BranchFile: branchFile}, nil

	case ActionCheckinFile:
		prevDeltaOffset, err := r.ReadUint32(true)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadUint32(true); err != nil { // filler
			return nil, err
		}
		projectPath, err := r.ReadString(260)
		if err != nil {
			return nil, err
		}
		return CheckinActionData{PrevDeltaOffset: prevDeltaOffset, ProjectPath: projectPath}, nil

	case ActionArchiveFile, ActionArchiveProject, ActionRestoreFile, ActionRestoreProject:
		name, err := readVSSName(r)
		if err != nil {
			return nil, err
		}
		phys, err := readPhysicalName(r)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadUint16(true); err != nil { // filler16
			return nil, err
		}
		archivePath, err := r.ReadString(260)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadUint32(true); err != nil { // filler32
			return nil, err
		}
		return ArchiveRestoreActionData{Name: name, Physical: phys, ArchivePath: archivePath}, nil

	default:
		// Covers ActionCheckInProject and the two numbered but
		// never-implemented archive variants, ActionArchiveVersionFile and
		// ActionRestoreVersionFile, along with any genuinely unknown code.
		return nil, ErrUnknownRevisionAction
	}
}
