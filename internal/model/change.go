package model

import "time"

// Change is one immutable version record of an operation's document,
// stored in the append-only `changes` table.  A row is written for
// every successful file-save together with the document update.
//
// Fields:
//  ID          – primary key identifier.
//  OpID        – operation the version belongs to.
//  UserID      – author of the save.
//  CommitHash  – SHA-1 hex digest of the saved content.
//  VersionName – optional user-supplied name for the version.
//  Comment     – optional save comment.
//  CreatedAt   – timestamp of the save.
type Change struct {
	ID          uint64    // changes.id
	OpID        uint64    // changes.op_id
	UserID      uint64    // changes.u_id
	CommitHash  string    // changes.commit_hash
	VersionName string    // changes.version_name
	Comment     string    // changes.comment
	CreatedAt   time.Time // changes.created_at
}
