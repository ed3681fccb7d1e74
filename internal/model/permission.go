package model

// AccessLevel is the role a user holds on one operation.  Levels are
// totally ordered by capability: viewer < collaborator < admin < creator.
type AccessLevel string

const (
	AccessViewer       AccessLevel = "viewer"
	AccessCollaborator AccessLevel = "collaborator"
	AccessAdmin        AccessLevel = "admin"
	AccessCreator      AccessLevel = "creator"
)

// ValidAccessLevel reports whether s is one of the four known levels.
func ValidAccessLevel(s string) bool {
	switch AccessLevel(s) {
	case AccessViewer, AccessCollaborator, AccessAdmin, AccessCreator:
		return true
	default:
		return false
	}
}

// Permission is the ternary relation (user, operation, access level)
// stored in the `permissions` table.  Exactly one creator permission
// exists per operation at creation time.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – the user the grant applies to.
//  OpID        – the operation the grant applies to.
//  AccessLevel – one of viewer/collaborator/admin/creator.
type Permission struct {
	ID          uint64      // permissions.id
	UserID      uint64      // permissions.u_id
	OpID        uint64      // permissions.op_id
	AccessLevel AccessLevel // permissions.access_level
}
