package model

import "time"

// Operation represents a shared flight-plan workspace as stored in
// the `operations` table.  An operation is the unit of authorization
// and of broadcast scoping: every operation has a chat room and a
// versioned document attached to it.
//
// Fields:
//  ID          – primary key identifier.
//  Path        – unique, url-safe name of the operation.
//  Category    – free-form grouping label (default "default").
//  Description – short human description.
//  Active      – false once the operation has been archived.
//  LastUsed    – bumped whenever the document is saved or fetched.
type Operation struct {
	ID          uint64    // operations.id
	Path        string    // operations.path
	Category    string    // operations.category
	Description string    // operations.description
	Active      bool      // operations.active
	LastUsed    time.Time // operations.last_used
}

// Document holds the current content blob of an operation's flight
// track.  The content format is opaque to the server; versioning is
// recorded in the `changes` table.
type Document struct {
	OpID      uint64    // documents.op_id
	Content   string    // documents.content
	UpdatedAt time.Time // documents.updated_at
}
