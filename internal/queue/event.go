// Package queue defines message payloads exchanged over the message broker.
package queue

// DocumentSavedEvent is published when an operation's document is
// saved. It carries enough for downstream consumers to build an audit
// trail without querying the primary database.
type DocumentSavedEvent struct {
	ChangeID    uint64 `json:"change_id"`
	OpID        uint64 `json:"op_id"`
	UserID      uint64 `json:"u_id"`
	Username    string `json:"username"`
	CommitHash  string `json:"commit_hash"`
	VersionName string `json:"version_name"`
	Comment     string `json:"comment"`
	SavedAt     string `json:"saved_at"`
}
