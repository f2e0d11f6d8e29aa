// Package changefeed delivers row-change events from Postgres NOTIFY to
// in-process subscribers. Delivery is at-least-once in receipt order, with
// per-row ordering only; subscribers must tolerate duplicates.
package changefeed

import "encoding/json"

// EventType is the kind of row change.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row change on a tracked table. Old carries the pre-image for
// UPDATE/DELETE, New the post-image for INSERT/UPDATE.
type Event struct {
	Table string          `json:"table"`
	Type  EventType       `json:"type"`
	Old   json.RawMessage `json:"old,omitempty"`
	New   json.RawMessage `json:"new,omitempty"`
}
