// Package bookmark extracts and persists the tap's sync checkpoint.
//
// A checkpoint is the "value" object of a STATE message. The tap treats it
// as opaque; the harness only needs its serialized form to feed back via
// --state, plus the nested replication key value for display.
package bookmark

import "github.com/mariocostaoptiply/tap-synccheck/tap"

// ReplicationKeyField is the leaf field under each stream's bookmark that
// carries the scalar the tap resumes from.
const ReplicationKeyField = "replication_key_value"

// NotAvailable is the display sentinel for a missing replication key value.
const NotAvailable = "n/a"

// Checkpoint is the opaque sync-progress value emitted in a STATE message.
type Checkpoint map[string]any

// Latest returns the checkpoint of the last STATE message in msgs.
// Last-wins: the protocol convention is that a later checkpoint supersedes
// every earlier one. Returns false when no STATE message carries an object
// value.
func Latest(msgs []tap.Message) (Checkpoint, bool) {
	var cp Checkpoint
	for _, m := range msgs {
		if m.Type != tap.MessageState {
			continue
		}
		if v := m.Value(); v != nil {
			cp = Checkpoint(v)
		}
	}
	return cp, cp != nil
}

// Lookup walks a key path through nested JSON objects.
// Returns false when any segment is missing or not an object; never panics.
func Lookup(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ReplicationKeyValue returns the scalar at
// bookmarks.<stream>.replication_key_value, or false when any path segment
// is missing. Display-only; the comparison never depends on it.
func (c Checkpoint) ReplicationKeyValue(stream string) (any, bool) {
	return Lookup(c, "bookmarks", stream, ReplicationKeyField)
}
