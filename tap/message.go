// Package tap parses the newline-delimited JSON protocol emitted by a
// Singer-style extraction connector.
package tap

// MessageType is the type discriminant carried in each protocol line.
type MessageType string

// Message type constants. RECORD and STATE follow the Singer spec;
// everything else the tap prints (SCHEMA messages, activate-version
// messages, stray JSON) is classified OTHER.
const (
	MessageRecord MessageType = "RECORD"
	MessageState  MessageType = "STATE"
	MessageOther  MessageType = "OTHER"
)

// Message is one decoded protocol line.
// Payload holds the full decoded JSON object, so no field is lost to
// classification.
type Message struct {
	// Type is the message type discriminator.
	Type MessageType
	// Payload is the decoded JSON object for this line.
	Payload map[string]any
}

// Stream returns the "stream" field for RECORD messages, or "" when absent.
func (m Message) Stream() string {
	s, _ := m.Payload["stream"].(string)
	return s
}

// Value returns the "value" field of a STATE message, or nil when the
// message carries no object value.
func (m Message) Value() map[string]any {
	v, _ := m.Payload["value"].(map[string]any)
	return v
}
