package tap

import (
	"bufio"
	"encoding/json"
	"io"
)

// Scanner buffer sizes. RECORD lines carry full records and can run long;
// 10 MiB covers the largest payloads the Lightspeed streams emit.
const (
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 10 * 1024 * 1024
)

// ParseLine classifies a single output line.
//
// Lines that are not a JSON object (stderr noise, progress banners, blank
// lines) are dropped: ok is false and no message is produced. A JSON object
// without a recognized "type" field is kept as OTHER. Parsing never fails;
// a bad line must not abort processing of the lines after it.
func ParseLine(line []byte) (Message, bool) {
	var payload map[string]any
	if err := json.Unmarshal(line, &payload); err != nil || payload == nil {
		return Message{}, false
	}

	switch payload["type"] {
	case string(MessageRecord):
		return Message{Type: MessageRecord, Payload: payload}, true
	case string(MessageState):
		return Message{Type: MessageState, Payload: payload}, true
	default:
		return Message{Type: MessageOther, Payload: payload}, true
	}
}

// Decoder reads protocol messages from a line stream progressively.
// It holds no state across lines and never buffers the whole stream.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder creates a Decoder over the tap's combined output stream.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBuffer), maxLineBuffer)
	return &Decoder{sc: sc}
}

// Next returns the next protocol message, skipping unparseable lines.
// Returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (Message, error) {
	for d.sc.Scan() {
		msg, ok := ParseLine(d.sc.Bytes())
		if !ok {
			continue
		}
		return msg, nil
	}
	if err := d.sc.Err(); err != nil {
		return Message{}, err
	}
	return Message{}, io.EOF
}

// ReadAll drains the stream eagerly and returns every classified message.
// Stream errors (a torn pipe mid-line) return the messages decoded so far.
func ReadAll(r io.Reader) ([]Message, error) {
	dec := NewDecoder(r)
	var msgs []Message
	for {
		msg, err := dec.Next()
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
}

// Count returns the number of messages of the given type.
func Count(msgs []Message, t MessageType) int {
	n := 0
	for _, m := range msgs {
		if m.Type == t {
			n++
		}
	}
	return n
}
