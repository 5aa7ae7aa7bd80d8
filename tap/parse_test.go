package tap

import (
	"io"
	"strings"
	"testing"
)

func TestParseLineClassification(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantType MessageType
		wantOK   bool
	}{
		{
			name:     "record",
			line:     `{"type":"RECORD","stream":"products","record":{"id":1},"version":3}`,
			wantType: MessageRecord,
			wantOK:   true,
		},
		{
			name:     "state",
			line:     `{"type":"STATE","value":{"bookmarks":{"products":{"replication_key_value":42}}}}`,
			wantType: MessageState,
			wantOK:   true,
		},
		{
			name:     "schema is other",
			line:     `{"type":"SCHEMA","stream":"products","schema":{}}`,
			wantType: MessageOther,
			wantOK:   true,
		},
		{
			name:     "object without type is other",
			line:     `{"stream":"products"}`,
			wantType: MessageOther,
			wantOK:   true,
		},
		{
			name:   "non-type field is dropped when not an object",
			line:   `[1,2,3]`,
			wantOK: false,
		},
		{
			name:   "invalid json dropped",
			line:   `INFO starting sync for stream products`,
			wantOK: false,
		},
		{
			name:   "blank line dropped",
			line:   ``,
			wantOK: false,
		},
		{
			name:   "json null dropped",
			line:   `null`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ParseLine([]byte(tt.line))
			if ok != tt.wantOK {
				t.Fatalf("ParseLine ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if msg.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", msg.Type, tt.wantType)
			}
			if msg.Payload == nil {
				t.Error("Payload = nil, want full decoded object")
			}
		})
	}
}

func TestParseLineNumericTypeIsOther(t *testing.T) {
	// A "type" field that is not a string must not match RECORD/STATE.
	msg, ok := ParseLine([]byte(`{"type":42}`))
	if !ok {
		t.Fatal("ParseLine dropped an object line")
	}
	if msg.Type != MessageOther {
		t.Errorf("Type = %q, want %q", msg.Type, MessageOther)
	}
}

func TestReadAllSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`Starting tap in sync mode`,
		`{"type":"RECORD","stream":"products","record":{"id":1}}`,
		`{truncated`,
		`{"type":"STATE","value":{"bookmarks":{}}}`,
		``,
		`{"type":"RECORD","stream":"products","record":{"id":2}}`,
	}, "\n")

	msgs, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
	if got := Count(msgs, MessageRecord); got != 2 {
		t.Errorf("record count = %d, want 2", got)
	}
	if got := Count(msgs, MessageState); got != 1 {
		t.Errorf("state count = %d, want 1", got)
	}
}

func TestDecoderStreamsProgressively(t *testing.T) {
	input := `{"type":"RECORD","stream":"products","record":{"id":1}}` + "\n" +
		`noise` + "\n" +
		`{"type":"STATE","value":{"bookmarks":{}}}` + "\n"

	dec := NewDecoder(strings.NewReader(input))

	first, err := dec.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if first.Type != MessageRecord {
		t.Errorf("first.Type = %q, want %q", first.Type, MessageRecord)
	}

	second, err := dec.Next()
	if err != nil {
		t.Fatalf("second Next failed: %v", err)
	}
	if second.Type != MessageState {
		t.Errorf("second.Type = %q, want %q", second.Type, MessageState)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

func TestMessageAccessors(t *testing.T) {
	rec, _ := ParseLine([]byte(`{"type":"RECORD","stream":"products","record":{"id":1}}`))
	if rec.Stream() != "products" {
		t.Errorf("Stream() = %q, want %q", rec.Stream(), "products")
	}
	if rec.Value() != nil {
		t.Errorf("Value() = %v, want nil for RECORD", rec.Value())
	}

	state, _ := ParseLine([]byte(`{"type":"STATE","value":{"bookmarks":{"products":{"replication_key_value":42}}}}`))
	if state.Value() == nil {
		t.Fatal("Value() = nil, want state value object")
	}
	if _, ok := state.Value()["bookmarks"]; !ok {
		t.Error("Value() missing bookmarks key")
	}

	// STATE with a scalar value has no usable object.
	scalar, _ := ParseLine([]byte(`{"type":"STATE","value":7}`))
	if scalar.Value() != nil {
		t.Errorf("Value() = %v, want nil for scalar state value", scalar.Value())
	}
}

func TestReadAllLongLine(t *testing.T) {
	// Record payloads exceed the default bufio.Scanner token size.
	big := strings.Repeat("x", 256*1024)
	input := `{"type":"RECORD","stream":"products","record":{"blob":"` + big + `"}}` + "\n"

	msgs, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != MessageRecord {
		t.Fatalf("msgs = %v, want one RECORD", msgs)
	}
}
