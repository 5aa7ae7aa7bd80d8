package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type sample struct {
	Name    string   `json:"name"`
	Records int      `json:"records"`
	Tags    []string `json:"tags"`
	Skip    string   `json:"-"`
}

func TestParseFormat(t *testing.T) {
	valid := map[string]Format{
		"json":  FormatJSON,
		"TABLE": FormatTable,
		"yaml":  FormatYAML,
		"":      "",
	}
	for input, want := range valid {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat accepted an invalid format")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatJSON, &buf)

	if err := r.Render(sample{Name: "first", Records: 100}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded sample
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Name != "first" || decoded.Records != 100 {
		t.Errorf("decoded = %+v, want name=first records=100", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatYAML, &buf)

	if err := r.Render(map[string]any{"records": 42}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "records: 42") {
		t.Errorf("yaml output = %q, want records: 42", buf.String())
	}
}

func TestRenderTableStruct(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	if err := r.Render(&sample{Name: "first", Records: 100, Tags: []string{"a", "b"}}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "name:") {
		t.Errorf("table output missing json-tag label:\n%s", out)
	}
	if !strings.Contains(out, "100") {
		t.Errorf("table output missing value:\n%s", out)
	}
	if !strings.Contains(out, "[2 items]") {
		t.Errorf("table output should summarize slices:\n%s", out)
	}
}

func TestMarkersSurviveNoColor(t *testing.T) {
	for _, line := range []string{
		Pass(true, "ok"),
		Warn(true, "careful"),
		Fail(true, "broken"),
		Step(true, "working"),
	} {
		if len(line) == 0 {
			t.Fatal("marker line empty")
		}
	}

	if got := Pass(true, "ok"); got != PassMarker+" ok" {
		t.Errorf("Pass = %q, want %q", got, PassMarker+" ok")
	}
	if got := Fail(true, "broken"); got != FailMarker+" broken" {
		t.Errorf("Fail = %q, want %q", got, FailMarker+" broken")
	}
}
