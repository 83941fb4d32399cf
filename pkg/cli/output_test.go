package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"", FormatText, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"score": 80}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\"score\": 80") {
		t.Errorf("output not indented JSON: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewCommandError("evaluate", cause)
	if !errors.Is(err, cause) {
		t.Error("CommandError must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "evaluate") {
		t.Errorf("error string missing command: %v", err)
	}
}

func TestConfigError(t *testing.T) {
	withPath := NewConfigError("/etc/minerva.yaml", "bad value")
	if !strings.Contains(withPath.Error(), "/etc/minerva.yaml") {
		t.Errorf("error string missing path: %v", withPath)
	}
	noPath := NewConfigError("", "bad value")
	if strings.Contains(noPath.Error(), "()") {
		t.Errorf("unexpected empty path formatting: %v", noPath)
	}
}
