package shared

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tc := []struct {
		name string
		ms   int
		want string
	}{
		{
			name: "zero",
			ms:   0,
			want: "00:00",
		},
		{
			name: "negative clamps to zero",
			ms:   -5000,
			want: "00:00",
		},
		{
			name: "minutes and seconds",
			ms:   65000,
			want: "01:05",
		},
		{
			name: "sub-second remainder truncates",
			ms:   65999,
			want: "01:05",
		},
		{
			name: "hours appear only when nonzero",
			ms:   3723000,
			want: "01:02:03",
		},
		{
			name: "just under an hour",
			ms:   3599000,
			want: "59:59",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTime(tt.ms)
			if got != tt.want {
				t.Errorf("FormatTime(%d) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Error("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(strings.Split(a, "-")) != 5 {
		t.Errorf("expected UUID shape, got %s", a)
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected unique state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(compact) != `{"key":"value"}` {
		t.Errorf("unexpected compact output: %s", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Error("expected pretty output to be indented")
	}

	var decoded map[string]string
	if err := json.Unmarshal(pretty, &decoded); err != nil {
		t.Fatalf("pretty output is not valid JSON: %v", err)
	}
}

func TestVisibilityString(t *testing.T) {
	if VisibilityString(true) != "Public" {
		t.Error("expected 'Public' for public playlists")
	}
	if VisibilityString(false) != "Private" {
		t.Error("expected 'Private' for private playlists")
	}
}
