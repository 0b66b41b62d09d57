package shared

import "testing"

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "under a minute", seconds: 45, want: "0:45"},
		{name: "minutes and seconds", seconds: 225, want: "3:45"},
		{name: "zero padded seconds", seconds: 181, want: "3:01"},
		{name: "over an hour", seconds: 3725, want: "1:02:05"},
		{name: "negative clamps to zero", seconds: -10, want: "0:00"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.seconds)
			if got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
}

func TestMarshalJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	compact, err := MarshalJSON(payload{Name: "x"}, false)
	if err != nil {
		t.Fatalf("compact marshal failed: %v", err)
	}
	if string(compact) != `{"name":"x"}` {
		t.Errorf("unexpected compact output: %s", compact)
	}

	pretty, err := MarshalJSON(payload{Name: "x"}, true)
	if err != nil {
		t.Fatalf("pretty marshal failed: %v", err)
	}
	if len(pretty) <= len(compact) {
		t.Error("expected pretty output to be longer than compact")
	}
}
