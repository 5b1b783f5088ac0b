package normalization

import "testing"

func TestFoldName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Intro to SQL", "intro to sql"},
		{"  INTRO TO SQL  ", "intro to sql"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := FoldName(tt.in); got != tt.want {
			t.Fatalf("FoldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseInputString(t *testing.T) {
	if got := ParseInputString(" Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("ParseInputString = %q", got)
	}
}
