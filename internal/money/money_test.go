package money

import "testing"

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"12.50", 1250},
		{"0.05", 5},
		{"100", 10000},
		{"7.5", 750},
		{"-3.20", -320},
		{"+1.00", 100},
		{".99", 99},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMinorRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "1.2.3", "1,50", "10.999"} {
		if _, err := ParseMinor(input); err == nil {
			t.Fatalf("ParseMinor(%q): expected error", input)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(1250); got != "12.50" {
		t.Fatalf("expected 12.50, got %s", got)
	}
	if got := FormatMinor(-5); got != "-0.05" {
		t.Fatalf("expected -0.05, got %s", got)
	}
	if got := FormatMinor(0); got != "0.00" {
		t.Fatalf("expected 0.00, got %s", got)
	}
}
