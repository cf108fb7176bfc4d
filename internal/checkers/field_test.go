package checkers

import (
	"errors"
	"testing"
)

func TestFieldRoundTrip(t *testing.T) {
	for row := 0; row < DefaultSize; row++ {
		for col := 0; col < DefaultSize; col++ {
			sq := Square{Row: row, Col: col}
			got, err := ParseField(sq.Field(), DefaultSize)
			if err != nil {
				t.Fatalf("ParseField(%q): %v", sq.Field(), err)
			}
			if got != sq {
				t.Fatalf("round trip %v: got %v", sq, got)
			}
		}
	}
}

func TestParseField(t *testing.T) {
	cases := []struct {
		in   string
		want Square
	}{
		{"A1", Square{0, 0}},
		{"c4", Square{Row: 3, Col: 2}},
		{" H8 ", Square{Row: 7, Col: 7}},
	}
	for _, tc := range cases {
		got, err := ParseField(tc.in, DefaultSize)
		if err != nil || got != tc.want {
			t.Errorf("ParseField(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []string{"", "A", "Z9", "I1", "A0", "A9", "AA", "A1x", "-1", "B+2"} {
		if _, err := ParseField(bad, DefaultSize); !errors.Is(err, ErrMalformedField) {
			t.Errorf("ParseField(%q): want ErrMalformedField, got %v", bad, err)
		}
	}
}

func TestFormatNotation(t *testing.T) {
	if got := FormatNotation(Square{2, 2}, Square{3, 3}, false); got != "C3-D4" {
		t.Fatalf("slide notation: %q", got)
	}
	if got := FormatNotation(Square{2, 2}, Square{4, 4}, true); got != "C3:E5" {
		t.Fatalf("capture notation: %q", got)
	}
}
