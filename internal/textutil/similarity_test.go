package textutil_test

import (
	"testing"

	"inkwit/internal/textutil"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "안정", "안정", 1},
		{"both empty", "", "", 1},
		{"one empty", "안정", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"partial overlap", "abcd", "abef", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := textutil.Ratio(tc.a, tc.b)
			if got != tc.want {
				t.Fatalf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestRatioIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"안정감", "안정"},
		{"따뜻한 집", "따뜻"},
		{"abcdef", "abcxan"},
	}
	for _, pair := range pairs {
		forward := textutil.Ratio(pair[0], pair[1])
		backward := textutil.Ratio(pair[1], pair[0])
		if forward != backward {
			t.Fatalf("Ratio(%q, %q) = %v but reversed = %v", pair[0], pair[1], forward, backward)
		}
		if forward < 0 || forward > 1 {
			t.Fatalf("Ratio(%q, %q) = %v outside [0, 1]", pair[0], pair[1], forward)
		}
	}
}

func TestNormalizeComposesHangul(t *testing.T) {
	// Decomposed jamo sequence for 안정.
	decomposed := "안정"
	if got := textutil.Normalize(decomposed); got != "안정" {
		t.Fatalf("Normalize(%q) = %q, want %q", decomposed, got, "안정")
	}
	if got := textutil.Normalize("  안정  "); got != "안정" {
		t.Fatalf("expected whitespace trimmed, got %q", got)
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma separated", "안정, 따뜻, 안정", []string{"안정", "따뜻"}},
		{"slash separated", "불안/강박", []string{"불안", "강박"}},
		{"punctuation stripped", "(안정) '따뜻'", []string{"안정", "따뜻"}},
		{"empty", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := textutil.Tokenize(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.input, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Tokenize(%q) = %v, want %v", tc.input, got, tc.want)
				}
			}
		})
	}
}
