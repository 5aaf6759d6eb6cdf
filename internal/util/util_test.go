// internal/util/util_test.go
package util

import (
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 5, want: "hello…"},
		{name: "multibyte truncation", in: "こんにちは世界", max: 4, want: "こんにち…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestFirstLines(t *testing.T) {
	t.Parallel()

	text := "1\n2\n3\n4\n5\n6\n7"
	got, dropped := FirstLines(text, 5)
	if got != "1\n2\n3\n4\n5" || !dropped {
		t.Fatalf("FirstLines = %q, %v", got, dropped)
	}

	got, dropped = FirstLines("1\n2\n3\n4\n5", 5)
	if got != "1\n2\n3\n4\n5" || dropped {
		t.Fatalf("expected five lines untouched, got %q, %v", got, dropped)
	}

	got, dropped = FirstLines("", 5)
	if got != "" || dropped {
		t.Fatalf("expected empty text untouched, got %q, %v", got, dropped)
	}
}

func TestSingleLine(t *testing.T) {
	t.Parallel()

	if got := SingleLine("  a\n b\t\tc "); got != "a b c" {
		t.Fatalf("SingleLine = %q", got)
	}
}

func TestWrapToWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "short line", width: 20, want: "short line"},
		{name: "wraps words", in: "one two three", width: 7, want: "one two\nthree"},
		{name: "splits long word", in: "abcdefghij", width: 4, want: "abcd\nefgh\nij"},
		{name: "keeps blank lines", in: "a\n\nb", width: 5, want: "a\n\nb"},
		{name: "zero width", in: "unchanged text", width: 0, want: "unchanged text"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapToWidth(tt.in, tt.width); got != tt.want {
				t.Fatalf("WrapToWidth(%q,%d)=%q want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
