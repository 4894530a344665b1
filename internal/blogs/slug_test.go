package blogs

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.25 Released!", "go-1-25-released"},
		{"  spaced   out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"CAPS And Symbols #$%", "caps-and-symbols"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugWithSuffix(t *testing.T) {
	a := slugWithSuffix("my-post")
	b := slugWithSuffix("my-post")
	if !strings.HasPrefix(a, "my-post-") {
		t.Errorf("suffix slug %q missing base", a)
	}
	if a == b {
		t.Error("two suffixed slugs collided")
	}
}
