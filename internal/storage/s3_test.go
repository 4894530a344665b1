package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyPreservesExtension(t *testing.T) {
	s := &ImageStore{keyPrefix: "blog/"}

	key := s.NewKey("Cover Photo.PNG")
	assert.True(t, strings.HasPrefix(key, "blog/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other := s.NewKey("Cover Photo.PNG")
	assert.NotEqual(t, key, other)
}

func TestNewKeyWithoutExtension(t *testing.T) {
	s := &ImageStore{keyPrefix: "blog/"}
	key := s.NewKey("cover")
	assert.NotContains(t, key, ".")
}

func TestURL(t *testing.T) {
	s := &ImageStore{publicURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/blog/2026/01/x.png", s.URL("blog/2026/01/x.png"))
}
