package resettoken

import (
	"encoding/hex"
	"testing"
)

func TestNewTokenEntropyAndEncoding(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken error: %v", err)
		}
		if len(tok) != tokenBytes*2 {
			t.Fatalf("token length = %d, want %d", len(tok), tokenBytes*2)
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("token is not hex: %v", err)
		}
		if seen[tok] {
			t.Fatal("duplicate token generated")
		}
		seen[tok] = true
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("abc123")
	b := HashToken("abc123")
	if a != b {
		t.Errorf("hash not deterministic: %q != %q", a, b)
	}
	if a == "abc123" {
		t.Error("hash equals input")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
	if HashToken("abc124") == a {
		t.Error("distinct inputs collided")
	}
}
