package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	// SHA256 of empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestShortHex(t *testing.T) {
	fullHash := SHA256Hex("192.168.1.1")

	tests := []struct {
		name      string
		input     string
		prefixLen int
		want      string
	}{
		{"4 char prefix", "192.168.1.1", 4, fullHash[:4]},
		{"12 char prefix", "192.168.1.1", 12, fullHash[:12]},
		{"full hash if prefix too long", "192.168.1.1", 100, fullHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortHex(tt.input, tt.prefixLen)
			if got != tt.want {
				t.Errorf("ShortHex(%q, %d) = %s, want %s", tt.input, tt.prefixLen, got, tt.want)
			}
		})
	}
}

func TestShortHex_Deterministic(t *testing.T) {
	a := ShortHex("session-token-abc", 12)
	b := ShortHex("session-token-abc", 12)
	if a != b {
		t.Error("ShortHex should be deterministic")
	}

	other := ShortHex("session-token-xyz", 12)
	if a == other {
		t.Error("different inputs should produce different prefixes")
	}
}
