package shortid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id, err := New(5)
	if err != nil {
		t.Fatalf("New(5) error = %v", err)
	}
	if len(id) != 5 {
		t.Errorf("id length = %d, want 5", len(id))
	}
}

func TestNewDefaultsLength(t *testing.T) {
	id, err := New(0)
	if err != nil {
		t.Fatalf("New(0) error = %v", err)
	}
	if len(id) != DefaultLength {
		t.Errorf("id length = %d, want %d", len(id), DefaultLength)
	}
}

func TestNewAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	for i := 0; i < 100; i++ {
		id := MustNew(DefaultLength)
		for _, c := range id {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("id %q contains character %q outside the nanoid alphabet", id, c)
			}
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := MustNew(DefaultLength)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = struct{}{}
	}
}
