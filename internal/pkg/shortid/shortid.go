package shortid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the prefix length used for storage keys. Five characters
// of the nanoid alphabet give enough collision resistance for a demo store;
// uniqueness is not checked against the bucket before writing.
const DefaultLength = 5

// New generates a URL-safe random identifier of the given length.
func New(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	return gonanoid.New(length)
}

// MustNew is like New but panics on failure. The underlying generator only
// fails when the OS entropy source does.
func MustNew(length int) string {
	id, err := New(length)
	if err != nil {
		panic("shortid: " + err.Error())
	}
	return id
}
