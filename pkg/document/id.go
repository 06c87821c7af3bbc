package document

import (
	"errors"
	"fmt"
)

// ID identifies one logical document. It doubles as the asset key, so it is
// restricted to a single safe path segment.
type ID string

// MaxIDLength bounds an ID to a sane filename length
const MaxIDLength = 255

// ErrInvalidID is wrapped by every ValidateID failure
var ErrInvalidID = errors.New("invalid document id")

// ValidateID reports whether id is usable as an asset key: non-empty, at most
// MaxIDLength bytes, only [A-Za-z0-9._-], and not "." or "..". Separators and
// parent references therefore never reach a storage backend.
func ValidateID(id ID) error {
	s := string(id)
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case len(s) > MaxIDLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidID, MaxIDLength)
	case s == "." || s == "..":
		return fmt.Errorf("%w: %q is a directory reference", ErrInvalidID, s)
	}
	for i := 0; i < len(s); i++ {
		if !idByte(s[i]) {
			return fmt.Errorf("%w: %q contains disallowed character %q", ErrInvalidID, s, s[i])
		}
	}
	return nil
}

func idByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}
