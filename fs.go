package datmatch

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Digest is an upper-case hex MD5 content fingerprint (e.g., "D41D8CD98F00B204E9800998ECF8427E").
type Digest string

var digestPattern = regexp.MustCompile(`^[A-F0-9]{32}$`)

// ParseDigest upper-cases s and checks that it is exactly a 32 digit hex
// string; surrounding whitespace is rejected.
func ParseDigest(s string) (Digest, error) {
	up := strings.ToUpper(s)
	if !digestPattern.MatchString(up) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDigest, s)
	}
	return Digest(up), nil
}

func (d Digest) String() string { return string(d) }

// Catalog resolves content digests to catalog entries.
type Catalog interface {
	Lookup(d Digest) []CatalogEntry
}

// ContentHasher computes the fingerprints of a file. The first digest
// covers the whole content; further digests are alternative fingerprints
// (e.g., content without a copier header) tried in order.
type ContentHasher interface {
	Hash(path string) ([]Digest, error)
	HashReader(r io.Reader) ([]Digest, error)
}
