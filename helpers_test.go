package datmatch

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func md5Of(data []byte) Digest {
	sum := md5.Sum(data)
	return Digest(strings.ToUpper(hex.EncodeToString(sum[:])))
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return data
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func rec(catalog, name, md5 string) Record {
	return Record{CatalogName: catalog, Name: name, MD5: md5}
}

func indexOf(records ...Record) *Index {
	idx := NewIndex(nil)
	idx.Add(slices.Values(records))
	return idx
}

// stubHasher returns fixed digests keyed by file base name; unknown names
// fail like an unreadable file.
type stubHasher map[string][]Digest

func (s stubHasher) Hash(path string) ([]Digest, error) {
	d, ok := s[filepath.Base(path)]
	if !ok {
		return nil, &FileReadError{Path: path, Err: os.ErrPermission}
	}
	return d, nil
}

func (s stubHasher) HashReader(io.Reader) ([]Digest, error) {
	return nil, errors.New("stub hasher cannot read streams")
}
