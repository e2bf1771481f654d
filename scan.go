package datmatch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
)

// Scanner lists the candidate files of a directory.
type Scanner struct {
	fs afero.Fs
}

func NewScanner(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// ListCandidates returns the regular, non-hidden files directly in dir,
// sorted case-insensitively by name.
func (s *Scanner) ListCandidates(dir string) ([]string, error) {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return nil, &DirectoryAccessError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &DirectoryAccessError{Dir: dir, Err: ErrNotADirectory}
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, &DirectoryAccessError{Dir: dir, Err: fmt.Errorf("read dir: %w", err)}
	}

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if !fi.Mode().IsRegular() || isHidden(fi.Name()) {
			continue
		}
		names = append(names, fi.Name())
	}
	sortFold(names)
	return names, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// sortFold sorts names by their case-folded form, then by bytes.
func sortFold(names []string) {
	fold := cases.Fold()
	keys := make(map[string]string, len(names))
	for _, n := range names {
		keys[n] = fold.String(n)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(keys[a], keys[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
