package datmatch

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/aweris/datmatch/internal/compression"
	"github.com/aweris/datmatch/internal/dat"
)

// DefaultCatalogPattern selects catalog documents in a catalog directory.
// Matching is case-insensitive; a pattern containing a slash or "**"
// descends into subdirectories.
const DefaultCatalogPattern = "*.{dat,xml,dat.gz,dat.zst}"

// CatalogLoader finds catalog documents and folds them into an Index.
type CatalogLoader struct {
	fs      afero.Fs
	pattern string
	log     logrus.FieldLogger
}

// LoadSummary describes one catalog directory load.
type LoadSummary struct {
	Documents int
	Entries   int
	// Errors holds one *CatalogParseError per skipped document.
	Errors []error
}

// NewCatalogLoader validates pattern and returns a loader reading from fs.
func NewCatalogLoader(fs afero.Fs, pattern string, log logrus.FieldLogger) (*CatalogLoader, error) {
	if pattern == "" {
		pattern = DefaultCatalogPattern
	}
	pattern = strings.ToLower(filepath.ToSlash(pattern))
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid catalog pattern %q", pattern)
	}
	if log == nil {
		log = discardLogger()
	}
	return &CatalogLoader{fs: fs, pattern: pattern, log: log}, nil
}

// Files returns the catalog documents under dir in lexical order.
func (l *CatalogLoader) Files(dir string) ([]string, error) {
	if dir == "" {
		return nil, ErrNoCatalogSource
	}
	dir = expandPath(dir)
	info, err := l.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %s: %w", dir, ErrNotADirectory)
	}

	recursive := strings.Contains(l.pattern, "/") || strings.Contains(l.pattern, "**")
	var files []string
	err = afero.Walk(l.fs, dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if p != dir && (!recursive || isHidden(fi.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.Mode().IsRegular() || isHidden(fi.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if ok, _ := doublestar.Match(l.pattern, strings.ToLower(filepath.ToSlash(rel))); ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk catalog dir: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// LoadDir loads every catalog document under dir into idx. Documents that
// cannot be parsed are skipped and reported in the summary; only an
// unreadable dir is an error.
func (l *CatalogLoader) LoadDir(dir string, idx *Index) (LoadSummary, error) {
	var sum LoadSummary
	files, err := l.Files(dir)
	if err != nil {
		return sum, err
	}
	for _, p := range files {
		l.log.WithField("path", p).Debug("reading catalog")
		records, err := l.LoadFile(p)
		if err != nil {
			sum.Errors = append(sum.Errors, err)
			l.log.WithError(err).Warn("skipping catalog")
			continue
		}
		sum.Documents++
		sum.Entries += idx.Add(slices.Values(records))
	}
	return sum, nil
}

// LoadFile decodes one catalog document. The whole document is decoded
// before any record is returned, so a malformed file contributes nothing.
func (l *CatalogLoader) LoadFile(p string) ([]Record, error) {
	f, err := l.fs.Open(p)
	if err != nil {
		return nil, &CatalogParseError{Path: p, Err: err}
	}
	defer f.Close()

	codec, base := compression.Detect(filepath.Base(p))
	r, err := compression.NewReader(codec, f)
	if err != nil {
		return nil, &CatalogParseError{Path: p, Err: err}
	}
	defer r.Close()

	df, err := dat.Decode(r)
	if err != nil {
		return nil, &CatalogParseError{Path: p, Err: err}
	}
	return slices.Collect(records(df.Entries(df.Name(trimExt(base))))), nil
}

func records(entries iter.Seq[dat.Entry]) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for e := range entries {
			rec := Record{
				CatalogName: e.Catalog,
				Name:        e.Name,
				Size:        e.Size,
				HasSize:     e.HasSize,
				CRC:         e.CRC,
				MD5:         e.MD5,
				SHA1:        e.SHA1,
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// LoadCatalogDir builds an index from the catalog documents under dir.
func LoadCatalogDir(afs afero.Fs, dir, pattern string, log logrus.FieldLogger) (*Index, LoadSummary, error) {
	loader, err := NewCatalogLoader(afs, pattern, log)
	if err != nil {
		return nil, LoadSummary{}, err
	}
	idx := NewIndex(log)
	sum, err := loader.LoadDir(dir, idx)
	if err != nil {
		return nil, sum, err
	}
	return idx, sum, nil
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
