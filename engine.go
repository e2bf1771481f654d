package datmatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

// Engine matches the files of directories against a catalog and applies
// the rename policy. An Engine is not safe for concurrent use; its
// statistics accumulate across ProcessDir calls.
type Engine struct {
	catalog Catalog
	opts    *Options
	fs      afero.Fs
	hasher  ContentHasher
	scanner *Scanner
	log     logrus.FieldLogger
	stats   Stats
}

// New creates an engine looking up digests in catalog.
func New(catalog Catalog, opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	log := options.Logger
	if log == nil {
		log = discardLogger()
	}

	hasher := options.Hasher
	if hasher == nil {
		var rules []HeaderRule
		if options.HeaderSkip {
			rules = append(rules, INESHeader)
		}
		hasher = NewHasher(options.Fs, options.ChunkSize, rules...)
	}

	return &Engine{
		catalog: catalog,
		opts:    options,
		fs:      options.Fs,
		hasher:  hasher,
		scanner: NewScanner(options.Fs),
		log:     log,
	}
}

// Stats returns a copy of the counters accumulated so far.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.UnmatchedFiles = slices.Clone(e.stats.UnmatchedFiles)
	return s
}

// DryRun reports whether the engine leaves the filesystem untouched.
func (e *Engine) DryRun() bool { return !e.opts.Rename }

// analysis is the read-only part of processing one file, computed in parallel.
type analysis struct {
	entries []CatalogEntry
	archive *archiveAnalysis
	err     error
}

// ProcessDir matches every candidate file in dir and returns the per-file
// results in scan order. A *DirectoryAccessError aborts only this directory.
func (e *Engine) ProcessDir(ctx context.Context, dir string) ([]Result, error) {
	names, err := e.scanner.ListCandidates(dir)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"dir": dir, "files": len(names)}).Debug("scanned directory")

	analyses, err := e.analyzeAll(ctx, dir, names)
	if err != nil {
		return nil, err
	}

	// written maps the names replaced during this pass to the analysis of
	// their new content.
	written := make(map[string]analysis)
	results := make([]Result, 0, len(names))
	for i, name := range names {
		a := analyses[i]
		if w, ok := written[name]; ok {
			a = e.reanalyze(dir, name, w)
		}
		res := e.apply(dir, name, a)
		if res.Outcome == Renamed {
			written[res.Target] = a
		}
		for _, x := range res.Extracted {
			written[x] = analysis{}
		}
		e.stats.record(res)
		results = append(results, res)
	}
	return results, nil
}

// reanalyze returns the analysis of a candidate whose content was replaced
// earlier in the pass. A dry run never touches the file, so the planned
// content w stands in for it.
func (e *Engine) reanalyze(dir, name string, w analysis) analysis {
	e.log.WithField("file", filepath.Join(dir, name)).Debug("content replaced earlier in this pass")
	if e.DryRun() {
		return w
	}
	return e.analyze(filepath.Join(dir, name))
}

func (e *Engine) analyzeAll(ctx context.Context, dir string, names []string) ([]analysis, error) {
	type indexed struct {
		i int
		a analysis
	}

	p := pool.NewWithResults[indexed]().
		WithContext(ctx).
		WithMaxGoroutines(e.opts.Concurrency)
	for i, name := range names {
		p.Go(func(ctx context.Context) (indexed, error) {
			if err := ctx.Err(); err != nil {
				return indexed{}, err
			}
			return indexed{i: i, a: e.analyze(filepath.Join(dir, name))}, nil
		})
	}

	res, err := p.Wait()
	if err != nil {
		return nil, err
	}
	out := make([]analysis, len(names))
	for _, r := range res {
		out[r.i] = r.a
	}
	return out, nil
}

func (e *Engine) analyze(path string) analysis {
	if e.opts.Archives && isArchive(path) {
		return e.analyzeArchive(path)
	}
	digests, err := e.hasher.Hash(path)
	if err != nil {
		return analysis{err: err}
	}
	return analysis{entries: e.lookup(digests)}
}

// lookup returns the entries of the first digest known to the catalog.
func (e *Engine) lookup(digests []Digest) []CatalogEntry {
	for _, d := range digests {
		if entries := e.catalog.Lookup(d); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func (e *Engine) apply(dir, name string, a analysis) Result {
	res := Result{Dir: dir, Name: name, DryRun: !e.opts.Rename}
	log := e.log.WithField("file", filepath.Join(dir, name))

	if a.err != nil {
		res.Outcome = ReadFailed
		res.Err = a.err
		log.WithError(a.err).Warn("cannot hash file")
		return res
	}

	res.Candidates = a.entries
	if len(a.entries) == 0 {
		res.Outcome = Unmatched
		log.Debug("no match found")
		return res
	}

	current := name
	names := RomNames(a.entries)
	if a.archive != nil {
		current = archiveName(name)
		names = archiveNames(a.entries)
		res.Extracted, res.Err = e.extract(dir, name, a.archive)
	}

	switch {
	case e.containsName(names, current):
		res.Outcome = AlreadyCorrect
		log.Debug("no need to rename")
	case len(names) == 1:
		res.Target = names[0]
		res.Outcome = Renamed
		if !e.opts.Rename {
			log.WithField("target", res.Target).Info("would rename")
			break
		}
		if err := e.rename(dir, name, res.Target); err != nil {
			res.Outcome = RenameFailed
			res.Err = errors.Join(res.Err, err)
			log.WithError(err).Warn("rename failed")
			break
		}
		log.WithField("target", res.Target).Info("renamed")
	default:
		res.Outcome = AmbiguousNoAction
		log.WithField("candidates", len(names)).Info("multiple matching rom names, not renaming")
	}
	return res
}

func (e *Engine) containsName(names []string, name string) bool {
	if !e.opts.IgnoreCase {
		return slices.Contains(names, name)
	}
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.EqualFold(n, name)
	})
}

// rename moves dir/from to dir/to, replacing an existing destination.
func (e *Engine) rename(dir, from, to string) error {
	src := filepath.Join(dir, from)
	dst := filepath.Join(dir, to)
	if !filepath.IsLocal(to) {
		return &RenameError{From: src, To: dst, Err: fmt.Errorf("canonical name %q leaves the directory", to)}
	}
	if err := e.fs.Rename(src, dst); err != nil {
		return &RenameError{From: src, To: dst, Err: err}
	}
	return nil
}
