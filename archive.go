package datmatch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
)

const archiveExt = ".zip"

type archiveMember struct {
	Name    string
	Entries []CatalogEntry
}

type archiveAnalysis struct {
	members []archiveMember
}

func isArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), archiveExt)
}

// trimExt strips the last extension of name.
func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// archiveName normalises a zip file name for comparison with candidates.
func archiveName(name string) string {
	return trimExt(name) + archiveExt
}

// archiveNames returns the distinct zip names derived from entries.
func archiveNames(entries []CatalogEntry) []string {
	var names []string
	for _, rom := range RomNames(entries) {
		n := archiveName(path.Base(filepath.ToSlash(rom)))
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

func (e *Engine) openArchive(p string) (*zip.Reader, io.Closer, error) {
	f, err := e.fs.Open(p)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return zr, f, nil
}

// archiveFiles returns the regular, non-hidden members of zr sorted like
// directory candidates.
func archiveFiles(zr *zip.Reader) []*zip.File {
	byName := make(map[string]*zip.File)
	var names []string
	for _, zf := range zr.File {
		if !zf.Mode().IsRegular() || isHidden(path.Base(zf.Name)) {
			continue
		}
		if _, dup := byName[zf.Name]; dup {
			continue
		}
		byName[zf.Name] = zf
		names = append(names, zf.Name)
	}
	sortFold(names)
	files := make([]*zip.File, 0, len(names))
	for _, n := range names {
		files = append(files, byName[n])
	}
	return files
}

// analyzeArchive hashes every member of the zip at p. The archive matches
// with the union of its members' entries.
func (e *Engine) analyzeArchive(p string) analysis {
	zr, closer, err := e.openArchive(p)
	if err != nil {
		return analysis{err: &FileReadError{Path: p, Err: err}}
	}
	defer closer.Close()

	aa := &archiveAnalysis{}
	var entries []CatalogEntry
	for _, zf := range archiveFiles(zr) {
		digests, err := e.hashMember(zf)
		if err != nil {
			return analysis{err: &FileReadError{Path: p + "!" + zf.Name, Err: err}}
		}
		matched := e.lookup(digests)
		if len(matched) == 0 {
			continue
		}
		aa.members = append(aa.members, archiveMember{Name: zf.Name, Entries: matched})
		for _, entry := range matched {
			if !slices.Contains(entries, entry) {
				entries = append(entries, entry)
			}
		}
	}
	return analysis{entries: entries, archive: aa}
}

func (e *Engine) hashMember(zf *zip.File) ([]Digest, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return e.hasher.HashReader(rc)
}

// extractName picks the name a matched member is extracted under: its
// canonical name when unambiguous, its own name when that is one of the
// candidates, nothing otherwise.
func (e *Engine) extractName(m archiveMember) (string, bool) {
	names := RomNames(m.Entries)
	own := path.Base(m.Name)
	if e.containsName(names, own) {
		return own, true
	}
	if len(names) == 1 {
		return names[0], true
	}
	return "", false
}

// extract copies the matched members of dir/name next to the archive.
// Nothing is written in a dry run.
func (e *Engine) extract(dir, name string, aa *archiveAnalysis) ([]string, error) {
	if !e.opts.Extract || !e.opts.Rename || len(aa.members) == 0 {
		return nil, nil
	}
	p := filepath.Join(dir, name)
	zr, closer, err := e.openArchive(p)
	if err != nil {
		return nil, &FileReadError{Path: p, Err: err}
	}
	defer closer.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		members[zf.Name] = zf
	}

	var extracted []string
	var errs []error
	for _, m := range aa.members {
		target, ok := e.extractName(m)
		if !ok || !filepath.IsLocal(target) || strings.EqualFold(target, name) {
			continue
		}
		zf, ok := members[m.Name]
		if !ok {
			continue
		}
		if err := e.extractMember(zf, filepath.Join(dir, target)); err != nil {
			errs = append(errs, err)
			e.log.WithError(err).WithField("member", m.Name).Warn("extract failed")
			continue
		}
		e.log.WithFields(logrus.Fields{"archive": p, "target": target}).Info("extracted")
		extracted = append(extracted, target)
	}
	return extracted, errors.Join(errs...)
}

func (e *Engine) extractMember(zf *zip.File, dst string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", zf.Name, err)
	}
	defer rc.Close()

	out, err := e.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}
