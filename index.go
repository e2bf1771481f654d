package datmatch

import (
	"iter"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// Record is a raw catalog record as handed over by a catalog parser.
type Record struct {
	CatalogName string
	Name        string
	Size        int64
	HasSize     bool
	CRC         string
	MD5         string
	SHA1        string
}

// CatalogEntry is a validated catalog record. Entries are compared by value.
type CatalogEntry struct {
	CatalogName string
	RomName     string
	Size        int64
	HasSize     bool
	Hash        Digest
}

// Index maps content digests to the distinct catalog entries sharing them.
//
// An Index is filled with Add and is read-only afterwards; Lookup may then be
// called from any number of goroutines without locking.
type Index struct {
	buckets map[Digest][]CatalogEntry
	entries int
	log     logrus.FieldLogger
}

// NewIndex returns an empty index. A nil logger discards debug output.
func NewIndex(log logrus.FieldLogger) *Index {
	if log == nil {
		log = discardLogger()
	}
	return &Index{buckets: make(map[Digest][]CatalogEntry), log: log}
}

// Add folds records into the index and returns the number of entries added.
// Records without a valid MD5 are dropped; catalogs routinely omit it.
func (i *Index) Add(records iter.Seq[Record]) int {
	added := 0
	for rec := range records {
		if rec.MD5 == "" {
			i.log.WithField("rom", rec.Name).Debug("md5 is missing, skipping")
			continue
		}
		digest, err := ParseDigest(rec.MD5)
		if err != nil {
			i.log.WithField("rom", rec.Name).Debug("md5 has invalid format, skipping")
			continue
		}
		entry := CatalogEntry{
			CatalogName: rec.CatalogName,
			RomName:     rec.Name,
			Size:        rec.Size,
			HasSize:     rec.HasSize,
			Hash:        digest,
		}
		bucket := i.buckets[digest]
		if slices.Contains(bucket, entry) {
			continue
		}
		i.buckets[digest] = append(bucket, entry)
		i.entries++
		added++
	}
	return added
}

// Lookup returns the entries for d in insertion order, or nil.
func (i *Index) Lookup(d Digest) []CatalogEntry {
	return slices.Clone(i.buckets[d])
}

// Len returns the number of distinct digests.
func (i *Index) Len() int { return len(i.buckets) }

// Size returns the number of distinct entries.
func (i *Index) Size() int { return i.entries }

// Entries iterates over all buckets in digest order.
func (i *Index) Entries() iter.Seq2[Digest, []CatalogEntry] {
	return func(yield func(Digest, []CatalogEntry) bool) {
		keys := make([]Digest, 0, len(i.buckets))
		for k := range i.buckets {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, slices.Clone(i.buckets[k])) {
				return
			}
		}
	}
}

// List iterates over the buckets whose digest starts with prefix.
func (i *Index) List(prefix string) iter.Seq2[Digest, []CatalogEntry] {
	prefix = strings.ToUpper(prefix)
	return func(yield func(Digest, []CatalogEntry) bool) {
		for k, v := range i.Entries() {
			if strings.HasPrefix(string(k), prefix) {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// RomNames returns the distinct rom names of entries in first-seen order.
func RomNames(entries []CatalogEntry) []string {
	var names []string
	for _, e := range entries {
		if !slices.Contains(names, e.RomName) {
			names = append(names, e.RomName)
		}
	}
	return names
}
