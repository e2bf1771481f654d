package datmatch

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// DefaultChunkSize is the read buffer used while hashing.
const DefaultChunkSize = 64 * 1024

// HeaderRule describes a copier header prepended to the payload that
// catalogs list. When Magic matches, the Length leading bytes are skipped
// for the headerless digest.
type HeaderRule struct {
	Name   string
	Magic  []byte
	Length int
}

// INESHeader is the 16 byte iNES header found on NES dumps.
var INESHeader = HeaderRule{Name: "iNES", Magic: []byte{0x4E, 0x45, 0x53, 0x1A}, Length: 16}

// Hasher streams files through MD5.
type Hasher struct {
	fs        afero.Fs
	chunkSize int
	headers   []HeaderRule
}

// NewHasher returns a hasher reading from fs. Header rules enable the
// additional headerless digest.
func NewHasher(fs afero.Fs, chunkSize int, headers ...HeaderRule) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{fs: fs, chunkSize: chunkSize, headers: headers}
}

// Hash returns the digests of the file at path.
func (h *Hasher) Hash(path string) ([]Digest, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	digests, err := h.HashReader(f)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return digests, nil
}

// HashReader returns the digests of everything read from r.
func (h *Hasher) HashReader(r io.Reader) ([]Digest, error) {
	maxHeader := 0
	for _, rule := range h.headers {
		maxHeader = max(maxHeader, rule.Length, len(rule.Magic))
	}
	br := bufio.NewReaderSize(r, max(h.chunkSize, maxHeader))

	full := md5.New()
	var headerless hash.Hash
	w := io.Writer(full)

	if maxHeader > 0 {
		head, err := br.Peek(maxHeader)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
		if rule, ok := detectHeader(head, h.headers); ok {
			full.Write(head[:rule.Length])
			if _, err := br.Discard(rule.Length); err != nil {
				return nil, err
			}
			headerless = md5.New()
			w = io.MultiWriter(full, headerless)
		}
	}

	if _, err := io.Copy(w, br); err != nil {
		return nil, err
	}

	digests := []Digest{sumDigest(full)}
	if headerless != nil {
		digests = append(digests, sumDigest(headerless))
	}
	return digests, nil
}

func detectHeader(head []byte, rules []HeaderRule) (HeaderRule, bool) {
	for _, rule := range rules {
		if len(head) >= rule.Length && bytes.HasPrefix(head, rule.Magic) {
			return rule, true
		}
	}
	return HeaderRule{}, false
}

func sumDigest(h hash.Hash) Digest {
	return Digest(strings.ToUpper(hex.EncodeToString(h.Sum(nil))))
}
