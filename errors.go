package datmatch

import (
	"errors"
	"fmt"
)

var (
	ErrNoCatalogSource = errors.New("datmatch: no catalog source configured")
	ErrNotADirectory   = errors.New("datmatch: not a directory")
	ErrInvalidDigest   = errors.New("datmatch: invalid digest")
)

// CatalogParseError reports a catalog document that could not be read or
// decoded. Loading continues with the remaining documents.
type CatalogParseError struct {
	Path string
	Err  error
}

func (e *CatalogParseError) Error() string {
	return fmt.Sprintf("parse catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogParseError) Unwrap() error { return e.Err }

// DirectoryAccessError reports a target directory that cannot be listed.
type DirectoryAccessError struct {
	Dir string
	Err error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Dir, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error { return e.Err }

// FileReadError reports a candidate file that could not be hashed.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// RenameError reports a failed move of a matched file to its canonical name.
type RenameError struct {
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }
