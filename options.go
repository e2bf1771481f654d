package datmatch

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultConcurrency is the number of files hashed in parallel.
const DefaultConcurrency = 4

// Options configures an Engine.
type Options struct {
	Fs          afero.Fs
	Logger      logrus.FieldLogger
	Hasher      ContentHasher
	Rename      bool
	Extract     bool
	Archives    bool
	IgnoreCase  bool
	HeaderSkip  bool
	Concurrency int
	ChunkSize   int
}

// Option is a functional option for configuring New.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Fs:          afero.NewOsFs(),
		Archives:    true,
		HeaderSkip:  true,
		Concurrency: DefaultConcurrency,
		ChunkSize:   DefaultChunkSize,
	}
}

// WithFs sets the filesystem files are scanned, hashed and renamed on.
func WithFs(fs afero.Fs) Option {
	return func(o *Options) { o.Fs = fs }
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithHasher replaces the MD5 hasher built from the other options.
func WithHasher(h ContentHasher) Option {
	return func(o *Options) { o.Hasher = h }
}

// WithRename enables renaming. Without it the engine runs dry.
func WithRename(enabled bool) Option {
	return func(o *Options) { o.Rename = enabled }
}

// WithExtract enables extracting matched archive members next to the archive.
func WithExtract(enabled bool) Option {
	return func(o *Options) { o.Extract = enabled }
}

// WithArchives toggles matching zip files by their members.
func WithArchives(enabled bool) Option {
	return func(o *Options) { o.Archives = enabled }
}

// WithIgnoreCase compares file names with canonical names case-insensitively.
func WithIgnoreCase(enabled bool) Option {
	return func(o *Options) { o.IgnoreCase = enabled }
}

// WithHeaderSkip toggles the additional headerless digest for iNES dumps.
func WithHeaderSkip(enabled bool) Option {
	return func(o *Options) { o.HeaderSkip = enabled }
}

// WithConcurrency sets the number of files hashed in parallel.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithChunkSize sets the hashing read buffer size.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ChunkSize = n
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
