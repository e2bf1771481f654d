package datmatch

import "fmt"

// Outcome is the terminal state of one scanned file.
type Outcome int

const (
	Unmatched Outcome = iota
	AlreadyCorrect
	Renamed
	AmbiguousNoAction
	RenameFailed
	ReadFailed
)

var outcomeNames = [...]string{
	Unmatched:         "unmatched",
	AlreadyCorrect:    "already-correct",
	Renamed:           "renamed",
	AmbiguousNoAction: "ambiguous",
	RenameFailed:      "rename-failed",
	ReadFailed:        "read-failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result describes what happened to one scanned file.
type Result struct {
	Dir     string
	Name    string
	Outcome Outcome
	// Target is the canonical name the file was (or in a dry run, would be)
	// renamed to.
	Target     string
	DryRun     bool
	Candidates []CatalogEntry
	Extracted  []string
	Err        error
}

// Stats are the counters of a run. Ambiguous files count as neither
// matched nor unmatched.
type Stats struct {
	Processed      int      `json:"processed" yaml:"processed"`
	Matched        int      `json:"matched" yaml:"matched"`
	Unmatched      int      `json:"unmatched" yaml:"unmatched"`
	Renamed        int      `json:"renamed" yaml:"renamed"`
	Planned        int      `json:"planned" yaml:"planned"`
	Ambiguous      int      `json:"ambiguous" yaml:"ambiguous"`
	ReadFailed     int      `json:"read_failed" yaml:"read_failed"`
	RenameFailed   int      `json:"rename_failed" yaml:"rename_failed"`
	Extracted      int      `json:"extracted" yaml:"extracted"`
	UnmatchedFiles []string `json:"unmatched_files" yaml:"unmatched_files"`
}

func (s *Stats) record(res Result) {
	s.Processed++
	switch res.Outcome {
	case Unmatched:
		s.Unmatched++
		s.UnmatchedFiles = append(s.UnmatchedFiles, res.Name)
	case AlreadyCorrect:
		s.Matched++
	case Renamed:
		s.Matched++
		if res.DryRun {
			s.Planned++
		} else {
			s.Renamed++
		}
	case RenameFailed:
		s.Matched++
		s.RenameFailed++
	case AmbiguousNoAction:
		s.Ambiguous++
	case ReadFailed:
		s.ReadFailed++
	}
	s.Extracted += len(res.Extracted)
}
