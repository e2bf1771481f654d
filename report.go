package datmatch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteResult writes the human-readable lines for one file: its name, every
// candidate with its catalog, and the action taken.
func WriteResult(w io.Writer, res Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", res.Name)
	for _, c := range res.Candidates {
		fmt.Fprintf(&b, "    %s [%s]\n", c.RomName, c.CatalogName)
	}
	switch res.Outcome {
	case Unmatched:
		b.WriteString("    No match found\n")
	case Renamed:
		if res.DryRun {
			fmt.Fprintf(&b, "    Would rename to: %s\n", res.Target)
		} else {
			fmt.Fprintf(&b, "    Renamed to: %s\n", res.Target)
		}
	case RenameFailed:
		fmt.Fprintf(&b, "    Rename to %s failed: %v\n", res.Target, res.Err)
	case AmbiguousNoAction:
		b.WriteString("    Multiple matching rom names. Not renaming.\n")
	case ReadFailed:
		fmt.Fprintf(&b, "    Cannot read: %v\n", res.Err)
	}
	for _, x := range res.Extracted {
		fmt.Fprintf(&b, "    Extracted to: %s\n", x)
	}
	if res.Err != nil && res.Outcome != RenameFailed && res.Outcome != ReadFailed {
		fmt.Fprintf(&b, "    Extract failed: %v\n", res.Err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary writes the unmatched files and the counters in format.
func WriteSummary(w io.Writer, s Stats, format string) error {
	if s.UnmatchedFiles == nil {
		s.UnmatchedFiles = []string{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, s)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, s Stats) error {
	var b strings.Builder
	b.WriteString("\nUnmatched files:\n")
	if len(s.UnmatchedFiles) == 0 {
		b.WriteString("No unmatched files\n")
	}
	for _, name := range s.UnmatchedFiles {
		fmt.Fprintf(&b, "%s\n", name)
	}

	b.WriteString("\nFile stats:\n")
	fmt.Fprintf(&b, "Processed: %d\n", s.Processed)
	fmt.Fprintf(&b, "Matched  : %d\n", s.Matched)
	fmt.Fprintf(&b, "Unmatched: %d\n", s.Unmatched)
	fmt.Fprintf(&b, "Renamed  : %d\n", s.Renamed)
	if s.Planned > 0 {
		fmt.Fprintf(&b, "Planned  : %d\n", s.Planned)
	}
	if s.Ambiguous > 0 {
		fmt.Fprintf(&b, "Ambiguous: %d\n", s.Ambiguous)
	}
	if s.ReadFailed+s.RenameFailed > 0 {
		fmt.Fprintf(&b, "Errors   : %d\n", s.ReadFailed+s.RenameFailed)
	}
	if s.Extracted > 0 {
		fmt.Fprintf(&b, "Extracted: %d\n", s.Extracted)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
