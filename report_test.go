package datmatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleStats() Stats {
	return Stats{
		Processed:      5,
		Matched:        2,
		Unmatched:      2,
		Renamed:        1,
		Ambiguous:      1,
		UnmatchedFiles: []string{"a.bin", "b.bin"},
	}
}

func TestWriteSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleStats(), FormatText))

	want := "\nUnmatched files:\na.bin\nb.bin\n" +
		"\nFile stats:\n" +
		"Processed: 5\n" +
		"Matched  : 2\n" +
		"Unmatched: 2\n" +
		"Renamed  : 1\n" +
		"Ambiguous: 1\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummary_TextNoUnmatched(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Stats{Processed: 1, Matched: 1}, ""))
	assert.Contains(t, buf.String(), "No unmatched files\n")
}

func TestWriteSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleStats(), FormatJSON))

	var got Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleStats(), got)

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, Stats{}, FormatJSON))
	assert.Contains(t, buf.String(), `"unmatched_files": []`)
}

func TestWriteSummary_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleStats(), FormatYAML))
	assert.Contains(t, buf.String(), "processed: 5\n")

	var got Stats
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleStats(), got)
}

func TestWriteSummary_UnknownFormat(t *testing.T) {
	assert.Error(t, WriteSummary(&bytes.Buffer{}, Stats{}, "xml"))
}

func TestWriteResult(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{
			name: "unmatched",
			res:  Result{Name: "x.bin", Outcome: Unmatched},
			want: "x.bin\n    No match found\n",
		},
		{
			name: "dry run",
			res: Result{
				Name:       "g1.bin",
				Outcome:    Renamed,
				DryRun:     true,
				Target:     "Game One (USA).bin",
				Candidates: []CatalogEntry{{CatalogName: "USA", RomName: "Game One (USA).bin"}},
			},
			want: "g1.bin\n    Game One (USA).bin [USA]\n    Would rename to: Game One (USA).bin\n",
		},
		{
			name: "renamed",
			res:  Result{Name: "g1.bin", Outcome: Renamed, Target: "G.bin"},
			want: "g1.bin\n    Renamed to: G.bin\n",
		},
		{
			name: "already correct",
			res:  Result{Name: "G.bin", Outcome: AlreadyCorrect, Candidates: []CatalogEntry{{CatalogName: "c", RomName: "G.bin"}}},
			want: "G.bin\n    G.bin [c]\n",
		},
		{
			name: "read failed",
			res:  Result{Name: "bad.bin", Outcome: ReadFailed, Err: errors.New("boom")},
			want: "bad.bin\n    Cannot read: boom\n",
		},
		{
			name: "extracted",
			res:  Result{Name: "p.zip", Outcome: AlreadyCorrect, Extracted: []string{"a.bin"}},
			want: "p.zip\n    Extracted to: a.bin\n",
		},
		{
			name: "extract failed",
			res: Result{
				Name:      "p.zip",
				Outcome:   Renamed,
				Target:    "P.zip",
				Extracted: []string{"a.bin"},
				Err:       errors.New("disk full"),
			},
			want: "p.zip\n    Renamed to: P.zip\n    Extracted to: a.bin\n    Extract failed: disk full\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteResult(&buf, tt.res))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ambiguous", AmbiguousNoAction.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())

	text, err := RenameFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rename-failed", string(text))
}
