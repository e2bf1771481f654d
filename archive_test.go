package datmatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	name string
	data []byte
}

func zipOf(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write(m.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

var (
	romOne = []byte("rom one payload")
	romTwo = []byte("rom two payload")
)

func archiveIndex() *Index {
	return indexOf(
		rec("USA", "Game One (USA).bin", string(md5Of(romOne))),
		rec("USA", "Game Two (USA).bin", string(md5Of(romTwo))),
	)
}

func TestArchive_RenamedToCanonicalBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g1.zip", zipOf(t, member{"g1.bin", romOne}, member{"readme.txt", []byte("hi")}))

	e := newTestEngine(archiveIndex(), WithRename(true))
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, Renamed, results[0].Outcome)
	assert.Equal(t, "Game One (USA).zip", results[0].Target)
	assert.Equal(t, []string{"Game One (USA).zip"}, dirNames(t, dir))
	assert.Equal(t, 1, e.Stats().Renamed)
}

func TestArchive_AlreadyCorrect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Game One (USA).ZIP", zipOf(t, member{"whatever.bin", romOne}))

	results, err := newTestEngine(archiveIndex(), WithRename(true)).ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, AlreadyCorrect, results[0].Outcome)
}

func TestArchive_Unmatched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other.zip", zipOf(t, member{"x.bin", []byte("nothing known")}))

	e := newTestEngine(archiveIndex(), WithRename(true))
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Unmatched, results[0].Outcome)
	assert.Equal(t, []string{"other.zip"}, e.Stats().UnmatchedFiles)
}

func TestArchive_MixedMembersAreAmbiguous(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "both.zip", zipOf(t, member{"1.bin", romOne}, member{"2.bin", romTwo}))

	results, err := newTestEngine(archiveIndex(), WithRename(true)).ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, AmbiguousNoAction, results[0].Outcome)
	assert.Len(t, results[0].Candidates, 2)
	assert.Equal(t, []string{"both.zip"}, dirNames(t, dir))
}

func TestArchive_Extract(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pack.zip", zipOf(t, member{"sub/1.bin", romOne}, member{"junk.bin", []byte("junk")}))

	e := newTestEngine(archiveIndex(), WithRename(true), WithExtract(true))
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"Game One (USA).bin"}, results[0].Extracted)
	assert.Equal(t, romOne, readFile(t, dir, "Game One (USA).bin"))
	assert.Equal(t, 1, e.Stats().Extracted)
	assert.ElementsMatch(t, []string{"Game One (USA).bin", "Game One (USA).zip"}, dirNames(t, dir))
}

func TestArchive_ExtractRereadsReplacedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.zip", zipOf(t, member{"1.bin", romOne}))
	writeFile(t, dir, "Game One (USA).bin", []byte("bad dump"))

	e := newTestEngine(archiveIndex(), WithRename(true), WithExtract(true))
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"Game One (USA).bin"}, results[0].Extracted)
	assert.Equal(t, "Game One (USA).bin", results[1].Name)
	assert.Equal(t, AlreadyCorrect, results[1].Outcome)
	assert.Empty(t, e.Stats().UnmatchedFiles)
}

func TestArchive_ExtractSkippedInDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pack.zip", zipOf(t, member{"1.bin", romOne}))

	e := newTestEngine(archiveIndex(), WithExtract(true))
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, results[0].Extracted)
	assert.Equal(t, "Game One (USA).zip", results[0].Target)
	assert.Equal(t, []string{"pack.zip"}, dirNames(t, dir))
}

func TestArchive_Corrupt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.zip", []byte("PK this is not a zip"))

	e := newTestEngine(archiveIndex())
	results, err := e.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, ReadFailed, results[0].Outcome)

	var readErr *FileReadError
	assert.True(t, errors.As(results[0].Err, &readErr))
	assert.Equal(t, 1, e.Stats().ReadFailed)
}

func TestArchive_Disabled(t *testing.T) {
	dir := t.TempDir()
	data := zipOf(t, member{"1.bin", romOne})
	writeFile(t, dir, "pack.zip", data)

	idx := indexOf(rec("Zips", "Packed.zip", string(md5Of(data))))
	results, err := newTestEngine(idx, WithArchives(false)).ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Renamed, results[0].Outcome)
	assert.Equal(t, "Packed.zip", results[0].Target)
}

func TestArchiveNames(t *testing.T) {
	entries := []CatalogEntry{
		{RomName: "Game (USA).bin"},
		{RomName: "Game (USA).cue"},
		{RomName: "disc/Game (Europe).bin"},
	}
	assert.Equal(t, []string{"Game (USA).zip", "Game (Europe).zip"}, archiveNames(entries))
}
