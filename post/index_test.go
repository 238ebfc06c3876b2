package post

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linked(title, url string) Record {
	return Record{
		Title:    title,
		Date:     "2024-01-01",
		URL:      url,
		FileLink: "substack_md_files/example/" + title + ".md",
	}
}

func readIndex(t *testing.T, path string) []Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

// TestMergeIndex_NewFile verifies merging into a missing index creates it
func TestMergeIndex_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	records := []Record{linked("a", "https://x.test/p/a"), linked("b", "https://x.test/p/b")}

	require.NoError(t, MergeIndex(records, path, testLogger()))

	assert.Len(t, readIndex(t, path), 2)
}

// TestMergeIndex_Idempotent verifies merging the same records twice keeps
// each entry once
func TestMergeIndex_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	records := []Record{linked("a", "https://x.test/p/a")}

	require.NoError(t, MergeIndex(records, path, testLogger()))
	require.NoError(t, MergeIndex(records, path, testLogger()))

	assert.Len(t, readIndex(t, path), 1)
}

// TestMergeIndex_PreservesExistingOrder verifies old entries come first,
// unchanged
func TestMergeIndex_PreservesExistingOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	require.NoError(t, MergeIndex([]Record{linked("a", "u1"), linked("b", "u2")}, path, testLogger()))
	require.NoError(t, MergeIndex([]Record{linked("c", "u3")}, path, testLogger()))

	got := readIndex(t, path)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
	assert.Equal(t, "c", got[2].Title)
}

// TestMergeIndex_URLIdentity verifies a changed record for a known URL is
// not appended as a duplicate
func TestMergeIndex_URLIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	original := linked("a", "https://x.test/p/a")
	require.NoError(t, MergeIndex([]Record{original}, path, testLogger()))

	updated := original
	updated.LikeCount = 42
	require.NoError(t, MergeIndex([]Record{updated}, path, testLogger()))

	got := readIndex(t, path)
	require.Len(t, got, 1)
	// Existing entries are never rewritten.
	assert.Equal(t, 0, got[0].LikeCount)
}

// TestMergeIndex_LegacyFullEquality verifies URL-less records fall back to
// full-value comparison
func TestMergeIndex_LegacyFullEquality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	legacy := Record{Title: "a", Date: "2024-01-01", FileLink: "f.md"}

	require.NoError(t, MergeIndex([]Record{legacy}, path, testLogger()))
	require.NoError(t, MergeIndex([]Record{legacy}, path, testLogger()))

	assert.Len(t, readIndex(t, path), 1)

	// Any field difference makes it a distinct entry.
	changed := legacy
	changed.LikeCount = 1
	require.NoError(t, MergeIndex([]Record{changed}, path, testLogger()))
	assert.Len(t, readIndex(t, path), 2)
}

// TestMergeIndex_SkipsUnlinkedRecords verifies records without links are
// never indexed
func TestMergeIndex_SkipsUnlinkedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	records := []Record{{Title: "no links", Date: "2024-01-01", URL: "u"}}

	require.NoError(t, MergeIndex(records, path, testLogger()))

	assert.Empty(t, readIndex(t, path))
}

// TestMergeIndex_CorruptExisting verifies a corrupt index degrades to empty
func TestMergeIndex_CorruptExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	require.NoError(t, MergeIndex([]Record{linked("a", "u1")}, path, testLogger()))

	got := readIndex(t, path)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
}

// TestLoadIndex_RoundTrip verifies LoadIndex reads what MergeIndex wrote
func TestLoadIndex_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	require.NoError(t, MergeIndex([]Record{linked("a", "u1")}, path, testLogger()))

	records, err := LoadIndex(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Title)
}
