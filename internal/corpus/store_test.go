package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taoufikbo/preprint-empirical/internal/corpus"
	"github.com/taoufikbo/preprint-empirical/internal/models"
)

func rec(id, title string) models.Record {
	return models.Record{
		ID:          id,
		Title:       title,
		Country:     "France",
		RoleQuery:   "Scrum Master",
		Language:    "fr",
		RetrievedAt: "2025-06-01T12:00:00Z",
	}
}

func ids(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestMergeIntoEmptyThenOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	store := corpus.NewStore(path, nil)

	total, added, err := store.Merge([]models.Record{rec("1", "a"), rec("2", "b"), rec("3", "c")})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, 3, added)

	total, added, err = store.Merge([]models.Record{rec("2", "b"), rec("3", "c"), rec("4", "d")})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Equal(t, 1, added)

	records, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(records))
}

func TestMergeIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	store := corpus.NewStore(path, nil)
	batch := []models.Record{rec("1", "a"), rec("2", "b")}

	_, _, err := store.Merge(batch)
	require.NoError(t, err)
	first, err := store.Load()
	require.NoError(t, err)

	total, added, err := store.Merge(batch)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, 0, added)

	second, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMergeKeepsFirstOccurrence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	store := corpus.NewStore(path, nil)

	_, _, err := store.Merge([]models.Record{rec("1", "original")})
	require.NoError(t, err)

	_, _, err = store.Merge([]models.Record{rec("1", "rewritten")})
	require.NoError(t, err)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "original", records[0].Title)
}

func TestMergeMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	store := corpus.NewStore(path, nil)

	_, _, err := store.Merge([]models.Record{rec("1", "a"), rec("2", "b")})
	require.NoError(t, err)

	_, _, err = store.Merge([]models.Record{rec("3", "c")})
	require.NoError(t, err)

	records, err := store.Load()
	require.NoError(t, err)
	require.Subset(t, ids(records), []string{"1", "2"})
	require.Contains(t, ids(records), "3")
}

func TestLoadMissingFile(t *testing.T) {
	store := corpus.NewStore(filepath.Join(t.TempDir(), "absent.csv"), nil)
	records, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestMergeCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "raw", "corpus.csv")
	store := corpus.NewStore(path, nil)

	_, _, err := store.Merge([]models.Record{rec("1", "a")})
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestMultilineFieldsSurviveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	store := corpus.NewStore(path, nil)

	r := rec("1", "a")
	r.Description = "Line one\nLine two, with a comma\n\"quoted\""
	r.Raw = `{"title": "a", "nested": {"k": "v"}}`

	_, _, err := store.Merge([]models.Record{r})
	require.NoError(t, err)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, r.Description, records[0].Description)
	require.Equal(t, r.Raw, records[0].Raw)
}

func TestSampleDeterministic(t *testing.T) {
	records := []models.Record{rec("c", "3"), rec("a", "1"), rec("b", "2"), rec("d", "4")}

	got := corpus.Sample(records, 2)
	require.Equal(t, []string{"a", "b"}, ids(got))

	// input order must not matter
	shuffled := []models.Record{rec("d", "4"), rec("b", "2"), rec("a", "1"), rec("c", "3")}
	require.Equal(t, got, corpus.Sample(shuffled, 2))

	// oversized n keeps everything, still sorted
	all := corpus.Sample(records, 10)
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(all))
}

func TestSampleRunsAreByteIdentical(t *testing.T) {
	records := []models.Record{rec("c", "3"), rec("a", "1"), rec("b", "2")}

	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.csv")
	p2 := filepath.Join(dir, "two.csv")

	_, _, err := corpus.NewStore(p1, nil).Merge(corpus.Sample(records, 2))
	require.NoError(t, err)
	_, _, err = corpus.NewStore(p2, nil).Merge(corpus.Sample(records, 2))
	require.NoError(t, err)

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
