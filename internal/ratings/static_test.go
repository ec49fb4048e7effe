package ratings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *StaticTable {
	t.Helper()
	table, err := LoadStaticTable("")
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())
	return table
}

func TestStaticTableExactMatch(t *testing.T) {
	table := loadDefault(t)
	p, err := table.Lookup(context.Background(), "  richard pattis ")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Pattis", p.LastName)
	assert.Equal(t, 4.2, p.AvgRating)
	assert.Equal(t, "static", p.Source)
}

func TestStaticTableMatchesCatalogStyleNames(t *testing.T) {
	table := loadDefault(t)
	p, err := table.Lookup(context.Background(), "THORNTON, A.")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alex Thornton", p.FullName())
}

func TestStaticTableMiss(t *testing.T) {
	table := loadDefault(t)
	p, err := table.Lookup(context.Background(), "Jane Nobody")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = table.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestStaticTablePartialMatchIsFirstInFileOrder(t *testing.T) {
	data := []byte(`[
		{"key":"ANNA SMITH","profile":{"first_name":"Anna","last_name":"Smith","avg_rating":3.1}},
		{"key":"BOB SMITH","profile":{"first_name":"Bob","last_name":"Smith","avg_rating":4.9}}
	]`)
	table, err := NewStaticTable(data)
	require.NoError(t, err)

	p, err := table.Lookup(context.Background(), "Carl Smith")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Anna", p.FirstName)

	p, err = table.Lookup(context.Background(), "Bob Smith")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Bob", p.FirstName)
}

func TestLoadStaticTableFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"profile":{"first_name":"Ada","last_name":"Lovelace"}}]`), 0o600))

	table, err := LoadStaticTable(path)
	require.NoError(t, err)
	p, err := table.Lookup(context.Background(), "ada lovelace")
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = LoadStaticTable(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestProfileHelpers(t *testing.T) {
	table := loadDefault(t)
	p, _ := table.Lookup(context.Background(), "Richard Pattis")

	assert.Equal(t, []string{"Clear lectures", "Tough grader", "Curves help", "Amazing teacher", "Heavy workload"}, TopTags(p))
	assert.Contains(t, TopReview(p), "Tough but fair")
	assert.Equal(t, "4.2/5 (156 reviews) | 3.8/5 difficulty | 86% would retake", Summary(p))

	assert.Equal(t, []string{}, TopTags(nil))
	assert.Equal(t, NoReviews, TopReview(nil))
	assert.Equal(t, "No rating data available", Summary(nil))
}
