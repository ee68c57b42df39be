package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex() *Index {
	return New(Config{Dimension: 64, TagSimilarity: 0.5})
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	a := make([]float32, 8)
	b := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, float32(0), CosineSimilarity(a, b))
}

func TestCosineSimilarityIdentical(t *testing.T) {
	e := NewEmbedder(32)
	v := e.Embed("invoice_march.pdf")
	assert.InDelta(t, float32(1), CosineSimilarity(v, v), 1e-4)
}

func TestUpsertAndSearchReturnsSelf(t *testing.T) {
	idx := newTestIndex()
	idx.Upsert("/root/invoice_march.pdf", "invoice_march.pdf")
	idx.Upsert("/root/vacation.jpg", "vacation.jpg")

	results := idx.Search("invoice_march.pdf", Filters{}, 10, 0.1)
	require.NotEmpty(t, results)
	assert.Equal(t, "/root/invoice_march.pdf", results[0].Path)
}

func TestSearchEmptyIndexReturnsEmpty(t *testing.T) {
	idx := newTestIndex()
	assert.Empty(t, idx.Search("anything", Filters{}, 10, 0.1))
}

func TestFindSimilarExcludesSelf(t *testing.T) {
	idx := newTestIndex()
	idx.Upsert("/root/a.pdf", "a.pdf")
	idx.Upsert("/root/b.pdf", "b.pdf")

	results, ok := idx.FindSimilar("/root/a.pdf", 10)
	require.True(t, ok)
	for _, r := range results {
		assert.NotEqual(t, "/root/a.pdf", r.Path)
	}
}

func TestFiltersByExtension(t *testing.T) {
	idx := newTestIndex()
	idx.Upsert("/root/a.pdf", "a.pdf")
	idx.Upsert("/root/b.jpg", "b.jpg")

	results := idx.Search("a.pdf", Filters{Extension: "jpg"}, 10, 0)
	for _, r := range results {
		assert.Contains(t, r.Path, ".jpg")
	}
}

func TestTagsDerivedFromPrototypes(t *testing.T) {
	idx := newTestIndex()
	doc := idx.Upsert("/root/photo.jpg", "vacation photo beach sunset")
	// Tags may be empty for a hashing embedder with small dims, but the
	// call must not panic and must only return configured categories.
	for _, tag := range doc.Tags {
		found := false
		for _, c := range categories {
			if c == tag {
				found = true
			}
		}
		assert.True(t, found, "unexpected tag %q", tag)
	}
}

func TestRemoveDropsDocument(t *testing.T) {
	idx := newTestIndex()
	idx.Upsert("/root/a.pdf", "a.pdf")
	idx.Remove("/root/a.pdf")
	_, ok := idx.Get("/root/a.pdf")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestSimilarityMissingDocument(t *testing.T) {
	idx := newTestIndex()
	_, ok := idx.Similarity("/root/missing.pdf", "query")
	assert.False(t, ok)
}
