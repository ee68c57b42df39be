package vectorindex

import (
	"sort"
	"sync"

	"github.com/sentinelfs/sentinel/internal/logging"
)

var log = logging.For("vectorindex")

// categories are the fixed category labels whose prototype embeddings
// drive semantic tagging, verbatim from spec.md §4.C / original_source's
// VectorIndex::new.
var categories = []string{
	"document", "invoice", "photo", "screenshot", "code",
	"archive", "installer", "video", "audio", "spreadsheet",
	"presentation", "ebook", "resume", "receipt", "contract",
}

// Document is one indexed file: its source text, embedding, and derived
// category tags.
type Document struct {
	Path       string
	SourceText string
	Embedding  []float32
	Tags       []string
}

// Config controls tagging and persistence behavior.
type Config struct {
	Dimension      int
	TagSimilarity  float32
	CacheDirectory string
}

// Index is the in-memory semantic index over a VFS's files. It owns its
// documents exclusively, per spec.md §3 ("Ownership").
type Index struct {
	mu       sync.RWMutex
	embedder Embedder
	cfg      Config
	docs     map[string]Document
	order    []string // insertion order, for search tie-breaks
	protos   map[string][]float32
	cache    *embeddingCache
}

// New builds an index and computes the fixed category prototypes once.
func New(cfg Config) *Index {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.TagSimilarity <= 0 {
		cfg.TagSimilarity = 0.5
	}
	embedder := NewEmbedder(cfg.Dimension)

	idx := &Index{
		embedder: embedder,
		cfg:      cfg,
		docs:     make(map[string]Document),
		protos:   make(map[string][]float32, len(categories)),
		cache:    newEmbeddingCache(cfg.CacheDirectory),
	}
	for _, c := range categories {
		idx.protos[c] = embedder.Embed(c)
	}
	return idx
}

// Len reports the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// embed returns a cached embedding for text when the cache holds one for
// its content hash, else computes and caches it.
func (idx *Index) embed(text string) []float32 {
	if v, ok := idx.cache.get(text); ok {
		return v
	}
	v := idx.embedder.Embed(text)
	idx.cache.put(text, v)
	return v
}

// Upsert embeds sourceText for path, derives tags from the category
// prototypes, and stores the document. Re-indexing the same path replaces
// its prior entry in place, preserving its original insertion-order
// position for deterministic tie-breaks.
func (idx *Index) Upsert(path, sourceText string) Document {
	embedding := idx.embed(sourceText)
	tags := idx.tagsFor(embedding)

	doc := Document{Path: path, SourceText: sourceText, Embedding: embedding, Tags: tags}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.docs[path]; !exists {
		idx.order = append(idx.order, path)
	}
	idx.docs[path] = doc
	return doc
}

// Remove drops path from the index, if present.
func (idx *Index) Remove(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.docs[path]; !ok {
		return
	}
	delete(idx.docs, path)
	for i, p := range idx.order {
		if p == path {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// Get returns the document stored for path, if any.
func (idx *Index) Get(path string) (Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.docs[path]
	return d, ok
}

func (idx *Index) tagsFor(embedding []float32) []string {
	var tags []string
	for _, cat := range categories {
		if CosineSimilarity(embedding, idx.protos[cat]) >= idx.cfg.TagSimilarity {
			tags = append(tags, cat)
		}
	}
	return tags
}

// Filters narrow a search or similarity query by extension and/or
// minimum size before scoring.
type Filters struct {
	Extension string // empty = no filter; compared against the path's suffix
	MinSize   int64
	Sizes     map[string]int64 // path -> size, supplied by the caller since Index does not own file metadata
}

func (f Filters) allow(path string) bool {
	if f.Extension != "" && !hasExt(path, f.Extension) {
		return false
	}
	if f.MinSize > 0 {
		if f.Sizes == nil {
			return false
		}
		if sz, ok := f.Sizes[path]; !ok || sz < f.MinSize {
			return false
		}
	}
	return true
}

func hasExt(path, ext string) bool {
	n := len(path)
	e := len(ext)
	if e == 0 || n < e+1 {
		return false
	}
	return path[n-e:] == ext && path[n-e-1] == '.'
}

// Result is a scored search hit.
type Result struct {
	Path  string
	Score float32
}

// Search embeds query, scores every document by cosine similarity,
// applies filters, and returns the top k whose score is >= minSim, sorted
// descending. Ties preserve insertion order, per spec.md §4.C.
func (idx *Index) Search(query string, filters Filters, k int, minSim float32) []Result {
	if query == "" || idx.Len() == 0 {
		return nil
	}
	q := idx.embed(query)
	return idx.rank(q, "", filters, k, minSim)
}

// Similarity returns the cosine score between path's stored embedding and
// query, feeding the rule DSL's vector_similarity primitive.
func (idx *Index) Similarity(path, query string) (float32, bool) {
	doc, ok := idx.Get(path)
	if !ok {
		return 0, false
	}
	q := idx.embed(query)
	return CosineSimilarity(q, doc.Embedding), true
}

// FindSimilar uses path's own embedding as the query vector and excludes
// path itself from the results.
func (idx *Index) FindSimilar(path string, k int) ([]Result, bool) {
	doc, ok := idx.Get(path)
	if !ok {
		return nil, false
	}
	return idx.rank(doc.Embedding, path, Filters{}, k, 0), true
}

func (idx *Index) rank(query []float32, exclude string, filters Filters, k int, minSim float32) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]Result, 0, len(idx.order))
	for _, path := range idx.order {
		if path == exclude {
			continue
		}
		if !filters.allow(path) {
			continue
		}
		doc := idx.docs[path]
		score := CosineSimilarity(query, doc.Embedding)
		if score < minSim {
			continue
		}
		results = append(results, Result{Path: path, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// AllTags returns the sorted set of distinct tags across the index.
func (idx *Index) AllTags() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	seen := make(map[string]bool)
	for _, d := range idx.docs {
		for _, t := range d.Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// FindByTag returns every indexed path carrying the given tag.
func (idx *Index) FindByTag(tag string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var paths []string
	for _, path := range idx.order {
		for _, t := range idx.docs[path].Tags {
			if t == tag {
				paths = append(paths, path)
				break
			}
		}
	}
	return paths
}
