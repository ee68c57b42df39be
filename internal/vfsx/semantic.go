package vfsx

import (
	"sort"
	"strings"
)

// SemanticResult pairs a scanned file with its similarity score against a
// query, per ShadowVFS::query_semantic.
type SemanticResult struct {
	File  *VirtualFile
	Score float32
}

// QuerySemanticFilters narrows a semantic query by extension and minimum
// size before scoring, mirroring query_semantic's filter_ext /
// min_size_bytes parameters.
type QuerySemanticFilters struct {
	Extensions []string
	MinSize    int64
}

// QuerySemantic embeds query, scores every file by cosine similarity
// against its indexed name, and returns the top maxResults at or above
// minSimilarity, sorted descending.
func (v *VFS) QuerySemantic(query string, filters QuerySemanticFilters, maxResults int, minSimilarity float32) []SemanticResult {
	var results []SemanticResult
	for _, f := range v.Files() {
		if len(filters.Extensions) > 0 && !extAllowed(f.ext, filters.Extensions) {
			continue
		}
		if filters.MinSize > 0 && f.size < filters.MinSize {
			continue
		}
		score, ok := v.index.Similarity(f.path, query)
		if !ok || score < minSimilarity {
			continue
		}
		results = append(results, SemanticResult{File: f, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// FindSimilar returns files whose indexed embedding is closest to path's
// own, excluding path itself.
func (v *VFS) FindSimilar(path string, maxResults int) ([]SemanticResult, bool) {
	hits, ok := v.index.FindSimilar(path, maxResults)
	if !ok {
		return nil, false
	}
	results := make([]SemanticResult, 0, len(hits))
	for _, h := range hits {
		if f, ok := v.files[h.Path]; ok {
			results = append(results, SemanticResult{File: f, Score: h.Score})
		}
	}
	return results, true
}

func extAllowed(fileExt string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, fileExt) {
			return true
		}
	}
	return false
}
