// Package search ranks function names against a free-form query with BM25
// and falls back to edit distance for typos.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_$]+`)

// Entry is one searchable function.
type Entry struct {
	ID     string
	Name   string
	Params []string
}

type document struct {
	id     string
	name   string
	length int
	terms  map[string]int
}

// Index is an in-memory BM25 index over entries.
type Index struct {
	documents    []document
	docFreq      map[string]int
	avgDocLength float64
}

type Result struct {
	ID    string
	Name  string
	Score float64
}

// Build indexes entries. Entries without a name are skipped.
func Build(entries []Entry) *Index {
	index := &Index{docFreq: make(map[string]int)}
	totalLength := 0

	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		terms := make(map[string]int)
		addWeighted(terms, entry.Name, 4)
		terms[strings.ToLower(entry.Name)] += 2
		for _, param := range entry.Params {
			addWeighted(terms, param, 1)
		}

		length := 0
		for _, count := range terms {
			length += count
		}
		index.documents = append(index.documents, document{
			id:     entry.ID,
			name:   entry.Name,
			length: length,
			terms:  terms,
		})
		totalLength += length
		for term := range terms {
			index.docFreq[term]++
		}
	}

	sort.Slice(index.documents, func(i, j int) bool {
		return index.documents[i].id < index.documents[j].id
	})
	if len(index.documents) > 0 {
		index.avgDocLength = float64(totalLength) / float64(len(index.documents))
	}
	return index
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.documents)
}

// Search returns up to limit entries ranked by score, best first. When no
// term matches, names within a small edit distance of the query are
// returned instead.
func (idx *Index) Search(query string, limit int) []Result {
	if idx == nil || len(idx.documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryTerms := uniqueTerms(append(tokenize(query), strings.ToLower(query)))
	if len(queryTerms) == 0 {
		return nil
	}

	k1 := 1.2
	b := 0.75
	n := float64(len(idx.documents))
	avgLen := idx.avgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range idx.documents {
		score := 0.0
		docLen := float64(doc.length)
		for _, term := range queryTerms {
			tf := float64(doc.terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(idx.docFreq[term])
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			score += idf * (tf * (k1 + 1.0)) / (tf + k1*(1.0-b+b*(docLen/avgLen)))
		}
		if score > 0 {
			results = append(results, Result{ID: doc.id, Name: doc.name, Score: score})
		}
	}

	if len(results) == 0 {
		results = fuzzyNameFallback(idx.documents, query)
	}
	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func addWeighted(terms map[string]int, value string, weight int) {
	if weight <= 0 {
		return
	}
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

// tokenize lowercases value and splits it into words, breaking camelCase
// identifiers (getUserName -> get, user, name).
func tokenize(value string) []string {
	if value == "" {
		return nil
	}
	var b strings.Builder
	runes := []rune(value)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteRune(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return tokenPattern.FindAllString(b.String(), -1)
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

func fuzzyNameFallback(documents []document, query string) []Result {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range documents {
		candidate := strings.ToLower(doc.name)
		distance := levenshteinDistance(needle, candidate)
		threshold := max(len(candidate)/3, 2)
		if distance > threshold {
			continue
		}
		results = append(results, Result{ID: doc.id, Name: doc.name, Score: 1.0 / float64(1+distance)})
	}
	return results
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}

	return prev[len(b)]
}
