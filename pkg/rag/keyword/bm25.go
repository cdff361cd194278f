package keyword

import (
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	defaultK1 = 1.5
	defaultB  = 0.75
)

// tokenPattern keeps letters (any script), digits, and underscore.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lowercases and extracts word tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Document is one indexable chunk.
type Document struct {
	ID   string
	Text string
}

// DocEntry holds per-document term statistics. Fields are exported for
// gob persistence.
type DocEntry struct {
	ID       string
	Length   int
	TermFreq map[string]int
}

// Index is a BM25 Okapi keyword index over one workspace's records.
type Index struct {
	K1      float64
	B       float64
	Docs    []DocEntry
	DocFreq map[string]int
	AvgLen  float64
}

// Result pairs a document id with its BM25 score.
type Result struct {
	ID    string
	Score float64
}

// Build constructs the index from scratch; the caller rebuilds after
// every index write.
func Build(docs []Document) *Index {
	ix := &Index{
		K1:      defaultK1,
		B:       defaultB,
		DocFreq: make(map[string]int),
	}

	totalLen := 0
	for _, doc := range docs {
		tokens := Tokenize(doc.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			ix.DocFreq[term]++
		}
		ix.Docs = append(ix.Docs, DocEntry{
			ID:       doc.ID,
			Length:   len(tokens),
			TermFreq: tf,
		})
		totalLen += len(tokens)
	}

	if len(ix.Docs) > 0 {
		ix.AvgLen = float64(totalLen) / float64(len(ix.Docs))
	}
	return ix
}

func (ix *Index) idf(term string) float64 {
	df := ix.DocFreq[term]
	if df == 0 {
		return 0
	}
	n := float64(len(ix.Docs))
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// Search scores every document against the query and returns the top k
// with positive scores. Equal scores tie-break by id ascending so
// rankings stay deterministic.
func (ix *Index) Search(query string, k int) []Result {
	if k <= 0 || len(ix.Docs) == 0 {
		return nil
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	results := make([]Result, 0, len(ix.Docs))
	for _, doc := range ix.Docs {
		var score float64
		for _, term := range terms {
			tf := doc.TermFreq[term]
			if tf == 0 {
				continue
			}
			norm := ix.K1 * (1 - ix.B + ix.B*float64(doc.Length)/ix.AvgLen)
			score += ix.idf(term) * (float64(tf) * (ix.K1 + 1)) / (float64(tf) + norm)
		}
		if score > 0 {
			results = append(results, Result{ID: doc.ID, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// SaveFile persists the index with gob under the workspace storage
// root (bm25.index).
func (ix *Index) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(ix); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile restores a persisted index; a missing file returns nil with
// no error so callers fall back to a rebuild.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var ix Index
	if err := gob.NewDecoder(f).Decode(&ix); err != nil {
		return nil, err
	}
	return &ix, nil
}
