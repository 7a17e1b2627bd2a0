package validators

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

//go:embed data/elements_and_edges.json
var elementsAndEdges []byte

// Vocabulary is the immutable set of element symbols and absorption edges
// a record may name.
type Vocabulary struct {
	elements map[string]struct{}
	edges    map[string]struct{}
}

type vocabularyFile struct {
	Elements []string `json:"elements"`
	Edges    []string `json:"edges"`
}

// DefaultVocabulary returns the embedded periodic table and edge list.
// It is parsed once, on first use.
var DefaultVocabulary = sync.OnceValues(func() (*Vocabulary, error) {
	return ParseVocabulary(elementsAndEdges)
})

// NewVocabulary builds a vocabulary from explicit lists.
func NewVocabulary(elements, edges []string) *Vocabulary {
	v := &Vocabulary{
		elements: make(map[string]struct{}, len(elements)),
		edges:    make(map[string]struct{}, len(edges)),
	}
	for _, e := range elements {
		v.elements[e] = struct{}{}
	}
	for _, e := range edges {
		v.edges[e] = struct{}{}
	}
	return v
}

// ParseVocabulary reads a {"elements": [...], "edges": [...]} document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var f vocabularyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: vocabulary: %v", domain.ErrInvalidInput, err)
	}
	if len(f.Elements) == 0 || len(f.Edges) == 0 {
		return nil, fmt.Errorf("%w: vocabulary needs elements and edges", domain.ErrInvalidInput)
	}
	return NewVocabulary(f.Elements, f.Edges), nil
}

// LoadVocabulary reads a vocabulary file from disk.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// HasElement reports whether symbol is an allowed element.
func (v *Vocabulary) HasElement(symbol string) bool {
	_, ok := v.elements[symbol]
	return ok
}

// HasEdge reports whether edge is an allowed absorption edge.
func (v *Vocabulary) HasEdge(edge string) bool {
	_, ok := v.edges[edge]
	return ok
}

// Elements returns the allowed element symbols, sorted.
func (v *Vocabulary) Elements() []string {
	return sortedKeys(v.elements)
}

// Edges returns the allowed edges, sorted.
func (v *Vocabulary) Edges() []string {
	return sortedKeys(v.edges)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
