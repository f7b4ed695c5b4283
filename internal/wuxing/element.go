// Package wuxing models the five elements (五行) and the two fixed cycles between them.
//
// The element table is loaded once from static configuration and is read-only
// afterwards, so a *Table is safe for concurrent use without locking.
package wuxing

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

// Canonical element names, in generation order.
const (
	Wood  = "木"
	Fire  = "火"
	Earth = "土"
	Metal = "金"
	Water = "水"
)

// CanonicalNames returns the five element names in generation order.
func CanonicalNames() []string {
	return []string{Wood, Fire, Earth, Metal, Water}
}

// Element is one of the five elements together with its descriptive metadata.
type Element struct {
	Name          string            `json:"name" yaml:"name"`
	Generates     string            `json:"generates" yaml:"generates"`
	Overcomes     string            `json:"overcomes" yaml:"overcomes"`
	Description   string            `json:"description" yaml:"description"`
	Stems         []string          `json:"stems" yaml:"stems"`
	Branches      []string          `json:"branches" yaml:"branches"`
	Trigrams      []string          `json:"trigrams" yaml:"trigrams"`
	Directions    []string          `json:"directions" yaml:"directions"`
	Meanings      map[string]string `json:"meanings,omitempty" yaml:"meanings"`
	Promotes      map[string]string `json:"promotes,omitempty" yaml:"promotes"`
	Taboos        map[string]string `json:"taboos,omitempty" yaml:"taboos"`
	MissingImpact string            `json:"missing_impact" yaml:"missing_impact"`
}

// Table is the immutable element registry.
//
// Relations are resolved to indices at load time; lookups by relation never
// compare names again.
type Table struct {
	elements []Element
	byName   map[string]int

	product   []int // i generates product[i]
	generator []int // generator[i] generates i
	victim    []int // i overcomes victim[i]
	overcomer []int // overcomer[i] overcomes i
}

// LoadTable parses a YAML list of element records and validates it.
func LoadTable(data []byte) (*Table, error) {
	var records []Element
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse elements: %v", apperr.ErrInvalidConfiguration, err)
	}
	return NewTable(records)
}

// NewTable builds a table from element records, in the order given.
//
// It fails with ErrInvalidConfiguration unless the records are exactly the five
// canonical elements and both "generates" and "overcomes" form a single simple
// 5-cycle. A relation naming an unknown element additionally carries ErrLookupMiss.
func NewTable(records []Element) (*Table, error) {
	canonical := CanonicalNames()
	if len(records) != len(canonical) {
		return nil, fmt.Errorf("%w: want %d elements, got %d",
			apperr.ErrInvalidConfiguration, len(canonical), len(records))
	}

	t := &Table{
		elements:  make([]Element, len(records)),
		byName:    make(map[string]int, len(records)),
		product:   make([]int, len(records)),
		generator: make([]int, len(records)),
		victim:    make([]int, len(records)),
		overcomer: make([]int, len(records)),
	}

	for i, rec := range records {
		if _, dup := t.byName[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate element %q", apperr.ErrInvalidConfiguration, rec.Name)
		}
		t.byName[rec.Name] = i
		t.elements[i] = rec
	}
	for _, name := range canonical {
		if _, ok := t.byName[name]; !ok {
			return nil, fmt.Errorf("%w: missing element %q", apperr.ErrInvalidConfiguration, name)
		}
	}

	for i, e := range t.elements {
		p, err := t.resolveTarget(e.Name, "generates", e.Generates)
		if err != nil {
			return nil, err
		}
		v, err := t.resolveTarget(e.Name, "overcomes", e.Overcomes)
		if err != nil {
			return nil, err
		}
		if p == v {
			return nil, fmt.Errorf("%w: %s both generates and overcomes %s",
				apperr.ErrInvalidConfiguration, e.Name, e.Generates)
		}
		t.product[i] = p
		t.victim[i] = v
	}

	if err := checkCycle("generates", t.product, t.elements); err != nil {
		return nil, err
	}
	if err := checkCycle("overcomes", t.victim, t.elements); err != nil {
		return nil, err
	}

	for i := range t.elements {
		t.generator[t.product[i]] = i
		t.overcomer[t.victim[i]] = i
	}

	return t, nil
}

func (t *Table) resolveTarget(from, relation, target string) (int, error) {
	idx, ok := t.byName[target]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s unknown element %q: %w",
			apperr.ErrInvalidConfiguration, from, relation, target, apperr.ErrLookupMiss)
	}
	if target == from {
		return 0, fmt.Errorf("%w: %s %s itself", apperr.ErrInvalidConfiguration, from, relation)
	}
	return idx, nil
}

// checkCycle verifies that next is a single simple cycle through every index.
func checkCycle(relation string, next []int, elements []Element) error {
	seen := make([]bool, len(next))
	cur := 0
	for step := 0; step < len(next); step++ {
		if seen[cur] {
			return fmt.Errorf("%w: %q relation returns to %s after %d steps, want a %d-cycle",
				apperr.ErrInvalidConfiguration, relation, elements[cur].Name, step, len(next))
		}
		seen[cur] = true
		cur = next[cur]
	}
	if cur != 0 {
		return fmt.Errorf("%w: %q relation does not close on %s",
			apperr.ErrInvalidConfiguration, relation, elements[0].Name)
	}
	return nil
}

// Len returns the number of elements.
func (t *Table) Len() int {
	return len(t.elements)
}

// All returns the elements in table order.
func (t *Table) All() []Element {
	out := make([]Element, len(t.elements))
	copy(out, t.elements)
	return out
}

// Names returns the element names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.elements))
	for i, e := range t.elements {
		out[i] = e.Name
	}
	return out
}

// Lookup returns the element with the given name.
func (t *Table) Lookup(name string) (Element, error) {
	idx, ok := t.byName[name]
	if !ok {
		return Element{}, fmt.Errorf("element %q: %w", name, apperr.ErrLookupMiss)
	}
	return t.elements[idx], nil
}

func (t *Table) index(e Element) int {
	idx, ok := t.byName[e.Name]
	if !ok {
		// Elements only come from this table, or from a table built from the same names.
		panic(fmt.Sprintf("wuxing: element %q not in table", e.Name))
	}
	return idx
}

// Product returns the element that e generates (我生者).
func (t *Table) Product(e Element) Element {
	return t.elements[t.product[t.index(e)]]
}

// Generator returns the element that generates e (生我者).
func (t *Table) Generator(e Element) Element {
	return t.elements[t.generator[t.index(e)]]
}

// Victim returns the element that e overcomes (我克者).
func (t *Table) Victim(e Element) Element {
	return t.elements[t.victim[t.index(e)]]
}

// Overcomer returns the element that overcomes e (克我者).
func (t *Table) Overcomer(e Element) Element {
	return t.elements[t.overcomer[t.index(e)]]
}

// GenerationCycle walks the generation cycle forward from start, returning all five elements.
func (t *Table) GenerationCycle(start Element) []Element {
	return t.walk(start, t.product)
}

// OvercomingCycle walks the overcoming cycle forward from start, returning all five elements.
func (t *Table) OvercomingCycle(start Element) []Element {
	return t.walk(start, t.victim)
}

func (t *Table) walk(start Element, next []int) []Element {
	out := make([]Element, 0, len(t.elements))
	cur := t.index(start)
	for range t.elements {
		out = append(out, t.elements[cur])
		cur = next[cur]
	}
	return out
}
