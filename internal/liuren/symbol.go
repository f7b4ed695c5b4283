// Package liuren implements the 小六壬 three-transmission count over the nine palaces.
package liuren

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

// Positions is the size of the circular palace sequence.
const Positions = 9

// Symbol is one palace of the count. Element is resolved once at load time.
type Symbol struct {
	Name             string         `json:"name"`
	Order            int            `json:"order"`
	Element          wuxing.Element `json:"-"`
	Description      string         `json:"description"`
	Interpretation   string         `json:"interpretation"`
	Bagua            string         `json:"bagua"`
	Direction        string         `json:"direction"`
	Deity            string         `json:"deity"`
	DeityDescription string         `json:"deity_description"`
	FingerPosition   string         `json:"finger_position"`
}

// ElementName is a convenience for presentation code.
func (s Symbol) ElementName() string {
	return s.Element.Name
}

// MarshalJSON flattens the element to its name.
func (s Symbol) MarshalJSON() ([]byte, error) {
	type plain Symbol
	return json.Marshal(struct {
		plain
		Element string `json:"element"`
	}{plain(s), s.Element.Name})
}

// symbolRecord is the on-disk shape of a symbol.
type symbolRecord struct {
	Name             string `yaml:"name"`
	Order            *int   `yaml:"order"`
	Element          string `yaml:"element"`
	Description      string `yaml:"description"`
	Interpretation   string `yaml:"interpretation"`
	Bagua            string `yaml:"bagua"`
	Direction        string `yaml:"direction"`
	Deity            string `yaml:"deity"`
	DeityDescription string `yaml:"deity_description"`
	FingerPosition   string `yaml:"finger_position"`
}

// Table holds the nine symbols indexed by position.
type Table struct {
	symbols [Positions]Symbol
	byName  map[string]int
}

// LoadTable parses a YAML list of symbol records and resolves each element
// reference against elements.
//
// Records may appear in any order; each position 0..8 must be used exactly once.
func LoadTable(data []byte, elements *wuxing.Table) (*Table, error) {
	var records []symbolRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse symbols: %v", apperr.ErrInvalidConfiguration, err)
	}
	if len(records) != Positions {
		return nil, fmt.Errorf("%w: want %d symbols, got %d",
			apperr.ErrInvalidConfiguration, Positions, len(records))
	}

	t := &Table{byName: make(map[string]int, Positions)}
	var filled [Positions]bool

	for _, rec := range records {
		if rec.Order == nil {
			return nil, fmt.Errorf("%w: symbol %q has no order", apperr.ErrInvalidConfiguration, rec.Name)
		}
		pos := *rec.Order
		if pos < 0 || pos >= Positions {
			return nil, fmt.Errorf("%w: symbol %q order %d out of range",
				apperr.ErrInvalidConfiguration, rec.Name, pos)
		}
		if filled[pos] {
			return nil, fmt.Errorf("%w: order %d used twice", apperr.ErrInvalidConfiguration, pos)
		}
		if _, dup := t.byName[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", apperr.ErrInvalidConfiguration, rec.Name)
		}

		el, err := elements.Lookup(rec.Element)
		if err != nil {
			return nil, fmt.Errorf("%w: symbol %q: %w", apperr.ErrInvalidConfiguration, rec.Name, err)
		}

		filled[pos] = true
		t.byName[rec.Name] = pos
		t.symbols[pos] = Symbol{
			Name:             rec.Name,
			Order:            pos,
			Element:          el,
			Description:      rec.Description,
			Interpretation:   rec.Interpretation,
			Bagua:            rec.Bagua,
			Direction:        rec.Direction,
			Deity:            rec.Deity,
			DeityDescription: rec.DeityDescription,
			FingerPosition:   rec.FingerPosition,
		}
	}

	return t, nil
}

// At returns the symbol at position pos.
func (t *Table) At(pos int) (Symbol, error) {
	if pos < 0 || pos >= Positions {
		return Symbol{}, fmt.Errorf("position %d outside [0,%d]: %w", pos, Positions-1, apperr.ErrInvalidArgument)
	}
	return t.symbols[pos], nil
}

// Lookup returns the symbol with the given name.
func (t *Table) Lookup(name string) (Symbol, error) {
	pos, ok := t.byName[name]
	if !ok {
		return Symbol{}, fmt.Errorf("symbol %q: %w", name, apperr.ErrLookupMiss)
	}
	return t.symbols[pos], nil
}

// All returns the symbols in counting order.
func (t *Table) All() []Symbol {
	out := make([]Symbol, Positions)
	copy(out, t.symbols[:])
	return out
}
