// Package bazi builds four-pillar (八字) charts and their element profiles.
package bazi

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

const (
	stemCount   = 10
	branchCount = 12
)

// Polarity of a heavenly stem.
type Polarity string

const (
	Yang Polarity = "yang"
	Yin  Polarity = "yin"
)

// Stem is a heavenly stem (天干).
type Stem struct {
	Index    int
	Name     string
	Element  wuxing.Element
	Polarity Polarity
}

// Branch is an earthly branch (地支).
type Branch struct {
	Index   int
	Name    string
	Element wuxing.Element
	Zodiac  string
}

// MarshalJSON encodes the stem by name, element and polarity.
func (s Stem) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"name": s.Name, "element": s.Element.Name, "polarity": string(s.Polarity),
	})
}

// MarshalJSON encodes the branch by name, element and zodiac animal.
func (b Branch) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"name": b.Name, "element": b.Element.Name, "zodiac": b.Zodiac,
	})
}

type ganzhiFile struct {
	Stems []struct {
		Name     string   `yaml:"name"`
		Element  string   `yaml:"element"`
		Polarity Polarity `yaml:"polarity"`
	} `yaml:"stems"`
	Branches []struct {
		Name    string `yaml:"name"`
		Element string `yaml:"element"`
		Zodiac  string `yaml:"zodiac"`
	} `yaml:"branches"`
	DayMasterNayin map[string]string `yaml:"day_master_nayin"`
}

// Table is the immutable stem and branch registry.
type Table struct {
	elements  *wuxing.Table
	stems     [stemCount]Stem
	branches  [branchCount]Branch
	stemIdx   map[string]int
	branchIdx map[string]int
	nayin     map[string]string
}

// LoadTable parses the stem/branch YAML document and resolves elements.
func LoadTable(data []byte, elements *wuxing.Table) (*Table, error) {
	var f ganzhiFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse ganzhi: %v", apperr.ErrInvalidConfiguration, err)
	}
	if len(f.Stems) != stemCount || len(f.Branches) != branchCount {
		return nil, fmt.Errorf("%w: want %d stems and %d branches, got %d and %d",
			apperr.ErrInvalidConfiguration, stemCount, branchCount, len(f.Stems), len(f.Branches))
	}

	t := &Table{
		elements:  elements,
		stemIdx:   make(map[string]int, stemCount),
		branchIdx: make(map[string]int, branchCount),
		nayin:     f.DayMasterNayin,
	}

	for i, rec := range f.Stems {
		if err := checkGlyph(rec.Name, t.stemIdx); err != nil {
			return nil, err
		}
		if rec.Polarity != Yang && rec.Polarity != Yin {
			return nil, fmt.Errorf("%w: stem %q polarity %q", apperr.ErrInvalidConfiguration, rec.Name, rec.Polarity)
		}
		el, err := elements.Lookup(rec.Element)
		if err != nil {
			return nil, fmt.Errorf("%w: stem %q: %w", apperr.ErrInvalidConfiguration, rec.Name, err)
		}
		t.stems[i] = Stem{Index: i, Name: rec.Name, Element: el, Polarity: rec.Polarity}
		t.stemIdx[rec.Name] = i
	}

	for i, rec := range f.Branches {
		if err := checkGlyph(rec.Name, t.branchIdx); err != nil {
			return nil, err
		}
		el, err := elements.Lookup(rec.Element)
		if err != nil {
			return nil, fmt.Errorf("%w: branch %q: %w", apperr.ErrInvalidConfiguration, rec.Name, err)
		}
		t.branches[i] = Branch{Index: i, Name: rec.Name, Element: el, Zodiac: rec.Zodiac}
		t.branchIdx[rec.Name] = i
	}

	return t, nil
}

func checkGlyph(name string, seen map[string]int) error {
	if utf8.RuneCountInString(name) != 1 {
		return fmt.Errorf("%w: %q is not a single character", apperr.ErrInvalidConfiguration, name)
	}
	if _, dup := seen[name]; dup {
		return fmt.Errorf("%w: duplicate glyph %q", apperr.ErrInvalidConfiguration, name)
	}
	return nil
}

// Elements returns the element table the stems and branches refer to.
func (t *Table) Elements() *wuxing.Table {
	return t.elements
}

// Stem returns the stem at index i, reduced mod 10.
func (t *Table) Stem(i int) Stem {
	return t.stems[floorMod(i, stemCount)]
}

// Branch returns the branch at index i, reduced mod 12.
func (t *Table) Branch(i int) Branch {
	return t.branches[floorMod(i, branchCount)]
}

// LookupStem finds a stem by glyph.
func (t *Table) LookupStem(name string) (Stem, error) {
	i, ok := t.stemIdx[name]
	if !ok {
		return Stem{}, fmt.Errorf("stem %q: %w", name, apperr.ErrLookupMiss)
	}
	return t.stems[i], nil
}

// LookupBranch finds a branch by glyph.
func (t *Table) LookupBranch(name string) (Branch, error) {
	i, ok := t.branchIdx[name]
	if !ok {
		return Branch{}, fmt.Errorf("branch %q: %w", name, apperr.ErrLookupMiss)
	}
	return t.branches[i], nil
}

// ElementOf returns the element of a single stem or branch glyph.
func (t *Table) ElementOf(glyph string) (wuxing.Element, error) {
	if s, err := t.LookupStem(glyph); err == nil {
		return s.Element, nil
	}
	if b, err := t.LookupBranch(glyph); err == nil {
		return b.Element, nil
	}
	return wuxing.Element{}, fmt.Errorf("glyph %q is neither stem nor branch: %w", glyph, apperr.ErrLookupMiss)
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
