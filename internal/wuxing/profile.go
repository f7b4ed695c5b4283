package wuxing

import (
	"fmt"
	"strings"
)

// CompleteRemark is shown when a chart contains every element.
const CompleteRemark = "五行俱全，影响不大"

// ElementCount is one row of an element tally.
type ElementCount struct {
	Element string `json:"element"`
	Count   int    `json:"count"`
}

// Support lists the elements that reinforce or drain a day-element.
type Support struct {
	DayElement     string   `json:"day_element"`
	Helping        []string `json:"helping"`
	HelpingNotes   []string `json:"helping_notes"`
	Weakening      []string `json:"weakening"`
	WeakeningNotes []string `json:"weakening_notes"`
}

// Profile is the element analysis of a set of characters relative to a day-element.
type Profile struct {
	DayElement string         `json:"day_element"`
	Counts     []ElementCount `json:"counts"`
	Helping    []string       `json:"helping"`
	Weakening  []string       `json:"weakening"`
	Missing    []string       `json:"missing"`
}

// Complete reports whether no element is missing.
func (p Profile) Complete() bool {
	return len(p.Missing) == 0
}

// Count returns the tally for the named element.
func (p Profile) Count(name string) int {
	for _, c := range p.Counts {
		if c.Element == name {
			return c.Count
		}
	}
	return 0
}

// Support derives the helping and weakening sets for day.
//
// Helping is the day-element itself and its generator. Weakening is, in order,
// the element it generates, the element that overcomes it, and itself.
func (t *Table) Support(day Element) Support {
	gen := t.Generator(day)
	prod := t.Product(day)
	over := t.Overcomer(day)

	return Support{
		DayElement: day.Name,
		Helping:    []string{day.Name, gen.Name},
		HelpingNotes: []string{
			fmt.Sprintf("%s为日主（同我者）", day.Name),
			fmt.Sprintf("%s生%s（生我者）", gen.Name, day.Name),
		},
		Weakening: []string{prod.Name, over.Name, day.Name},
		WeakeningNotes: []string{
			fmt.Sprintf("%s生%s（我生者）", day.Name, prod.Name),
			fmt.Sprintf("%s克%s（克我者）", over.Name, day.Name),
			fmt.Sprintf("%s耗泄（耗泄者，虽然是同类，但会造成耗损）", day.Name),
		},
	}
}

// Profile tallies the elements of chars and analyses them against day.
// Counts and Missing follow table order, so equal inputs give identical profiles.
func (t *Table) Profile(chars []Element, day Element) Profile {
	counts := make([]int, len(t.elements))
	for _, e := range chars {
		counts[t.index(e)]++
	}

	p := Profile{
		DayElement: day.Name,
		Counts:     make([]ElementCount, len(t.elements)),
		Missing:    make([]string, 0, len(t.elements)),
	}
	for i, e := range t.elements {
		p.Counts[i] = ElementCount{Element: e.Name, Count: counts[i]}
		if counts[i] == 0 {
			p.Missing = append(p.Missing, e.Name)
		}
	}

	s := t.Support(day)
	p.Helping = s.Helping
	p.Weakening = s.Weakening
	return p
}

// MissingImpact describes what the missing elements may affect.
func (t *Table) MissingImpact(missing []string) string {
	if len(missing) == 0 {
		return CompleteRemark
	}
	impacts := make([]string, 0, len(missing))
	for _, e := range t.elements {
		for _, m := range missing {
			if m == e.Name && e.MissingImpact != "" {
				impacts = append(impacts, e.MissingImpact)
			}
		}
	}
	return strings.Join(impacts, "；")
}

// FormatCounts renders a tally as "2个木 1个火 ...".
func FormatCounts(counts []ElementCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d个%s", c.Count, c.Element)
	}
	return strings.Join(parts, " ")
}
