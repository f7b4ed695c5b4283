package bazi

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

// Method selects how pillars are derived from a birth time.
type Method string

const (
	// Simplified uses plain modular arithmetic on the Gregorian fields.
	Simplified Method = "simplified"
	// Exact takes the eight characters from the lunar calendar.
	Exact Method = "exact"
)

// ParseMethod accepts "simplified", "exact" or the empty string (simplified).
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", Simplified:
		return Simplified, nil
	case Exact:
		return Exact, nil
	}
	return "", fmt.Errorf("unknown method %q: %w", s, apperr.ErrInvalidArgument)
}

// Pillar is one stem-branch pair.
type Pillar struct {
	Stem   Stem   `json:"stem"`
	Branch Branch `json:"branch"`
}

func (p Pillar) String() string {
	return p.Stem.Name + p.Branch.Name
}

// Elements renders the pillar as its two element names, e.g. "金火".
func (p Pillar) Elements() string {
	return p.Stem.Element.Name + p.Branch.Element.Name
}

// Chart is the four pillars of a birth time.
type Chart struct {
	Year  Pillar `json:"year"`
	Month Pillar `json:"month"`
	Day   Pillar `json:"day"`
	Time  Pillar `json:"time"`
}

// Pillars returns year, month, day and time in order.
func (c Chart) Pillars() [4]Pillar {
	return [4]Pillar{c.Year, c.Month, c.Day, c.Time}
}

// DayElement is the element of the day stem (日主).
func (c Chart) DayElement() wuxing.Element {
	return c.Day.Stem.Element
}

// Characters returns the eight glyphs in pillar order.
func (c Chart) Characters() []string {
	out := make([]string, 0, 8)
	for _, p := range c.Pillars() {
		out = append(out, p.Stem.Name, p.Branch.Name)
	}
	return out
}

// CharacterElements returns the element of each of the eight glyphs.
func (c Chart) CharacterElements() []wuxing.Element {
	out := make([]wuxing.Element, 0, 8)
	for _, p := range c.Pillars() {
		out = append(out, p.Stem.Element, p.Branch.Element)
	}
	return out
}

// String renders "庚午年 辛午月 乙酉日 庚辰时".
func (c Chart) String() string {
	return fmt.Sprintf("%s年 %s月 %s日 %s时", c.Year, c.Month, c.Day, c.Time)
}

// ElementString renders each pillar as element pairs, e.g. "金火 金火 木金 金土".
func (c Chart) ElementString() string {
	ps := c.Pillars()
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Elements()
	}
	return strings.Join(parts, " ")
}

// Calculate derives a chart from the Gregorian fields of birth by the
// simplified arithmetic. It is not the traditional solar-term calendar:
// the month pillar changes on the first of each Gregorian month and the
// year pillar on 1 January.
func (t *Table) Calculate(birth time.Time) Chart {
	y, m, d := birth.Year(), int(birth.Month()), birth.Day()
	h := birth.Hour()

	yearStem := floorMod(y-4, stemCount)
	yearBranch := floorMod(y-4, branchCount)
	monthStem := floorMod(yearStem*2+m, stemCount)
	monthBranch := floorMod(m+1, branchCount)
	dayStem := floorMod(5*y+6*m+d, stemCount)
	dayBranch := floorMod(5*y+6*m+d, branchCount)
	hourBranch := floorMod((h+1)/2, branchCount)
	hourStem := floorMod(dayStem*2+hourBranch, stemCount)

	return Chart{
		Year:  t.pillar(yearStem, yearBranch),
		Month: t.pillar(monthStem, monthBranch),
		Day:   t.pillar(dayStem, dayBranch),
		Time:  t.pillar(hourStem, hourBranch),
	}
}

func (t *Table) pillar(stem, branch int) Pillar {
	return Pillar{Stem: t.Stem(stem), Branch: t.Branch(branch)}
}

// ParsePillar resolves a two-glyph pillar such as "甲子".
func (t *Table) ParsePillar(s string) (Pillar, error) {
	if utf8.RuneCountInString(s) != 2 {
		return Pillar{}, fmt.Errorf("pillar %q must be two characters: %w", s, apperr.ErrInvalidArgument)
	}
	r := []rune(s)
	stem, err := t.LookupStem(string(r[0]))
	if err != nil {
		return Pillar{}, fmt.Errorf("pillar %q: %w", s, err)
	}
	branch, err := t.LookupBranch(string(r[1]))
	if err != nil {
		return Pillar{}, fmt.Errorf("pillar %q: %w", s, err)
	}
	return Pillar{Stem: stem, Branch: branch}, nil
}

// ChartFromPillars builds a chart from four pillar strings in year, month,
// day, time order, as produced by an eight-character calendar.
func (t *Table) ChartFromPillars(pillars [4]string) (Chart, error) {
	var out [4]Pillar
	for i, s := range pillars {
		p, err := t.ParsePillar(s)
		if err != nil {
			return Chart{}, err
		}
		out[i] = p
	}
	return Chart{Year: out[0], Month: out[1], Day: out[2], Time: out[3]}, nil
}

// ProfileChart runs the element profile over the chart's eight characters.
func (t *Table) ProfileChart(c Chart) wuxing.Profile {
	return t.elements.Profile(c.CharacterElements(), c.DayElement())
}
