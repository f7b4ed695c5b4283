package bazi

import (
	"fmt"
	"strings"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

// Gender selects which remarks apply to a chart.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// ParseGender accepts M/F (any case), male/female and 男/女.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "男":
		return Male, nil
	case "f", "female", "女":
		return Female, nil
	}
	return "", fmt.Errorf("unknown gender %q: %w", s, apperr.ErrInvalidArgument)
}

// Label is the Chinese label 男 or 女.
func (g Gender) Label() string {
	if g == Male {
		return "男"
	}
	return "女"
}

// ChineseYear renders the year pillar of a Gregorian year with its zodiac,
// e.g. 1990 -> "庚午[马]".
func (t *Table) ChineseYear(year int) string {
	stem := t.Stem(year - 4)
	branch := t.Branch(year - 4)
	return fmt.Sprintf("%s%s[%s]", stem.Name, branch.Name, branch.Zodiac)
}

// DayMasterRemark comments on the polarity of the day stem.
func DayMasterRemark(c Chart, g Gender) string {
	yang := c.Day.Stem.Polarity == Yang
	switch {
	case g == Male && yang:
		return "日主阳刚，有利于男性发展"
	case g == Male:
		return "日主阴柔，男性可能需要在事业上更加努力"
	case yang:
		return "日主阳刚，女性可能在事业上较为顺利，但需要注意家庭平衡"
	default:
		return "日主阴柔，有利于女性的人际关系和家庭和谐"
	}
}

// SpousePalaceRemark reads the spouse palace: the day branch for men and
// the year branch for women.
func SpousePalaceRemark(c Chart, g Gender) string {
	var b strings.Builder
	palace := c.Day.Branch.Name
	if g == Male {
		fmt.Fprintf(&b, "配偶宫在日支：%s，", palace)
	} else {
		palace = c.Year.Branch.Name
		fmt.Fprintf(&b, "配偶宫在年柱：%s，", palace)
	}

	switch {
	case strings.Contains("子午卯酉", palace):
		b.WriteString("配偶可能性格较为固执但忠诚")
	case strings.Contains("寅申巳亥", palace):
		b.WriteString("配偶可能富有冒险精神和创造力")
	case strings.Contains("辰戌丑未", palace):
		b.WriteString("配偶可能性格温和，注重家庭")
	}
	return b.String()
}

// DayMasterLabel renders the day master, e.g. "乙木命（木命）" or
// "己土命（路旁土）" where a detailed label is known for the day pillar.
func (t *Table) DayMasterLabel(c Chart) string {
	el := c.DayElement().Name
	detail, ok := t.nayin[c.Day.String()]
	if !ok {
		detail = el + "命"
	}
	return fmt.Sprintf("%s%s命（%s）", c.Day.Stem.Name, el, detail)
}

// Report bundles a chart with its profile and remarks.
type Report struct {
	Gender         string         `json:"gender"`
	Method         Method         `json:"method"`
	Chart          Chart          `json:"chart"`
	Pillars        string         `json:"pillars"`
	ChineseYear    string         `json:"chinese_year"`
	DayMaster      string         `json:"day_master"`
	ElementPairs   string         `json:"element_pairs"`
	Counts         string         `json:"counts"`
	Profile        wuxing.Profile `json:"profile"`
	MissingImpact  string         `json:"missing_impact"`
	StrengthRemark string         `json:"strength_remark"`
	SpouseRemark   string         `json:"spouse_remark"`
}

// Report assembles the full analysis of a chart for birthYear.
func (t *Table) Report(c Chart, birthYear int, g Gender, m Method) Report {
	p := t.ProfileChart(c)
	return Report{
		Gender:         g.Label(),
		Method:         m,
		Chart:          c,
		Pillars:        c.String(),
		ChineseYear:    t.ChineseYear(birthYear),
		DayMaster:      t.DayMasterLabel(c),
		ElementPairs:   c.ElementString(),
		Counts:         wuxing.FormatCounts(p.Counts),
		Profile:        p,
		MissingImpact:  t.elements.MissingImpact(p.Missing),
		StrengthRemark: DayMasterRemark(c, g),
		SpouseRemark:   SpousePalaceRemark(c, g),
	}
}
