package bazi

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

func loadElements(t *testing.T) *wuxing.Table {
	t.Helper()
	data, err := os.ReadFile("../registry/data/elements.yaml")
	if err != nil {
		t.Fatalf("read elements: %v", err)
	}
	elements, err := wuxing.LoadTable(data)
	if err != nil {
		t.Fatalf("wuxing.LoadTable() error = %v", err)
	}
	return elements
}

func setupTable(t *testing.T) *Table {
	t.Helper()
	data, err := os.ReadFile("../registry/data/ganzhi.yaml")
	if err != nil {
		t.Fatalf("read ganzhi: %v", err)
	}
	table, err := LoadTable(data, loadElements(t))
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	return table
}

func birth(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

// =============================================================================
// Simplified calculator
// =============================================================================

func TestCalculate_Worked(t *testing.T) {
	table := setupTable(t)

	chart := table.Calculate(birth(1990, time.May, 1, 8, 30))

	got := []string{
		chart.Year.String(), chart.Month.String(), chart.Day.String(), chart.Time.String(),
		chart.String(), chart.ElementString(), chart.DayElement().Name,
	}
	want := []string{
		"庚午", "辛午", "乙酉", "庚辰",
		"庚午年 辛午月 乙酉日 庚辰时", "金火 金火 木金 金土", "木",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chart mismatch (-want +got):\n%s", diff)
	}
	if n := len(chart.Characters()); n != 8 {
		t.Errorf("len(Characters()) = %d, want 8", n)
	}
}

func TestCalculate_Profile(t *testing.T) {
	table := setupTable(t)

	p := table.ProfileChart(table.Calculate(birth(1990, time.May, 1, 8, 30)))

	want := map[string]int{"金": 4, "火": 2, "木": 1, "土": 1, "水": 0}
	total := 0
	for name, n := range want {
		if got := p.Count(name); got != n {
			t.Errorf("Count(%s) = %d, want %d", name, got, n)
		}
	}
	for _, c := range p.Counts {
		total += c.Count
	}
	if total != 8 {
		t.Errorf("total count = %d, want 8", total)
	}

	if diff := cmp.Diff([]string{"水"}, p.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"木", "水"}, p.Helping); diff != "" {
		t.Errorf("Helping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"火", "金", "木"}, p.Weakening); diff != "" {
		t.Errorf("Weakening mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_HourBoundaries(t *testing.T) {
	table := setupTable(t)

	tests := []struct {
		hour int
		want string
	}{
		{0, "子"},
		{1, "丑"},
		{2, "丑"},
		{3, "寅"},
		{22, "亥"},
		{23, "子"},
	}
	for _, tt := range tests {
		chart := table.Calculate(birth(2000, time.January, 1, tt.hour, 0))
		if got := chart.Time.Branch.Name; got != tt.want {
			t.Errorf("hour %d branch = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

func TestCalculate_EarlyYearsFloorMod(t *testing.T) {
	table := setupTable(t)

	// Year 3 sits one step before 甲子 (year 4).
	if got := table.Calculate(birth(3, time.March, 1, 0, 0)).Year.String(); got != "癸亥" {
		t.Errorf("year pillar = %s, want 癸亥", got)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	table := setupTable(t)
	b := birth(1984, time.February, 2, 12, 0)
	if first, second := table.Calculate(b).String(), table.Calculate(b).String(); first != second {
		t.Errorf("Calculate() not deterministic: %s vs %s", first, second)
	}
}

// =============================================================================
// Pillar parsing
// =============================================================================

func TestChartFromPillars(t *testing.T) {
	table := setupTable(t)

	chart, err := table.ChartFromPillars([4]string{"庚午", "庚辰", "己未", "丙寅"})
	if err != nil {
		t.Fatalf("ChartFromPillars() error = %v", err)
	}
	if got := chart.DayElement().Name; got != "土" {
		t.Errorf("DayElement() = %s, want 土", got)
	}
	if got := table.DayMasterLabel(chart); got != "己土命（路旁土）" {
		t.Errorf("DayMasterLabel() = %s", got)
	}
}

func TestParsePillar_Errors(t *testing.T) {
	table := setupTable(t)

	if _, err := table.ParsePillar("甲"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ParsePillar(甲) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := table.ParsePillar("子甲"); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("ParsePillar(子甲) error = %v, want ErrLookupMiss", err)
	}
	if _, err := table.ChartFromPillars([4]string{"甲子", "乙丑", "丙寅", "丁X"}); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("ChartFromPillars() error = %v, want ErrLookupMiss", err)
	}
}

func TestElementOf(t *testing.T) {
	table := setupTable(t)

	for glyph, want := range map[string]string{"亥": "水", "戊": "土"} {
		e, err := table.ElementOf(glyph)
		if err != nil {
			t.Fatalf("ElementOf(%s) error = %v", glyph, err)
		}
		if e.Name != want {
			t.Errorf("ElementOf(%s) = %s, want %s", glyph, e.Name, want)
		}
	}
	if _, err := table.ElementOf("龙"); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("ElementOf(龙) error = %v, want ErrLookupMiss", err)
	}
}

// =============================================================================
// Remarks
// =============================================================================

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"M", Male}, {"m", Male}, {"男", Male}, {"male", Male},
		{"F", Female}, {"f", Female}, {"女", Female}, {"Female", Female},
	}
	for _, tt := range tests {
		g, err := ParseGender(tt.in)
		if err != nil {
			t.Fatalf("ParseGender(%q) error = %v", tt.in, err)
		}
		if g != tt.want {
			t.Errorf("ParseGender(%q) = %v, want %v", tt.in, g, tt.want)
		}
	}
	if _, err := ParseGender("x"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ParseGender(x) error = %v, want ErrInvalidArgument", err)
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod(""); err != nil || m != Simplified {
		t.Errorf("ParseMethod(\"\") = %v, %v; want simplified", m, err)
	}
	if m, err := ParseMethod("EXACT"); err != nil || m != Exact {
		t.Errorf("ParseMethod(EXACT) = %v, %v; want exact", m, err)
	}
	if _, err := ParseMethod("astro"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ParseMethod(astro) error = %v, want ErrInvalidArgument", err)
	}
}

func TestChineseYear(t *testing.T) {
	table := setupTable(t)
	for year, want := range map[int]string{1990: "庚午[马]", 2024: "甲辰[龙]"} {
		if got := table.ChineseYear(year); got != want {
			t.Errorf("ChineseYear(%d) = %s, want %s", year, got, want)
		}
	}
}

func TestRemarks(t *testing.T) {
	table := setupTable(t)
	chart := table.Calculate(birth(1990, time.May, 1, 8, 30))

	got := []string{
		DayMasterRemark(chart, Male),
		DayMasterRemark(chart, Female),
		SpousePalaceRemark(chart, Male),
		SpousePalaceRemark(chart, Female),
		table.DayMasterLabel(chart),
	}
	want := []string{
		"日主阴柔，男性可能需要在事业上更加努力",
		"日主阴柔，有利于女性的人际关系和家庭和谐",
		"配偶宫在日支：酉，配偶可能性格较为固执但忠诚",
		"配偶宫在年柱：午，配偶可能性格较为固执但忠诚",
		"乙木命（木命）",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remarks mismatch (-want +got):\n%s", diff)
	}
}

func TestReport(t *testing.T) {
	table := setupTable(t)
	chart := table.Calculate(birth(1990, time.May, 1, 8, 30))

	r := table.Report(chart, 1990, Female, Simplified)

	if r.Gender != "女" {
		t.Errorf("Gender = %s, want 女", r.Gender)
	}
	if r.ChineseYear != "庚午[马]" {
		t.Errorf("ChineseYear = %s, want 庚午[马]", r.ChineseYear)
	}
	if r.Counts != "1个木 2个火 1个土 4个金 0个水" {
		t.Errorf("Counts = %s", r.Counts)
	}
	if !strings.Contains(r.MissingImpact, "缺水") {
		t.Errorf("MissingImpact = %s, want mention of 缺水", r.MissingImpact)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"name":"乙"`) {
		t.Errorf("report JSON missing day stem: %s", data)
	}
}

// =============================================================================
// Table loading
// =============================================================================

func TestLoadTable_Invalid(t *testing.T) {
	elements := loadElements(t)
	raw, err := os.ReadFile("../registry/data/ganzhi.yaml")
	if err != nil {
		t.Fatalf("read ganzhi: %v", err)
	}
	good := string(raw)

	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "stems: [[["},
		{"dropped stem", strings.Replace(good, "  - {name: 癸, element: 水, polarity: yin}\n", "", 1)},
		{"duplicate branch", strings.Replace(good, "{name: 亥,", "{name: 子,", 1)},
		{"two-glyph stem", strings.Replace(good, "{name: 甲,", "{name: 甲甲,", 1)},
		{"bad polarity", strings.Replace(good, "polarity: yang}", "polarity: neither}", 1)},
		{"unknown element", strings.Replace(good, "{name: 丑, element: 土", "{name: 丑, element: 风", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTable([]byte(tt.data), elements); !errors.Is(err, apperr.ErrInvalidConfiguration) {
				t.Errorf("LoadTable() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
