package wuxing

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

func canonicalRecords() []Element {
	return []Element{
		{Name: Wood, Generates: Fire, Overcomes: Earth, MissingImpact: "缺木可能影响决断力和创新能力"},
		{Name: Fire, Generates: Earth, Overcomes: Metal, MissingImpact: "缺火可能影响人际关系和表现力"},
		{Name: Earth, Generates: Metal, Overcomes: Water, MissingImpact: "缺土可能影响稳定性和健康"},
		{Name: Metal, Generates: Water, Overcomes: Wood, MissingImpact: "缺金可能影响事业和财运"},
		{Name: Water, Generates: Wood, Overcomes: Fire, MissingImpact: "缺水可能影响智慧和灵活性"},
	}
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(canonicalRecords())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func mustLookup(t *testing.T, table *Table, name string) Element {
	t.Helper()
	e, err := table.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", name, err)
	}
	return e
}

// -----------------------------------------------------------------
// Table loading
// -----------------------------------------------------------------

func TestLoadTable_YAML(t *testing.T) {
	data := []byte(`
- {name: 木, generates: 火, overcomes: 土}
- {name: 火, generates: 土, overcomes: 金}
- {name: 土, generates: 金, overcomes: 水}
- {name: 金, generates: 水, overcomes: 木}
- {name: 水, generates: 木, overcomes: 火}
`)
	table, err := LoadTable(data)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if diff := cmp.Diff(CanonicalNames(), table.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func([]Element) []Element
		lookupMiss bool
	}{
		{
			name:   "too few elements",
			mutate: func(r []Element) []Element { return r[:4] },
		},
		{
			name: "duplicate name",
			mutate: func(r []Element) []Element {
				r[4].Name = Wood
				return r
			},
		},
		{
			name: "non-canonical name",
			mutate: func(r []Element) []Element {
				r[4].Name = "冰"
				r[3].Generates = "冰"
				r[2].Overcomes = "冰"
				return r
			},
		},
		{
			name: "dangling generates",
			mutate: func(r []Element) []Element {
				r[0].Generates = "风"
				return r
			},
			lookupMiss: true,
		},
		{
			name: "dangling overcomes",
			mutate: func(r []Element) []Element {
				r[1].Overcomes = "雷"
				return r
			},
			lookupMiss: true,
		},
		{
			name: "self generation",
			mutate: func(r []Element) []Element {
				r[0].Generates = Wood
				return r
			},
		},
		{
			name: "generates and overcomes same target",
			mutate: func(r []Element) []Element {
				r[0].Overcomes = Fire
				return r
			},
		},
		{
			name: "generation splits into two cycles",
			mutate: func(r []Element) []Element {
				// 木->火->木 and 土->金->水->土
				r[1].Generates = Wood
				r[4].Generates = Earth
				r[1].Overcomes = Metal
				return r
			},
		},
		{
			name: "overcoming not a permutation",
			mutate: func(r []Element) []Element {
				r[3].Overcomes = Earth // 木 and 金 both overcome 土
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.mutate(canonicalRecords()))
			if !errors.Is(err, apperr.ErrInvalidConfiguration) {
				t.Fatalf("NewTable() error = %v, want ErrInvalidConfiguration", err)
			}
			if got := errors.Is(err, apperr.ErrLookupMiss); got != tt.lookupMiss {
				t.Errorf("errors.Is(err, ErrLookupMiss) = %v, want %v", got, tt.lookupMiss)
			}
		})
	}
}

func TestLookup_Miss(t *testing.T) {
	table := testTable(t)
	if _, err := table.Lookup("风"); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("Lookup(风) error = %v, want ErrLookupMiss", err)
	}
}

// -----------------------------------------------------------------
// Cycles and relations
// -----------------------------------------------------------------

func TestCycles_Close(t *testing.T) {
	table := testTable(t)

	for _, start := range table.All() {
		cur := start
		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			seen[cur.Name] = true
			cur = table.Product(cur)
		}
		if cur.Name != start.Name || len(seen) != 5 {
			t.Errorf("generation walk from %s ended at %s after visiting %d", start.Name, cur.Name, len(seen))
		}

		cur = start
		seen = map[string]bool{}
		for i := 0; i < 5; i++ {
			seen[cur.Name] = true
			cur = table.Victim(cur)
		}
		if cur.Name != start.Name || len(seen) != 5 {
			t.Errorf("overcoming walk from %s ended at %s after visiting %d", start.Name, cur.Name, len(seen))
		}
	}
}

func TestCycleOrders(t *testing.T) {
	table := testTable(t)
	wood := mustLookup(t, table, Wood)
	metal := mustLookup(t, table, Metal)

	names := func(es []Element) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name
		}
		return out
	}

	if diff := cmp.Diff([]string{"木", "火", "土", "金", "水"}, names(table.GenerationCycle(wood))); diff != "" {
		t.Errorf("GenerationCycle(木) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"金", "木", "土", "水", "火"}, names(table.OvercomingCycle(metal))); diff != "" {
		t.Errorf("OvercomingCycle(金) mismatch (-want +got):\n%s", diff)
	}
}

func TestInverseRelations(t *testing.T) {
	table := testTable(t)
	for _, e := range table.All() {
		if got := table.Product(table.Generator(e)); got.Name != e.Name {
			t.Errorf("Product(Generator(%s)) = %s", e.Name, got.Name)
		}
		if got := table.Victim(table.Overcomer(e)); got.Name != e.Name {
			t.Errorf("Victim(Overcomer(%s)) = %s", e.Name, got.Name)
		}
	}
}

func TestResolve(t *testing.T) {
	table := testTable(t)
	tests := []struct {
		a, b string
		want Relation
	}{
		{Wood, Fire, Generates},
		{Water, Wood, Generates},
		{Wood, Earth, Overcomes},
		{Fire, Metal, Overcomes},
		{Fire, Wood, Neutral},
		{Earth, Wood, Neutral},
	}
	for _, tt := range tests {
		got := Resolve(mustLookup(t, table, tt.a), mustLookup(t, table, tt.b))
		if got != tt.want {
			t.Errorf("Resolve(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestResolve_SelfIsNeutral(t *testing.T) {
	table := testTable(t)
	for _, e := range table.All() {
		if got := Resolve(e, e); got != Neutral {
			t.Errorf("Resolve(%s, %s) = %s, want neutral", e.Name, e.Name, got)
		}
	}
}

func TestRelationLabel(t *testing.T) {
	if Generates.Label() != "生" || Overcomes.Label() != "克" || Neutral.Label() != "无" {
		t.Errorf("labels = %s %s %s", Generates.Label(), Overcomes.Label(), Neutral.Label())
	}
}

// -----------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------

func TestSupport_Sizes(t *testing.T) {
	table := testTable(t)
	for _, day := range table.All() {
		s := table.Support(day)
		if len(s.Helping) != 2 {
			t.Errorf("Support(%s).Helping = %v, want 2 entries", day.Name, s.Helping)
		}
		if len(s.Weakening) != 3 {
			t.Errorf("Support(%s).Weakening = %v, want 3 entries", day.Name, s.Weakening)
		}
		if len(s.HelpingNotes) != len(s.Helping) || len(s.WeakeningNotes) != len(s.Weakening) {
			t.Errorf("Support(%s) notes do not line up with elements", day.Name)
		}
	}
}

func TestSupport_Wood(t *testing.T) {
	table := testTable(t)
	s := table.Support(mustLookup(t, table, Wood))

	if diff := cmp.Diff([]string{"木", "水"}, s.Helping); diff != "" {
		t.Errorf("Helping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"火", "金", "木"}, s.Weakening); diff != "" {
		t.Errorf("Weakening mismatch (-want +got):\n%s", diff)
	}
	if s.HelpingNotes[1] != "水生木（生我者）" {
		t.Errorf("HelpingNotes[1] = %q", s.HelpingNotes[1])
	}
	if s.WeakeningNotes[1] != "金克木（克我者）" {
		t.Errorf("WeakeningNotes[1] = %q", s.WeakeningNotes[1])
	}
}

func TestProfile(t *testing.T) {
	table := testTable(t)
	el := func(names ...string) []Element {
		out := make([]Element, len(names))
		for i, n := range names {
			out[i] = mustLookup(t, table, n)
		}
		return out
	}

	t.Run("all present", func(t *testing.T) {
		chars := el(Wood, Fire, Earth, Metal, Water, Wood, Wood, Fire)
		p := table.Profile(chars, mustLookup(t, table, Fire))
		if !p.Complete() || len(p.Missing) != 0 {
			t.Errorf("Missing = %v, want none", p.Missing)
		}
		if p.Count(Wood) != 3 || p.Count(Fire) != 2 {
			t.Errorf("counts = %v", p.Counts)
		}
	})

	t.Run("two elements", func(t *testing.T) {
		chars := el(Metal, Metal, Water, Water, Metal, Water, Metal, Metal)
		p := table.Profile(chars, mustLookup(t, table, Metal))
		want := Profile{
			DayElement: Metal,
			Counts: []ElementCount{
				{Wood, 0}, {Fire, 0}, {Earth, 0}, {Metal, 5}, {Water, 3},
			},
			Helping:   []string{Metal, Earth},
			Weakening: []string{Water, Fire, Metal},
			Missing:   []string{Wood, Fire, Earth},
		}
		if diff := cmp.Diff(want, p); diff != "" {
			t.Errorf("Profile mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("repeatable", func(t *testing.T) {
		chars := el(Wood, Fire, Fire, Earth, Water, Water, Water, Fire)
		day := mustLookup(t, table, Water)
		if diff := cmp.Diff(table.Profile(chars, day), table.Profile(chars, day)); diff != "" {
			t.Errorf("Profile not repeatable:\n%s", diff)
		}
	})
}

func TestMissingImpact(t *testing.T) {
	table := testTable(t)
	if got := table.MissingImpact(nil); got != CompleteRemark {
		t.Errorf("MissingImpact(nil) = %q", got)
	}
	got := table.MissingImpact([]string{Water, Wood})
	want := "缺木可能影响决断力和创新能力；缺水可能影响智慧和灵活性"
	if got != want {
		t.Errorf("MissingImpact = %q, want %q", got, want)
	}
}

func TestFormatCounts(t *testing.T) {
	got := FormatCounts([]ElementCount{{Wood, 2}, {Fire, 0}})
	if got != "2个木 0个火" {
		t.Errorf("FormatCounts = %q", got)
	}
}
