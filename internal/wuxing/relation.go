package wuxing

// Relation classifies an ordered pair of elements.
type Relation string

const (
	Generates Relation = "generates"
	Overcomes Relation = "overcomes"
	Neutral   Relation = "neutral"
)

// Label returns the traditional single-character label (生, 克, 无).
func (r Relation) Label() string {
	switch r {
	case Generates:
		return "生"
	case Overcomes:
		return "克"
	default:
		return "无"
	}
}

// Resolve reports how a relates to b.
//
// Table validation guarantees that no element generates or overcomes itself and
// that the two cycles never share an edge, so at most one check can match.
func Resolve(a, b Element) Relation {
	gen := a.Generates == b.Name
	over := a.Overcomes == b.Name
	switch {
	case gen && over:
		panic("wuxing: " + a.Name + " both generates and overcomes " + b.Name)
	case gen:
		return Generates
	case over:
		return Overcomes
	default:
		return Neutral
	}
}
