package liuren

import (
	"fmt"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

// Transmission is the ordered triple produced by one count:
// initial (初传), middle (中传) and final (末传).
type Transmission struct {
	Inputs  [3]int `json:"inputs"`
	Initial Symbol `json:"initial"`
	Middle  Symbol `json:"middle"`
	Final   Symbol `json:"final"`
}

// Symbols returns the triple in order.
func (tr Transmission) Symbols() [3]Symbol {
	return [3]Symbol{tr.Initial, tr.Middle, tr.Final}
}

// Relations returns the element relations initial→middle and middle→final.
func (tr Transmission) Relations() [2]wuxing.Relation {
	return [2]wuxing.Relation{
		wuxing.Resolve(tr.Initial.Element, tr.Middle.Element),
		wuxing.Resolve(tr.Middle.Element, tr.Final.Element),
	}
}

// Generate performs the three chained counts.
//
// The first count starts at palace 0. Each later count starts on the palace the
// previous count ended on, which is derived from the raw step counts so far:
// (n1-1) mod 9 for the second and (n1+n2-2) mod 9 for the third.
// Inputs may be arbitrarily large but must be positive.
func (t *Table) Generate(n1, n2, n3 int) (Transmission, error) {
	for i, n := range [3]int{n1, n2, n3} {
		if n < 1 {
			return Transmission{}, fmt.Errorf("input %d must be positive, got %d: %w", i+1, n, apperr.ErrInvalidArgument)
		}
	}

	p1, err := Advance(0, n1)
	if err != nil {
		return Transmission{}, err
	}
	p2, err := Advance((n1-1)%Positions, n2)
	if err != nil {
		return Transmission{}, err
	}
	// (n1 + n2 - 2) mod 9, reduced term by term so huge inputs cannot overflow.
	p3, err := Advance(((n1-1)%Positions+(n2-1)%Positions)%Positions, n3)
	if err != nil {
		return Transmission{}, err
	}

	return Transmission{
		Inputs:  [3]int{n1, n2, n3},
		Initial: t.symbols[p1],
		Middle:  t.symbols[p2],
		Final:   t.symbols[p3],
	}, nil
}
