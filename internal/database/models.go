package database

import (
	"time"
)

// CastMethod is how a cast's three numbers were obtained.
type CastMethod string

const (
	CastMethodNumbers    CastMethod = "numbers"
	CastMethodDate       CastMethod = "date"
	CastMethodCharacters CastMethod = "characters"
)

// ValidCastMethods returns all cast methods.
func ValidCastMethods() []CastMethod {
	return []CastMethod{CastMethodNumbers, CastMethodDate, CastMethodCharacters}
}

// IsValid checks if a cast method is known.
func (m CastMethod) IsValid() bool {
	for _, valid := range ValidCastMethods() {
		if m == valid {
			return true
		}
	}
	return false
}

// Cast is one stored divination.
type Cast struct {
	ID        string     `json:"id"`
	Method    CastMethod `json:"method"`
	Inputs    [3]int     `json:"inputs"`
	Initial   string     `json:"initial"`
	Middle    string     `json:"middle"`
	Final     string     `json:"final"`
	Relation1 string     `json:"relation1"`
	Relation2 string     `json:"relation2"`
	Source    *string    `json:"source,omitempty"`
	Question  *string    `json:"question,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// StrokeEntry is one row of the stroke dictionary.
type StrokeEntry struct {
	Character string `json:"character"`
	Strokes   int    `json:"strokes"`
}

// CastStats summarises the cast history.
type CastStats struct {
	Total    int                `json:"total"`
	ByMethod map[CastMethod]int `json:"by_method"`
	Latest   *time.Time         `json:"latest,omitempty"`
}
