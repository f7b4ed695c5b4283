// Package strokes reads the stroke-count dictionary and looks up characters in it.
package strokes

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

// Entry is one dictionary row.
type Entry struct {
	Character string `json:"character"`
	Strokes   int    `json:"strokes"`
}

// Source resolves a single character to its stroke count. Implementations
// return an error wrapping apperr.ErrLookupMiss for unknown characters.
type Source interface {
	StrokeCount(ctx context.Context, char string) (int, error)
}

// Map is an in-memory Source.
type Map map[string]int

// StrokeCount returns the count for char or an ErrLookupMiss error.
func (m Map) StrokeCount(_ context.Context, char string) (int, error) {
	n, ok := m[char]
	if !ok {
		return 0, fmt.Errorf("character %q not in stroke dictionary: %w", char, apperr.ErrLookupMiss)
	}
	return n, nil
}

// ParseDictionary reads lines of the form "<char> <code>", where the
// eighth and ninth characters of code are the stroke count. Malformed
// lines are skipped and counted.
func ParseDictionary(r io.Reader) (entries []Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		e, ok := parseLine(sc.Text())
		if !ok {
			if strings.TrimSpace(sc.Text()) != "" {
				skipped++
			}
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read dictionary: %w", err)
	}
	return entries, skipped, nil
}

func parseLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || utf8.RuneCountInString(fields[0]) != 1 {
		return Entry{}, false
	}
	code := fields[1]
	if len(code) < 9 {
		return Entry{}, false
	}
	n, err := strconv.Atoi(code[7:9])
	if err != nil || n < 1 {
		return Entry{}, false
	}
	return Entry{Character: fields[0], Strokes: n}, true
}

// IsHan reports whether r is in the CJK Unified Ideographs block.
func IsHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// SplitCharacters extracts the CJK characters of s, ignoring separators
// such as commas and spaces. Any other non-CJK rune is rejected.
func SplitCharacters(s string) ([]string, error) {
	var out []string
	for _, r := range s {
		switch {
		case IsHan(r):
			out = append(out, string(r))
		case r == ',' || r == '，' || r == '、' || r == ' ' || r == '\t':
		default:
			return nil, fmt.Errorf("%q is not a Chinese character: %w", r, apperr.ErrInvalidArgument)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no Chinese characters in %q: %w", s, apperr.ErrInvalidArgument)
	}
	return out, nil
}

// Counts looks up every character in order and stops at the first miss.
func Counts(ctx context.Context, src Source, chars []string) ([]Entry, error) {
	out := make([]Entry, 0, len(chars))
	for _, c := range chars {
		n, err := src.StrokeCount(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Character: c, Strokes: n})
	}
	return out, nil
}

// Total sums the stroke counts.
func Total(entries []Entry) int {
	sum := 0
	for _, e := range entries {
		sum += e.Strokes
	}
	return sum
}

// Format renders entries the way the CLI prints them:
//
//	笔画数：
//	  你: 7画
//	  好: 6画
//	总笔画数：13画
func Format(entries []Entry) string {
	var b strings.Builder
	b.WriteString("笔画数：\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s: %d画\n", e.Character, e.Strokes)
	}
	fmt.Fprintf(&b, "总笔画数：%d画", Total(entries))
	return b.String()
}
