// Package divination turns user input into three-transmission casts and
// birth charts using the loaded registry.
package divination

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/bazi"
	"github.com/zapponejosh/liuren-api/internal/calendar"
	"github.com/zapponejosh/liuren-api/internal/liuren"
	"github.com/zapponejosh/liuren-api/internal/registry"
	"github.com/zapponejosh/liuren-api/internal/strokes"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

// Method is how the three counts of a cast were obtained.
type Method string

const (
	MethodNumbers    Method = "numbers"
	MethodDate       Method = "date"
	MethodCharacters Method = "characters"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodNumbers, MethodDate, MethodCharacters:
		return m, nil
	}
	return "", fmt.Errorf("unknown divination method %q: %w", s, apperr.ErrInvalidArgument)
}

// Service is safe for concurrent use; it holds only immutable tables and
// a stroke source.
type Service struct {
	reg     *registry.Registry
	strokes strokes.Source
	logger  *slog.Logger
}

// NewService creates a service. src may be nil, in which case character
// casts and stroke lookups fail with ErrInvalidConfiguration.
func NewService(reg *registry.Registry, src strokes.Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reg: reg, strokes: src, logger: logger}
}

// Registry exposes the tables the service was built with.
func (s *Service) Registry() *registry.Registry {
	return s.reg
}

// RelationStep is the element relation between two consecutive transmissions.
type RelationStep struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Relation wuxing.Relation `json:"relation"`
	Label    string          `json:"label"`
}

// Result is a completed cast.
type Result struct {
	Method       Method              `json:"method"`
	Inputs       [3]int              `json:"inputs"`
	Transmission liuren.Transmission `json:"transmission"`
	Relations    [2]RelationStep     `json:"relations"`
	Lunar        *calendar.LunarDate `json:"lunar,omitempty"`
	Strokes      []strokes.Entry     `json:"strokes,omitempty"`
	Summary      string              `json:"summary"`
}

func (s *Service) cast(method Method, n1, n2, n3 int) (Result, error) {
	tr, err := s.reg.Symbols.Generate(n1, n2, n3)
	if err != nil {
		return Result{}, err
	}

	syms := tr.Symbols()
	rels := tr.Relations()
	var steps [2]RelationStep
	for i := range steps {
		steps[i] = RelationStep{
			From:     syms[i].Name,
			To:       syms[i+1].Name,
			Relation: rels[i],
			Label:    rels[i].Label(),
		}
	}

	s.logger.Debug("cast generated",
		slog.String("method", string(method)),
		slog.Any("inputs", tr.Inputs),
		slog.String("initial", tr.Initial.Name),
		slog.String("middle", tr.Middle.Name),
		slog.String("final", tr.Final.Name),
	)

	return Result{
		Method:       method,
		Inputs:       tr.Inputs,
		Transmission: tr,
		Relations:    steps,
		Summary:      Summarize(tr),
	}, nil
}

// CastNumbers casts from three positive integers.
func (s *Service) CastNumbers(n1, n2, n3 int) (Result, error) {
	return s.cast(MethodNumbers, n1, n2, n3)
}

// CastDate casts from a moment: lunar month, lunar day and the double-hour
// period of t.
func (s *Service) CastDate(t time.Time) (Result, error) {
	ld := calendar.ToLunar(t)
	period, err := calendar.HourPeriod(t.Hour())
	if err != nil {
		return Result{}, err
	}

	res, err := s.cast(MethodDate, ld.Month, ld.Day, period)
	if err != nil {
		return Result{}, err
	}
	res.Lunar = &ld
	return res, nil
}

// CastCharacters casts from the stroke counts of exactly three Chinese
// characters. Separators between the characters are ignored.
func (s *Service) CastCharacters(ctx context.Context, text string) (Result, error) {
	chars, err := strokes.SplitCharacters(text)
	if err != nil {
		return Result{}, err
	}
	if len(chars) != 3 {
		return Result{}, fmt.Errorf("need exactly 3 characters, got %d: %w", len(chars), apperr.ErrInvalidArgument)
	}

	entries, err := s.Strokes(ctx, chars)
	if err != nil {
		return Result{}, err
	}

	res, err := s.cast(MethodCharacters, entries[0].Strokes, entries[1].Strokes, entries[2].Strokes)
	if err != nil {
		return Result{}, err
	}
	res.Strokes = entries
	return res, nil
}

// Strokes looks up each character in the stroke dictionary.
func (s *Service) Strokes(ctx context.Context, chars []string) ([]strokes.Entry, error) {
	if s.strokes == nil {
		return nil, fmt.Errorf("%w: no stroke dictionary configured", apperr.ErrInvalidConfiguration)
	}
	return strokes.Counts(ctx, s.strokes, chars)
}

// ChartResult is a birth chart with its calendar context.
type ChartResult struct {
	Solar  string             `json:"solar"`
	Lunar  calendar.LunarDate `json:"lunar"`
	Report bazi.Report        `json:"report"`
}

// Chart computes the four pillars of birth and their analysis.
func (s *Service) Chart(birth time.Time, g bazi.Gender, m bazi.Method) (ChartResult, error) {
	var chart bazi.Chart
	switch m {
	case bazi.Simplified:
		chart = s.reg.GanZhi.Calculate(birth)
	case bazi.Exact:
		c, err := s.reg.GanZhi.ChartFromPillars(calendar.EightCharacters(birth))
		if err != nil {
			return ChartResult{}, fmt.Errorf("exact chart: %w", err)
		}
		chart = c
	default:
		return ChartResult{}, fmt.Errorf("unknown method %q: %w", m, apperr.ErrInvalidArgument)
	}

	return ChartResult{
		Solar:  birth.Format("2006-01-02 15:04"),
		Lunar:  calendar.ToLunar(birth),
		Report: s.reg.GanZhi.Report(chart, birth.Year(), g, m),
	}, nil
}

// DayMasterResult is the lunar-month day-master estimate for a date.
type DayMasterResult struct {
	Date    string             `json:"date"`
	Lunar   calendar.LunarDate `json:"lunar"`
	Element wuxing.Element     `json:"element"`
	Support wuxing.Support     `json:"support"`
}

// DayMaster estimates a day-element from the lunar month alone: months
// 1..5 map onto the canonical element order and then repeat.
func (s *Service) DayMaster(date time.Time) DayMasterResult {
	ld := calendar.ToLunar(date)
	all := s.reg.Elements.All()
	el := all[(ld.Month-1)%len(all)]

	return DayMasterResult{
		Date:    calendar.FormatDate(date),
		Lunar:   ld,
		Element: el,
		Support: s.reg.Elements.Support(el),
	}
}
