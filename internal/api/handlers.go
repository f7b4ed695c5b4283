package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/liuren-api/internal/bazi"
	"github.com/zapponejosh/liuren-api/internal/calendar"
	"github.com/zapponejosh/liuren-api/internal/config"
	"github.com/zapponejosh/liuren-api/internal/database"
	"github.com/zapponejosh/liuren-api/internal/divination"
	"github.com/zapponejosh/liuren-api/internal/strokes"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxStrokeChars   = 32
	maxQuestionRunes = 500
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db     *database.DB
	svc    *divination.Service
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, svc *divination.Service, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	entries, err := h.db.CountStrokeEntries(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}
	version, err := h.db.SchemaVersion(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]any{
		"status":            "healthy",
		"schema_version":    version,
		"stroke_dictionary": entries,
		"symbols":           len(h.svc.Registry().Symbols.All()),
		"elements":          h.svc.Registry().Elements.Len(),
	})
}

// =============================================================================
// Static tables
// =============================================================================

// ListElements handles GET /api/v1/elements
func (h *Handlers) ListElements(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.svc.Registry().Elements.All())
}

// elementDetail is an element with its neighbours in both cycles.
type elementDetail struct {
	Element         wuxing.Element `json:"element"`
	Generator       string         `json:"generator"`
	Product         string         `json:"product"`
	Overcomer       string         `json:"overcomer"`
	Victim          string         `json:"victim"`
	GenerationCycle []string       `json:"generation_cycle"`
	OvercomingCycle []string       `json:"overcoming_cycle"`
	Support         wuxing.Support `json:"support"`
}

func elementNames(els []wuxing.Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Name
	}
	return out
}

// GetElement handles GET /api/v1/elements/{name}
func (h *Handlers) GetElement(w http.ResponseWriter, r *http.Request) {
	table := h.svc.Registry().Elements

	el, err := table.Lookup(pathParam(r, "name"))
	if err != nil {
		WriteNotFound(w, err.Error())
		return
	}

	WriteSuccess(w, elementDetail{
		Element:         el,
		Generator:       table.Generator(el).Name,
		Product:         table.Product(el).Name,
		Overcomer:       table.Overcomer(el).Name,
		Victim:          table.Victim(el).Name,
		GenerationCycle: elementNames(table.GenerationCycle(el)),
		OvercomingCycle: elementNames(table.OvercomingCycle(el)),
		Support:         table.Support(el),
	})
}

// ListSymbols handles GET /api/v1/symbols
func (h *Handlers) ListSymbols(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.svc.Registry().Symbols.All())
}

// =============================================================================
// Calculators
// =============================================================================

// GetBazi handles GET /api/v1/bazi?date=YYYY-MM-DD&time=HH:MM&gender=M|F&method=simplified|exact
func (h *Handlers) GetBazi(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("date") == "" {
		WriteBadRequest(w, "date parameter is required")
		return
	}
	birth, err := calendar.ParseDateTime(q.Get("date"), q.Get("time"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	gender, err := bazi.ParseGender(q.Get("gender"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	method, err := bazi.ParseMethod(q.Get("method"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	res, err := h.svc.Chart(birth, gender, method)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, res)
}

// GetDayMaster handles GET /api/v1/daymaster/{date}
func (h *Handlers) GetDayMaster(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(pathParam(r, "date"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.svc.DayMaster(date))
}

// GetLunarDate handles GET /api/v1/calendar/lunar/{date}
func (h *Handlers) GetLunarDate(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(pathParam(r, "date"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	ld := calendar.ToLunar(date)
	WriteSuccess(w, map[string]any{
		"solar":        calendar.FormatDate(date),
		"lunar":        ld,
		"text":         ld.String(),
		"chinese_year": h.svc.Registry().GanZhi.ChineseYear(date.Year()),
	})
}

// GetStrokes handles GET /api/v1/strokes/{chars}
func (h *Handlers) GetStrokes(w http.ResponseWriter, r *http.Request) {
	chars, err := strokes.SplitCharacters(pathParam(r, "chars"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if len(chars) > maxStrokeChars {
		WriteBadRequest(w, fmt.Sprintf("at most %d characters per request", maxStrokeChars))
		return
	}

	entries, err := h.svc.Strokes(r.Context(), chars)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{
		"characters": entries,
		"total":      strokes.Total(entries),
	})
}

// =============================================================================
// Divinations
// =============================================================================

// DivinationRequest is the body of POST /api/v1/divinations.
type DivinationRequest struct {
	Method     string `json:"method"`
	Numbers    []int  `json:"numbers,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Characters string `json:"characters,omitempty"`
	Question   string `json:"question,omitempty"`
}

// DivinationResponse is a stored cast with its full result.
type DivinationResponse struct {
	ID       string            `json:"id"`
	Question string            `json:"question,omitempty"`
	Result   divination.Result `json:"result"`
	Record   *database.Cast    `json:"record"`
}

// CreateDivination handles POST /api/v1/divinations
func (h *Handlers) CreateDivination(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DivinationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if len([]rune(req.Question)) > maxQuestionRunes {
		WriteBadRequest(w, fmt.Sprintf("question exceeds %d characters", maxQuestionRunes))
		return
	}

	method, err := divination.ParseMethod(req.Method)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	var res divination.Result
	var source *string
	switch method {
	case divination.MethodNumbers:
		if len(req.Numbers) != 3 {
			WriteBadRequest(w, "numbers must hold exactly 3 integers")
			return
		}
		res, err = h.svc.CastNumbers(req.Numbers[0], req.Numbers[1], req.Numbers[2])
	case divination.MethodDate:
		at, perr := calendar.ParseDateTime(req.Date, req.Time)
		if perr != nil {
			WriteServiceError(w, r, perr)
			return
		}
		res, err = h.svc.CastDate(at)
		if err == nil {
			s := res.Lunar.String()
			source = &s
		}
	case divination.MethodCharacters:
		res, err = h.svc.CastCharacters(ctx, req.Characters)
		if err == nil {
			s := strings.Join(characterList(res.Strokes), "")
			source = &s
		}
	}
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	record := castRecord(res, source, req.Question)
	if err := h.db.CreateCast(ctx, record); err != nil {
		WriteServiceError(w, r, err)
		return
	}

	WriteCreated(w, DivinationResponse{
		ID:       record.ID,
		Question: req.Question,
		Result:   res,
		Record:   record,
	})
}

func characterList(entries []strokes.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Character
	}
	return out
}

func castRecord(res divination.Result, source *string, question string) *database.Cast {
	c := &database.Cast{
		Method:    database.CastMethod(res.Method),
		Inputs:    res.Inputs,
		Initial:   res.Transmission.Initial.Name,
		Middle:    res.Transmission.Middle.Name,
		Final:     res.Transmission.Final.Name,
		Relation1: res.Relations[0].Label,
		Relation2: res.Relations[1].Label,
		Source:    source,
	}
	if question = strings.TrimSpace(question); question != "" {
		c.Question = &question
	}
	return c
}

// GetDivination handles GET /api/v1/divinations/{id}
func (h *Handlers) GetDivination(w http.ResponseWriter, r *http.Request) {
	c, err := h.db.GetCast(r.Context(), pathParam(r, "id"))
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Divination not found")
			return
		}
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c)
}

// ListDivinations handles GET /api/v1/divinations?limit=N&offset=M
func (h *Handlers) ListDivinations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		WriteBadRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		WriteBadRequest(w, "offset must be a non-negative integer")
		return
	}

	casts, err := h.db.ListCasts(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{
		"casts":  casts,
		"limit":  limit,
		"offset": offset,
	})
}

// GetDivinationStats handles GET /api/v1/divinations/stats
func (h *Handlers) GetDivinationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetCastStats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteSuccess(w, stats)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
