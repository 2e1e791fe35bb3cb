package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/verte-zerg/derdie/internal/charts"
	"github.com/verte-zerg/derdie/internal/export"
	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
)

const maxBodyBytes = 1 << 20

type endingJSON struct {
	Ending      string         `json:"ending"`
	Counts      map[string]int `json:"counts"`
	Total       int            `json:"total"`
	Accuracy    float64        `json:"accuracy"`
	AccuracyPct int            `json:"accuracy_pct"`
	Majority    string         `json:"majority,omitempty"`
}

type keyEndingJSON struct {
	Ending   string  `json:"ending"`
	Gender   string  `json:"gender"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	Coverage float64 `json:"coverage"`
}

type summaryJSON struct {
	Gender        string  `json:"gender"`
	NumKeyEndings int     `json:"num_key_endings"`
	TotalCoverage int     `json:"total_coverage"`
	CoveragePct   float64 `json:"coverage_pct"`
	AccuracyPct   float64 `json:"accuracy_pct"`
}

type exceptionsJSON struct {
	Ending     string       `json:"ending"`
	Exceptions []string     `json:"exceptions"`
	Stats      []endingJSON `json:"stats"`
}

type selectResponse struct {
	State  selection.State                `json:"state"`
	Tables map[string][]selection.WordRow `json:"tables"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "nouns": s.report.Nouns})
}

func (s *Server) handleEndings(w http.ResponseWriter, r *http.Request) {
	top := s.top
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "top must be an integer")
			return
		}
		top = n
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"nouns":   s.report.Nouns,
		"endings": endingsToJSON(stats.Top(s.report.Endings, top)),
	})
}

func (s *Server) handleExceptions(w http.ResponseWriter, r *http.Request) {
	ending := stats.NormalizeEnding(r.URL.Query().Get("ending"))
	if ending == "" {
		out := make([]exceptionsJSON, 0, len(s.report.Exceptions.Order))
		for _, e := range s.report.Exceptions.Endings() {
			out = append(out, s.exceptionsFor(e))
		}
		s.writeJSON(w, http.StatusOK, out)
		return
	}
	s.writeJSON(w, http.StatusOK, s.exceptionsFor(ending))
}

func (s *Server) exceptionsFor(ending string) exceptionsJSON {
	words, _ := s.report.Exceptions.Get(ending)
	if words == nil {
		words = []string{}
	}
	return exceptionsJSON{
		Ending:     ending,
		Exceptions: words,
		Stats:      endingsToJSON(s.report.ExceptionStats(ending)),
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	genders := make([]summaryJSON, 0, len(model.Genders))
	for _, g := range model.Genders {
		genders = append(genders, summaryToJSON(string(g), s.report.Summary[g]))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"nouns":   s.report.Nouns,
		"genders": genders,
		"total":   summaryToJSON("total", s.report.Overall),
	})
}

func (s *Server) handleKeyEndings(w http.ResponseWriter, r *http.Request) {
	var gender model.Gender
	if v := r.URL.Query().Get("gender"); v != "" && v != "total" {
		g, err := model.ParseGender(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		gender = g
	}
	keys := stats.FilterKeyEndings(s.report.KeyEndings, gender)
	out := make([]keyEndingJSON, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyEndingJSON{
			Ending:   k.Ending,
			Gender:   string(k.Gender),
			Total:    k.Total,
			Accuracy: k.Accuracy,
			Coverage: k.Coverage,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var env selection.Envelope
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid selection request: "+err.Error())
		return
	}
	next := s.machine.Apply(env.State, env.Event)
	tables := s.machine.Tables(next)
	out := selectResponse{State: next, Tables: make(map[string][]selection.WordRow, len(tables))}
	for g, rows := range tables {
		out.Tables[string(g)] = rows
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var render func(io.Writer) error
	switch chi.URLParam(r, "page") {
	case "endings":
		render = func(w io.Writer) error { return charts.RenderEndings(w, s.report.Endings, s.charts) }
	case "summary":
		render = func(w io.Writer) error { return charts.RenderSummary(w, s.report, s.charts) }
	case "exceptions":
		render = func(w io.Writer) error { return charts.RenderExceptions(w, s.report, s.charts) }
	default:
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.log.Error("chart render failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Debug("chart write failed", zap.Error(err))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := export.Write(&buf, s.report); err != nil {
		s.log.Error("export failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="derdie.xlsx"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Debug("export write failed", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func endingsToJSON(rows []model.EndingStats) []endingJSON {
	out := make([]endingJSON, 0, len(rows))
	for _, r := range rows {
		counts := make(map[string]int, len(model.Genders))
		for _, g := range model.Genders {
			if c, ok := r.Counts[g]; ok {
				counts[string(g)] = c
			}
		}
		out = append(out, endingJSON{
			Ending:      r.Ending,
			Counts:      counts,
			Total:       r.Total,
			Accuracy:    r.Accuracy,
			AccuracyPct: r.AccuracyPct(),
			Majority:    string(r.Majority()),
		})
	}
	return out
}

func summaryToJSON(label string, s model.GenderSummary) summaryJSON {
	return summaryJSON{
		Gender:        label,
		NumKeyEndings: s.NumKeyEndings,
		TotalCoverage: s.TotalCoverage,
		CoveragePct:   s.CoveragePct,
		AccuracyPct:   s.AccuracyPct,
	}
}
