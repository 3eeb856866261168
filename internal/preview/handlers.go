package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/logfields"
	"git.home.luguber.info/inful/notebinder/internal/report"
	"git.home.luguber.info/inful/notebinder/internal/runlog"
	"git.home.luguber.info/inful/notebinder/internal/source"
)

// Handler returns the HTTP handler with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /document.docx", s.handleDocument)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.MetricsHandler)
	}
	return loggingMiddleware(s.logger, panicRecoveryMiddleware(s.logger, s.errorAdapter, mux))
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Generation  uint64                  `json:"generation"`
	UpdatedAt   *time.Time              `json:"updated_at,omitempty"`
	OK          bool                    `json:"ok"`
	HasDocument bool                    `json:"has_document"`
	Stale       bool                    `json:"stale"`
	RenderedAt  *time.Time              `json:"rendered_at,omitempty"`
	Entries     int                     `json:"entries"`
	Bytes       int                     `json:"bytes"`
	Fingerprint string                  `json:"fingerprint,omitempty"`
	Sections    []report.SectionSummary `json:"sections,omitempty"`
	Category    string                  `json:"category,omitempty"`
	Problems    []report.Problem        `json:"problems,omitempty"`
}

func (s *Server) statusResponse() StatusResponse {
	snap := s.status.snapshot()
	resp := StatusResponse{Generation: snap.Generation, OK: snap.Err == nil && snap.Generation > 0}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}
	if snap.Good != nil {
		resp.HasDocument = true
		resp.RenderedAt = &snap.GoodAt
		resp.Entries = snap.Good.Entries
		resp.Bytes = len(snap.Good.Document)
		resp.Fingerprint = snap.Good.Fingerprint
		resp.Sections = report.Outline(snap.Good.Tree)
	}
	if snap.Err != nil {
		resp.Stale = snap.Good != nil
		resp.Category = string(derrors.CategoryOf(snap.Err))
		resp.Problems = report.Problems(snap.Err)
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, s.statusResponse())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	snap := s.status.snapshot()
	if snap.Good == nil {
		s.errorAdapter.WriteErrorResponse(w, r, derrors.RuntimeError("no document has been rendered yet").Build())
		return
	}
	// The last good document outlives a failed rebuild; flag it so clients
	// never mistake it for the current sources.
	if snap.Err != nil {
		w.Header().Set(staleHeader, "true")
	}
	writeDocument(w, snap.Good.Document, snap.Good.Fingerprint)
}

// RunResponse is one element of GET /api/runs.
type RunResponse struct {
	ID          string    `json:"id"`
	Trigger     string    `json:"trigger"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  float64   `json:"duration_ms"`
	Outcome     string    `json:"outcome"`
	Stage       string    `json:"stage,omitempty"`
	Violations  int       `json:"violations,omitempty"`
	Entries     int       `json:"entries"`
	Bytes       int       `json:"bytes"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

func newRunResponse(r runlog.Run) RunResponse {
	return RunResponse{
		ID:          r.ID.String(),
		Trigger:     r.Trigger,
		StartedAt:   r.StartedAt,
		DurationMS:  float64(r.Duration.Microseconds()) / 1000,
		Outcome:     string(r.Outcome),
		Stage:       r.Stage,
		Violations:  r.Violations,
		Entries:     r.Entries,
		Bytes:       r.Bytes,
		Fingerprint: r.Fingerprint,
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := runsPageDefault
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorAdapter.WriteErrorResponse(w, r,
				derrors.ValidationError(fmt.Sprintf("invalid limit %q", raw)).Build())
			return
		}
		limit = min(n, runsPageMax)
	}

	out := []RunResponse{}
	if s.opts.Store != nil {
		runs, err := s.opts.Store.Recent(r.Context(), limit)
		if err != nil {
			s.errorAdapter.WriteErrorResponse(w, r,
				derrors.WrapError(err, derrors.CategoryInternal, "failed to read run log").Build())
			return
		}
		for _, run := range runs {
			out = append(out, newRunResponse(run))
		}
	}
	_ = writeJSON(w, http.StatusOK, out)
}

// handleRender renders the records in the request body. YAML is the default;
// Content-Type application/toml selects TOML.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		s.errorAdapter.WriteErrorResponse(w, r,
			derrors.NewError(derrors.CategoryRateLimit, "render rate limit exceeded").Build())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		_ = writeJSON(w, http.StatusRequestEntityTooLarge, derrors.HTTPErrorResponse{
			Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			Code:  string(derrors.CategorySource),
		})
		return
	}
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategorySource, "failed to read request body").Build())
		return
	}

	name := "request.yaml"
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/toml" {
		name = "request.toml"
	}
	fields, err := source.Decode(name, body, s.opts.SourceOptions)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	records := make([]entry.Record, 0, len(fields))
	for i, f := range fields {
		records = append(records, entry.Record{Index: i, Source: fmt.Sprintf("request#%d", i+1), Fields: f})
	}

	started := time.Now()
	res, err := s.opts.Runner.Run(records)
	s.record(r.Context(), runlog.NewRun(TriggerAPI, started, res, err))
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeDocument(w, res.Document, res.Fingerprint)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeDocument(w http.ResponseWriter, doc []byte, fingerprint string) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="notebinder.docx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	if fingerprint != "" {
		w.Header().Set("ETag", strconv.Quote(fingerprint))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// writeJSON encodes into a buffer first so encode failures never produce
// partial responses.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}
