package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"canestats/internal/aggregator"
	"canestats/internal/export"
	"canestats/internal/log"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().NoStore().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports not-ready until a dataset is being served.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if info, ok := s.dashboard.Info(); ok {
		checks["dataset"] = info
	} else {
		checks["dataset"] = "loading"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	limits := s.limiter.GetMetrics()
	checks["rate_limiter"] = map[string]any{
		"active_clients": limits.ClientCount,
		"limited":        limits.TotalHits,
	}
	checks["security"] = map[string]any{
		"suspicious_requests": s.detector.GetMetrics().SuspiciousRequests,
	}

	NewJSONResponse().Status(httpStatus).NoStore().Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	f, ok := s.filters(w, r)
	if !ok {
		return
	}
	opts, err := s.dashboard.Options(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Body(opts).Write(w)
}

// viewFor parses filters and derives the view, answering errors itself.
func (s *Server) viewFor(w http.ResponseWriter, r *http.Request) (aggregator.ViewData, bool) {
	f, ok := s.filters(w, r)
	if !ok {
		return aggregator.ViewData{}, false
	}
	view, err := s.dashboard.View(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return aggregator.ViewData{}, false
	}
	return view, true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.viewFor(w, r); ok {
		NewJSONResponse().Body(view).Write(w)
	}
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	view, ok := s.viewFor(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(struct {
		Eligible int                 `json:"eligible_records"`
		KPI      aggregator.KPI      `json:"kpi"`
		Averages aggregator.Averages `json:"averages"`
	}{view.Eligible, view.KPI, view.Averages}).Write(w)
}

func (s *Server) handlePie(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.viewFor(w, r); ok {
		NewJSONResponse().Body(view.Pie).Write(w)
	}
}

func (s *Server) handleBar(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.viewFor(w, r); ok {
		NewJSONResponse().Body(view.Bar).Write(w)
	}
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	m, err := aggregator.ParseMetric(mux.Vars(r)["metric"])
	if err != nil {
		s.writeError(w, r, NotFoundError(err.Error()))
		return
	}
	f, ok := s.filters(w, r)
	if !ok {
		return
	}
	series, err := s.dashboard.MetricSeries(r.Context(), f, m)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Body(series).Write(w)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	f, ok := s.filters(w, r)
	if !ok {
		return
	}
	base, target, err := CompareMonths(r.URL.Query())
	if err != nil {
		s.writeError(w, r, BadRequestError(err.Error()))
		return
	}
	cmp, err := s.dashboard.Compare(r.Context(), f, base, target)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Body(cmp).Write(w)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	info, ok := s.dashboard.Info()
	if !ok {
		s.writeError(w, r, ServiceUnavailableError("dataset is still loading"))
		return
	}
	NewJSONResponse().NoStore().Body(info).Write(w)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, r, NotFoundError("snapshot history is not configured"))
		return
	}
	limit := defaultSnapshotLimit
	if v := sanitizeInput(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, BadRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxSnapshotLimit)
	}
	snaps, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, fmt.Errorf("list snapshots: %w", err))
		return
	}
	NewJSONResponse().NoStore().Body(snaps).Write(w)
}

// handleExport streams the current view as an Excel workbook. The workbook
// is rendered to memory first so failures can still answer 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.viewFor(w, r)
	if !ok {
		return
	}
	base, target, err := CompareMonths(r.URL.Query())
	if err != nil {
		s.writeError(w, r, BadRequestError(err.Error()))
		return
	}
	cmp, err := s.dashboard.Compare(r.Context(), view.Filters, base, target)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, view, &cmp); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	name := "canestats-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Export write interrupted", log.FieldError, err)
	}
}
