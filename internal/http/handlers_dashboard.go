package http

import (
	"bytes"
	"html/template"
	"net/http"

	"canestats/internal/aggregator"
	"canestats/internal/core"
	"canestats/internal/log"
	"canestats/internal/services"
)

var templateFuncs = template.FuncMap{
	"hectares": formatHectares,
	"rate":     formatRate,
	"barWidth": barPercent,
	"metricLabel": func(m aggregator.Metric) string {
		switch m {
		case aggregator.MetricSuru:
			return "Suru"
		case aggregator.MetricRatoon:
			return "Ratoon"
		case aggregator.MetricAdsali:
			return "Adsali"
		case aggregator.MetricPreSeason:
			return "Pre-season"
		}
		return string(m)
	},
}

// dashboardPage is the data handed to index.html.
type dashboardPage struct {
	Filters core.FilterState
	Options aggregator.Options
	View    aggregator.ViewData
	Compare aggregator.Comparison
	Info    services.DatasetInfo
	Query   template.URL
	Error   string
	Loading bool

	PieMax float64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !s.gate.Session(r).Authenticated {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	page := dashboardPage{}

	sess, err := s.session(r)
	if err != nil {
		s.metrics.InvalidFilters.Inc()
		status = http.StatusBadRequest
		page.Error = err.Error()
		sess.Filters = sess.Filters.Reset()
	}
	page.Filters = sess.Filters
	page.Query = template.URL(FilterQuery(sess.Filters).Encode())

	if !s.dashboard.Ready() {
		page.Loading = true
		w.Header().Set("Retry-After", "5")
		s.render(w, r, http.StatusServiceUnavailable, page)
		return
	}

	view, err := s.dashboard.View(r.Context(), sess.Filters)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	cmp, err := s.dashboard.Compare(r.Context(), sess.Filters, "", "")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page.View = view
	page.Options = view.Options
	page.Compare = cmp
	page.Info, _ = s.dashboard.Info()
	for _, sl := range view.Pie {
		page.PieMax = max(page.PieMax, sl.Value)
	}

	s.render(w, r, status, page)
}

// render executes index.html into a buffer so template failures still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page dashboardPage) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleLogout ends the session and sends the browser back to the
// unfiltered dashboard.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.gate.Session(r).Logout()
	s.gate.Logout(w, r)

	target := "/"
	if q := FilterQuery(sess.Filters).Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
