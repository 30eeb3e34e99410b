package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) err=%v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo, ComponentDataset)
	l.Info("loaded", FieldRecords, 3)
	out := buf.String()
	if !strings.Contains(out, "component=dataset") || !strings.Contains(out, "records=3") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestWithFiltersSkipsEmpty(t *testing.T) {
	f := NewFields().WithFilters("Pune", "", "", "2024", "")
	if len(f) != 2 || f[FieldDivision] != "Pune" || f[FieldYear] != "2024" {
		t.Fatalf("fields=%v", f)
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelDebug, ComponentHTTP)

	var got *Logger
	h := Middleware(l)(ComponentMiddleware(ComponentDashboard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentDashboard {
		t.Fatalf("logger from context=%v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}

	NewStructuredLogger(l).LogViewDerived(context.Background(), "Pune", "", "", "", "", 4, true)
	if !strings.Contains(buf.String(), "cache_hit=true") {
		t.Fatalf("missing cache_hit: %s", buf.String())
	}
}

func TestLogErrorIncludesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo, ComponentHTTP)

	fields := NewFields().WithHTTPRequest(http.MethodGet, "/api/view", "division=Pune", "curl/8", "")
	NewStructuredLogger(l).LogError(context.Background(), "view failed", errors.New("boom"), ComponentDashboard, OpDerive, fields)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "error=boom", "operation=derive", "path=/api/view", `query="division=Pune"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}
